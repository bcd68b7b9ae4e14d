// Package validate performs structural validation of skill documents: front
// matter presence, allowed properties, name and description constraints, and
// version format. It is the pre-review gate applied to candidate artifacts
// before they are dispatched to the evaluator panel, and is also exposed
// directly on the CLI.
package validate

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/c360studio/skillforge/catalog"
)

// Field constraints.
const (
	NameMaxLength        = 64
	DescriptionMaxLength = 1024
)

// namePattern enforces hyphen-case names: start with a lowercase letter, end
// with a letter or digit, single-character names allowed.
var namePattern = regexp.MustCompile(`^[a-z][a-z0-9-]*[a-z0-9]$|^[a-z]$`)

// semverPattern accepts semantic versions including pre-release and build
// metadata suffixes.
var semverPattern = regexp.MustCompile(`^\d+\.\d+\.\d+(-[a-zA-Z0-9.]+)?(\+[a-zA-Z0-9.]+)?$`)

// requiredProperties must appear in every skill's front matter.
var requiredProperties = []string{"name", "description"}

// allowedProperties is the full set of recognized front matter keys.
var allowedProperties = map[string]bool{
	"name":           true,
	"description":    true,
	"license":        true,
	"allowed-tools":  true,
	"metadata":       true,
	"model":          true,
	"context":        true,
	"agent":          true,
	"hooks":          true,
	"user-invocable": true,
}

// recommendedProperties produce warnings, not errors, when absent.
var recommendedProperties = []string{"license"}

// Result is the outcome of validating one skill document.
type Result struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

func (r *Result) errorf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *Result) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Document validates the structural requirements of a skill document's
// content. It never inspects prose quality: that is the evaluator panel's
// job.
func Document(content string) Result {
	var res Result

	fm, err := catalog.ParseFrontMatter(content)
	if err != nil {
		res.errorf("invalid front matter: %v", err)
		return res
	}
	if fm.Extra == nil {
		res.errorf("missing front matter block")
		return res
	}

	for _, key := range requiredProperties {
		if _, ok := fm.Extra[key]; !ok {
			res.errorf("missing required property: %s", key)
		}
	}

	for key := range fm.Extra {
		if !allowedProperties[key] {
			res.errorf("unknown property: %s", key)
		}
	}

	if fm.Name != "" {
		validateName(fm.Name, &res)
	}
	if fm.Description != "" {
		validateDescription(fm.Description, &res)
	}

	if v, ok := fm.Metadata["version"]; ok && !semverPattern.MatchString(v) {
		res.errorf("metadata.version %q is not a semantic version", v)
	}

	for _, key := range recommendedProperties {
		if _, ok := fm.Extra[key]; !ok {
			res.warnf("recommended property missing: %s", key)
		}
	}

	res.Valid = len(res.Errors) == 0
	return res
}

func validateName(name string, res *Result) {
	if len(name) > NameMaxLength {
		res.errorf("name exceeds %d characters", NameMaxLength)
	}
	if !namePattern.MatchString(name) {
		res.errorf("name %q is not hyphen-case (lowercase letters, digits, hyphens)", name)
	}
	if strings.Contains(name, "--") {
		res.errorf("name %q contains consecutive hyphens", name)
	}
}

func validateDescription(desc string, res *Result) {
	if len(desc) > DescriptionMaxLength {
		res.errorf("description exceeds %d characters", DescriptionMaxLength)
	}
	if strings.ContainsAny(desc, "<>") {
		res.errorf("description must not contain angle brackets")
	}
}
