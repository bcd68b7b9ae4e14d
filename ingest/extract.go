package ingest

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	readability "github.com/go-shiori/go-readability"
	"golang.org/x/net/html"
)

// excessiveLinesRe collapses runs of blank lines left over from conversion.
var excessiveLinesRe = regexp.MustCompile(`\n{4,}`)

// Page is the extracted text of one fetched URL.
type Page struct {
	URL      string
	Title    string
	Markdown string
}

// Extractor turns fetched HTML into readable markdown. Readability isolates
// the main content region; the converter renders it as GitHub-flavored
// markdown.
type Extractor struct {
	fetcher   *Fetcher
	converter *md.Converter
}

// NewExtractor creates an extractor with the given fetch timeout.
func NewExtractor(timeout time.Duration) *Extractor {
	converter := md.NewConverter("", true, nil)
	converter.Use(plugin.GitHubFlavored())

	return &Extractor{
		fetcher:   NewFetcher(timeout),
		converter: converter,
	}
}

// Extract fetches urlStr and returns its readable content as markdown.
func (e *Extractor) Extract(ctx context.Context, urlStr string) (*Page, error) {
	body, err := e.fetcher.Fetch(ctx, urlStr)
	if err != nil {
		return nil, err
	}

	parsed, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}

	article, err := readability.FromReader(bytes.NewReader(body), parsed)
	if err != nil {
		return nil, fmt.Errorf("extract readable content: %w", err)
	}

	content := article.Content
	if content == "" {
		content = string(body)
	}

	markdown, err := e.converter.ConvertString(content)
	if err != nil {
		return nil, fmt.Errorf("convert to markdown: %w", err)
	}
	markdown = strings.TrimSpace(excessiveLinesRe.ReplaceAllString(markdown, "\n\n\n"))

	title := article.Title
	if title == "" {
		title = extractHTMLTitle(body)
	}

	return &Page{
		URL:      urlStr,
		Title:    title,
		Markdown: markdown,
	}, nil
}

// extractHTMLTitle pulls the <title> element from raw HTML. Returns an empty
// string when the document has none.
func extractHTMLTitle(content []byte) string {
	doc, err := html.Parse(bytes.NewReader(content))
	if err != nil {
		return ""
	}

	var title string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if title != "" {
			return
		}
		if n.Type == html.ElementNode && n.Data == "title" && n.FirstChild != nil {
			title = strings.TrimSpace(n.FirstChild.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return title
}
