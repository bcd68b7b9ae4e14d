package ingest

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

// Fetch limits.
const (
	defaultMaxContentSize = 5 * 1024 * 1024 // 5MB
	defaultUserAgent      = "skillforge/1.0 (+https://github.com/c360studio/skillforge)"
	maxRedirects          = 5
)

// Fetcher fetches web content with SSRF checks applied both to the original
// URL and to every DNS resolution and redirect target.
type Fetcher struct {
	client         *http.Client
	userAgent      string
	maxContentSize int64
}

// NewFetcher creates a fetcher with the given per-request timeout.
func NewFetcher(timeout time.Duration) *Fetcher {
	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	// Validate resolved IPs at dial time to defeat DNS rebinding.
	safeDialContext := func(ctx context.Context, network, addr string) (net.Conn, error) {
		host, port, err := net.SplitHostPort(addr)
		if err != nil {
			return nil, fmt.Errorf("invalid address: %w", err)
		}

		ips, err := net.DefaultResolver.LookupIPAddr(ctx, host)
		if err != nil {
			return nil, fmt.Errorf("DNS lookup failed: %w", err)
		}

		for _, ipAddr := range ips {
			if IsPrivateIP(ipAddr.IP) {
				return nil, fmt.Errorf("connection to private IP %s is not allowed", ipAddr.IP)
			}
		}

		for _, ipAddr := range ips {
			connAddr := net.JoinHostPort(ipAddr.IP.String(), port)
			conn, err := dialer.DialContext(ctx, network, connAddr)
			if err == nil {
				return conn, nil
			}
		}

		return nil, fmt.Errorf("failed to connect to any resolved IP")
	}

	transport := &http.Transport{
		DialContext:           safeDialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: timeout,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
	}

	return &Fetcher{
		client: &http.Client{
			Transport: transport,
			Timeout:   timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("too many redirects (max %d)", maxRedirects)
				}
				if err := ValidateURL(req.URL.String()); err != nil {
					return fmt.Errorf("redirect blocked: %w", err)
				}
				return nil
			},
		},
		userAgent:      defaultUserAgent,
		maxContentSize: defaultMaxContentSize,
	}
}

// Fetch retrieves the page body at urlStr after validating the URL.
func (f *Fetcher) Fetch(ctx context.Context, urlStr string) ([]byte, error) {
	if err := ValidateURL(urlStr); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", urlStr, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", urlStr, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxContentSize+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > f.maxContentSize {
		return nil, fmt.Errorf("fetch %s: content exceeds %d bytes", urlStr, f.maxContentSize)
	}

	return body, nil
}
