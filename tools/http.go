// HTTP JSON client shared by the web-API tools.
//
// Information Hiding:
// - HTTP client construction and timeouts hidden
// - Domain allowlist enforcement hidden
// - Status handling and body limits abstracted

package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// maxResponseBytes caps how much of an API response is read.
const maxResponseBytes = 1 << 20

// DefaultUserAgent identifies tool traffic to public APIs.
const DefaultUserAgent = "galactic-agent/1.0 (+https://github.com/richinex/galactic)"

// apiClient performs GET requests against JSON APIs.
type apiClient struct {
	client         *http.Client
	userAgent      string
	allowedDomains []string
}

func newAPIClient(timeout time.Duration) *apiClient {
	return &apiClient{
		client:    &http.Client{Timeout: timeout},
		userAgent: DefaultUserAgent,
	}
}

// getJSON fetches rawURL with query params and decodes the body into out.
func (c *apiClient) getJSON(ctx context.Context, rawURL string, params url.Values, out any) error {
	if !c.isDomainAllowed(rawURL) {
		return fmt.Errorf("access to domain in '%s' is not allowed", rawURL)
	}

	if len(params) > 0 {
		rawURL += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("request timeout: %w", ctx.Err())
		}
		return fmt.Errorf("network request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("http status %d: %s", resp.StatusCode, truncate(strings.TrimSpace(string(body)), 200))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("invalid JSON response: %w", err)
	}
	return nil
}

// isDomainAllowed checks if the URL's domain is in the allowlist.
// Uses proper URL parsing to prevent bypass attacks.
func (c *apiClient) isDomainAllowed(urlStr string) bool {
	if len(c.allowedDomains) == 0 {
		return true
	}

	u, err := url.Parse(urlStr)
	if err != nil {
		return false
	}

	host := u.Hostname()
	for _, domain := range c.allowedDomains {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}

// truncate shortens s to at most max runes, appending "..." when cut.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
