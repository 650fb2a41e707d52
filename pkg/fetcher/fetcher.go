package fetcher

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// ErrEmptyBody is returned when a response succeeds but carries no content.
var ErrEmptyBody = errors.New("empty response body")

// StatusError reports a non-success HTTP status.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("failed to fetch %s, status code: %d", e.URL, e.StatusCode)
}

const maxRedirects = 5

type Fetcher struct {
	client    *http.Client
	userAgent string
}

// NewFetcher builds a Fetcher. A zero timeout leaves the client default in place.
func NewFetcher(userAgent string, timeout time.Duration) *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Timeout:       timeout,
			CheckRedirect: checkRedirect,
		},
		userAgent: userAgent,
	}
}

// WithClient swaps the underlying HTTP client, mostly for tests.
func (f *Fetcher) WithClient(c *http.Client) *Fetcher {
	f.client = c
	return f
}

// FetchDocument loads url as an HTML document. The document's Url is the
// final URL after redirects.
func (f *Fetcher) FetchDocument(ctx context.Context, url string) (*goquery.Document, error) {
	bodyBytes, finalURL, err := f.get(ctx, url, "text/html,application/xhtml+xml")
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	doc.Url = finalURL
	return doc, nil
}

// FetchText returns the body of url as text. An empty or whitespace-only body
// is an error.
func (f *Fetcher) FetchText(ctx context.Context, url string) (string, error) {
	bodyBytes, _, err := f.get(ctx, url, "*/*")
	if err != nil {
		return "", err
	}
	text := string(bodyBytes)
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%s: %w", url, ErrEmptyBody)
	}
	return text, nil
}

func (f *Fetcher) get(ctx context.Context, rawURL, accept string) ([]byte, *url.URL, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build request: %w", err)
	}
	if !isHTTPScheme(req.URL) {
		return nil, nil, fmt.Errorf("unsupported URL scheme: %q", req.URL.Scheme)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	req.Header.Set("Accept", accept)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to make HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, nil, &StatusError{URL: rawURL, StatusCode: resp.StatusCode}
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return bodyBytes, resp.Request.URL, nil
}

func checkRedirect(req *http.Request, via []*http.Request) error {
	if len(via) >= maxRedirects {
		return errors.New("too many redirects")
	}
	if !isHTTPScheme(req.URL) {
		return errors.New("redirect to unsupported scheme")
	}
	return nil
}

func isHTTPScheme(u *url.URL) bool {
	if u == nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return scheme == "http" || scheme == "https"
}
