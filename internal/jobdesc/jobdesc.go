// Package jobdesc loads job descriptions from files, stdin or job board URLs.
package jobdesc

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	// DefaultTimeout bounds a URL fetch.
	DefaultTimeout   = 30 * time.Second
	maxPageBytes     = 5 << 20
	defaultUserAgent = "Mozilla/5.0 (compatible; fitcheck/1.0)"
	// Stdin is the source name that reads from standard input.
	Stdin = "-"
)

var (
	noiseSelector    = "nav, footer, header, script, style, noscript, svg, form, .cookie-banner, .popup"
	blockSelector    = "p, li, br, div, section, article, tr, h1, h2, h3, h4, h5, h6"
	contentSelectors = []string{
		".job-description",
		"#job-description",
		".posting-content",
		".job-details",
		"[data-testid='job-description']",
		"main",
		"article",
	}
)

// FetchError reports a failed URL fetch.
type FetchError struct {
	URL     string
	Message string
	Cause   error
}

func (e *FetchError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetching %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetching %s: %s", e.URL, e.Message)
}

func (e *FetchError) Unwrap() error { return e.Cause }

// Loader reads job descriptions.
type Loader struct {
	HTTP  *http.Client
	Stdin io.Reader
}

// NewLoader returns a loader with a 30s HTTP timeout reading stdin from os.Stdin.
func NewLoader() *Loader {
	return &Loader{HTTP: &http.Client{Timeout: DefaultTimeout}, Stdin: os.Stdin}
}

// Load resolves source as "-" for stdin, an http(s) URL or a file path.
// HTML content is converted to plain text.
func (l *Loader) Load(ctx context.Context, source string) (string, error) {
	source = strings.TrimSpace(source)

	switch {
	case source == "":
		return "", fmt.Errorf("job description source is required")
	case source == Stdin:
		data, err := io.ReadAll(l.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading job description from stdin: %w", err)
		}
		return normalize(string(data), "")
	case isURL(source):
		return l.fetch(ctx, source)
	}

	data, err := os.ReadFile(source)
	if err != nil {
		return "", fmt.Errorf("reading job description %q: %w", source, err)
	}

	contentType := ""
	switch strings.ToLower(filepath.Ext(source)) {
	case ".html", ".htm":
		contentType = "text/html"
	}
	return normalize(string(data), contentType)
}

func (l *Loader) fetch(ctx context.Context, rawURL string) (string, error) {
	client := l.HTTP
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", &FetchError{URL: rawURL, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("User-Agent", defaultUserAgent)
	req.Header.Set("Accept", "text/html,text/plain;q=0.9,*/*;q=0.5")

	resp, err := client.Do(req)
	if err != nil {
		return "", &FetchError{URL: rawURL, Message: "HTTP request failed", Cause: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes+1))
	if err != nil {
		return "", &FetchError{URL: rawURL, Message: "failed to read response body", Cause: err}
	}
	if len(body) > maxPageBytes {
		return "", &FetchError{URL: rawURL, Message: fmt.Sprintf("page exceeds %d bytes", maxPageBytes)}
	}
	if resp.StatusCode != http.StatusOK {
		return "", &FetchError{URL: rawURL, Message: fmt.Sprintf("HTTP status %d", resp.StatusCode)}
	}

	return normalize(string(body), resp.Header.Get("Content-Type"))
}

func normalize(content, contentType string) (string, error) {
	if looksLikeHTML(content, contentType) {
		text, err := HTMLToText(content)
		if err != nil {
			return "", err
		}
		return text, nil
	}
	return cleanWhitespace(content), nil
}

// HTMLToText extracts readable text from an HTML page, preferring the job
// posting container when one is present.
func HTMLToText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find(noiseSelector).Remove()
	doc.Find(blockSelector).AppendHtml("\n")

	content := doc.Find("body")
	for _, selector := range contentSelectors {
		if selection := doc.Find(selector); selection.Length() > 0 {
			content = selection.First()
			break
		}
	}

	return cleanWhitespace(content.Text()), nil
}

func looksLikeHTML(content, contentType string) bool {
	if strings.Contains(strings.ToLower(contentType), "html") {
		return true
	}
	if contentType != "" {
		return false
	}
	head := strings.ToLower(strings.TrimSpace(content))
	return strings.HasPrefix(head, "<!doctype html") || strings.HasPrefix(head, "<html")
}

func isURL(source string) bool {
	u, err := url.Parse(source)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func cleanWhitespace(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}
