package search

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"

	"github.com/sandevgo/jarvis/internal/core"
	"github.com/sandevgo/jarvis/pkg/retry"
)

const duckDuckGoBaseURL = "https://html.duckduckgo.com"

var reSnippet = regexp.MustCompile(`<a[^>]*class="[^"]*result__snippet[^"]*"[^>]*>([\s\S]*?)</a>`)

// DuckDuckGo scrapes the keyless HTML endpoint and returns the first result snippet.
type DuckDuckGo struct {
	client  *http.Client
	retrier *retry.Retrier
	baseURL string
}

func NewDuckDuckGo(opts ...Option) *DuckDuckGo {
	o := applyOptions(opts)
	return &DuckDuckGo{
		client:  &http.Client{Timeout: o.timeout},
		retrier: retry.NewRetrier(o.retry),
		baseURL: o.baseURL(duckDuckGoBaseURL),
	}
}

func (d *DuckDuckGo) Search(ctx context.Context, query string) (string, error) {
	searchURL := fmt.Sprintf("%s/html/?q=%s", d.baseURL, url.QueryEscape(query))

	var page string
	err := d.retrier.Do(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
		if err != nil {
			return retry.Permanent(fmt.Errorf("create request: %w", err))
		}
		req.Header.Set("User-Agent", core.JarvisUserAgent)

		resp, err := d.client.Do(req)
		if err != nil {
			return fmt.Errorf("request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 400 {
			return fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
		}

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
		if err != nil {
			return fmt.Errorf("read body: %w", err)
		}
		page = string(body)
		return nil
	})
	if err != nil {
		return "", err
	}

	return extractFirstSnippet(page), nil
}

func extractFirstSnippet(page string) string {
	m := reSnippet.FindStringSubmatch(page)
	if m == nil {
		return ""
	}
	return cleanSnippet(m[1])
}

var _ core.WebSearcher = (*DuckDuckGo)(nil)
