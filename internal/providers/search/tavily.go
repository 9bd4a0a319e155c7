package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sandevgo/jarvis/internal/core"
	"github.com/sandevgo/jarvis/pkg/retry"
)

const tavilyBaseURL = "https://api.tavily.com"

// Tavily asks the Tavily search API for a single result and returns its content.
type Tavily struct {
	client  *http.Client
	retrier *retry.Retrier
	baseURL string
	apiKey  string
}

func NewTavily(apiKey string, opts ...Option) *Tavily {
	o := applyOptions(opts)
	return &Tavily{
		client:  &http.Client{Timeout: o.timeout},
		retrier: retry.NewRetrier(o.retry),
		baseURL: strings.TrimRight(o.baseURL(tavilyBaseURL), "/"),
		apiKey:  apiKey,
	}
}

func (t *Tavily) Search(ctx context.Context, query string) (string, error) {
	payload, err := json.Marshal(map[string]any{
		"api_key":     t.apiKey,
		"query":       query,
		"max_results": 1,
	})
	if err != nil {
		return "", fmt.Errorf("marshal: %w", err)
	}

	var snippet string
	err = t.retrier.Do(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/search", strings.NewReader(string(payload)))
		if err != nil {
			return retry.Permanent(fmt.Errorf("create request: %w", err))
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("User-Agent", core.JarvisUserAgent)

		resp, err := t.client.Do(req)
		if err != nil {
			return fmt.Errorf("request: %w", err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
		if err != nil {
			return fmt.Errorf("read body: %w", err)
		}

		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			return fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
		}
		if resp.StatusCode >= 400 {
			return retry.Permanent(fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body)))
		}

		var result struct {
			Results []struct {
				Title   string `json:"title"`
				URL     string `json:"url"`
				Content string `json:"content"`
			} `json:"results"`
		}
		if err := json.Unmarshal(body, &result); err != nil {
			return retry.Permanent(fmt.Errorf("decode: %w", err))
		}
		if len(result.Results) > 0 {
			snippet = result.Results[0].Content
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	return cleanSnippet(snippet), nil
}

var _ core.WebSearcher = (*Tavily)(nil)
