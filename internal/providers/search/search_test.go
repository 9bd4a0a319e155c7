package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sandevgo/jarvis/internal/config"
	"github.com/sandevgo/jarvis/pkg/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetry() *retry.Config {
	return &retry.Config{
		MaxRetries:    2,
		BackoffFactor: 1,
		InitialDelay:  time.Millisecond,
		MaxDelay:      5 * time.Millisecond,
	}
}

func TestTavily_Search(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		want      string
		wantErr   bool
		wantCalls int32
	}{
		{
			name:      "first result content",
			status:    http.StatusOK,
			body:      `{"results":[{"title":"Paris","content":"Sunny,  22 degrees."},{"content":"ignored"}]}`,
			want:      "Sunny, 22 degrees.",
			wantCalls: 1,
		},
		{
			name:      "no results",
			status:    http.StatusOK,
			body:      `{"results":[]}`,
			want:      "",
			wantCalls: 1,
		},
		{
			name:      "bad key is not retried",
			status:    http.StatusUnauthorized,
			body:      `{"detail":"invalid api key"}`,
			wantErr:   true,
			wantCalls: 1,
		},
		{
			name:      "server error is retried",
			status:    http.StatusBadGateway,
			body:      `oops`,
			wantErr:   true,
			wantCalls: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&calls, 1)
				assert.Equal(t, "/search", r.URL.Path)

				var req map[string]any
				_ = json.NewDecoder(r.Body).Decode(&req)
				assert.Equal(t, "key", req["api_key"])
				assert.Equal(t, "weather in Paris", req["query"])
				assert.EqualValues(t, 1, req["max_results"])

				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			s := NewTavily("key", WithBaseURL(srv.URL), WithRetry(fastRetry()))
			got, err := s.Search(context.Background(), "weather in Paris")

			assert.Equal(t, tt.wantCalls, atomic.LoadInt32(&calls))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDuckDuckGo_Search(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/html/", r.URL.Path)
		assert.Equal(t, "go release", r.URL.Query().Get("q"))
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><body>
<div class="result"><a class="result__a" href="https://go.dev">Go</a>
<a class="result__snippet" href="https://go.dev">Go 1.25 is <span>released</span> &amp; ready.</a></div>
<div class="result"><a class="result__snippet" href="#">second</a></div>
</body></html>`)
	}))
	defer srv.Close()

	s := NewDuckDuckGo(WithBaseURL(srv.URL), WithRetry(fastRetry()))
	got, err := s.Search(context.Background(), "go release")
	require.NoError(t, err)
	assert.Equal(t, "Go 1.25 is released & ready.", got)
}

func TestExtractFirstSnippet_NoResults(t *testing.T) {
	assert.Equal(t, "", extractFirstSnippet(`<html><body>No results.</body></html>`))
}

func TestCleanSnippet(t *testing.T) {
	assert.Equal(t, "a b c", cleanSnippet("  a\n b\t\tc "))
	assert.Equal(t, "plain", cleanSnippet("plain"))
}

func TestNewSearcher(t *testing.T) {
	ctx := context.Background()

	_, err := NewSearcher(ctx, &config.SearchConfig{Provider: "tavily"})
	assert.Error(t, err)

	s, err := NewSearcher(ctx, &config.SearchConfig{Provider: "tavily", TavilyAPIKey: "k"})
	require.NoError(t, err)
	assert.IsType(t, &Tavily{}, s)

	s, err = NewSearcher(ctx, &config.SearchConfig{Provider: "duckduckgo"})
	require.NoError(t, err)
	assert.IsType(t, &DuckDuckGo{}, s)

	_, err = NewSearcher(ctx, &config.SearchConfig{Provider: "bing"})
	assert.Error(t, err)
}
