package repository

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang-stock-alerts/internal/alerts/config"
	"golang-stock-alerts/pkg/logger"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testLogger() *logger.Logger {
	return &logger.Logger{Logger: zap.NewNop()}
}

func quoteRepoFixture(serverURL string) QuoteRepository {
	cfg := &config.Config{
		Feed: config.Feed{
			BaseURL: serverURL,
			APIKey:  "test-key",
			Timeout: "2s",
			Symbols: []string{"AAPL", "MSFT", "TSLA"},
		},
	}
	return NewQuoteRepository(cfg, testLogger())
}

func TestFetchParsesQuotes(t *testing.T) {
	var gotPath, gotKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("apikey")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"symbol": "AAPL", "price": 189.98},
			{"symbol": "MSFT", "price": 415.5},
			{"symbol": "SPY", "price": 500},
			{"symbol": "", "price": 1},
			{"symbol": "TSLA"}
		]`))
	}))
	defer server.Close()

	snapshot, err := quoteRepoFixture(server.URL).Fetch(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "/AAPL,MSFT,TSLA", gotPath)
	assert.Equal(t, "test-key", gotKey)

	// SPY is outside the universe, the unnamed entry and the priceless
	// TSLA entry are malformed; only the two valid pairs survive.
	require.Len(t, snapshot, 2)
	apple, err := decimal.NewFromString("189.98")
	require.NoError(t, err)
	assert.True(t, snapshot["AAPL"].Equal(apple))
}

func TestFetchMalformedPayloadYieldsEmptySnapshot(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"object instead of list", `{"Error Message": "Invalid API key"}`},
		{"plain text", `service unavailable`},
		{"empty list", `[]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			snapshot, err := quoteRepoFixture(server.URL).Fetch(context.Background())

			require.NoError(t, err)
			assert.Empty(t, snapshot)
		})
	}
}

func TestFetchHTTPErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := quoteRepoFixture(server.URL).Fetch(context.Background())

	assert.Error(t, err)
}

func TestFetchUnreachableFeed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	_, err := quoteRepoFixture(server.URL).Fetch(context.Background())

	assert.Error(t, err)
}
