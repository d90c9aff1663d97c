package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang-stock-alerts/internal/alerts/config"
	"golang-stock-alerts/internal/alerts/dto"
	"golang-stock-alerts/pkg/logger"
)

// QuoteRepository defines the interface for fetching current prices from
// the external feed.
type QuoteRepository interface {
	Fetch(ctx context.Context) (dto.PriceSnapshot, error)
}

type quoteRepository struct {
	cfg        *config.Config
	log        *logger.Logger
	httpClient *http.Client
	universe   map[string]struct{}
}

// NewQuoteRepository creates a quote repository against the configured feed.
// The HTTP client timeout bounds the fetch so a hung upstream cannot stall
// subsequent ticks.
func NewQuoteRepository(cfg *config.Config, log *logger.Logger) QuoteRepository {
	timeout := 10 * time.Second
	if cfg.Feed.Timeout != "" {
		if parsed, err := time.ParseDuration(cfg.Feed.Timeout); err == nil {
			timeout = parsed
		}
	}

	universe := make(map[string]struct{}, len(cfg.Feed.Symbols))
	for _, symbol := range cfg.Feed.Symbols {
		universe[symbol] = struct{}{}
	}

	return &quoteRepository{
		cfg: cfg,
		log: log,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		universe: universe,
	}
}

// Fetch retrieves quotes for the configured symbol universe. A malformed
// payload yields an empty snapshot rather than an error; entries outside
// the universe are dropped.
func (r *quoteRepository) Fetch(ctx context.Context) (dto.PriceSnapshot, error) {
	url := fmt.Sprintf("%s/%s?apikey=%s", strings.TrimRight(r.cfg.Feed.BaseURL, "/"), strings.Join(r.cfg.Feed.Symbols, ","), r.cfg.Feed.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch quotes: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("quote feed returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read quote response: %w", err)
	}

	var quotes []dto.FeedQuote
	if err := json.Unmarshal(body, &quotes); err != nil {
		// A non-list or otherwise malformed body counts as "no data this
		// tick", the same as an empty response.
		r.log.Warn("Unexpected quote feed payload", logger.ErrorField(err))
		return dto.PriceSnapshot{}, nil
	}

	snapshot := make(dto.PriceSnapshot, len(quotes))
	for _, quote := range quotes {
		if quote.Symbol == "" || quote.Price == nil {
			continue
		}
		if _, ok := r.universe[quote.Symbol]; !ok {
			continue
		}
		snapshot[quote.Symbol] = *quote.Price
	}

	return snapshot, nil
}
