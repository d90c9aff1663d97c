package dto

import (
	"github.com/shopspring/decimal"
)

// PriceSnapshot maps symbol to the price observed in a single tick. It is
// built once per cycle and read-only thereafter.
type PriceSnapshot map[string]decimal.Decimal

// FeedQuote is one entry of the upstream quote API response.
type FeedQuote struct {
	Symbol string           `json:"symbol"`
	Price  *decimal.Decimal `json:"price"`
}

// AlertStateDelta names the alert columns the evaluator changed so the
// caller can persist only what moved.
type AlertStateDelta struct {
	AlertID uint
	Fields  map[string]interface{}
}

// DeliveryOutcome is the terminal result of one notification attempt.
type DeliveryOutcome struct {
	AlertID   uint   `json:"alert_id"`
	Channel   string `json:"channel"`
	Recipient string `json:"recipient"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
}

// LatestPrice is the most recent known quote for a symbol.
type LatestPrice struct {
	Symbol    string          `json:"symbol"`
	Price     decimal.Decimal `json:"price"`
	Timestamp int64           `json:"timestamp"`
}
