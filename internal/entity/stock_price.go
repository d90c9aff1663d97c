package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockPrice is an append-only record of one fetched quote.
type StockPrice struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	Symbol    string          `gorm:"not null;index" json:"symbol"`
	Price     decimal.Decimal `gorm:"type:numeric(12,4);not null" json:"price"`
	Timestamp time.Time       `gorm:"not null;index;autoCreateTime" json:"timestamp"`
}

func (StockPrice) TableName() string {
	return "stock_prices"
}
