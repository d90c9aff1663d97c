package repository

import (
	"context"

	"golang-stock-alerts/internal/entity"

	"gorm.io/gorm"
)

// StockPriceRepository defines the interface for price record operations.
type StockPriceRepository interface {
	BulkCreate(ctx context.Context, prices []entity.StockPrice) error
	FindLatest(ctx context.Context, symbol string) (*entity.StockPrice, error)
}

// NewStockPriceRepository creates a new GORM-based stock price repository.
func NewStockPriceRepository(db *gorm.DB) StockPriceRepository {
	return &stockPriceRepository{db: db}
}

type stockPriceRepository struct {
	db *gorm.DB
}

// BulkCreate appends a batch of price records in a single insert.
func (r *stockPriceRepository) BulkCreate(ctx context.Context, prices []entity.StockPrice) error {
	if len(prices) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&prices).Error
}

// FindLatest retrieves the newest price record for a symbol.
func (r *stockPriceRepository) FindLatest(ctx context.Context, symbol string) (*entity.StockPrice, error) {
	var price entity.StockPrice
	if err := r.db.WithContext(ctx).Where("symbol = ?", symbol).Order("timestamp DESC").First(&price).Error; err != nil {
		return nil, err
	}
	return &price, nil
}
