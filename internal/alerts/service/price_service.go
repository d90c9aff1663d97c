package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"golang-stock-alerts/internal/alerts/dto"
	"golang-stock-alerts/internal/alerts/repository"
	"golang-stock-alerts/pkg/logger"
	redisPkg "golang-stock-alerts/pkg/redis"

	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
)

// ErrUnknownSymbol is returned for symbols outside the configured universe.
var ErrUnknownSymbol = errors.New("unknown symbol")

// PriceService serves the latest known quote for a symbol: process cache
// first, then the Redis last-price hash, then the newest persisted record.
type PriceService interface {
	GetLatestPrice(ctx context.Context, symbol string) (*dto.LatestPrice, error)
}

// NewPriceService creates a new price lookup service.
func NewPriceService(log *logger.Logger, priceRepo repository.StockPriceRepository, redisClient *redisPkg.Client, symbols []string) PriceService {
	universe := make(map[string]struct{}, len(symbols))
	for _, symbol := range symbols {
		universe[symbol] = struct{}{}
	}
	return &priceService{
		logger:        log,
		priceRepo:     priceRepo,
		redisClient:   redisClient,
		inmemoryCache: cache.New(5*time.Second, time.Minute),
		universe:      universe,
	}
}

type priceService struct {
	logger        *logger.Logger
	priceRepo     repository.StockPriceRepository
	redisClient   *redisPkg.Client
	inmemoryCache *cache.Cache
	universe      map[string]struct{}
}

// GetLatestPrice returns the most recent quote for a symbol in the universe.
func (s *priceService) GetLatestPrice(ctx context.Context, symbol string) (*dto.LatestPrice, error) {
	if _, ok := s.universe[symbol]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSymbol, symbol)
	}

	if cached, found := s.inmemoryCache.Get(symbol); found {
		return cached.(*dto.LatestPrice), nil
	}

	if latest := s.fromRedis(ctx, symbol); latest != nil {
		s.inmemoryCache.SetDefault(symbol, latest)
		return latest, nil
	}

	record, err := s.priceRepo.FindLatest(ctx, symbol)
	if err != nil {
		return nil, err
	}

	latest := &dto.LatestPrice{
		Symbol:    record.Symbol,
		Price:     record.Price,
		Timestamp: record.Timestamp.Unix(),
	}
	s.inmemoryCache.SetDefault(symbol, latest)
	return latest, nil
}

func (s *priceService) fromRedis(ctx context.Context, symbol string) *dto.LatestPrice {
	if s.redisClient == nil {
		return nil
	}

	fields, err := s.redisClient.HGetAll(ctx, fmt.Sprintf(redisKeyLastPrice, symbol)).Result()
	if err != nil {
		s.logger.Error("Failed to read last price from redis", logger.ErrorField(err), logger.StringField("symbol", symbol))
		return nil
	}
	if len(fields) == 0 {
		return nil
	}

	price, err := decimal.NewFromString(fields["price"])
	if err != nil {
		return nil
	}
	timestamp, err := strconv.ParseInt(fields["timestamp"], 10, 64)
	if err != nil {
		return nil
	}

	return &dto.LatestPrice{Symbol: symbol, Price: price, Timestamp: timestamp}
}
