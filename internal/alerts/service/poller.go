package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang-stock-alerts/internal/alerts/config"
	"golang-stock-alerts/internal/alerts/dto"
	"golang-stock-alerts/internal/alerts/repository"
	"golang-stock-alerts/internal/entity"
	"golang-stock-alerts/pkg/logger"
	redisPkg "golang-stock-alerts/pkg/redis"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

const redisKeyLastPrice = "last_price:%s"

// ErrNoQuotes marks a cycle whose fetch produced no usable data. An empty
// and a malformed feed response are deliberately the same failure class.
var ErrNoQuotes = errors.New("no quotes fetched")

// PollerService runs the periodic fetch-evaluate-dispatch cycle.
type PollerService interface {
	Start(ctx context.Context)
	RunCycle(ctx context.Context) error
}

// NewPollerService creates a new poller. A cycle that fails before dispatch
// is retried up to maxAttempts times with a fixed delay; dispatch failures
// never re-run a cycle.
func NewPollerService(
	cfg *config.Config,
	log *logger.Logger,
	quoteRepo repository.QuoteRepository,
	priceRepo repository.StockPriceRepository,
	alertRepo repository.AlertRepository,
	evaluator *Evaluator,
	dispatcher Dispatcher,
	redisClient *redisPkg.Client,
	interval time.Duration,
) PollerService {
	maxAttempts := cfg.Poller.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	retryDelay := time.Minute
	if cfg.Poller.RetryDelay != "" {
		if parsed, err := time.ParseDuration(cfg.Poller.RetryDelay); err == nil {
			retryDelay = parsed
		}
	}

	return &pollerService{
		cfg:         cfg,
		log:         log,
		quoteRepo:   quoteRepo,
		priceRepo:   priceRepo,
		alertRepo:   alertRepo,
		evaluator:   evaluator,
		dispatcher:  dispatcher,
		redisClient: redisClient,
		interval:    interval,
		maxAttempts: maxAttempts,
		retryDelay:  retryDelay,
	}
}

type pollerService struct {
	cfg         *config.Config
	log         *logger.Logger
	quoteRepo   repository.QuoteRepository
	priceRepo   repository.StockPriceRepository
	alertRepo   repository.AlertRepository
	evaluator   *Evaluator
	dispatcher  Dispatcher
	redisClient *redisPkg.Client
	interval    time.Duration
	maxAttempts int
	retryDelay  time.Duration
}

// Start schedules the cycle on a fixed interval. SkipIfStillRunning keeps
// ticks from overlapping, so two evaluations can never race on the same
// alert's tracking state.
func (s *pollerService) Start(ctx context.Context) {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(fmt.Sprintf("@every %s", s.interval), func() { s.runWithRetry(ctx) }); err != nil {
		s.log.Fatal("Failed to schedule poll cycle", logger.ErrorField(err))
		return
	}

	c.Start()
	s.log.Info("Poller started", logger.Field("interval", s.interval.String()))

	<-ctx.Done()
	<-c.Stop().Done()
	s.log.Info("Poller stopped")
}

// runWithRetry runs one cycle, retrying transient failures a bounded
// number of times before giving up until the next scheduled tick.
func (s *pollerService) runWithRetry(ctx context.Context) {
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		err := s.RunCycle(ctx)
		if err == nil {
			return
		}

		s.log.Error("Poll cycle failed", logger.ErrorField(err), logger.IntField("attempt", attempt), logger.IntField("max_attempts", s.maxAttempts))
		if attempt == s.maxAttempts {
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(s.retryDelay):
		}
	}
}

// RunCycle executes one full tick: fetch, persist prices, evaluate,
// persist state deltas, dispatch. Any error before dispatch aborts the
// cycle with nothing dispatched and is retryable by the caller.
func (s *pollerService) RunCycle(ctx context.Context) error {
	cycleID := uuid.NewString()

	snapshot, err := s.quoteRepo.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("fetch quotes: %w", err)
	}
	if len(snapshot) == 0 {
		return ErrNoQuotes
	}

	now := time.Now()
	records := make([]entity.StockPrice, 0, len(snapshot))
	for symbol, price := range snapshot {
		records = append(records, entity.StockPrice{Symbol: symbol, Price: price, Timestamp: now})
	}
	if err := s.priceRepo.BulkCreate(ctx, records); err != nil {
		return fmt.Errorf("persist prices: %w", err)
	}
	s.log.Debug("Stored stock prices", logger.StringField("cycle_id", cycleID), logger.IntField("count", len(records)))

	s.cacheLastPrices(ctx, snapshot, now)

	alerts, err := s.alertRepo.FindActive(ctx)
	if err != nil {
		return fmt.Errorf("list active alerts: %w", err)
	}

	results := s.evaluator.Evaluate(snapshot, alerts, now)

	deltas := make([]dto.AlertStateDelta, 0, len(results))
	var fired []EvaluationResult
	for _, result := range results {
		deltas = append(deltas, result.Delta)
		if result.Fired {
			fired = append(fired, result)
		}
	}

	if err := s.alertRepo.ApplyDeltas(ctx, deltas); err != nil {
		return fmt.Errorf("apply alert deltas: %w", err)
	}

	// From here on the cycle is committed: dispatch failures are logged by
	// the dispatcher but must not trigger a re-run, or prices would be
	// re-fetched and duration windows double-evaluated.
	if len(fired) > 0 {
		outcomes := s.dispatcher.Dispatch(ctx, fired)
		failed := 0
		for _, outcome := range outcomes {
			if outcome.Status == string(entity.NotificationFailed) {
				failed++
			}
		}
		s.log.Info("Dispatched alert notifications",
			logger.StringField("cycle_id", cycleID),
			logger.IntField("fired", len(fired)),
			logger.IntField("failed_deliveries", failed))
	}

	s.log.Info("Poll cycle complete",
		logger.StringField("cycle_id", cycleID),
		logger.IntField("prices", len(records)),
		logger.IntField("alerts_evaluated", len(alerts)),
		logger.IntField("state_updates", len(deltas)),
		logger.IntField("triggered", len(fired)))

	return nil
}

// cacheLastPrices mirrors the snapshot into Redis for the latest-price
// lookup path. Fire-and-forget: cache errors never fail the cycle.
func (s *pollerService) cacheLastPrices(ctx context.Context, snapshot dto.PriceSnapshot, now time.Time) {
	if s.redisClient == nil {
		return
	}

	pipe := s.redisClient.Pipeline()
	for symbol, price := range snapshot {
		key := fmt.Sprintf(redisKeyLastPrice, symbol)
		pipe.HSet(ctx, key, map[string]interface{}{
			"price":     price.String(),
			"timestamp": now.Unix(),
		})
		pipe.Expire(ctx, key, 2*s.interval)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		s.log.Error("Failed to cache last prices", logger.ErrorField(err))
	}
}
