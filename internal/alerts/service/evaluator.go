package service

import (
	"time"

	"golang-stock-alerts/internal/alerts/dto"
	"golang-stock-alerts/internal/entity"
	"golang-stock-alerts/pkg/logger"

	"github.com/shopspring/decimal"
)

// EvaluationResult pairs an alert with what the evaluator changed on it.
// Delta holds exactly the columns to persist; Fired marks alerts that
// transitioned to triggered this tick.
type EvaluationResult struct {
	Alert *entity.Alert
	Price decimal.Decimal
	Fired bool
	Delta dto.AlertStateDelta
}

// Evaluator decides, per alert, whether a price snapshot fires it. It owns
// the duration-tracking state machine and performs no I/O: state changes
// are returned as explicit deltas for the caller to persist.
type Evaluator struct {
	log *logger.Logger
}

// NewEvaluator creates a new Evaluator.
func NewEvaluator(log *logger.Logger) *Evaluator {
	return &Evaluator{log: log}
}

// Evaluate runs every non-triggered alert against the snapshot. Alerts
// whose symbol is absent from the snapshot are skipped without error, as
// are alerts already triggered. Only alerts with a state change appear in
// the result.
func (e *Evaluator) Evaluate(snapshot dto.PriceSnapshot, alerts []entity.Alert, now time.Time) []EvaluationResult {
	var results []EvaluationResult

	for i := range alerts {
		alert := &alerts[i]
		if alert.Triggered {
			continue
		}

		price, ok := snapshot[alert.Symbol]
		if !ok {
			// Feed omitted the symbol this tick. Not an error.
			continue
		}

		conditionTrue := conditionHolds(alert.Condition, price, alert.TargetPrice)

		switch alert.AlertType {
		case entity.AlertTypeThreshold:
			if conditionTrue {
				results = append(results, e.fire(alert, price, now))
			}
		case entity.AlertTypeDuration:
			if result, changed := e.evaluateDuration(alert, price, conditionTrue, now); changed {
				results = append(results, result)
			}
		}
	}

	return results
}

// conditionHolds reports whether the price satisfies the alert condition.
// Comparison is inclusive on both sides: a price exactly at the target
// counts as true for above and below alike.
func conditionHolds(condition entity.AlertCondition, price, target decimal.Decimal) bool {
	switch condition {
	case entity.ConditionAbove:
		return price.GreaterThanOrEqual(target)
	case entity.ConditionBelow:
		return price.LessThanOrEqual(target)
	default:
		return false
	}
}

// evaluateDuration advances the per-alert tracking state machine. The
// condition must hold continuously for the configured window, measured
// from the first tick of the current unbroken run; a single false tick
// resets the clock.
func (e *Evaluator) evaluateDuration(alert *entity.Alert, price decimal.Decimal, conditionTrue bool, now time.Time) (EvaluationResult, bool) {
	if conditionTrue {
		if alert.ConditionStartTime == nil {
			start := now
			alert.ConditionStartTime = &start
			return EvaluationResult{
				Alert: alert,
				Price: price,
				Delta: dto.AlertStateDelta{
					AlertID: alert.ID,
					Fields:  map[string]interface{}{"condition_start_time": start},
				},
			}, true
		}
		if now.Sub(*alert.ConditionStartTime) >= alert.Duration() {
			return e.fire(alert, price, now), true
		}
		// Still tracking, window not yet elapsed.
		return EvaluationResult{}, false
	}

	if alert.ConditionStartTime != nil {
		alert.ConditionStartTime = nil
		return EvaluationResult{
			Alert: alert,
			Price: price,
			Delta: dto.AlertStateDelta{
				AlertID: alert.ID,
				Fields:  map[string]interface{}{"condition_start_time": nil},
			},
		}, true
	}

	return EvaluationResult{}, false
}

// fire marks the alert triggered. The transition is one-way: triggered
// alerts are excluded from all future evaluation.
func (e *Evaluator) fire(alert *entity.Alert, price decimal.Decimal, now time.Time) EvaluationResult {
	triggeredAt := now
	alert.Triggered = true
	alert.TriggeredAt = &triggeredAt

	e.log.Debug("Alert fired",
		logger.IntField("alert_id", int(alert.ID)),
		logger.StringField("symbol", alert.Symbol),
		logger.StringField("price", price.String()))

	return EvaluationResult{
		Alert: alert,
		Price: price,
		Fired: true,
		Delta: dto.AlertStateDelta{
			AlertID: alert.ID,
			Fields: map[string]interface{}{
				"triggered":    true,
				"triggered_at": triggeredAt,
			},
		},
	}
}
