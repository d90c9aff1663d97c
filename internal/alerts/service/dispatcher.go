package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"golang-stock-alerts/internal/alerts/dto"
	"golang-stock-alerts/internal/alerts/repository"
	"golang-stock-alerts/internal/entity"
	"golang-stock-alerts/pkg/logger"
	"golang-stock-alerts/pkg/mailer"
	"golang-stock-alerts/pkg/telegram"
	"golang-stock-alerts/pkg/utils"

	"gorm.io/datatypes"
)

// Dispatcher delivers notifications for newly fired alerts. Deliveries are
// independent and best-effort: a transport failure is recorded but never
// reverts the alert's triggered state.
type Dispatcher interface {
	Dispatch(ctx context.Context, fired []EvaluationResult) []dto.DeliveryOutcome
}

// NewDispatcher creates a new Dispatcher. telegramNotifier may be nil when
// the secondary channel is disabled.
func NewDispatcher(log *logger.Logger, mailClient mailer.Mailer, telegramNotifier telegram.Notifier, logRepo repository.NotificationLogRepository) Dispatcher {
	return &dispatcher{
		log:              log,
		mailClient:       mailClient,
		telegramNotifier: telegramNotifier,
		logRepo:          logRepo,
	}
}

type dispatcher struct {
	log              *logger.Logger
	mailClient       mailer.Mailer
	telegramNotifier telegram.Notifier
	logRepo          repository.NotificationLogRepository
}

// Dispatch sends one message per fired alert, concurrently. Outcomes are
// collected for the caller and persisted to the notification log.
func (d *dispatcher) Dispatch(ctx context.Context, fired []EvaluationResult) []dto.DeliveryOutcome {
	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		outcomes []dto.DeliveryOutcome
	)

	for _, result := range fired {
		if !result.Fired {
			continue
		}

		result := result
		wg.Add(1)
		utils.GoSafe(func() {
			defer wg.Done()
			alertOutcomes := d.dispatchOne(ctx, result)
			mu.Lock()
			outcomes = append(outcomes, alertOutcomes...)
			mu.Unlock()
		})
	}

	wg.Wait()
	return outcomes
}

func (d *dispatcher) dispatchOne(ctx context.Context, result EvaluationResult) []dto.DeliveryOutcome {
	alert := result.Alert
	user := alert.User
	var outcomes []dto.DeliveryOutcome

	if user.Email == "" {
		d.log.Warn("Alert owner has no email, skipping notification", logger.IntField("alert_id", int(alert.ID)))
		outcomes = append(outcomes, d.record(ctx, result, entity.ChannelEmail, "", entity.NotificationSkipped, nil))
	} else {
		subject := fmt.Sprintf("Stock Alert Notification: %s", alert.Symbol)
		body := composeAlertMessage(result)
		err := d.mailClient.Send(user.Email, subject, body)
		if err != nil {
			d.log.Error("Failed to send alert email", logger.ErrorField(err), logger.IntField("alert_id", int(alert.ID)), logger.StringField("recipient", user.Email))
			outcomes = append(outcomes, d.record(ctx, result, entity.ChannelEmail, user.Email, entity.NotificationFailed, err))
		} else {
			d.log.Info("Alert email sent", logger.IntField("alert_id", int(alert.ID)), logger.StringField("recipient", user.Email))
			outcomes = append(outcomes, d.record(ctx, result, entity.ChannelEmail, user.Email, entity.NotificationSent, nil))
		}
	}

	if d.telegramNotifier != nil && user.TelegramChatID != nil {
		recipient := fmt.Sprintf("telegram:%d", *user.TelegramChatID)
		err := d.telegramNotifier.SendMessageUser(composeAlertMessage(result), *user.TelegramChatID)
		if err != nil {
			d.log.Error("Failed to send alert telegram message", logger.ErrorField(err), logger.IntField("alert_id", int(alert.ID)))
			outcomes = append(outcomes, d.record(ctx, result, entity.ChannelTelegram, recipient, entity.NotificationFailed, err))
		} else {
			outcomes = append(outcomes, d.record(ctx, result, entity.ChannelTelegram, recipient, entity.NotificationSent, nil))
		}
	}

	return outcomes
}

// record persists a delivery outcome and maps it to the caller-facing DTO.
// A failure to write the log is itself only logged.
func (d *dispatcher) record(ctx context.Context, result EvaluationResult, channel entity.NotificationChannel, recipient string, status entity.NotificationStatus, deliveryErr error) dto.DeliveryOutcome {
	details, _ := json.Marshal(map[string]interface{}{
		"symbol":         result.Alert.Symbol,
		"target_price":   result.Alert.TargetPrice.String(),
		"observed_price": result.Price.String(),
		"triggered_at":   result.Alert.TriggeredAt,
	})

	logEntry := &entity.NotificationLog{
		AlertID:   result.Alert.ID,
		Channel:   channel,
		Recipient: recipient,
		Status:    status,
		Details:   datatypes.JSON(details),
	}
	if deliveryErr != nil {
		logEntry.ErrorMessage = sql.NullString{String: deliveryErr.Error(), Valid: true}
	}

	if err := d.logRepo.Create(ctx, logEntry); err != nil {
		d.log.Error("Failed to persist notification log", logger.ErrorField(err), logger.IntField("alert_id", int(result.Alert.ID)))
	}

	outcome := dto.DeliveryOutcome{
		AlertID:   result.Alert.ID,
		Channel:   string(channel),
		Recipient: recipient,
		Status:    string(status),
	}
	if deliveryErr != nil {
		outcome.Error = deliveryErr.Error()
	}
	return outcome
}

// composeAlertMessage renders the notification body. The template is
// deterministic for a given alert and observed price; the trigger time is
// shown in the owner's configured timezone.
func composeAlertMessage(result EvaluationResult) string {
	alert := result.Alert
	user := alert.User

	name := user.Name
	if name == "" {
		name = strings.Split(user.Email, "@")[0]
	}

	duration := ""
	if alert.AlertType == entity.AlertTypeDuration && alert.DurationMinutes != nil {
		duration = fmt.Sprintf(" over a period of %d minutes", *alert.DurationMinutes)
	}

	triggeredAt := ""
	if alert.TriggeredAt != nil {
		triggeredAt = utils.FormatTimeIn(*alert.TriggeredAt, user.Timezone)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\n", name)
	fmt.Fprintf(&b, "We are writing to inform you that your stock alert for %s has been triggered.\n\n", alert.Symbol)
	b.WriteString("Alert summary:\n")
	fmt.Fprintf(&b, "Your alert was set to notify you when the price of %s was %s %s%s. ",
		alert.Symbol, alert.Condition, alert.TargetPrice.String(), duration)
	fmt.Fprintf(&b, "At %s, the latest price reached %s, which met your alert criteria (%s alert).\n\n",
		triggeredAt, result.Price.String(), alert.AlertType)
	b.WriteString("You can log in to your account to review this alert or set up new ones as needed.\n\n")
	b.WriteString("Thank you for trusting us to monitor your stocks. If you have any questions or need assistance, please don't hesitate to contact our support team.\n\n")
	b.WriteString("Best regards,\nThe Stock Alerts Team")

	return b.String()
}
