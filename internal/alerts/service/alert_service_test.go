package service

import (
	"context"
	"testing"

	"golang-stock-alerts/internal/alerts/dto"
	"golang-stock-alerts/internal/entity"
	"golang-stock-alerts/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var testSymbols = []string{"AAPL", "GOOGL", "MSFT", "TSLA"}

func TestCreateAlertValidation(t *testing.T) {
	tests := []struct {
		name    string
		req     dto.CreateAlertRequest
		wantErr bool
	}{
		{
			name: "valid threshold alert",
			req:  dto.CreateAlertRequest{Symbol: "AAPL", AlertType: "threshold", Condition: "above", TargetPrice: dec(t, "100")},
		},
		{
			name: "valid duration alert",
			req:  dto.CreateAlertRequest{Symbol: "TSLA", AlertType: "duration", Condition: "below", TargetPrice: dec(t, "50"), DurationMinutes: utils.ToPointer(10)},
		},
		{
			name:    "duration alert without window",
			req:     dto.CreateAlertRequest{Symbol: "TSLA", AlertType: "duration", Condition: "below", TargetPrice: dec(t, "50")},
			wantErr: true,
		},
		{
			name:    "duration alert with non-positive window",
			req:     dto.CreateAlertRequest{Symbol: "TSLA", AlertType: "duration", Condition: "below", TargetPrice: dec(t, "50"), DurationMinutes: utils.ToPointer(0)},
			wantErr: true,
		},
		{
			name:    "symbol outside the universe",
			req:     dto.CreateAlertRequest{Symbol: "DOGE", AlertType: "threshold", Condition: "above", TargetPrice: dec(t, "1")},
			wantErr: true,
		},
		{
			name:    "unknown alert type",
			req:     dto.CreateAlertRequest{Symbol: "AAPL", AlertType: "eventually", Condition: "above", TargetPrice: dec(t, "100")},
			wantErr: true,
		},
		{
			name:    "unknown condition",
			req:     dto.CreateAlertRequest{Symbol: "AAPL", AlertType: "threshold", Condition: "near", TargetPrice: dec(t, "100")},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeAlertRepo{}
			svc := NewAlertService(repo, &fakeNotificationLogRepo{}, testLogger(), testSymbols)

			resp, err := svc.CreateAlert(context.Background(), 1, &tt.req)

			if tt.wantErr {
				require.ErrorIs(t, err, ErrValidation)
				assert.Empty(t, repo.alerts)
				return
			}
			require.NoError(t, err)
			assert.NotZero(t, resp.ID)
			assert.False(t, resp.Triggered)
		})
	}
}

func TestCreateAlertIgnoresDurationForThreshold(t *testing.T) {
	repo := &fakeAlertRepo{}
	svc := NewAlertService(repo, &fakeNotificationLogRepo{}, testLogger(), testSymbols)

	resp, err := svc.CreateAlert(context.Background(), 1, &dto.CreateAlertRequest{
		Symbol:          "AAPL",
		AlertType:       "threshold",
		Condition:       "above",
		TargetPrice:     dec(t, "100"),
		DurationMinutes: utils.ToPointer(30),
	})

	require.NoError(t, err)
	assert.Nil(t, resp.DurationMinutes)
}

func TestGetAlertsScopedToOwnerAndFiltered(t *testing.T) {
	repo := &fakeAlertRepo{}
	svc := NewAlertService(repo, &fakeNotificationLogRepo{}, testLogger(), testSymbols)
	ctx := context.Background()

	_, err := svc.CreateAlert(ctx, 1, &dto.CreateAlertRequest{Symbol: "AAPL", AlertType: "threshold", Condition: "above", TargetPrice: dec(t, "100")})
	require.NoError(t, err)
	_, err = svc.CreateAlert(ctx, 2, &dto.CreateAlertRequest{Symbol: "MSFT", AlertType: "threshold", Condition: "above", TargetPrice: dec(t, "300")})
	require.NoError(t, err)

	own, err := svc.GetAlerts(ctx, 1, nil)
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, "AAPL", own[0].Symbol)

	triggered := true
	fired, err := svc.GetAlerts(ctx, 1, &triggered)
	require.NoError(t, err)
	assert.Empty(t, fired)
}

func TestGetAlertByIDForeignOwner(t *testing.T) {
	repo := &fakeAlertRepo{}
	svc := NewAlertService(repo, &fakeNotificationLogRepo{}, testLogger(), testSymbols)
	ctx := context.Background()

	created, err := svc.CreateAlert(ctx, 1, &dto.CreateAlertRequest{Symbol: "AAPL", AlertType: "threshold", Condition: "above", TargetPrice: dec(t, "100")})
	require.NoError(t, err)

	_, err = svc.GetAlertByID(ctx, 2, created.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestGetAlertNotificationsScopedToOwner(t *testing.T) {
	repo := &fakeAlertRepo{}
	logRepo := &fakeNotificationLogRepo{}
	svc := NewAlertService(repo, logRepo, testLogger(), testSymbols)
	ctx := context.Background()

	created, err := svc.CreateAlert(ctx, 1, &dto.CreateAlertRequest{Symbol: "AAPL", AlertType: "threshold", Condition: "above", TargetPrice: dec(t, "100")})
	require.NoError(t, err)

	require.NoError(t, logRepo.Create(ctx, &entity.NotificationLog{
		AlertID:   created.ID,
		Channel:   entity.ChannelEmail,
		Recipient: "owner@example.com",
		Status:    entity.NotificationSent,
	}))

	logs, err := svc.GetAlertNotifications(ctx, 1, created.ID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "email", logs[0].Channel)
	assert.Equal(t, "sent", logs[0].Status)

	_, err = svc.GetAlertNotifications(ctx, 2, created.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestDeleteAlert(t *testing.T) {
	repo := &fakeAlertRepo{}
	svc := NewAlertService(repo, &fakeNotificationLogRepo{}, testLogger(), testSymbols)
	ctx := context.Background()

	created, err := svc.CreateAlert(ctx, 1, &dto.CreateAlertRequest{Symbol: "AAPL", AlertType: "threshold", Condition: "above", TargetPrice: dec(t, "100")})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteAlert(ctx, 1, created.ID))
	assert.ErrorIs(t, svc.DeleteAlert(ctx, 1, created.ID), gorm.ErrRecordNotFound)
}
