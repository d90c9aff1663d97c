package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang-stock-alerts/internal/alerts/dto"
	"golang-stock-alerts/internal/alerts/service"
	"golang-stock-alerts/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeAlertService struct {
	alerts map[uint][]*dto.AlertResponse
	nextID uint
}

func (f *fakeAlertService) CreateAlert(_ context.Context, userID uint, req *dto.CreateAlertRequest) (*dto.AlertResponse, error) {
	if req.AlertType == "duration" && req.DurationMinutes == nil {
		return nil, fmt.Errorf("%w: duration_minutes is required for duration alerts", service.ErrValidation)
	}
	f.nextID++
	resp := &dto.AlertResponse{
		ID:          f.nextID,
		Symbol:      req.Symbol,
		AlertType:   req.AlertType,
		Condition:   req.Condition,
		TargetPrice: req.TargetPrice,
	}
	if f.alerts == nil {
		f.alerts = make(map[uint][]*dto.AlertResponse)
	}
	f.alerts[userID] = append(f.alerts[userID], resp)
	return resp, nil
}

func (f *fakeAlertService) GetAlerts(_ context.Context, userID uint, triggered *bool) ([]*dto.AlertResponse, error) {
	var out []*dto.AlertResponse
	for _, alert := range f.alerts[userID] {
		if triggered != nil && alert.Triggered != *triggered {
			continue
		}
		out = append(out, alert)
	}
	return out, nil
}

func (f *fakeAlertService) GetAlertByID(_ context.Context, userID, id uint) (*dto.AlertResponse, error) {
	for _, alert := range f.alerts[userID] {
		if alert.ID == id {
			return alert, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeAlertService) GetAlertNotifications(_ context.Context, userID, id uint) ([]*dto.NotificationLogResponse, error) {
	if _, err := f.GetAlertByID(context.Background(), userID, id); err != nil {
		return nil, err
	}
	return []*dto.NotificationLogResponse{{ID: 1, Channel: "email", Recipient: "owner@example.com", Status: "sent"}}, nil
}

func (f *fakeAlertService) DeleteAlert(_ context.Context, userID, id uint) error {
	for i, alert := range f.alerts[userID] {
		if alert.ID == id {
			f.alerts[userID] = append(f.alerts[userID][:i], f.alerts[userID][i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func handlerFixture(svc service.AlertService) *echo.Echo {
	e := echo.New()
	h := NewAlertHandler(svc, &logger.Logger{Logger: zap.NewNop()})
	h.RegisterRoutes(e.Group("/api/v1/alerts"))
	return e
}

func doRequest(e *echo.Echo, method, target, userID, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if userID != "" {
		req.Header.Set(HeaderUserID, userID)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestCreateAlertHandler(t *testing.T) {
	e := handlerFixture(&fakeAlertService{})

	rec := doRequest(e, http.MethodPost, "/api/v1/alerts", "1",
		`{"symbol":"AAPL","alert_type":"threshold","condition":"above","target_price":"100.50"}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp dto.AlertResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "AAPL", resp.Symbol)
	assert.NotZero(t, resp.ID)
}

func TestCreateAlertHandlerValidationFailure(t *testing.T) {
	e := handlerFixture(&fakeAlertService{})

	rec := doRequest(e, http.MethodPost, "/api/v1/alerts", "1",
		`{"symbol":"AAPL","alert_type":"duration","condition":"above","target_price":"100"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "duration_minutes")
}

func TestCreateAlertHandlerMissingOwner(t *testing.T) {
	e := handlerFixture(&fakeAlertService{})

	rec := doRequest(e, http.MethodPost, "/api/v1/alerts", "",
		`{"symbol":"AAPL","alert_type":"threshold","condition":"above","target_price":"100"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetAlertsHandlerScopedToOwner(t *testing.T) {
	svc := &fakeAlertService{}
	e := handlerFixture(svc)

	doRequest(e, http.MethodPost, "/api/v1/alerts", "1",
		`{"symbol":"AAPL","alert_type":"threshold","condition":"above","target_price":"100"}`)

	rec := doRequest(e, http.MethodGet, "/api/v1/alerts", "2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "null\n", rec.Body.String())

	rec = doRequest(e, http.MethodGet, "/api/v1/alerts", "1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var alerts []dto.AlertResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &alerts))
	assert.Len(t, alerts, 1)
}

func TestGetAlertNotificationsHandler(t *testing.T) {
	svc := &fakeAlertService{}
	e := handlerFixture(svc)

	doRequest(e, http.MethodPost, "/api/v1/alerts", "1",
		`{"symbol":"AAPL","alert_type":"threshold","condition":"above","target_price":"100"}`)

	rec := doRequest(e, http.MethodGet, "/api/v1/alerts/1/notifications", "1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var logs []dto.NotificationLogResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &logs))
	require.Len(t, logs, 1)
	assert.Equal(t, "email", logs[0].Channel)

	rec = doRequest(e, http.MethodGet, "/api/v1/alerts/1/notifications", "2", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteAlertHandlerNotFound(t *testing.T) {
	e := handlerFixture(&fakeAlertService{})

	rec := doRequest(e, http.MethodDelete, "/api/v1/alerts/42", "1", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
