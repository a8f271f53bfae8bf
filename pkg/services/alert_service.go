package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/star-emergency/alert-gateway/pkg/models"
	"github.com/star-emergency/alert-gateway/pkg/store"
	"github.com/star-emergency/alert-gateway/pkg/ws"
)

// AlertService owns the server-side alert lifecycle: raising, handling and
// completing alerts, and fanning new alerts out on the push channel.
type AlertService struct {
	store store.Store
	hub   *ws.Hub
}

// NewAlertService creates an alert service.
func NewAlertService(s store.Store, hub *ws.Hub) *AlertService {
	return &AlertService{store: s, hub: hub}
}

// RaiseAlert creates an alert from a field device request. The contact
// snapshot is captured from the account row at raise time and never updated
// afterwards. The stored alert is broadcast to connected consoles.
func (s *AlertService) RaiseAlert(ctx context.Context, req *models.RaiseAlertRequest) (*models.Alert, error) {
	account, err := s.store.GetAccount(ctx, req.AccountNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve account %s: %w", req.AccountNumber, err)
	}
	if account.Status != models.AccountStatusActivated {
		return nil, fmt.Errorf("account %s is not activated", req.AccountNumber)
	}

	alert := &models.Alert{
		AlertID:       uuid.New().String(),
		AccountNumber: account.AccountNumber,
		AccountName:   account.AccountName,
		FirstName:     account.FirstName,
		LastName:      account.LastName,
		PhoneNumbers:  strings.Join(account.PhoneNumbers, ","),
		Latitude:      req.Latitude,
		Longitude:     req.Longitude,
		Timestamp:     time.Now().UTC(),
		Status:        models.AlertStatusNew,
	}
	if err := s.store.InsertAlert(ctx, alert); err != nil {
		return nil, err
	}

	s.hub.BroadcastAlert(alert)
	logrus.Infof("Alert %s raised by account %s", alert.AlertID, alert.AccountNumber)
	return alert, nil
}

// ListOpenAlerts returns all non-completed alerts for the snapshot poll.
func (s *AlertService) ListOpenAlerts(ctx context.Context) ([]models.Alert, error) {
	return s.store.ListOpenAlerts(ctx)
}

// HandleAlert records that an operator has begun handling the alert. The
// transition is idempotent: a second operator selecting the same alert gets a
// success with no state change, last write wins on the selection itself.
func (s *AlertService) HandleAlert(ctx context.Context, alertID string) error {
	updated, err := s.store.MarkAlertHandled(ctx, alertID, time.Now().UTC())
	if err != nil {
		return err
	}
	if !updated {
		logrus.Debugf("Alert %s already handled, no-op", alertID)
	}
	return nil
}

// CompleteAlert marks an alert as completed. Idempotent.
func (s *AlertService) CompleteAlert(ctx context.Context, alertID string) error {
	updated, err := s.store.CompleteAlert(ctx, alertID)
	if err != nil {
		return err
	}
	if !updated {
		logrus.Debugf("Alert %s already completed, no-op", alertID)
	}
	return nil
}

// ListAlertRecords returns the historical handled and completed alerts.
func (s *AlertService) ListAlertRecords(ctx context.Context) ([]models.Alert, error) {
	return s.store.ListAlertRecords(ctx)
}
