package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/star-emergency/alert-gateway/pkg/models"
	"github.com/star-emergency/alert-gateway/pkg/store/storetest"
	"github.com/star-emergency/alert-gateway/pkg/ws"
)

func newAlertFixture(t *testing.T) (*AlertService, *storetest.Fake) {
	t.Helper()
	fake := storetest.New()
	hub := ws.NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return NewAlertService(fake, hub), fake
}

func activatedAccount(t *testing.T, fake *storetest.Fake) *models.Account {
	t.Helper()
	ctx := context.Background()
	account := &models.Account{
		AccountName:  "Org",
		FirstName:    "Jane",
		LastName:     "Doe",
		Address:      "123 Main St",
		PhoneNumbers: []string{"09123456789", "09234567890"},
		Status:       models.AccountStatusNotActivated,
	}
	require.NoError(t, fake.CreateAccount(ctx, account))
	require.NoError(t, fake.ActivateAccounts(ctx, []models.AccountActivation{
		{AccountNumber: account.AccountNumber, ActivatedBy: "admin"},
	}, account.CreatedAt))
	return account
}

func TestRaiseAlertCapturesContactSnapshot(t *testing.T) {
	svc, fake := newAlertFixture(t)
	account := activatedAccount(t, fake)

	alert, err := svc.RaiseAlert(context.Background(), &models.RaiseAlertRequest{
		AccountNumber: account.AccountNumber,
		Latitude:      14.5995,
		Longitude:     120.9842,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, alert.AlertID)
	assert.Equal(t, models.AlertStatusNew, alert.Status)
	assert.Equal(t, account.AccountName, alert.AccountName)
	assert.Equal(t, "09123456789,09234567890", alert.PhoneNumbers)
	assert.Nil(t, alert.TimestampHandled)

	open, err := svc.ListOpenAlerts(context.Background())
	require.NoError(t, err)
	require.Len(t, open, 1)
}

func TestRaiseAlertRejectsInactiveAccount(t *testing.T) {
	svc, fake := newAlertFixture(t)
	ctx := context.Background()

	account := &models.Account{
		AccountName: "Org", FirstName: "A", LastName: "B", Address: "x",
		PhoneNumbers: []string{"091"},
		Status:       models.AccountStatusNotActivated,
	}
	require.NoError(t, fake.CreateAccount(ctx, account))

	_, err := svc.RaiseAlert(ctx, &models.RaiseAlertRequest{AccountNumber: account.AccountNumber})
	assert.Error(t, err)

	_, err = svc.RaiseAlert(ctx, &models.RaiseAlertRequest{AccountNumber: "999999"})
	assert.Error(t, err, "unknown account")
}

func TestHandleAndCompleteAlertAreIdempotent(t *testing.T) {
	svc, fake := newAlertFixture(t)
	account := activatedAccount(t, fake)
	ctx := context.Background()

	alert, err := svc.RaiseAlert(ctx, &models.RaiseAlertRequest{AccountNumber: account.AccountNumber})
	require.NoError(t, err)

	require.NoError(t, svc.HandleAlert(ctx, alert.AlertID))
	stored := fake.Alert(alert.AlertID)
	require.NotNil(t, stored)
	assert.Equal(t, models.AlertStatusHandled, stored.Status)
	require.NotNil(t, stored.TimestampHandled)
	firstHandled := *stored.TimestampHandled

	// Second operator selecting the same alert: success, no state change.
	require.NoError(t, svc.HandleAlert(ctx, alert.AlertID))
	assert.Equal(t, firstHandled, *fake.Alert(alert.AlertID).TimestampHandled)

	require.NoError(t, svc.CompleteAlert(ctx, alert.AlertID))
	assert.Equal(t, models.AlertStatusCompleted, fake.Alert(alert.AlertID).Status)
	require.NoError(t, svc.CompleteAlert(ctx, alert.AlertID))

	open, err := svc.ListOpenAlerts(ctx)
	require.NoError(t, err)
	assert.Empty(t, open)

	records, err := svc.ListAlertRecords(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, models.AlertStatusCompleted, records[0].Status)
}
