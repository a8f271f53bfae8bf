package store

import (
	"context"
	"errors"
	"time"

	"github.com/star-emergency/alert-gateway/pkg/models"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// Store is the persistence boundary for the gateway. The Postgres
// implementation lives in this package; tests substitute mocks.
type Store interface {
	AlertStore
	AccountStore
	UserStore

	EnsureSchema(ctx context.Context) error
	Close() error
}

// AlertStore persists emergency alerts and their lifecycle transitions.
type AlertStore interface {
	InsertAlert(ctx context.Context, alert *models.Alert) error
	// ListOpenAlerts returns all non-completed alerts ordered by raise time.
	ListOpenAlerts(ctx context.Context) ([]models.Alert, error)
	// MarkAlertHandled transitions New -> Handled and stamps the handled time
	// exactly once. Returns false when the alert was not in status New.
	MarkAlertHandled(ctx context.Context, alertID string, handledAt time.Time) (bool, error)
	// CompleteAlert transitions to Completed. Returns false when the alert was
	// already completed or unknown.
	CompleteAlert(ctx context.Context, alertID string) (bool, error)
	// ListAlertRecords returns the historical view: handled and completed alerts.
	ListAlertRecords(ctx context.Context) ([]models.Alert, error)
}

// AccountStore persists alarm accounts and their activation state.
type AccountStore interface {
	CreateAccount(ctx context.Context, account *models.Account) error
	GetAccount(ctx context.Context, accountNumber string) (*models.Account, error)
	ListAccounts(ctx context.Context) ([]models.Account, error)
	ActivateAccounts(ctx context.Context, activations []models.AccountActivation, activatedAt time.Time) error
	DeactivateAccounts(ctx context.Context, accountNumbers []string, deactivatedBy string) error
}

// UserStore persists console users.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, username string) error
}
