// Package storetest provides an in-memory Store for tests.
package storetest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/star-emergency/alert-gateway/pkg/models"
	"github.com/star-emergency/alert-gateway/pkg/store"
)

// Fake is an in-memory store.Store. All methods are safe for concurrent use.
type Fake struct {
	mu       sync.Mutex
	alerts   map[string]*models.Alert
	accounts map[string]*models.Account
	users    map[string]*models.User
	nextAcct int

	// Err, when set, is returned by every method. Lets tests exercise the
	// handlers' error paths.
	Err error
}

// New creates an empty fake store.
func New() *Fake {
	return &Fake{
		alerts:   make(map[string]*models.Alert),
		accounts: make(map[string]*models.Account),
		users:    make(map[string]*models.User),
		nextAcct: 100001,
	}
}

func (f *Fake) InsertAlert(ctx context.Context, alert *models.Alert) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	if _, ok := f.alerts[alert.AlertID]; ok {
		return fmt.Errorf("alert %s already exists", alert.AlertID)
	}
	cp := *alert
	f.alerts[alert.AlertID] = &cp
	return nil
}

func (f *Fake) ListOpenAlerts(ctx context.Context) ([]models.Alert, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	var out []models.Alert
	for _, a := range f.alerts {
		if a.Status != models.AlertStatusCompleted {
			out = append(out, *a)
		}
	}
	sortAlerts(out)
	return out, nil
}

func (f *Fake) MarkAlertHandled(ctx context.Context, alertID string, handledAt time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return false, f.Err
	}
	a, ok := f.alerts[alertID]
	if !ok || a.Status != models.AlertStatusNew || a.TimestampHandled != nil {
		return false, nil
	}
	a.Status = models.AlertStatusHandled
	a.TimestampHandled = &handledAt
	return true, nil
}

func (f *Fake) CompleteAlert(ctx context.Context, alertID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return false, f.Err
	}
	a, ok := f.alerts[alertID]
	if !ok || a.Status == models.AlertStatusCompleted {
		return false, nil
	}
	a.Status = models.AlertStatusCompleted
	return true, nil
}

func (f *Fake) ListAlertRecords(ctx context.Context) ([]models.Alert, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	var out []models.Alert
	for _, a := range f.alerts {
		if a.Status != models.AlertStatusNew {
			out = append(out, *a)
		}
	}
	sortAlerts(out)
	return out, nil
}

func (f *Fake) CreateAccount(ctx context.Context, account *models.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	if account.AccountNumber == "" {
		account.AccountNumber = fmt.Sprintf("%d", f.nextAcct)
		f.nextAcct++
	}
	if _, ok := f.accounts[account.AccountNumber]; ok {
		return fmt.Errorf("account %s already exists", account.AccountNumber)
	}
	account.CreatedAt = time.Now().UTC()
	cp := *account
	f.accounts[account.AccountNumber] = &cp
	return nil
}

func (f *Fake) GetAccount(ctx context.Context, accountNumber string) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	a, ok := f.accounts[accountNumber]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *Fake) ListAccounts(ctx context.Context) ([]models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	out := make([]models.Account, 0, len(f.accounts))
	for _, a := range f.accounts {
		out = append(out, *a)
	}
	return out, nil
}

func (f *Fake) ActivateAccounts(ctx context.Context, activations []models.AccountActivation, activatedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	for _, act := range activations {
		a, ok := f.accounts[act.AccountNumber]
		if !ok {
			return store.ErrNotFound
		}
		a.Status = models.AccountStatusActivated
		a.ActivatedBy = act.ActivatedBy
		at := activatedAt
		a.ActivatedAt = &at
	}
	return nil
}

func (f *Fake) DeactivateAccounts(ctx context.Context, accountNumbers []string, deactivatedBy string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	for _, num := range accountNumbers {
		a, ok := f.accounts[num]
		if !ok {
			return store.ErrNotFound
		}
		a.Status = models.AccountStatusDeactivated
		a.ActivatedBy = deactivatedBy
	}
	return nil
}

func (f *Fake) CreateUser(ctx context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	if _, ok := f.users[user.Username]; ok {
		return fmt.Errorf("user %s already exists", user.Username)
	}
	user.CreatedAt = time.Now().UTC()
	cp := *user
	f.users[user.Username] = &cp
	return nil
}

func (f *Fake) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	u, ok := f.users[username]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *Fake) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *Fake) UpdateUser(ctx context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	if _, ok := f.users[user.Username]; !ok {
		return store.ErrNotFound
	}
	now := time.Now().UTC()
	user.UpdatedAt = &now
	cp := *user
	f.users[user.Username] = &cp
	return nil
}

func (f *Fake) DeleteUser(ctx context.Context, username string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	if _, ok := f.users[username]; !ok {
		return store.ErrNotFound
	}
	delete(f.users, username)
	return nil
}

func (f *Fake) EnsureSchema(ctx context.Context) error { return f.Err }

func (f *Fake) Close() error { return nil }

// Alert returns the stored alert by id, or nil.
func (f *Fake) Alert(alertID string) *models.Alert {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.alerts[alertID]
	if !ok {
		return nil
	}
	cp := *a
	return &cp
}

func sortAlerts(alerts []models.Alert) {
	sort.Slice(alerts, func(i, j int) bool {
		if !alerts[i].Timestamp.Equal(alerts[j].Timestamp) {
			return alerts[i].Timestamp.Before(alerts[j].Timestamp)
		}
		return alerts[i].AlertID < alerts[j].AlertID
	})
}

var _ store.Store = (*Fake)(nil)
