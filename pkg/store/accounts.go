package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/star-emergency/alert-gateway/pkg/models"
)

const accountColumns = `account_number, account_name, first_name, last_name, address,
	phone_numbers, email, emergency_contact, activation_code, status,
	activated_by, activated_at, created_at`

// CreateAccount inserts a new alarm account. When no account number is given
// the database assigns the next one from the account sequence; the assigned
// number is written back into the account.
func (p *Postgres) CreateAccount(ctx context.Context, account *models.Account) error {
	if account.AccountNumber == "" {
		query := `INSERT INTO ict_alarm_accounts
			(account_name, first_name, last_name, address, phone_numbers, email, emergency_contact, activation_code, status)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING account_number`
		err := p.db.QueryRowContext(ctx, query,
			account.AccountName, account.FirstName, account.LastName, account.Address,
			pq.Array(account.PhoneNumbers), account.Email, account.EmergencyContact,
			account.ActivationCode, string(account.Status)).Scan(&account.AccountNumber)
		if err != nil {
			return fmt.Errorf("failed to create account: %w", err)
		}
		return nil
	}

	query := `INSERT INTO ict_alarm_accounts
		(account_number, account_name, first_name, last_name, address, phone_numbers, email, emergency_contact, activation_code, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := p.db.ExecContext(ctx, query,
		account.AccountNumber, account.AccountName, account.FirstName, account.LastName,
		account.Address, pq.Array(account.PhoneNumbers), account.Email,
		account.EmergencyContact, account.ActivationCode, string(account.Status))
	if err != nil {
		return fmt.Errorf("failed to create account %s: %w", account.AccountNumber, err)
	}
	return nil
}

// GetAccount fetches one account by its number.
func (p *Postgres) GetAccount(ctx context.Context, accountNumber string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM ict_alarm_accounts WHERE account_number = $1`
	row := p.db.QueryRowContext(ctx, query, accountNumber)
	account, err := scanAccount(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account %s: %w", accountNumber, err)
	}
	return account, nil
}

// ListAccounts returns every account with its activation state, newest first.
func (p *Postgres) ListAccounts(ctx context.Context) ([]models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM ict_alarm_accounts ORDER BY created_at DESC`
	rows, err := p.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account row: %w", err)
		}
		accounts = append(accounts, *account)
	}
	return accounts, rows.Err()
}

// ActivateAccounts marks each listed account as activated by the given user.
func (p *Postgres) ActivateAccounts(ctx context.Context, activations []models.AccountActivation, activatedAt time.Time) error {
	query := `UPDATE ict_alarm_accounts SET status = $1, activated_by = $2, activated_at = $3
		WHERE account_number = $4`
	for _, act := range activations {
		if _, err := p.db.ExecContext(ctx, query,
			string(models.AccountStatusActivated), act.ActivatedBy, activatedAt, act.AccountNumber); err != nil {
			return fmt.Errorf("failed to activate account %s: %w", act.AccountNumber, err)
		}
	}
	return nil
}

// DeactivateAccounts marks the listed accounts as deactivated.
func (p *Postgres) DeactivateAccounts(ctx context.Context, accountNumbers []string, deactivatedBy string) error {
	query := `UPDATE ict_alarm_accounts SET status = $1, activated_by = $2
		WHERE account_number = ANY($3)`
	_, err := p.db.ExecContext(ctx, query,
		string(models.AccountStatusDeactivated), deactivatedBy, pq.Array(accountNumbers))
	if err != nil {
		return fmt.Errorf("failed to deactivate accounts: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAccount(row rowScanner) (*models.Account, error) {
	var a models.Account
	var activatedBy sql.NullString
	var activatedAt sql.NullTime
	var status string
	err := row.Scan(&a.AccountNumber, &a.AccountName, &a.FirstName, &a.LastName,
		&a.Address, pq.Array(&a.PhoneNumbers), &a.Email, &a.EmergencyContact,
		&a.ActivationCode, &status, &activatedBy, &activatedAt, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	a.Status = models.AccountStatus(status)
	if activatedBy.Valid {
		a.ActivatedBy = activatedBy.String
	}
	if activatedAt.Valid {
		t := activatedAt.Time
		a.ActivatedAt = &t
	}
	return &a, nil
}
