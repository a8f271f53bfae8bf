package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/star-emergency/alert-gateway/pkg/models"
)

const userColumns = `username, email, password_hash, role_id, first_name, middle_name,
	last_name, contact_number, emergency_contact_num, birthdate,
	address_line1, address_line2, created_at, updated_at`

// CreateUser inserts a new console user.
func (p *Postgres) CreateUser(ctx context.Context, user *models.User) error {
	query := `INSERT INTO users
		(username, email, password_hash, role_id, first_name, middle_name, last_name,
		 contact_number, emergency_contact_num, birthdate, address_line1, address_line2)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := p.db.ExecContext(ctx, query,
		user.Username, user.Email, user.PasswordHash, string(user.RoleID),
		user.FirstName, user.MiddleName, user.LastName, user.ContactNumber,
		user.EmergencyContactNum, user.Birthdate, user.AddressLine1, user.AddressLine2)
	if err != nil {
		return fmt.Errorf("failed to create user %s: %w", user.Username, err)
	}
	return nil
}

// GetUserByUsername fetches one user by username.
func (p *Postgres) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return p.getUser(ctx, query, username)
}

// GetUserByEmail fetches one user by email. Used by the SSO login path, which
// identifies employees by their verified email.
func (p *Postgres) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return p.getUser(ctx, query, email)
}

func (p *Postgres) getUser(ctx context.Context, query string, arg interface{}) (*models.User, error) {
	var u models.User
	var role string
	var updatedAt sql.NullTime
	err := p.db.QueryRowContext(ctx, query, arg).Scan(
		&u.Username, &u.Email, &u.PasswordHash, &role, &u.FirstName, &u.MiddleName,
		&u.LastName, &u.ContactNumber, &u.EmergencyContactNum, &u.Birthdate,
		&u.AddressLine1, &u.AddressLine2, &u.CreatedAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	u.RoleID = models.Role(role)
	if updatedAt.Valid {
		t := updatedAt.Time
		u.UpdatedAt = &t
	}
	return &u, nil
}

// UpdateUser overwrites the mutable fields of a user.
func (p *Postgres) UpdateUser(ctx context.Context, user *models.User) error {
	query := `UPDATE users SET email = $1, password_hash = $2, role_id = $3,
		first_name = $4, middle_name = $5, last_name = $6, contact_number = $7,
		emergency_contact_num = $8, birthdate = $9, address_line1 = $10,
		address_line2 = $11, updated_at = $12
		WHERE username = $13`
	res, err := p.db.ExecContext(ctx, query,
		user.Email, user.PasswordHash, string(user.RoleID), user.FirstName,
		user.MiddleName, user.LastName, user.ContactNumber, user.EmergencyContactNum,
		user.Birthdate, user.AddressLine1, user.AddressLine2, time.Now(), user.Username)
	if err != nil {
		return fmt.Errorf("failed to update user %s: %w", user.Username, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteUser removes a user by username.
func (p *Postgres) DeleteUser(ctx context.Context, username string) error {
	res, err := p.db.ExecContext(ctx, `DELETE FROM users WHERE username = $1`, username)
	if err != nil {
		return fmt.Errorf("failed to delete user %s: %w", username, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
