package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/star-emergency/alert-gateway/pkg/config"
)

// Postgres implements Store over a Postgres database.
type Postgres struct {
	db *sql.DB
}

// NewPostgres opens a connection pool and verifies connectivity. The ping is
// retried a few times so the gateway survives the database coming up slightly
// later in a compose environment.
func NewPostgres(ctx context.Context, cfg *config.DatabaseConfig) (*Postgres, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	var pingErr error
	for i := 0; i < 5; i++ {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		pingErr = db.PingContext(pingCtx)
		cancel()
		if pingErr == nil {
			break
		}
		logrus.Warnf("Failed to ping database (attempt %d/5): %v", i+1, pingErr)
		time.Sleep(2 * time.Second)
	}
	if pingErr != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database after multiple attempts: %w", pingErr)
	}

	logrus.Info("Connected to Postgres")
	return &Postgres{db: db}, nil
}

// NewPostgresFromDB wraps an existing database handle. Used by tests with
// sqlmock.
func NewPostgresFromDB(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

var schemaStatements = []string{
	`CREATE SEQUENCE IF NOT EXISTS account_number_seq START 100001`,
	`CREATE TABLE IF NOT EXISTS ict_alarm_accounts (
		account_number    TEXT PRIMARY KEY DEFAULT nextval('account_number_seq')::text,
		account_name      TEXT NOT NULL,
		first_name        TEXT NOT NULL,
		last_name         TEXT NOT NULL,
		address           TEXT NOT NULL,
		phone_numbers     TEXT[] NOT NULL,
		email             TEXT NOT NULL DEFAULT '',
		emergency_contact TEXT NOT NULL DEFAULT '',
		activation_code   TEXT NOT NULL,
		status            TEXT NOT NULL DEFAULT 'Not Activated',
		activated_by      TEXT,
		activated_at      TIMESTAMPTZ,
		created_at        TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		username              TEXT PRIMARY KEY,
		email                 TEXT NOT NULL UNIQUE,
		password_hash         TEXT NOT NULL,
		role_id               TEXT NOT NULL,
		first_name            TEXT NOT NULL,
		middle_name           TEXT NOT NULL DEFAULT '',
		last_name             TEXT NOT NULL,
		contact_number        TEXT NOT NULL DEFAULT '',
		emergency_contact_num TEXT NOT NULL DEFAULT '',
		birthdate             TEXT NOT NULL DEFAULT '',
		address_line1         TEXT NOT NULL DEFAULT '',
		address_line2         TEXT NOT NULL DEFAULT '',
		created_at            TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at            TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS alerts (
		alert_id          TEXT PRIMARY KEY,
		account_number    TEXT NOT NULL,
		account_name      TEXT NOT NULL,
		first_name        TEXT NOT NULL,
		last_name         TEXT NOT NULL,
		phone_numbers     TEXT NOT NULL,
		latitude          DOUBLE PRECISION NOT NULL,
		longitude         DOUBLE PRECISION NOT NULL,
		timestamp         TIMESTAMPTZ NOT NULL,
		timestamp_handled TIMESTAMPTZ,
		status            TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_alerts_status ON alerts (status)`,
}

// EnsureSchema creates the tables the gateway needs if they do not exist yet.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := p.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}
	logrus.Info("Database schema ensured")
	return nil
}

// Close releases the connection pool.
func (p *Postgres) Close() error {
	return p.db.Close()
}
