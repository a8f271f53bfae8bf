package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/star-emergency/alert-gateway/pkg/models"
)

const alertColumns = `alert_id, account_number, account_name, first_name, last_name,
	phone_numbers, latitude, longitude, timestamp, timestamp_handled, status`

// InsertAlert stores a newly raised alert.
func (p *Postgres) InsertAlert(ctx context.Context, alert *models.Alert) error {
	query := `INSERT INTO alerts (` + alertColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := p.db.ExecContext(ctx, query,
		alert.AlertID, alert.AccountNumber, alert.AccountName, alert.FirstName,
		alert.LastName, alert.PhoneNumbers, alert.Latitude, alert.Longitude,
		alert.Timestamp, alert.TimestampHandled, string(alert.Status))
	if err != nil {
		return fmt.Errorf("failed to insert alert %s: %w", alert.AlertID, err)
	}
	return nil
}

// ListOpenAlerts returns all non-completed alerts ordered by raise time,
// alert id as tie-break.
func (p *Postgres) ListOpenAlerts(ctx context.Context) ([]models.Alert, error) {
	query := `SELECT ` + alertColumns + ` FROM alerts
		WHERE status <> $1 ORDER BY timestamp ASC, alert_id ASC`
	return p.queryAlerts(ctx, query, string(models.AlertStatusCompleted))
}

// ListAlertRecords returns the historical view: every alert that has been
// handled or completed, newest first.
func (p *Postgres) ListAlertRecords(ctx context.Context) ([]models.Alert, error) {
	query := `SELECT ` + alertColumns + ` FROM alerts
		WHERE status IN ($1, $2) ORDER BY timestamp DESC`
	return p.queryAlerts(ctx, query, string(models.AlertStatusHandled), string(models.AlertStatusCompleted))
}

// MarkAlertHandled transitions New -> Handled and sets the handled timestamp.
// The WHERE clause keeps the transition one-way and the timestamp write-once
// even when two operators race on the same alert.
func (p *Postgres) MarkAlertHandled(ctx context.Context, alertID string, handledAt time.Time) (bool, error) {
	query := `UPDATE alerts SET status = $1, timestamp_handled = $2
		WHERE alert_id = $3 AND status = $4 AND timestamp_handled IS NULL`
	res, err := p.db.ExecContext(ctx, query,
		string(models.AlertStatusHandled), handledAt, alertID, string(models.AlertStatusNew))
	if err != nil {
		return false, fmt.Errorf("failed to mark alert %s handled: %w", alertID, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

// CompleteAlert transitions an alert to Completed. Completing an already
// completed alert is a no-op.
func (p *Postgres) CompleteAlert(ctx context.Context, alertID string) (bool, error) {
	query := `UPDATE alerts SET status = $1 WHERE alert_id = $2 AND status <> $1`
	res, err := p.db.ExecContext(ctx, query, string(models.AlertStatusCompleted), alertID)
	if err != nil {
		return false, fmt.Errorf("failed to complete alert %s: %w", alertID, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func (p *Postgres) queryAlerts(ctx context.Context, query string, args ...interface{}) ([]models.Alert, error) {
	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}
	defer rows.Close()

	var alerts []models.Alert
	for rows.Next() {
		var a models.Alert
		var handled sql.NullTime
		var status string
		if err := rows.Scan(&a.AlertID, &a.AccountNumber, &a.AccountName, &a.FirstName,
			&a.LastName, &a.PhoneNumbers, &a.Latitude, &a.Longitude,
			&a.Timestamp, &handled, &status); err != nil {
			return nil, fmt.Errorf("failed to scan alert row: %w", err)
		}
		if handled.Valid {
			t := handled.Time
			a.TimestampHandled = &t
		}
		parsed, err := models.ParseAlertStatus(status)
		if err != nil {
			return nil, err
		}
		a.Status = parsed
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}
