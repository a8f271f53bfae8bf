package models

import (
	"fmt"
	"strings"
	"time"
)

// AlertStatus represents the lifecycle state of an emergency alert
type AlertStatus string

const (
	AlertStatusNew       AlertStatus = "New"
	AlertStatusHandled   AlertStatus = "Handled"
	AlertStatusCompleted AlertStatus = "Completed"
)

// ParseAlertStatus normalizes a raw status value into one of the closed
// AlertStatus values. The legacy feeds carried inconsistently cased and
// whitespace-padded one-letter codes ("N", " h ", "C"), so normalization
// happens once, at the ingestion boundary.
func ParseAlertStatus(raw string) (AlertStatus, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "N", "NEW":
		return AlertStatusNew, nil
	case "H", "HANDLED":
		return AlertStatusHandled, nil
	case "C", "COMPLETED":
		return AlertStatusCompleted, nil
	}
	return "", fmt.Errorf("unknown alert status %q", raw)
}

// Alert represents one emergency event raised by a field account.
// The contact snapshot and location are captured at raise time and are
// immutable; only Status and TimestampHandled change afterwards.
type Alert struct {
	AlertID          string      `json:"alert_id"`
	AccountNumber    string      `json:"account_number"`
	AccountName      string      `json:"account_name"`
	FirstName        string      `json:"first_name"`
	LastName         string      `json:"last_name"`
	PhoneNumbers     string      `json:"phone_numbers"`
	Latitude         float64     `json:"latitude"`
	Longitude        float64     `json:"longitude"`
	Timestamp        time.Time   `json:"timestamp"`
	TimestampHandled *time.Time  `json:"timestamp_handled,omitempty"`
	Status           AlertStatus `json:"status"`
}

// Normalize parses the wire form of the status field in place. Alerts
// arriving from either feed must be normalized before entering canonical
// state.
func (a *Alert) Normalize() error {
	status, err := ParseAlertStatus(string(a.Status))
	if err != nil {
		return err
	}
	a.Status = status
	return nil
}

// RaiseAlertRequest is the payload a field device sends to raise an emergency.
type RaiseAlertRequest struct {
	AccountNumber string  `json:"account_number"`
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
}

// AlertActionRequest identifies the alert targeted by a lifecycle action.
type AlertActionRequest struct {
	AlertID string `json:"alert_id"`
}
