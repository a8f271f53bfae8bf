package models

import (
	"time"
)

// AccountStatus represents the activation state of an alarm account
type AccountStatus string

const (
	AccountStatusNotActivated AccountStatus = "Not Activated"
	AccountStatusActivated    AccountStatus = "Activated"
	AccountStatusDeactivated  AccountStatus = "Deactivated"
)

// Account represents a registered alarm account: the organization or person
// whose field device can raise emergency alerts.
type Account struct {
	AccountNumber    string        `json:"account_number"`
	AccountName      string        `json:"account_name"`
	FirstName        string        `json:"first_name"`
	LastName         string        `json:"last_name"`
	Address          string        `json:"address"`
	PhoneNumbers     []string      `json:"phone_numbers"`
	Email            string        `json:"email,omitempty"`
	EmergencyContact string        `json:"emergency_contact,omitempty"`
	ActivationCode   string        `json:"activation_code,omitempty"`
	Status           AccountStatus `json:"status"`
	ActivatedBy      string        `json:"activated_by,omitempty"`
	ActivatedAt      *time.Time    `json:"activated_at,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
}

// CreateAccountRequest is the payload for the manual account creation form.
type CreateAccountRequest struct {
	AccountNumber    string   `json:"accountNumber,omitempty"`
	AccountName      string   `json:"accountName"`
	FirstName        string   `json:"firstName"`
	LastName         string   `json:"lastName"`
	Address          string   `json:"address"`
	PhoneNumbers     []string `json:"phoneNumbers"`
	Email            string   `json:"email,omitempty"`
	EmergencyContact string   `json:"emergencyContact,omitempty"`
}

// ActivateAccountsRequest activates a batch of accounts.
type ActivateAccountsRequest struct {
	Accounts []AccountActivation `json:"accounts"`
}

// AccountActivation names one account to activate and who activated it.
type AccountActivation struct {
	AccountNumber string `json:"accountNumber"`
	ActivatedBy   string `json:"activatedBy"`
}

// DeactivateAccountsRequest deactivates a batch of accounts.
type DeactivateAccountsRequest struct {
	AccountNumbers []string `json:"accountNumbers"`
	DeactivatedBy  string   `json:"deactivatedBy"`
}

// BulkImportResult summarizes a CSV mass upload.
type BulkImportResult struct {
	Succeeded int      `json:"succeeded"`
	Failed    int      `json:"failed"`
	Errors    []string `json:"errors,omitempty"`
}
