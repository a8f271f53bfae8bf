package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/star-emergency/alert-gateway/pkg/models"
	"github.com/star-emergency/alert-gateway/pkg/store"
)

// csvHeader is the column layout of the mass upload template. Bulk uploads
// must carry exactly these headers in this order.
var csvHeader = []string{
	"Account Name", "First Name", "Last Name", "Address",
	"Phone Number", "Email", "Emergency Contact",
}

// AccountService owns alarm account onboarding and activation.
type AccountService struct {
	store store.Store
}

// NewAccountService creates an account service.
func NewAccountService(s store.Store) *AccountService {
	return &AccountService{store: s}
}

// CreateAccount registers a single alarm account from the manual form. Every
// account starts not activated with a fresh activation code.
func (s *AccountService) CreateAccount(ctx context.Context, req *models.CreateAccountRequest) (*models.Account, error) {
	if req.AccountName == "" || req.FirstName == "" || req.LastName == "" || req.Address == "" {
		return nil, fmt.Errorf("accountName, firstName, lastName and address are required")
	}
	if len(req.PhoneNumbers) == 0 {
		return nil, fmt.Errorf("at least one phone number is required")
	}
	for _, num := range req.PhoneNumbers {
		if strings.TrimSpace(num) == "" {
			return nil, fmt.Errorf("phone numbers must not be empty")
		}
	}

	account := &models.Account{
		AccountNumber:    req.AccountNumber,
		AccountName:      req.AccountName,
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		Address:          req.Address,
		PhoneNumbers:     req.PhoneNumbers,
		Email:            req.Email,
		EmergencyContact: req.EmergencyContact,
		ActivationCode:   uuid.New().String()[:8],
		Status:           models.AccountStatusNotActivated,
	}
	if err := s.store.CreateAccount(ctx, account); err != nil {
		return nil, err
	}
	logrus.Infof("Account %s (%s) created", account.AccountNumber, account.AccountName)
	return account, nil
}

// BulkImport parses a mass upload CSV and creates one account per row. Rows
// that fail validation or insertion are counted and reported; the rest go
// through.
func (s *AccountService) BulkImport(ctx context.Context, r io.Reader) (*models.BulkImportResult, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	if err := validateHeader(header); err != nil {
		return nil, err
	}

	result := &models.BulkImportResult{}
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: %v", line, err))
			continue
		}

		req := &models.CreateAccountRequest{
			AccountName:      record[0],
			FirstName:        record[1],
			LastName:         record[2],
			Address:          record[3],
			PhoneNumbers:     splitPhoneNumbers(record[4]),
			Email:            record[5],
			EmergencyContact: record[6],
		}
		if _, err := s.CreateAccount(ctx, req); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: %v", line, err))
			continue
		}
		result.Succeeded++
	}

	logrus.Infof("Bulk import finished: %d succeeded, %d failed", result.Succeeded, result.Failed)
	return result, nil
}

// Template renders the mass upload CSV template with two sample rows.
func (s *AccountService) Template() ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	rows := [][]string{
		csvHeader,
		{"John Doe Corp", "John", "Doe", "123 Main St, City", "09123456789", "john@example.com", "0987654321"},
		{"Jane Smith LLC", "Jane", "Smith", "456 Elm St, City", "09234567890", "jane@example.com", "0976543210"},
	}
	if err := w.WriteAll(rows); err != nil {
		return nil, fmt.Errorf("failed to render CSV template: %w", err)
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// ListActivationRecords returns every account with its activation state.
func (s *AccountService) ListActivationRecords(ctx context.Context) ([]models.Account, error) {
	return s.store.ListAccounts(ctx)
}

// ActivateAccounts activates a batch of accounts on behalf of an operator.
func (s *AccountService) ActivateAccounts(ctx context.Context, req *models.ActivateAccountsRequest) error {
	if len(req.Accounts) == 0 {
		return fmt.Errorf("no accounts given")
	}
	return s.store.ActivateAccounts(ctx, req.Accounts, time.Now().UTC())
}

// DeactivateAccounts deactivates a batch of accounts.
func (s *AccountService) DeactivateAccounts(ctx context.Context, req *models.DeactivateAccountsRequest) error {
	if len(req.AccountNumbers) == 0 {
		return fmt.Errorf("no accounts given")
	}
	return s.store.DeactivateAccounts(ctx, req.AccountNumbers, req.DeactivatedBy)
}

func validateHeader(header []string) error {
	if len(header) != len(csvHeader) {
		return fmt.Errorf("CSV header has %d columns, want %d", len(header), len(csvHeader))
	}
	for i, col := range header {
		if !strings.EqualFold(strings.TrimSpace(col), csvHeader[i]) {
			return fmt.Errorf("CSV column %d is %q, want %q", i+1, col, csvHeader[i])
		}
	}
	return nil
}

func splitPhoneNumbers(raw string) []string {
	var numbers []string
	for _, n := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(n); trimmed != "" {
			numbers = append(numbers, trimmed)
		}
	}
	return numbers
}
