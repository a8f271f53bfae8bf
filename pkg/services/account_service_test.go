package services

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/star-emergency/alert-gateway/pkg/models"
	"github.com/star-emergency/alert-gateway/pkg/store/storetest"
)

func TestCreateAccountAssignsCodeAndStatus(t *testing.T) {
	svc := NewAccountService(storetest.New())

	account, err := svc.CreateAccount(context.Background(), &models.CreateAccountRequest{
		AccountName:  "John Doe Corp",
		FirstName:    "John",
		LastName:     "Doe",
		Address:      "123 Main St",
		PhoneNumbers: []string{"09123456789"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, account.AccountNumber)
	assert.Len(t, account.ActivationCode, 8)
	assert.Equal(t, models.AccountStatusNotActivated, account.Status)
}

func TestCreateAccountValidation(t *testing.T) {
	svc := NewAccountService(storetest.New())
	ctx := context.Background()

	_, err := svc.CreateAccount(ctx, &models.CreateAccountRequest{
		AccountName: "Org", FirstName: "A", LastName: "B",
		PhoneNumbers: []string{"091"},
	})
	assert.Error(t, err, "missing address")

	_, err = svc.CreateAccount(ctx, &models.CreateAccountRequest{
		AccountName: "Org", FirstName: "A", LastName: "B", Address: "x",
	})
	assert.Error(t, err, "no phone numbers")

	_, err = svc.CreateAccount(ctx, &models.CreateAccountRequest{
		AccountName: "Org", FirstName: "A", LastName: "B", Address: "x",
		PhoneNumbers: []string{"  "},
	})
	assert.Error(t, err, "blank phone number")
}

func TestBulkImportCountsGoodAndBadRows(t *testing.T) {
	svc := NewAccountService(storetest.New())

	csvBody := strings.Join([]string{
		"Account Name,First Name,Last Name,Address,Phone Number,Email,Emergency Contact",
		"Org One,John,Doe,123 Main St,09123456789,john@example.com,0987",
		"Org Two,Jane,,456 Elm St,09234567890,jane@example.com,0976", // missing last name
		`Org Three,Ana,Cruz,"789 Oak St, City","09111111111,09222222222",ana@example.com,0965`,
	}, "\n")

	result, err := svc.BulkImport(context.Background(), strings.NewReader(csvBody))
	require.NoError(t, err)
	assert.Equal(t, 2, result.Succeeded)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "line 3")

	accounts, err := svc.ListActivationRecords(context.Background())
	require.NoError(t, err)
	require.Len(t, accounts, 2)
}

func TestBulkImportRejectsBadHeader(t *testing.T) {
	svc := NewAccountService(storetest.New())

	_, err := svc.BulkImport(context.Background(), strings.NewReader("Name,Phone\nx,y"))
	assert.Error(t, err)
}

func TestTemplateRoundTripsThroughImport(t *testing.T) {
	svc := NewAccountService(storetest.New())

	tmpl, err := svc.Template()
	require.NoError(t, err)

	result, err := svc.BulkImport(context.Background(), bytes.NewReader(tmpl))
	require.NoError(t, err)
	assert.Equal(t, 2, result.Succeeded)
	assert.Zero(t, result.Failed)
}

func TestActivateAndDeactivateAccounts(t *testing.T) {
	fake := storetest.New()
	svc := NewAccountService(fake)
	ctx := context.Background()

	account, err := svc.CreateAccount(ctx, &models.CreateAccountRequest{
		AccountName: "Org", FirstName: "A", LastName: "B", Address: "x",
		PhoneNumbers: []string{"091"},
	})
	require.NoError(t, err)

	err = svc.ActivateAccounts(ctx, &models.ActivateAccountsRequest{
		Accounts: []models.AccountActivation{
			{AccountNumber: account.AccountNumber, ActivatedBy: "operator1"},
		},
	})
	require.NoError(t, err)

	got, err := fake.GetAccount(ctx, account.AccountNumber)
	require.NoError(t, err)
	assert.Equal(t, models.AccountStatusActivated, got.Status)
	assert.Equal(t, "operator1", got.ActivatedBy)
	require.NotNil(t, got.ActivatedAt)

	err = svc.DeactivateAccounts(ctx, &models.DeactivateAccountsRequest{
		AccountNumbers: []string{account.AccountNumber},
		DeactivatedBy:  "admin",
	})
	require.NoError(t, err)

	got, err = fake.GetAccount(ctx, account.AccountNumber)
	require.NoError(t, err)
	assert.Equal(t, models.AccountStatusDeactivated, got.Status)

	assert.Error(t, svc.ActivateAccounts(ctx, &models.ActivateAccountsRequest{}))
	assert.Error(t, svc.DeactivateAccounts(ctx, &models.DeactivateAccountsRequest{}))
}
