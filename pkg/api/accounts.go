package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/star-emergency/alert-gateway/pkg/models"
)

// CreateAccount registers one alarm account from the manual input form.
func (h *APIHandler) CreateAccount(c echo.Context) error {
	var req models.CreateAccountRequest
	if err := c.Bind(&req); err != nil {
		logrus.Errorf("Error binding create account request: %v", err)
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request format"})
	}

	account, err := h.accountService.CreateAccount(c.Request().Context(), &req)
	if err != nil {
		logrus.Errorf("Error creating account: %v", err)
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message": "Record saved successfully!",
		"account": account,
	})
}

// BulkImportAccounts accepts the mass upload CSV in the request body and
// creates one account per row.
func (h *APIHandler) BulkImportAccounts(c echo.Context) error {
	result, err := h.accountService.BulkImport(c.Request().Context(), c.Request().Body)
	if err != nil {
		logrus.Errorf("Error importing accounts: %v", err)
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, result)
}

// DownloadTemplate serves the mass upload CSV template.
func (h *APIHandler) DownloadTemplate(c echo.Context) error {
	data, err := h.accountService.Template()
	if err != nil {
		logrus.Errorf("Error rendering CSV template: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to render template"})
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="MassUploadTemplate.csv"`)
	return c.Blob(http.StatusOK, "text/csv", data)
}

// GetActivationRecords lists every account with its activation state.
func (h *APIHandler) GetActivationRecords(c echo.Context) error {
	records, err := h.accountService.ListActivationRecords(c.Request().Context())
	if err != nil {
		logrus.Errorf("Error listing activation records: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to get activation records"})
	}
	if records == nil {
		records = []models.Account{}
	}
	return c.JSON(http.StatusOK, records)
}

// ActivateAccounts activates the selected accounts.
func (h *APIHandler) ActivateAccounts(c echo.Context) error {
	var req models.ActivateAccountsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request format"})
	}
	if err := h.accountService.ActivateAccounts(c.Request().Context(), &req); err != nil {
		logrus.Errorf("Error activating accounts: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to activate accounts"})
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Accounts activated"})
}

// DeactivateAccounts deactivates the selected accounts.
func (h *APIHandler) DeactivateAccounts(c echo.Context) error {
	var req models.DeactivateAccountsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request format"})
	}
	if err := h.accountService.DeactivateAccounts(c.Request().Context(), &req); err != nil {
		logrus.Errorf("Error deactivating accounts: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to deactivate accounts"})
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Accounts deactivated"})
}
