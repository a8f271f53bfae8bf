package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/star-emergency/alert-gateway/pkg/auth"
	"github.com/star-emergency/alert-gateway/pkg/cache"
	"github.com/star-emergency/alert-gateway/pkg/models"
	"github.com/star-emergency/alert-gateway/pkg/services"
	"github.com/star-emergency/alert-gateway/pkg/ws"
)

// APIHandler handles HTTP API requests
type APIHandler struct {
	alertService   *services.AlertService
	accountService *services.AccountService
	userService    *services.UserService
	tokens         *auth.TokenIssuer
	sessions       *cache.SessionCache
	captcha        *auth.RecaptchaVerifier
	hub            *ws.Hub
}

// NewAPIHandler creates a new API handler
func NewAPIHandler(
	alertService *services.AlertService,
	accountService *services.AccountService,
	userService *services.UserService,
	tokens *auth.TokenIssuer,
	sessions *cache.SessionCache,
	captcha *auth.RecaptchaVerifier,
	hub *ws.Hub,
) *APIHandler {
	return &APIHandler{
		alertService:   alertService,
		accountService: accountService,
		userService:    userService,
		tokens:         tokens,
		sessions:       sessions,
		captcha:        captcha,
		hub:            hub,
	}
}

// GetUnhandledAlerts returns all non-completed alerts, the snapshot the
// monitoring consoles poll every few seconds.
func (h *APIHandler) GetUnhandledAlerts(c echo.Context) error {
	alerts, err := h.alertService.ListOpenAlerts(c.Request().Context())
	if err != nil {
		logrus.Errorf("Error listing open alerts: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to get alerts"})
	}
	if alerts == nil {
		alerts = []models.Alert{}
	}
	return c.JSON(http.StatusOK, alerts)
}

// UpdateHandledTime records that an operator has begun handling an alert.
func (h *APIHandler) UpdateHandledTime(c echo.Context) error {
	var req models.AlertActionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request format"})
	}
	if req.AlertID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "alert_id is required"})
	}

	if err := h.alertService.HandleAlert(c.Request().Context(), req.AlertID); err != nil {
		logrus.Errorf("Error handling alert %s: %v", req.AlertID, err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to update handled time"})
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Handled time updated"})
}

// CompleteAlert marks an alert as completed.
func (h *APIHandler) CompleteAlert(c echo.Context) error {
	var req models.AlertActionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request format"})
	}
	if req.AlertID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "alert_id is required"})
	}

	if err := h.alertService.CompleteAlert(c.Request().Context(), req.AlertID); err != nil {
		logrus.Errorf("Error completing alert %s: %v", req.AlertID, err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to complete alert"})
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Alert completed"})
}

// GetViewRecords returns the historical handled and completed alerts.
func (h *APIHandler) GetViewRecords(c echo.Context) error {
	records, err := h.alertService.ListAlertRecords(c.Request().Context())
	if err != nil {
		logrus.Errorf("Error listing alert records: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to get records"})
	}
	if records == nil {
		records = []models.Alert{}
	}
	return c.JSON(http.StatusOK, records)
}

// RaiseAlert is the field-device entry point for a new emergency.
func (h *APIHandler) RaiseAlert(c echo.Context) error {
	var req models.RaiseAlertRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request format"})
	}
	if req.AccountNumber == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "account_number is required"})
	}

	alert, err := h.alertService.RaiseAlert(c.Request().Context(), &req)
	if err != nil {
		logrus.Errorf("Error raising alert for account %s: %v", req.AccountNumber, err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to raise alert"})
	}
	return c.JSON(http.StatusCreated, alert)
}

// ServeWS upgrades a monitoring console to the push channel.
func (h *APIHandler) ServeWS(c echo.Context) error {
	h.hub.ServeHTTP(c.Response(), c.Request())
	return nil
}

// SetupRoutes sets up the API routes
func (h *APIHandler) SetupRoutes(e *echo.Echo) {
	guard := h.RequireAuth

	// Alert endpoints
	e.GET("/api/unhandled-alerts", h.GetUnhandledAlerts, guard)
	e.POST("/api/update-handled-time", h.UpdateHandledTime, guard)
	e.POST("/api/complete-alert", h.CompleteAlert, guard)
	e.GET("/api/view-records", h.GetViewRecords, guard)
	e.POST("/api/raise-alert", h.RaiseAlert)
	e.GET("/ws", h.ServeWS)

	// Account endpoints
	e.POST("/api/ict_alarm_account", h.CreateAccount, guard)
	e.POST("/api/ict_alarm_account/bulk", h.BulkImportAccounts, guard)
	e.GET("/api/ict_alarm_account/template", h.DownloadTemplate, guard)
	e.GET("/api/activation-records", h.GetActivationRecords, guard)
	e.POST("/api/activate-accounts", h.ActivateAccounts, guard)
	e.POST("/api/deactivate-account", h.DeactivateAccounts, guard)

	// User management endpoints (admin only)
	admin := h.RequireRole(models.RoleAdmin)
	e.POST("/api/manage-users/create", h.CreateUser, guard, admin)
	e.GET("/api/manage-users/get", h.GetUser, guard, admin)
	e.PUT("/api/manage-users/update", h.UpdateUser, guard, admin)
	e.DELETE("/api/manage-users/delete", h.DeleteUser, guard, admin)

	// Auth endpoints
	e.POST("/api/login", h.Login)
	e.POST("/api/sso-login-employee", h.SSOLogin)
	e.POST("/api/logout", h.Logout, guard)
}
