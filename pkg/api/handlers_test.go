package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/star-emergency/alert-gateway/pkg/auth"
	"github.com/star-emergency/alert-gateway/pkg/cache"
	"github.com/star-emergency/alert-gateway/pkg/models"
	"github.com/star-emergency/alert-gateway/pkg/services"
	"github.com/star-emergency/alert-gateway/pkg/store/storetest"
	"github.com/star-emergency/alert-gateway/pkg/ws"
)

type fixture struct {
	echo  *echo.Echo
	store *storetest.Fake
	users *services.UserService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	fake := storetest.New()
	mr := miniredis.RunT(t)
	sessions, err := cache.NewSessionCache(context.Background(), mr.Addr(), "", 0, time.Hour)
	require.NoError(t, err)
	t.Cleanup(func() { sessions.Close() })

	hub := ws.NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	alertService := services.NewAlertService(fake, hub)
	accountService := services.NewAccountService(fake)
	userService := services.NewUserService(fake)
	tokens := auth.NewTokenIssuer("test-secret", time.Hour)
	// Empty secret disables captcha verification in tests.
	captcha := auth.NewRecaptchaVerifier("", "")

	handler := NewAPIHandler(alertService, accountService, userService, tokens, sessions, captcha, hub)
	e := echo.New()
	handler.SetupRoutes(e)

	return &fixture{echo: e, store: fake, users: userService}
}

func (f *fixture) createUser(t *testing.T, username string, role models.Role) {
	t.Helper()
	_, err := f.users.CreateUser(context.Background(), &models.CreateUserRequest{
		Username: username,
		Email:    username + "@example.com",
		Password: "s3cret!",
		RoleID:   role,
	})
	require.NoError(t, err)
}

// login posts credentials and returns the bearer token.
func (f *fixture) login(t *testing.T, username string) string {
	t.Helper()
	rec := f.request(t, http.MethodPost, "/api/login",
		`{"username":"`+username+`","password":"s3cret!"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func (f *fixture) request(t *testing.T, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.echo.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) seedActivatedAccount(t *testing.T) *models.Account {
	t.Helper()
	ctx := context.Background()
	account := &models.Account{
		AccountName:  "Org",
		FirstName:    "Jane",
		LastName:     "Doe",
		Address:      "123 Main St",
		PhoneNumbers: []string{"09123456789"},
		Status:       models.AccountStatusActivated,
	}
	require.NoError(t, f.store.CreateAccount(ctx, account))
	return account
}

func TestLoginIssuesToken(t *testing.T) {
	f := newFixture(t)
	f.createUser(t, "operator1", models.RoleOperator)

	rec := f.request(t, http.MethodPost, "/api/login",
		`{"username":"operator1","password":"s3cret!"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, models.RoleOperator, resp.Role)
	assert.Equal(t, "operator1", resp.Username)
	assert.NotEmpty(t, resp.Token)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	f := newFixture(t)
	f.createUser(t, "operator1", models.RoleOperator)

	rec := f.request(t, http.MethodPost, "/api/login",
		`{"username":"operator1","password":"wrong"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.request(t, http.MethodPost, "/api/login",
		`{"username":"ghost","password":"s3cret!"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSSOLogin(t *testing.T) {
	f := newFixture(t)
	f.createUser(t, "operator1", models.RoleOperator)

	rec := f.request(t, http.MethodPost, "/api/sso-login-employee",
		`{"email":"operator1@example.com"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)

	rec = f.request(t, http.MethodPost, "/api/sso-login-employee",
		`{"email":"nobody@example.com"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProtectedEndpointsRejectMissingToken(t *testing.T) {
	f := newFixture(t)

	rec := f.request(t, http.MethodGet, "/api/unhandled-alerts", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.request(t, http.MethodPost, "/api/complete-alert", `{"alert_id":"x"}`, "garbage-token")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogoutRevokesSession(t *testing.T) {
	f := newFixture(t)
	f.createUser(t, "operator1", models.RoleOperator)
	token := f.login(t, "operator1")

	rec := f.request(t, http.MethodGet, "/api/unhandled-alerts", "", token)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.request(t, http.MethodPost, "/api/logout", "", token)
	require.Equal(t, http.StatusOK, rec.Code)

	// Token still validates as a JWT, but the session is gone.
	rec = f.request(t, http.MethodGet, "/api/unhandled-alerts", "", token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAlertLifecycleThroughAPI(t *testing.T) {
	f := newFixture(t)
	f.createUser(t, "operator1", models.RoleOperator)
	token := f.login(t, "operator1")
	account := f.seedActivatedAccount(t)

	// Field device raises an alert without any token.
	rec := f.request(t, http.MethodPost, "/api/raise-alert",
		`{"account_number":"`+account.AccountNumber+`","latitude":14.5995,"longitude":120.9842}`, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	var raised models.Alert
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raised))
	require.NotEmpty(t, raised.AlertID)
	assert.Equal(t, models.AlertStatusNew, raised.Status)

	// The snapshot endpoint sees it.
	rec = f.request(t, http.MethodGet, "/api/unhandled-alerts", "", token)
	require.Equal(t, http.StatusOK, rec.Code)
	var open []models.Alert
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &open))
	require.Len(t, open, 1)
	assert.Equal(t, raised.AlertID, open[0].AlertID)

	// Operator selects the alert.
	rec = f.request(t, http.MethodPost, "/api/update-handled-time",
		`{"alert_id":"`+raised.AlertID+`"}`, token)
	require.Equal(t, http.StatusOK, rec.Code)
	stored := f.store.Alert(raised.AlertID)
	require.NotNil(t, stored)
	assert.Equal(t, models.AlertStatusHandled, stored.Status)
	require.NotNil(t, stored.TimestampHandled)

	// A second select is accepted and changes nothing.
	firstHandled := *stored.TimestampHandled
	rec = f.request(t, http.MethodPost, "/api/update-handled-time",
		`{"alert_id":"`+raised.AlertID+`"}`, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, firstHandled, *f.store.Alert(raised.AlertID).TimestampHandled)

	// Complete removes it from the snapshot and moves it to view-records.
	rec = f.request(t, http.MethodPost, "/api/complete-alert",
		`{"alert_id":"`+raised.AlertID+`"}`, token)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.request(t, http.MethodGet, "/api/unhandled-alerts", "", token)
	require.Equal(t, http.StatusOK, rec.Code)
	open = nil
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &open))
	assert.Empty(t, open)

	rec = f.request(t, http.MethodGet, "/api/view-records", "", token)
	require.Equal(t, http.StatusOK, rec.Code)
	var records []models.Alert
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
	require.Len(t, records, 1)
	assert.Equal(t, models.AlertStatusCompleted, records[0].Status)
}

func TestAlertActionsRequireAlertID(t *testing.T) {
	f := newFixture(t)
	f.createUser(t, "operator1", models.RoleOperator)
	token := f.login(t, "operator1")

	rec := f.request(t, http.MethodPost, "/api/update-handled-time", `{}`, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.request(t, http.MethodPost, "/api/complete-alert", `{}`, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRaiseAlertRejectsUnknownAccount(t *testing.T) {
	f := newFixture(t)

	rec := f.request(t, http.MethodPost, "/api/raise-alert",
		`{"account_number":"999999"}`, "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	rec = f.request(t, http.MethodPost, "/api/raise-alert", `{}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestManageUsersIsAdminOnly(t *testing.T) {
	f := newFixture(t)
	f.createUser(t, "admin1", models.RoleAdmin)
	f.createUser(t, "operator1", models.RoleOperator)

	operatorToken := f.login(t, "operator1")
	adminToken := f.login(t, "admin1")

	body := `{"username":"viewer1","email":"v@example.com","password":"p4ss","role_id":"3","first_name":"V","last_name":"One"}`

	rec := f.request(t, http.MethodPost, "/api/manage-users/create", body, operatorToken)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.request(t, http.MethodPost, "/api/manage-users/create", body, adminToken)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = f.request(t, http.MethodGet, "/api/manage-users/get?username=viewer1", "", adminToken)
	require.Equal(t, http.StatusOK, rec.Code)
	var user models.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	assert.Equal(t, models.RoleViewer, user.RoleID)

	rec = f.request(t, http.MethodDelete, "/api/manage-users/delete", `{"username":"viewer1"}`, adminToken)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.request(t, http.MethodGet, "/api/manage-users/get?username=viewer1", "", adminToken)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAccountEndpoints(t *testing.T) {
	f := newFixture(t)
	f.createUser(t, "operator1", models.RoleOperator)
	token := f.login(t, "operator1")

	rec := f.request(t, http.MethodPost, "/api/ict_alarm_account",
		`{"accountName":"Org","firstName":"Jane","lastName":"Doe","address":"123 Main St","phoneNumbers":["09123456789"]}`, token)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		Account models.Account `json:"account"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	account := created.Account
	require.NotEmpty(t, account.AccountNumber)
	assert.Equal(t, models.AccountStatusNotActivated, account.Status)

	rec = f.request(t, http.MethodPost, "/api/activate-accounts",
		`{"accounts":[{"accountNumber":"`+account.AccountNumber+`","activatedBy":"operator1"}]}`, token)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.request(t, http.MethodGet, "/api/activation-records", "", token)
	require.Equal(t, http.StatusOK, rec.Code)
	var accounts []models.Account
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &accounts))
	require.Len(t, accounts, 1)
	assert.Equal(t, models.AccountStatusActivated, accounts[0].Status)

	rec = f.request(t, http.MethodPost, "/api/deactivate-account",
		`{"accountNumbers":["`+account.AccountNumber+`"],"deactivatedBy":"operator1"}`, token)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestBulkImportEndpoint(t *testing.T) {
	f := newFixture(t)
	f.createUser(t, "operator1", models.RoleOperator)
	token := f.login(t, "operator1")

	csvBody := "Account Name,First Name,Last Name,Address,Phone Number,Email,Emergency Contact\n" +
		"Org One,John,Doe,123 Main St,09123456789,john@example.com,0987\n"

	req := httptest.NewRequest(http.MethodPost, "/api/ict_alarm_account/bulk", strings.NewReader(csvBody))
	req.Header.Set(echo.HeaderContentType, "text/csv")
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	rec := httptest.NewRecorder()
	f.echo.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var result models.BulkImportResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 1, result.Succeeded)
	assert.Zero(t, result.Failed)
}

func TestDownloadTemplate(t *testing.T) {
	f := newFixture(t)
	f.createUser(t, "viewer1", models.RoleViewer)
	token := f.login(t, "viewer1")

	rec := f.request(t, http.MethodGet, "/api/ict_alarm_account/template", "", token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), "MassUploadTemplate.csv")
	assert.True(t, strings.HasPrefix(rec.Body.String(), "Account Name,First Name,Last Name"))
}
