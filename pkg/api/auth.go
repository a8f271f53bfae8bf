package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/star-emergency/alert-gateway/pkg/cache"
	"github.com/star-emergency/alert-gateway/pkg/models"
)

// Login verifies the captcha and credentials, then issues a session token.
// The response carries the role code the client-side route guard keys on.
func (h *APIHandler) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.LoginResponse{Message: "Invalid request format"})
	}

	ctx := c.Request().Context()
	if err := h.captcha.Verify(ctx, req.Captcha); err != nil {
		logrus.Warnf("Captcha verification failed for %s: %v", req.Username, err)
		return c.JSON(http.StatusUnauthorized, models.LoginResponse{Message: "Captcha verification failed"})
	}

	user, err := h.userService.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		logrus.Warnf("Login failed for %s: %v", req.Username, err)
		return c.JSON(http.StatusUnauthorized, models.LoginResponse{Message: "Invalid username or password"})
	}

	return h.issueSession(c, user)
}

// SSOLogin maps an identity-provider-verified employee email to a local user
// and issues the same session token as the password login.
func (h *APIHandler) SSOLogin(c echo.Context) error {
	var req models.SSOLoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.LoginResponse{Message: "Invalid request format"})
	}
	if req.Email == "" {
		return c.JSON(http.StatusBadRequest, models.LoginResponse{Message: "email is required"})
	}

	user, err := h.userService.AuthenticateByEmail(c.Request().Context(), req.Email)
	if err != nil {
		logrus.Warnf("SSO login failed for %s: %v", req.Email, err)
		return c.JSON(http.StatusUnauthorized, models.LoginResponse{Message: "No account registered for this email"})
	}

	return h.issueSession(c, user)
}

// Logout revokes the current session.
func (h *APIHandler) Logout(c echo.Context) error {
	sessionID, ok := c.Get(contextKeySessionID).(string)
	if !ok || sessionID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "No active session"})
	}
	if err := h.sessions.Delete(c.Request().Context(), sessionID); err != nil {
		logrus.Errorf("Error deleting session %s: %v", sessionID, err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to log out"})
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Logged out"})
}

func (h *APIHandler) issueSession(c echo.Context, user *models.User) error {
	token, sessionID, err := h.tokens.Issue(user)
	if err != nil {
		logrus.Errorf("Error issuing token for %s: %v", user.Username, err)
		return c.JSON(http.StatusInternalServerError, models.LoginResponse{Message: "Failed to create session"})
	}

	session := &cache.Session{
		ID:        sessionID,
		Username:  user.Username,
		Email:     user.Email,
		Role:      user.RoleID,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.sessions.Put(c.Request().Context(), session); err != nil {
		logrus.Errorf("Error storing session for %s: %v", user.Username, err)
		return c.JSON(http.StatusInternalServerError, models.LoginResponse{Message: "Failed to create session"})
	}

	return c.JSON(http.StatusOK, models.LoginResponse{
		Success:  true,
		Token:    token,
		Role:     user.RoleID,
		Username: user.Username,
		Email:    user.Email,
	})
}
