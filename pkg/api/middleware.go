package api

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/star-emergency/alert-gateway/pkg/models"
)

const (
	contextKeyUsername  = "username"
	contextKeyRole      = "role"
	contextKeySessionID = "session_id"
)

// RequireAuth validates the bearer token and checks the session is still
// live in the cache, so revoked sessions stop working before the JWT expires.
func (h *APIHandler) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := extractToken(c)
		if token == "" {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Authentication required"})
		}

		claims, err := h.tokens.Validate(token)
		if err != nil {
			logrus.Debugf("Token validation failed: %v", err)
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid authentication token"})
		}

		session, err := h.sessions.Get(c.Request().Context(), claims.ID)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Session expired or revoked"})
		}

		c.Set(contextKeyUsername, session.Username)
		c.Set(contextKeyRole, session.Role)
		c.Set(contextKeySessionID, session.ID)
		return next(c)
	}
}

// RequireRole restricts a route to the given roles. Admin passes everywhere.
func (h *APIHandler) RequireRole(roles ...models.Role) echo.MiddlewareFunc {
	allowed := make(map[models.Role]bool, len(roles)+1)
	allowed[models.RoleAdmin] = true
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get(contextKeyRole).(models.Role)
			if !ok || !allowed[role] {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "Insufficient role"})
			}
			return next(c)
		}
	}
}

func extractToken(c echo.Context) string {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return parts[1]
	}
	return ""
}
