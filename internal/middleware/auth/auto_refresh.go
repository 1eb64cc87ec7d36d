package auth

import (
	"errors"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/online_cafe/internal/logging"
	"github.com/Skotchmaster/online_cafe/internal/service"
	"github.com/Skotchmaster/online_cafe/internal/tokens"
)

const (
	ctxUserID = "user_id"
	ctxRole   = "role"
)

type AutoRefreshMiddleware struct {
	Tokens  *service.TokenService
	Auth    *service.AuthService
	Cookies Cookies
}

func NewAutoRefreshMiddleware(tokenSvc *service.TokenService, authSvc *service.AuthService, cookies Cookies) *AutoRefreshMiddleware {
	return &AutoRefreshMiddleware{Tokens: tokenSvc, Auth: authSvc, Cookies: cookies}
}

type ValidatorFunc func(c echo.Context, claims *tokens.AccessClaims) error

func (m *AutoRefreshMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return m.requireAuthWithValidator(next, nil)
}

// RequireAdmin checks the is_admin column on every request, so a demoted user loses access
// even while holding an access token minted with the admin role.
func (m *AutoRefreshMiddleware) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return m.requireAuthWithValidator(next, func(c echo.Context, claims *tokens.AccessClaims) error {
		userID, err := claims.UserID()
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid access token")
		}
		isAdmin, err := m.Auth.IsAdmin(c.Request().Context(), userID)
		if err != nil {
			if errors.Is(err, service.ErrUnauthorized) {
				return echo.NewHTTPError(http.StatusUnauthorized, "unknown user")
			}
			return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
		}
		if !isAdmin {
			return echo.NewHTTPError(http.StatusForbidden, "Admin access required")
		}
		return nil
	})
}

func (m *AutoRefreshMiddleware) requireAuthWithValidator(next echo.HandlerFunc, validator ValidatorFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		l := logging.FromContext(c.Request().Context()).With("middleware", "auth")

		if accessCookie, err := c.Cookie(AccessCookie); err == nil && accessCookie.Value != "" {
			claims, err := m.Tokens.ParseAccess(accessCookie.Value)
			if err == nil {
				return m.admit(c, next, validator, claims)
			}
			if !errors.Is(err, jwt.ErrTokenExpired) {
				m.Cookies.ClearTokens(c)
				l.Warn("auth_error", "status", 401, "reason", "invalid access token", "error", err)
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid access token")
			}
		}

		refreshCookie, err := c.Cookie(RefreshCookie)
		if err != nil || refreshCookie.Value == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "login required")
		}

		pair, err := m.Tokens.RotateToken(c.Request().Context(), refreshCookie.Value)
		if err != nil {
			m.Cookies.ClearTokens(c)
			if errors.Is(err, service.ErrUnauthorized) {
				l.Warn("auth_refresh_error", "status", 401, "reason", "refresh rejected", "error", err)
				return echo.NewHTTPError(http.StatusUnauthorized, "session expired")
			}
			l.Error("auth_refresh_error", "status", 500, "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
		}
		m.Cookies.SetTokens(c, pair)

		claims, err := m.Tokens.ParseAccess(pair.AccessToken)
		if err != nil {
			m.Cookies.ClearTokens(c)
			return echo.NewHTTPError(http.StatusUnauthorized, "new access token invalid")
		}
		l.Info("auth_token_refreshed", "user_id", pair.UserID)
		return m.admit(c, next, validator, claims)
	}
}

func (m *AutoRefreshMiddleware) admit(c echo.Context, next echo.HandlerFunc, validator ValidatorFunc, claims *tokens.AccessClaims) error {
	userID, err := claims.UserID()
	if err != nil {
		m.Cookies.ClearTokens(c)
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid access token")
	}
	if validator != nil {
		if err := validator(c, claims); err != nil {
			return err
		}
	}
	SetUser(c, userID, claims.Role)
	return next(c)
}

// SetUser records the authenticated user on the request context.
func SetUser(c echo.Context, userID uint, role string) {
	c.Set(ctxUserID, userID)
	c.Set(ctxRole, role)
}

// UserID returns the authenticated user set by RequireAuth or RequireAdmin.
func UserID(c echo.Context) (uint, bool) {
	id, ok := c.Get(ctxUserID).(uint)
	return id, ok && id != 0
}
