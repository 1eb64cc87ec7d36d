package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/online_cafe/internal/logging"
	"github.com/Skotchmaster/online_cafe/internal/middleware/auth"
	"github.com/Skotchmaster/online_cafe/internal/middleware/csrf"
	"github.com/Skotchmaster/online_cafe/internal/service"
	"github.com/Skotchmaster/online_cafe/internal/transport"
)

type AuthHTTP struct {
	Svc     *service.AuthService
	Cookies auth.Cookies
}

// postForm describes a POST form, carrying the CSRF token when the middleware issued one.
func postForm(c echo.Context, action string, fields ...string) transport.FormDescriptor {
	token, _ := c.Get(csrf.ContextKey).(string)
	return transport.FormDescriptor{
		Action:    action,
		Method:    http.MethodPost,
		Fields:    fields,
		CSRFToken: token,
	}
}

func parseID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("id must be a positive integer")
	}
	return uint(id), nil
}

func currentUser(c echo.Context) (uint, error) {
	id, ok := auth.UserID(c)
	if !ok {
		return 0, echo.NewHTTPError(http.StatusUnauthorized, "login required")
	}
	return id, nil
}

func (h *AuthHTTP) RegisterForm(c echo.Context) error {
	return c.JSON(http.StatusOK, postForm(c, "/register", "phone"))
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.register")

	var req transport.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "register_error", "invalid body", err)
	}

	pending, err := h.Svc.Register(ctx, req.Phone)
	if err != nil {
		return fail(l, "register_error", err)
	}

	c.SetCookie(h.Cookies.Create(auth.PendingCookie, pending.Token, "/", pending.ExpiresAt))
	l.Info("verification_code_sent")
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "Verification code sent"})
}

func (h *AuthHTTP) Verify(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.verify")

	var req transport.VerifyRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "verify_error", "invalid body", err)
	}

	phone := req.Phone
	if ck, err := c.Cookie(auth.PendingCookie); err == nil && ck.Value != "" {
		if pending, err := h.Svc.PendingPhone(ck.Value); err == nil {
			phone = pending
		} else {
			l.Warn("verify_pending_cookie_invalid", "error", err)
		}
	}

	user, err := h.Svc.Verify(ctx, service.VerifyInput{
		Phone:     phone,
		Code:      req.Code,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
	})
	if err != nil {
		return fail(l, "verify_error", err)
	}

	c.SetCookie(h.Cookies.Delete(auth.PendingCookie, "/"))
	l.Info("registration_successful", "user_id", user.ID)
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "Registration successful"})
}

func (h *AuthHTTP) LoginForm(c echo.Context) error {
	return c.JSON(http.StatusOK, postForm(c, "/login", "phone", "password"))
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "login_error", "invalid body", err)
	}

	pair, err := h.Svc.Login(ctx, req.Phone, req.Password)
	if err != nil {
		return fail(l, "login_failed", err)
	}

	h.Cookies.SetTokens(c, pair)
	l.Info("login_successful", "user_id", pair.UserID)
	return c.JSON(http.StatusOK, transport.LoginResponse{Message: "Login successful", IsAdmin: pair.IsAdmin})
}

func (h *AuthHTTP) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.logout")

	if ck, err := c.Cookie(auth.RefreshCookie); err == nil && ck.Value != "" {
		if err := h.Svc.Logout(ctx, ck.Value); err != nil {
			l.Error("logout_error", "reason", "cannot revoke refresh token", "error", err)
		}
	}
	h.Cookies.ClearTokens(c)

	l.Info("logout_successful")
	return c.Redirect(http.StatusSeeOther, "/")
}

func (h *AuthHTTP) ChangePassword(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.change_password")

	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	var req transport.ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "change_password_error", "invalid body", err)
	}

	if err := h.Svc.ChangePassword(ctx, userID, req.CurrentPassword, req.NewPassword, req.ConfirmPassword); err != nil {
		return fail(l, "change_password_error", err)
	}

	l.Info("password_changed", "user_id", userID)
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "Password updated successfully"})
}
