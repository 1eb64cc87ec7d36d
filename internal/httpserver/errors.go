package httpserver

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/online_cafe/internal/service"
	"github.com/Skotchmaster/online_cafe/internal/transport"
)

var sentinels = []struct {
	err  error
	code int
}{
	{service.ErrValidation, http.StatusBadRequest},
	{service.ErrUnauthorized, http.StatusUnauthorized},
	{service.ErrForbidden, http.StatusForbidden},
	{service.ErrNotFound, http.StatusNotFound},
	{service.ErrRateLimited, http.StatusTooManyRequests},
}

// statusAndMessage maps a service error to an HTTP status and the text shown to the client.
// Service errors read "<message>: <sentinel>", so the sentinel suffix is dropped.
func statusAndMessage(err error) (int, string) {
	for _, s := range sentinels {
		if errors.Is(err, s.err) {
			return s.code, strings.TrimSuffix(err.Error(), ": "+s.err.Error())
		}
	}
	return http.StatusInternalServerError, "internal error"
}

// fail logs err at a level matching its status and turns it into an echo.HTTPError.
func fail(l *slog.Logger, event string, err error) error {
	code, msg := statusAndMessage(err)
	if code >= http.StatusInternalServerError {
		l.Error(event, "status", code, "error", err)
	} else {
		l.Warn(event, "status", code, "reason", msg, "error", err)
	}
	return echo.NewHTTPError(code, msg)
}

func badRequest(l *slog.Logger, event, reason string, err error) error {
	l.Warn(event, "status", http.StatusBadRequest, "reason", reason, "error", err)
	return echo.NewHTTPError(http.StatusBadRequest, reason)
}

// ErrorHandler renders every error as {"error": "..."}.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	msg := "internal error"
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		switch m := he.Message.(type) {
		case string:
			msg = m
		case error:
			msg = m.Error()
		default:
			msg = fmt.Sprint(m)
		}
	}

	var werr error
	if c.Request().Method == http.MethodHead {
		werr = c.NoContent(code)
	} else {
		werr = c.JSON(code, transport.ErrorResponse{Error: msg})
	}
	if werr != nil {
		c.Logger().Error(werr)
	}
}
