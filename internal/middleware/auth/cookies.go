package auth

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/online_cafe/internal/service"
)

const (
	AccessCookie  = "accessToken"
	RefreshCookie = "refreshToken"
	PendingCookie = "pendingRegistration"
)

// Cookies builds the HttpOnly cookies the site uses. Secure is off only for local plain-HTTP runs.
type Cookies struct {
	Secure bool
}

func (k Cookies) Create(name, value, path string, expTime time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		Expires:  expTime,
		HttpOnly: true,
		Secure:   k.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (k Cookies) Delete(name, path string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     path,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   k.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (k Cookies) SetTokens(c echo.Context, pair *service.TokenPair) {
	c.SetCookie(k.Create(AccessCookie, pair.AccessToken, "/", pair.AccessExp))
	c.SetCookie(k.Create(RefreshCookie, pair.RefreshToken, "/", pair.RefreshExp))
}

func (k Cookies) ClearTokens(c echo.Context) {
	c.SetCookie(k.Delete(AccessCookie, "/"))
	c.SetCookie(k.Delete(RefreshCookie, "/"))
}
