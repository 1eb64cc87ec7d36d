package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/online_cafe/internal/logging"
	"github.com/Skotchmaster/online_cafe/internal/middleware/auth"
	"github.com/Skotchmaster/online_cafe/internal/repo"
	"github.com/Skotchmaster/online_cafe/internal/service"
	"github.com/Skotchmaster/online_cafe/internal/testutil"
	"github.com/Skotchmaster/online_cafe/internal/verification"
)

type codeRecorder struct {
	mu    sync.Mutex
	codes map[string]string
}

func (r *codeRecorder) SendVerificationCode(_ context.Context, phone, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.codes == nil {
		r.codes = map[string]string{}
	}
	r.codes[phone] = code
	return nil
}

func (r *codeRecorder) code(phone string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.codes[phone]
}

type testServer struct {
	repo  *repo.GormRepo
	codes *codeRecorder
	deps  *Deps
	e     *echo.Echo
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	gdb := testutil.InitTestDB(t)
	r := repo.New(gdb)
	codes := &codeRecorder{}

	tokenSvc := &service.TokenService{Repo: r, JWTSecret: []byte("jwt"), RefreshSecret: []byte("refresh")}
	authSvc := &service.AuthService{
		Repo:               r,
		Tokens:             tokenSvc,
		Codes:              verification.NewGormStore(r),
		Notifier:           codes,
		RegistrationSecret: []byte("registration"),
		Policy:             service.DefaultVerificationPolicy(),
	}
	cartSvc := &service.CartService{Repo: r}
	cookies := auth.Cookies{}

	deps := &Deps{
		DB:      gdb,
		Logger:  logging.Discard(),
		Auth:    &AuthHTTP{Svc: authSvc, Cookies: cookies},
		Catalog: &CatalogHTTP{Svc: &service.CatalogService{Repo: r}},
		Cart:    &CartHTTP{Svc: cartSvc},
		Orders:  &OrderHTTP{Orders: &service.OrderService{Repo: r}, Cart: cartSvc},
		Admin:   &AdminHTTP{Svc: &service.AdminService{Repo: r}},
		Reports: &ReportHTTP{Svc: &service.ReportService{Repo: r}},
		AuthMW:  auth.NewAutoRefreshMiddleware(tokenSvc, authSvc, cookies),
	}

	e := echo.New()
	Register(e, deps)
	return &testServer{repo: r, codes: codes, deps: deps, e: e}
}

func formRequest(method, target string, form url.Values) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	return req
}

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(method, target, bytes.NewReader(b))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

// asUser builds a handler context already authenticated as userID.
func (s *testServer) asUser(req *http.Request, userID uint) (echo.Context, *httptest.ResponseRecorder) {
	rec := httptest.NewRecorder()
	c := s.e.NewContext(req, rec)
	auth.SetUser(c, userID, "user")
	return c, rec
}

func httpError(t *testing.T, err error) (int, string) {
	t.Helper()
	var he *echo.HTTPError
	require.True(t, errors.As(err, &he), "expected echo.HTTPError, got %v", err)
	msg, _ := he.Message.(string)
	return he.Code, msg
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func cookieFrom(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == name {
			return ck
		}
	}
	return nil
}
