// Package app wires configuration, storage, services and the HTTP router into a runnable server.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/online_cafe/internal/config"
	"github.com/Skotchmaster/online_cafe/internal/db"
	"github.com/Skotchmaster/online_cafe/internal/httpserver"
	"github.com/Skotchmaster/online_cafe/internal/middleware/auth"
	"github.com/Skotchmaster/online_cafe/internal/middleware/csrf"
	"github.com/Skotchmaster/online_cafe/internal/mykafka"
	"github.com/Skotchmaster/online_cafe/internal/repo"
	"github.com/Skotchmaster/online_cafe/internal/service"
	"github.com/Skotchmaster/online_cafe/internal/verification"
)

type eventSink interface {
	service.Publisher
	Close() error
}

type App struct {
	Echo   *echo.Echo
	DB     *gorm.DB
	Logger *slog.Logger

	closers []func() error
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	a := &App{Logger: logger}

	gdb, err := db.OpenAndMigrate(ctx, cfg.DatabaseURL, db.Options{Debug: strings.EqualFold(cfg.LogLevel, "debug")})
	if err != nil {
		return nil, err
	}
	a.DB = gdb
	a.closers = append(a.closers, func() error { return db.Close(gdb) })

	var events eventSink = mykafka.NopProducer{}
	if len(cfg.KafkaBrokers) > 0 {
		prod, err := mykafka.NewProducer(cfg.KafkaBrokers)
		if err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("kafka producer: %w", err)
		}
		events = prod
		logger.Info("kafka_enabled", "brokers", cfg.KafkaBrokers)
	}
	a.closers = append(a.closers, events.Close)

	r := repo.New(gdb)

	var codes verification.Store = verification.NewGormStore(r)
	if cfg.RedisURL != "" {
		rs, err := verification.NewRedisStore(ctx, cfg.RedisURL)
		if err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("redis verification store: %w", err)
		}
		codes = rs
		a.closers = append(a.closers, rs.Close)
		logger.Info("redis_verification_store_enabled")
	}

	tokenSvc := &service.TokenService{
		Repo:          r,
		JWTSecret:     cfg.JWTAccessSecret,
		RefreshSecret: cfg.JWTRefreshSecret,
	}
	authSvc := &service.AuthService{
		Repo:               r,
		Tokens:             tokenSvc,
		Codes:              codes,
		Notifier:           service.LogNotifier{Events: events},
		Events:             events,
		RegistrationSecret: cfg.RegistrationSecret,
		Policy: service.VerificationPolicy{
			CodeTTL:        cfg.VerificationCodeTTL,
			MaxAttempts:    cfg.VerificationMaxAttempts,
			ResendInterval: cfg.VerificationResendInterval,
		},
	}
	cartSvc := &service.CartService{Repo: r}
	cookies := auth.Cookies{Secure: cfg.CookieSecure}

	deps := &httpserver.Deps{
		DB:      gdb,
		Logger:  logger,
		Auth:    &httpserver.AuthHTTP{Svc: authSvc, Cookies: cookies},
		Catalog: &httpserver.CatalogHTTP{Svc: &service.CatalogService{Repo: r, Events: events}},
		Cart:    &httpserver.CartHTTP{Svc: cartSvc},
		Orders:  &httpserver.OrderHTTP{Orders: &service.OrderService{Repo: r, Events: events}, Cart: cartSvc},
		Admin:   &httpserver.AdminHTTP{Svc: &service.AdminService{Repo: r}},
		Reports: &httpserver.ReportHTTP{Svc: &service.ReportService{Repo: r}},
		AuthMW:  auth.NewAutoRefreshMiddleware(tokenSvc, authSvc, cookies),
	}
	if cfg.CSRFEnabled {
		cc := csrf.DefaultConfig()
		cc.Secure = cfg.CookieSecure
		cc.SkipPaths = httpserver.CSRFSkipPaths
		deps.CSRF = &cc
	}

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second
	e.Server.IdleTimeout = 60 * time.Second
	httpserver.Register(e, deps)
	a.Echo = e

	return a, nil
}

// Close releases everything New opened, newest first.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
