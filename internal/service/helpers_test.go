package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Skotchmaster/online_cafe/internal/mykafka"
	"github.com/Skotchmaster/online_cafe/internal/repo"
	"github.com/Skotchmaster/online_cafe/internal/testutil"
	"github.com/Skotchmaster/online_cafe/internal/verification"
)

type recordingNotifier struct {
	mu    sync.Mutex
	codes map[string]string
}

func (n *recordingNotifier) SendVerificationCode(_ context.Context, phone, code string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.codes == nil {
		n.codes = map[string]string{}
	}
	n.codes[phone] = code
	return nil
}

func (n *recordingNotifier) last(phone string) string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.codes[phone]
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []mykafka.Event
}

func (p *recordingPublisher) PublishEvent(_ context.Context, _, _ string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if ev, ok := event.(mykafka.Event); ok {
		p.events = append(p.events, ev)
	}
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testEnv struct {
	Repo     *repo.GormRepo
	Clock    *clock
	Notifier *recordingNotifier
	Events   *recordingPublisher
	Auth     *AuthService
	Tokens   *TokenService
	Cart     *CartService
	Orders   *OrderService
	Catalog  *CatalogService
	Admin    *AdminService
	Reports  *ReportService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	r := repo.New(testutil.InitTestDB(t))
	clk := &clock{now: time.Now().UTC().Truncate(time.Second)}
	notifier := &recordingNotifier{}
	events := &recordingPublisher{}

	tokenSvc := &TokenService{
		Repo:          r,
		JWTSecret:     []byte("test-jwt"),
		RefreshSecret: []byte("test-refresh"),
	}
	return &testEnv{
		Repo:     r,
		Clock:    clk,
		Notifier: notifier,
		Events:   events,
		Tokens:   tokenSvc,
		Auth: &AuthService{
			Repo:               r,
			Tokens:             tokenSvc,
			Codes:              verification.NewGormStore(r),
			Notifier:           notifier,
			Events:             events,
			RegistrationSecret: []byte("test-registration"),
			Policy:             DefaultVerificationPolicy(),
			Now:                clk.Now,
		},
		Cart:    &CartService{Repo: r},
		Orders:  &OrderService{Repo: r, Events: events, Now: clk.Now},
		Catalog: &CatalogService{Repo: r, Events: events},
		Admin:   &AdminService{Repo: r, Now: clk.Now},
		Reports: &ReportService{Repo: r, Now: clk.Now},
	}
}
