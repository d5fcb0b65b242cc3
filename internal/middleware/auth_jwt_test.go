package middleware_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"expnote/internal/middleware"
	"expnote/internal/token"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

// =====================
// テスト用の部品
// =====================

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type seqIDGen struct {
	n int
}

func (g *seqIDGen) NewID() string {
	g.n++
	return fmt.Sprintf("jti-%d", g.n)
}

type memRevoked struct {
	mu  sync.Mutex
	set map[string]time.Time
}

func newMemRevoked() *memRevoked {
	return &memRevoked{set: map[string]time.Time{}}
}

func (m *memRevoked) Revoke(ctx context.Context, jti string, revokedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.set[jti] = revokedAt
	return nil
}

func (m *memRevoked) IsRevoked(ctx context.Context, jti string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.set[jti]
	return ok, nil
}

func (m *memRevoked) DeleteRevokedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

func newTestService() (*token.Service, *fakeClock, *memRevoked) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	revoked := newMemRevoked()
	return token.NewService("test-secret", revoked, &seqIDGen{}, clock), clock, revoked
}

// ミドルウェア通過後にcontextの値を返すだけのhandler
func echoClaims(c echo.Context) error {
	userID, _ := c.Get(middleware.CtxUserIDKey).(int64)
	jti, _ := c.Get(middleware.CtxTokenJTIKey).(string)
	return c.JSON(http.StatusOK, map[string]any{"user_id": userID, "jti": jti})
}

func doRequest(mw echo.MiddlewareFunc, authz string) *httptest.ResponseRecorder {
	e := echo.New()
	e.GET("/protected", echoClaims, mw)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

// =====================
// RequireAccess / RequireRefresh
// =====================

func TestRequireAccess_MissingOrMalformedHeader(t *testing.T) {
	svc, _, _ := newTestService()
	mw := middleware.RequireAccess(svc)

	tests := []struct {
		name  string
		authz string
	}{
		{"no header", ""},
		{"wrong scheme", "Token abcdef"},
		{"no token", "Bearer "},
		{"garbage token", "Bearer not.a.token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(mw, tt.authz)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.JSONEq(t, `{"error":"unauthorized"}`, rec.Body.String())
		})
	}
}

func TestRequireAccess_ValidToken(t *testing.T) {
	svc, _, _ := newTestService()

	raw, err := svc.IssueAccess(42)
	assert.NoError(t, err)

	rec := doRequest(middleware.RequireAccess(svc), "Bearer "+raw)
	assert.Equal(t, http.StatusOK, rec.Code)
	//contextに入れたuser_idとjtiがhandlerへ届く
	assert.JSONEq(t, `{"user_id":42,"jti":"jti-1"}`, rec.Body.String())
}

func TestRequireAccess_RejectsRefreshToken(t *testing.T) {
	svc, _, _ := newTestService()

	refresh, err := svc.IssueRefresh(1)
	assert.NoError(t, err)

	//refresh tokenでは保護エンドポイントに入れない
	rec := doRequest(middleware.RequireAccess(svc), "Bearer "+refresh)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRefresh_RejectsAccessToken(t *testing.T) {
	svc, _, _ := newTestService()

	access, err := svc.IssueAccess(1)
	assert.NoError(t, err)
	refresh, err := svc.IssueRefresh(1)
	assert.NoError(t, err)

	rec := doRequest(middleware.RequireRefresh(svc), "Bearer "+access)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doRequest(middleware.RequireRefresh(svc), "Bearer "+refresh)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAccess_RejectsExpiredToken(t *testing.T) {
	svc, clock, _ := newTestService()

	raw, err := svc.IssueAccess(1)
	assert.NoError(t, err)

	clock.Advance(token.AccessTokenTTL + time.Second)

	rec := doRequest(middleware.RequireAccess(svc), "Bearer "+raw)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// =====================
// RequireAnyToken（logout経路）
// =====================

// 失効済みtokenは保護エンドポイントでは401だが、logout経路は通る（冪等なlogoutのため）。
func TestRequireAnyToken_AcceptsRevokedToken(t *testing.T) {
	ctx := context.Background()
	svc, clock, revoked := newTestService()

	raw, err := svc.IssueAccess(1)
	assert.NoError(t, err)

	c, err := svc.Inspect(raw)
	assert.NoError(t, err)
	assert.NoError(t, revoked.Revoke(ctx, c.JTI, clock.Now()))

	rec := doRequest(middleware.RequireAccess(svc), "Bearer "+raw)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doRequest(middleware.RequireAnyToken(svc), "Bearer "+raw)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAnyToken_AcceptsBothKinds(t *testing.T) {
	svc, _, _ := newTestService()

	access, err := svc.IssueAccess(1)
	assert.NoError(t, err)
	refresh, err := svc.IssueRefresh(1)
	assert.NoError(t, err)

	rec := doRequest(middleware.RequireAnyToken(svc), "Bearer "+access)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(middleware.RequireAnyToken(svc), "Bearer "+refresh)
	assert.Equal(t, http.StatusOK, rec.Code)
}

// 期限切れは種類を問わずlogout経路でも拒否
func TestRequireAnyToken_RejectsExpiredAndGarbage(t *testing.T) {
	svc, clock, _ := newTestService()

	raw, err := svc.IssueAccess(1)
	assert.NoError(t, err)

	clock.Advance(token.AccessTokenTTL + time.Second)

	rec := doRequest(middleware.RequireAnyToken(svc), "Bearer "+raw)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doRequest(middleware.RequireAnyToken(svc), "Bearer not.a.token")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
