package token_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"expnote/internal/token"

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

// メモリ上の失効台帳
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
	if _, ok := m.set[jti]; !ok {
		m.set[jti] = revokedAt
	}
	return nil
}

func (m *memRevoked) IsRevoked(ctx context.Context, jti string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.set[jti]
	return ok, nil
}

func (m *memRevoked) DeleteRevokedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for jti, at := range m.set {
		if at.Before(cutoff) {
			delete(m.set, jti)
			n++
		}
	}
	return n, nil
}

func newTestService(secret string) (*token.Service, *fakeClock, *memRevoked) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	revoked := newMemRevoked()
	return token.NewService(secret, revoked, &seqIDGen{}, clock), clock, revoked
}

// =====================
// Issue / Verify
// =====================

func TestService_IssueAndVerifyAccess(t *testing.T) {
	ctx := context.Background()
	svc, clock, _ := newTestService("test-secret")

	raw, err := svc.IssueAccess(42)
	assert.NoError(t, err)
	assert.NotEmpty(t, raw)

	c, err := svc.Verify(ctx, raw, token.KindAccess)
	assert.NoError(t, err)
	assert.Equal(t, int64(42), c.UserID)
	assert.Equal(t, token.KindAccess, c.Kind)
	assert.NotEmpty(t, c.JTI)
	assert.Equal(t, clock.Now().Add(token.AccessTokenTTL).Unix(), c.ExpiresAt.Unix())
}

func TestService_JTIUniquePerIssue(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService("test-secret")

	raw1, err := svc.IssueAccess(1)
	assert.NoError(t, err)
	raw2, err := svc.IssueAccess(1)
	assert.NoError(t, err)

	c1, err := svc.Verify(ctx, raw1, token.KindAccess)
	assert.NoError(t, err)
	c2, err := svc.Verify(ctx, raw2, token.KindAccess)
	assert.NoError(t, err)

	assert.NotEqual(t, c1.JTI, c2.JTI)
}

func TestService_VerifyRejectsWrongKind(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService("test-secret")

	access, err := svc.IssueAccess(1)
	assert.NoError(t, err)
	refresh, err := svc.IssueRefresh(1)
	assert.NoError(t, err)

	//refreshはaccessの場所で使えない。逆も不可
	_, err = svc.Verify(ctx, refresh, token.KindAccess)
	assert.ErrorIs(t, err, token.ErrInvalidToken)

	_, err = svc.Verify(ctx, access, token.KindRefresh)
	assert.ErrorIs(t, err, token.ErrInvalidToken)
}

func TestService_VerifyRejectsTamperedAndGarbage(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService("test-secret")
	other, _, _ := newTestService("other-secret")

	//別のシークレットで署名されたtokenは拒否
	raw, err := other.IssueAccess(1)
	assert.NoError(t, err)
	_, err = svc.Verify(ctx, raw, token.KindAccess)
	assert.ErrorIs(t, err, token.ErrInvalidToken)

	//壊れた文字列も拒否
	_, err = svc.Verify(ctx, "not.a.token", token.KindAccess)
	assert.ErrorIs(t, err, token.ErrInvalidToken)

	_, err = svc.Verify(ctx, "", token.KindAccess)
	assert.ErrorIs(t, err, token.ErrInvalidToken)
}

func TestService_VerifyRejectsExpired(t *testing.T) {
	ctx := context.Background()
	svc, clock, _ := newTestService("test-secret")

	access, err := svc.IssueAccess(1)
	assert.NoError(t, err)
	refresh, err := svc.IssueRefresh(1)
	assert.NoError(t, err)

	//1時間を過ぎるとaccessは失効、refreshはまだ有効
	clock.Advance(token.AccessTokenTTL + time.Second)

	_, err = svc.Verify(ctx, access, token.KindAccess)
	assert.ErrorIs(t, err, token.ErrInvalidToken)

	_, err = svc.Verify(ctx, refresh, token.KindRefresh)
	assert.NoError(t, err)

	//30日を過ぎるとrefreshも失効
	clock.Advance(token.RefreshTokenTTL)

	_, err = svc.Verify(ctx, refresh, token.KindRefresh)
	assert.ErrorIs(t, err, token.ErrInvalidToken)
}

// =====================
// 失効台帳
// =====================

func TestService_VerifyRejectsRevoked(t *testing.T) {
	ctx := context.Background()
	svc, clock, revoked := newTestService("test-secret")

	raw, err := svc.IssueAccess(1)
	assert.NoError(t, err)

	c, err := svc.Verify(ctx, raw, token.KindAccess)
	assert.NoError(t, err)

	//失効させると自然失効前でも拒否される
	assert.NoError(t, revoked.Revoke(ctx, c.JTI, clock.Now()))

	_, err = svc.Verify(ctx, raw, token.KindAccess)
	assert.ErrorIs(t, err, token.ErrInvalidToken)

	//Inspectは台帳を見ないので通る（logout経路）
	c2, err := svc.Inspect(raw)
	assert.NoError(t, err)
	assert.Equal(t, c.JTI, c2.JTI)
}

func TestService_InspectAcceptsBothKinds(t *testing.T) {
	svc, _, _ := newTestService("test-secret")

	access, err := svc.IssueAccess(7)
	assert.NoError(t, err)
	refresh, err := svc.IssueRefresh(7)
	assert.NoError(t, err)

	ca, err := svc.Inspect(access)
	assert.NoError(t, err)
	assert.Equal(t, token.KindAccess, ca.Kind)

	cr, err := svc.Inspect(refresh)
	assert.NoError(t, err)
	assert.Equal(t, token.KindRefresh, cr.Kind)
}
