package token

import (
	"context"
	"errors"
	"strconv"
	"time"

	"expnote/internal/repository"

	"github.com/golang-jwt/jwt/v4"
)

// tokenの種類。accessは保護APIに、refreshはaccess再発行にだけ使える。
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

const (
	//アクセストークンの有効期限
	AccessTokenTTL = time.Hour
	//リフレッシュトークンの有効期限
	RefreshTokenTTL = 30 * 24 * time.Hour
)

// 失敗理由は呼び出し側に区別させない（署名・期限・種類・失効すべて同じエラー）
var ErrInvalidToken = errors.New("invalid token")

// 現在の時間
type Clock interface {
	Now() time.Time
}

// jti等のIDを作る約束
type IDGenerator interface {
	NewID() string
}

// 検証済みtokenから取り出す値
type Claims struct {
	UserID    int64
	JTI       string
	Kind      Kind
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// HS256署名のaccess/refresh tokenを発行・検証する。
type Service struct {
	secret  []byte
	revoked repository.RevokedTokenRepository
	idGen   IDGenerator
	clock   Clock
	parser  *jwt.Parser
}

// DI
func NewService(secret string, revoked repository.RevokedTokenRepository, idGen IDGenerator, clock Clock) *Service {
	return &Service{
		secret:  []byte(secret),
		revoked: revoked,
		idGen:   idGen,
		clock:   clock,
		// 期限はclock基準で自前チェックするためparserの検証は切る
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{"HS256"}),
			jwt.WithoutClaimsValidation(),
		),
	}
}

// IssueAccess は1時間有効のaccess tokenを発行する。
func (s *Service) IssueAccess(userID int64) (string, error) {
	return s.issue(userID, KindAccess, AccessTokenTTL)
}

// IssueRefresh は30日有効のrefresh tokenを発行する。
func (s *Service) IssueRefresh(userID int64) (string, error) {
	return s.issue(userID, KindRefresh, RefreshTokenTTL)
}

func (s *Service) issue(userID int64, kind Kind, ttl time.Duration) (string, error) {
	now := s.clock.Now()

	claims := jwt.MapClaims{
		"sub":  strconv.FormatInt(userID, 10),
		"jti":  s.idGen.NewID(),
		"kind": string(kind),
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(s.secret)
}

// Verify は署名・期限・種類・失効台帳をすべて確認する。
// どこで失敗してもErrInvalidTokenのみを返す。
func (s *Service) Verify(ctx context.Context, raw string, expected Kind) (*Claims, error) {
	c, err := s.Inspect(raw)
	if err != nil {
		return nil, ErrInvalidToken
	}

	if c.Kind != expected {
		return nil, ErrInvalidToken
	}

	revoked, err := s.revoked.IsRevoked(ctx, c.JTI)
	if err != nil || revoked {
		return nil, ErrInvalidToken
	}

	return c, nil
}

// Inspect は署名と期限だけを確認する（失効台帳は見ない）。
// logoutは失効済みtokenでも構造的に正しければ受け付けるため。
func (s *Service) Inspect(raw string) (*Claims, error) {
	tok, err := s.parser.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil || tok == nil || !tok.Valid {
		return nil, ErrInvalidToken
	}

	mc, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	sub, ok := mc["sub"].(string)
	if !ok {
		return nil, ErrInvalidToken
	}
	userID, err := strconv.ParseInt(sub, 10, 64)
	if err != nil || userID <= 0 {
		return nil, ErrInvalidToken
	}

	jti, ok := mc["jti"].(string)
	if !ok || jti == "" {
		return nil, ErrInvalidToken
	}

	kind, ok := mc["kind"].(string)
	if !ok {
		return nil, ErrInvalidToken
	}

	iat, ok := mc["iat"].(float64)
	if !ok {
		return nil, ErrInvalidToken
	}

	exp, ok := mc["exp"].(float64)
	if !ok {
		return nil, ErrInvalidToken
	}

	//期限切れチェック（verify時に遅延評価。sweepはしない）
	if !s.clock.Now().Before(time.Unix(int64(exp), 0)) {
		return nil, ErrInvalidToken
	}

	return &Claims{
		UserID:    userID,
		JTI:       jti,
		Kind:      Kind(kind),
		IssuedAt:  time.Unix(int64(iat), 0),
		ExpiresAt: time.Unix(int64(exp), 0),
	}, nil
}
