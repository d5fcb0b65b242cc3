package token

import (
	"crypto/sha256"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// パスワード再設定専用の用途スコープ
const resetPurpose = "password_reset"

// ログイン用tokenと鍵を分けるためのsalt。
// これによりaccess/refresh tokenを再設定tokenとして流用できない（逆も不可）。
const resetSalt = "password-reset-salt"

// 再設定tokenの最大有効期間
const ResetTokenMaxAge = time.Hour

// emailを埋め込んだ署名付き再設定tokenを発行・検証する。
type ResetCodec struct {
	secret []byte
	maxAge time.Duration
	clock  Clock
}

// DI。署名鍵はJWT secretにsaltを混ぜて導出する。
func NewResetCodec(secret string, clock Clock) *ResetCodec {
	sum := sha256.Sum256([]byte(resetSalt + ":" + secret))
	return &ResetCodec{
		secret: sum[:],
		maxAge: ResetTokenMaxAge,
		clock:  clock,
	}
}

// Create はemailとiatを署名して返す。
func (c *ResetCodec) Create(email string) (string, error) {
	now := c.clock.Now()

	claims := jwt.MapClaims{
		"email":   email,
		"purpose": resetPurpose,
		"iat":     now.Unix(),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(c.secret)
}

// Verify は再設定tokenを検証してemailを返す。
// 署名不正・用途違い・期限超過のどれでも (「」, false)。理由は区別させない。
func (c *ResetCodec) Verify(raw string) (string, bool) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithoutClaimsValidation(),
	)

	tok, err := parser.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	})
	if err != nil || tok == nil || !tok.Valid {
		return "", false
	}

	mc, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return "", false
	}

	if purpose, ok := mc["purpose"].(string); !ok || purpose != resetPurpose {
		return "", false
	}

	iat, ok := mc["iat"].(float64)
	if !ok {
		return "", false
	}

	//max_age超過チェック
	if c.clock.Now().Sub(time.Unix(int64(iat), 0)) > c.maxAge {
		return "", false
	}

	email, ok := mc["email"].(string)
	if !ok || email == "" {
		return "", false
	}

	return email, true
}
