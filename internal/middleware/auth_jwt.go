package middleware

import (
	"context"
	"net/http"
	"strings"

	"expnote/internal/token"

	"github.com/labstack/echo/v4"
)

const (
	CtxUserIDKey   = "user_id"   // int64
	CtxTokenJTIKey = "token_jti" // string
)

// tokenを検証する約束（実体はtoken.Service）
type TokenVerifier interface {
	Verify(ctx context.Context, raw string, expected token.Kind) (*token.Claims, error)
	Inspect(raw string) (*token.Claims, error)
}

// bearerAuth用のJWT検証ミドルウェア。access token必須。
func RequireAccess(tokens TokenVerifier) echo.MiddlewareFunc {
	return requireKind(tokens, token.KindAccess)
}

// refresh token必須（/auth/refresh用）。
func RequireRefresh(tokens TokenVerifier) echo.MiddlewareFunc {
	return requireKind(tokens, token.KindRefresh)
}

func requireKind(tokens TokenVerifier, kind token.Kind) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearerToken(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			//署名・期限・種類・失効台帳をまとめて検証
			claims, err := tokens.Verify(c.Request().Context(), raw, kind)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			//contextへ保存
			c.Set(CtxUserIDKey, claims.UserID)
			c.Set(CtxTokenJTIKey, claims.JTI)

			return next(c)
		}
	}
}

// logout用。種類は問わず、失効台帳も見ない。
// 署名と期限が正しければ、失効済みtokenでのlogoutも成功させる（冪等）。
func RequireAnyToken(tokens TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearerToken(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			claims, err := tokens.Inspect(raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			c.Set(CtxUserIDKey, claims.UserID)
			c.Set(CtxTokenJTIKey, claims.JTI)

			return next(c)
		}
	}
}

// AuthorizationヘッダからBearer tokenを抜く
func bearerToken(c echo.Context) (string, bool) {
	authz := c.Request().Header.Get("Authorization")
	if authz == "" {
		return "", false
	}

	parts := strings.SplitN(authz, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}

	raw := strings.TrimSpace(parts[1])
	if raw == "" {
		return "", false
	}

	return raw, true
}

type errorResponse struct {
	Error string `json:"error"`
}

func errorJSON(msg string) errorResponse {
	return errorResponse{Error: msg}
}
