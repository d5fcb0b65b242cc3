package handler

import (
	"net/http"

	"expnote/internal/middleware"
	"expnote/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /user のAPI
type UserHandler struct {
	uc *usecase.AuthUsecase
}

// DI
func NewUserHandler(uc *usecase.AuthUsecase) *UserHandler {
	return &UserHandler{uc: uc}
}

func (h *UserHandler) RegisterRoutes(e *echo.Echo, tokens middleware.TokenVerifier) {
	g := e.Group("/user")
	g.GET("/profile", h.profile, middleware.RequireAccess(tokens))
}

// ログイン中ユーザーの情報
func (h *UserHandler) profile(c echo.Context) error {
	userID, ok := c.Get(middleware.CtxUserIDKey).(int64)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.Profile(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}
