package server

import (
	"expnote/internal/handler"
	"expnote/internal/middleware"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(
	e *echo.Echo,
	authH *handler.AuthHandler,
	userH *handler.UserHandler,
	tokens middleware.TokenVerifier,
) {
	authH.RegisterRoutes(e, tokens)
	userH.RegisterRoutes(e, tokens)
}
