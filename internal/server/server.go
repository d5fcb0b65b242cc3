package server

import (
	"expnote/internal/config"
	"expnote/internal/handler"
	"expnote/internal/middleware"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

// New はechoサーバーを組み立てて返す。起動はmain側で行う。
func New(
	cfg config.Config,
	authH *handler.AuthHandler,
	userH *handler.UserHandler,
	tokens middleware.TokenVerifier,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	//開発中だけechoのデバッグ応答（エラー詳細入り）を有効にする
	e.Debug = cfg.GoEnv == "development"

	e.Use(echomw.Logger())
	e.Use(echomw.Recover())

	//CORSはフロントのoriginだけ許可
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     []string{cfg.FrontendURL},
		AllowCredentials: true,
	}))

	RegisterRoutes(e, authH, userH, tokens)
	return e
}
