package server

import (
	"net/http"

	"app/internal/config"
	"app/internal/handler"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
)

// New はルーティングと共通ミドルウェアを組んだechoを返す。
func New(
	cfg config.Config,
	log zerolog.Logger,
	productH *handler.ProductHandler,
	cartH *handler.CartHandler,
	checkoutH *handler.CheckoutHandler,
	orderH *handler.OrderHandler,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     []string{cfg.FEURL},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete},
		AllowCredentials: true,
	}))

	//リクエストログ（zerolog）
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod: true,
		LogURI:    true,
		LogStatus: true,
		LogError:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil || v.Status >= http.StatusInternalServerError {
				ev = log.Error().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Msg("request")
			return nil
		},
	}))

	productH.RegisterRoutes(e)
	cartH.RegisterRoutes(e, cfg)
	checkoutH.RegisterRoutes(e, cfg)
	orderH.RegisterRoutes(e)

	return e
}

// Start はサーバーを起動する。
func Start(addr string, e *echo.Echo) error {
	return e.Start(addr)
}
