package main

import (
	"log"

	"github.com/kavro/tidepool/internal/router"
	"github.com/kavro/tidepool/pkg/config"
	"github.com/kavro/tidepool/pkg/logger"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	zl, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer zl.Sync()

	db, err := config.InitDB(cfg)
	if err != nil {
		zl.Fatal("failed to initialize databases", zap.Error(err))
	}
	defer db.CloseDB()

	e := echo.New()
	e.HideBanner = true

	router.SetupMiddleware(e, zl)
	if err := router.SetupRoutes(e, db, cfg, zl); err != nil {
		zl.Fatal("failed to set up routes", zap.Error(err))
	}

	zl.Info("starting server", zap.String("port", cfg.Port))
	if err := e.Start(":" + cfg.Port); err != nil {
		zl.Fatal("server stopped", zap.Error(err))
	}
}
