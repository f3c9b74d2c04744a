// main.go
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"evcharge-client/cmd"
	"evcharge-client/internal/data/entity"
	"evcharge-client/internal/data/repository"
	"evcharge-client/internal/wire"
	"evcharge-client/pkg/database"
	"evcharge-client/pkg/telemetry"
	"evcharge-client/pkg/utils"

	"go.uber.org/zap"
)

func main() {
	os.Exit(realMain())
}

func realMain() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load config
	config, err := utils.LoadConfig(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		return 1
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App.LogPath, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	entity.SetLogger(logger)

	shutdown := telemetry.Setup(config.App.Name, config.Telemetry, logger)
	defer shutdown(context.Background())

	logger.Debug("Starting application",
		zap.String("app", config.App.Name),
		zap.String("api", config.API.BaseURL),
		zap.Bool("debug", config.App.Debug),
	)

	// Open the local cache
	db, err := database.InitDB(config.Cache, logger, repository.Models()...)
	if err != nil {
		logger.Error("Failed to open local cache", zap.Error(err))
		return 1
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	// Wire all dependencies
	app, err := wire.Wiring(ctx, config, db, logger)
	if err != nil {
		logger.Error("Failed to wire application", zap.Error(err))
		return 1
	}

	return cmd.Execute(ctx, app, os.Args[1:], os.Stdout, os.Stderr)
}
