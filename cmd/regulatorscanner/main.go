package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"

	"RegulatorScanner/internal/app"
	"RegulatorScanner/internal/config"
	"RegulatorScanner/internal/logging"
	"RegulatorScanner/pkg/logger"
)

func main() {
	boot := logger.New("main")
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		boot.Printf("no .env loaded: %v", err)
	}

	ctx := context.Background()
	cfg := config.Load()
	log := logging.New(cfg.Logging.Level)

	application := app.New(cfg, log)

	if err := application.Run(ctx); err != nil {
		log.Error("run failed", "error", err)
		os.Exit(1)
	}
}
