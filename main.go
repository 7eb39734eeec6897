package main

import (
	"context"
	"net/http"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"quick-quote/app"
	"quick-quote/config"
	"quick-quote/logger"
)

func main() {
	// Load .env file in development (ignores error if file doesn't exist)
	// In production, variables should be set directly
	if os.Getenv("ENVIRONMENT") != config.EnvProduction {
		if err := godotenv.Overload(".env"); err != nil {
			logger.GetLogger().Infow("No .env file found, using system environment variables")
		} else {
			logger.GetLogger().Infow("Loaded environment variables from .env")
		}
	}
	defer logger.Close()
	log := logger.GetLogger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalw("❌ Invalid configuration", "error", err)
	}

	handler, cleanup, err := app.Initialize(context.Background(), cfg)
	if err != nil {
		log.Fatalw("❌ Failed to initialize application", "error", err)
	}
	defer cleanup()

	// Listen on 0.0.0.0 to accept connections from all interfaces (required for Docker/Render)
	addr := "0.0.0.0:" + strings.TrimPrefix(cfg.Port, ":")
	log.Infow("🚀 Server starting", "addr", addr)
	log.Infow("Quote endpoint: POST http://localhost:" + strings.TrimPrefix(cfg.Port, ":") + "/api/quotes/compute")

	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Errorw("❌ Server failed", "error", err)
	}
}
