package main

import (
	"context"
	"flag"
	"log"
	"os"

	"StockSense/internal/di"
	"StockSense/pkg/config"
	applogger "StockSense/pkg/logger"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "config file path")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	app, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}

	app.Logger().Info("starting",
		applogger.String("env", cfg.Environment),
		applogger.String("llm", cfg.LLM.Provider),
		applogger.String("price_feed", cfg.PriceFeed.Source),
		applogger.Bool("redis", cfg.Redis.Enabled),
		applogger.Bool("kafka", cfg.Kafka.Enabled),
	)

	// Blocks until SIGINT/SIGTERM.
	if err := app.Run(context.Background()); err != nil {
		app.Logger().Error("app error", applogger.Error(err))
		os.Exit(1)
	}
}
