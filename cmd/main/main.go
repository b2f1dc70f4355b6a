package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"feed-monitor/src/app"
	"feed-monitor/src/config"
	"feed-monitor/src/logger"

	"github.com/joho/godotenv"
)

// -----------------------------------------------------------------------------

func main() {

	// Parse command line flags
	configPath := flag.String("config", "config/default.yaml", "path to config file")
	reportInterval := flag.Int("report-interval", 0, "report interval in seconds (overrides config)")
	writeConfig := flag.String("write-config", "", "write the effective config to this path and exit")
	flag.Parse()

	_ = godotenv.Load() // best-effort: .env is optional

	cfg, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *reportInterval > 0 {
		cfg.Aggregation.ReportIntervalSeconds = *reportInterval
	}

	if *writeConfig != "" {
		if err := cfg.Save(*writeConfig); err != nil {
			fmt.Printf("Error writing config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Config written to %s\n", *writeConfig)
		return
	}

	appLogger := logger.NewLogger(cfg.LogLevel, cfg.Name)
	appLogger.Info("Monitoring %s for %d symbols (window %ds, report every %ds)",
		cfg.Feed.URL, len(cfg.Feed.Symbols), cfg.Aggregation.WindowSeconds, cfg.Aggregation.ReportIntervalSeconds)

	services, cleanup := setup(cfg, appLogger)
	defer cleanup()

	runner := app.NewApp()
	for _, svc := range services {
		runner.WithService(svc)
	}

	err = runner.Run(context.Background())
	if !app.IsCleanShutdown(err) {
		appLogger.Error("Stopped with error: %v", err)
		cleanup()
		os.Exit(1)
	}
	appLogger.Info("Shutdown complete.")
}
