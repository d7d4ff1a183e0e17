// ====================================
// File: cmd/launchpoold/main.go
// ====================================
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/tokenlaunch/launchpool/internal/config"
	"github.com/tokenlaunch/launchpool/internal/engine"
	"github.com/tokenlaunch/launchpool/internal/logger"
	"github.com/tokenlaunch/launchpool/internal/storage"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logCfg := logger.DefaultConfig()
	logCfg.LogFile = cfg.LogFile
	logCfg.Development = cfg.DebugLogging
	log, err := logger.New(logCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	log.Info("Starting launchpool engine")

	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		log.Fatal("Failed to open state store", zap.Error(err))
	}

	eng, err := engine.New(cfg, log, store)
	if err != nil {
		log.Fatal("Failed to build engine", zap.Error(err))
	}

	if err := eng.Run(context.Background()); err != nil {
		log.Fatal("Engine exited with error", zap.Error(err))
	}
}
