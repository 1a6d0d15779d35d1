package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/KevinKickass/OpenSenseCore/internal/config"
	"github.com/KevinKickass/OpenSenseCore/internal/devices"
	"github.com/KevinKickass/OpenSenseCore/internal/storage"
	"github.com/KevinKickass/OpenSenseCore/internal/system"
	"go.uber.org/zap"
)

func main() {
	// Logger initialisieren
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	// Config laden
	configPath := "configs/config.yaml"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	logger.Info("Config loaded successfully")

	if err := os.MkdirAll(cfg.Group.DataRoot, 0o755); err != nil {
		logger.Fatal("Failed to create data root", zap.Error(err))
	}

	// Gruppe aus der Definition bauen
	manager, err := devices.NewManager(cfg.Devices.SearchPaths, logger)
	if err != nil {
		logger.Fatal("Failed to create device manager", zap.Error(err))
	}
	grp, err := manager.BuildGroup(cfg.Group.Definition, cfg.Group.PollInterval, cfg.Group.DataRoot)
	if err != nil {
		logger.Fatal("Failed to build device group", zap.Error(err))
	}
	grp.SetLogPrefix(cfg.Group.LogPrefix)

	logger.Info("Device group built successfully",
		zap.String("group", grp.Name()),
		zap.Int("inputs", len(grp.Inputs())),
		zap.Int("outputs", len(grp.Outputs())))

	// Archiv verbinden
	var archive *storage.Archive
	if cfg.Archive.Enabled {
		archive, err = storage.NewArchive(cfg.Archive.Path, logger)
		if err != nil {
			logger.Fatal("Failed to open archive", zap.Error(err))
		}
		logger.Info("Archive opened successfully", zap.String("path", cfg.Archive.Path))
	}

	runner := system.NewRunner(cfg, grp, archive, logger)

	// System starten
	if err := runner.Start(); err != nil {
		logger.Fatal("Failed to start system", zap.Error(err))
	}

	logger.Info("OpenSenseCore started successfully")

	// Graceful Shutdown auf Signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	<-sigChan
	logger.Info("Shutdown signal received")

	ctx := context.Background()
	if err := runner.Shutdown(ctx); err != nil {
		logger.Error("Shutdown failed", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("OpenSenseCore stopped successfully")
}
