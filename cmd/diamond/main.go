package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"refraction/internal/logger"
	"refraction/internal/util"
	"refraction/pkg/assets"
	"refraction/pkg/config"
	"refraction/pkg/engine"
)

func init() {
	// GLFW requires the program to be running on the main thread
	runtime.LockOSThread()
}

func main() {
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	logLevel := flag.String("log-level", "", "Override the configured log level")
	assetDir := flag.String("assets", "", "Override the configured asset directory")
	flag.Parse()

	cfg := config.DefaultConfig()
	var cfgErr error
	if util.FileExists(*configPath) {
		cfg, cfgErr = config.LoadConfig(*configPath)
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	if *assetDir != "" {
		cfg.Assets.Dir = *assetDir
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to open log: %v", err)
	}
	defer logger.Close()

	if cfgErr != nil {
		logger.Fatalf("Failed to load configuration: %v", cfgErr)
	}
	logger.Info("Starting diamond viewer...")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		var loadErr *assets.AssetLoadError
		var invalidErr *assets.InvalidAssetError
		switch {
		case errors.As(err, &loadErr):
			logger.Errorf("Could not load %s: %v", loadErr.URL, loadErr.Cause)
		case errors.As(err, &invalidErr):
			logger.Errorf("Unusable model %s: %s", invalidErr.URL, invalidErr.Reason)
		default:
			logger.Errorf("%v", err)
		}
		logger.Close()
		os.Exit(1)
	}
}

func newLogger(cfg config.LogConfig) (*logger.Logger, error) {
	if cfg.File == "" {
		return logger.NewLogger(cfg.Level), nil
	}
	return logger.NewMultiLogger(cfg.Level, cfg.File)
}

func run(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	window, err := engine.NewWindow(cfg.Window, log)
	if err != nil {
		return err
	}
	defer window.Close()

	renderer, err := engine.NewOpenGLRenderer(log, window.FramebufferSize)
	if err != nil {
		return err
	}

	game := engine.NewEngine(cfg, log, window, renderer)
	defer game.Close()

	if err := game.Setup(ctx, assets.NewLoader(cfg.Assets.Dir)); err != nil {
		return err
	}

	log.Info("Engine initialized, starting render loop...")
	return game.Run(ctx)
}
