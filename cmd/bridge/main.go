// Command bridge runs a simulated host with the studiolink control server
// attached. It exists for local development and demos; real hosts embed the
// server package directly.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/studiolink/studiolink/config"
	"github.com/studiolink/studiolink/internal/host"
	"github.com/studiolink/studiolink/internal/server"
	"github.com/studiolink/studiolink/lib/telemetry"
)

const (
	defaultConfigPath        = "config/bridge.yaml"
	bridgeLoggerPrefix       = "bridge "
	telemetryShutdownTimeout = 5 * time.Second
)

func main() {
	cfgPath, portOverride := parseFlags()
	ctx, cancel := newSignalContext()
	defer cancel()

	logger := newBridgeLogger()

	cfg, loadedFromFile, err := config.LoadOrDefault(resolveConfigPath(cfgPath))
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	if !loadedFromFile {
		logger.Print("configuration file not found, using defaults")
	}
	if portOverride > 0 {
		cfg.Server.Port = portOverride
	}
	logger.Printf("configuration initialised: port=%d autoStart=%t logCapacity=%d",
		cfg.Server.Port, cfg.Server.AutoStart, cfg.Logs.Capacity)

	telemetryProvider, err := telemetry.Init(ctx, telemetry.Config{
		OTLPEndpoint: cfg.Telemetry.OTLPEndpoint,
		ServiceName:  cfg.Telemetry.ServiceName,
	})
	if err != nil {
		logger.Fatalf("initialize telemetry: %v", err)
	}
	if cfg.Telemetry.OTLPEndpoint != "" {
		logger.Printf("telemetry initialized: endpoint=%s", cfg.Telemetry.OTLPEndpoint)
	} else {
		logger.Print("telemetry disabled")
	}

	sim := host.NewSimHost(logger)
	sim.Start()

	srv, err := server.New(server.Options{
		Host:            sim,
		Dispatcher:      sim.Queue(),
		Logger:          logger,
		LogCapacity:     cfg.Logs.Capacity,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		Meter:           telemetryProvider.Meter("studiolink/bridge"),
	})
	if err != nil {
		logger.Fatalf("build control server: %v", err)
	}

	if cfg.Server.AutoStart {
		if err := srv.Start(cfg.Server.Port); err != nil {
			logger.Fatalf("start control server: %v", err)
		}
	} else {
		logger.Print("autoStart disabled; control server not started")
	}

	logger.Print("bridge started; awaiting shutdown signal")
	<-ctx.Done()
	logger.Print("shutdown signal received, initiating graceful shutdown")

	srv.Stop()
	sim.Close()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), telemetryShutdownTimeout)
	defer shutdownCancel()
	if err := telemetryProvider.Shutdown(shutdownCtx); err != nil {
		logger.Printf("shutdown: telemetry failed: %v", err)
	}
	logger.Print("shutdown completed")
}

func parseFlags() (string, int) {
	cfgPath := flag.String("config", "", fmt.Sprintf("Path to configuration file (default: %s)", defaultConfigPath))
	port := flag.Int("port", 0, "Override the configured control server port")
	flag.Parse()
	return *cfgPath, *port
}

func newSignalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func newBridgeLogger() *log.Logger {
	return log.New(os.Stdout, bridgeLoggerPrefix, log.LstdFlags|log.Lmicroseconds)
}

func resolveConfigPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return filepath.Clean(defaultConfigPath)
}
