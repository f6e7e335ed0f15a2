// Package main provides the bridge entry point.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/hsaj/bridge/internal/api/status"
	"github.com/hsaj/bridge/internal/api/ws"
	"github.com/hsaj/bridge/internal/app/broadcast"
	"github.com/hsaj/bridge/internal/app/demo"
	"github.com/hsaj/bridge/internal/app/pairing"
	"github.com/hsaj/bridge/internal/app/transport"
	"github.com/hsaj/bridge/internal/domain/track"
	"github.com/hsaj/bridge/internal/infra/config"
	"github.com/hsaj/bridge/internal/infra/logger"
)

var (
	app        = kingpin.New("bridge", "Roon now-playing bridge")
	configPath = app.Flag("config", "Path to config file").Default("config/bridge.yaml").String()
	verbose    = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
	logfile    = app.Flag("logfile", "Path to log file (default: stdout)").String()

	printConfigCmd = app.Command("print-config", "Print the effective configuration and exit")
)

func init() {
	app.Command("start", "Start the bridge (default)").Default()
}

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	loggerConfig := logger.Config{Output: "stdout", Level: "info"}
	if *verbose {
		loggerConfig.Level = "debug"
	}
	if *logfile != "" {
		loggerConfig.Output = *logfile
	}
	if err := logger.Init(loggerConfig); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		zlog.Fatal().Msgf("Failed to load config: %v", err)
	}

	if command == printConfigCmd.FullCommand() {
		out, _ := yaml.Marshal(cfg)
		fmt.Print(string(out))
		return
	}

	if err := run(cfg); err != nil {
		zlog.Error().Msgf("Bridge error: %v", err)
		os.Exit(1)
	}
}

// run executes the main bridge logic. Using a separate function ensures
// defer statements are executed even when returning with an error.
func run(cfg *config.Config) error {
	records, err := cfg.TrackRecords()
	if err != nil {
		return err
	}
	directory := track.NewDirectory(records)

	blockedItems, err := cfg.BlockedItems()
	if err != nil {
		return err
	}

	tracker := pairing.NewTracker()
	hub := broadcast.NewHub()
	monitor := transport.NewMonitor(hub, cfg.Source)

	mux := http.NewServeMux()
	status.NewHandler(tracker, directory, blockedItems, cfg.Blocked.EndpointEnabled).Register(mux)
	mux.Handle("GET "+cfg.Server.WSPath, ws.NewHandler(hub))

	server := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: mux,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Demo.Enabled {
		feed := demo.NewFeed(monitor, records, cfg.DemoInterval())
		go feed.Run(ctx)
	}

	serverErrCh := make(chan error, 1)
	go func() {
		zlog.Info().Msgf("Starting bridge: addr=%s ws=%s", cfg.Server.Addr, cfg.Server.WSPath)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		zlog.Info().Msg("Received shutdown signal...")
	case err := <-serverErrCh:
		return fmt.Errorf("server error: %w", err)
	}

	// Stop producers first so no event is emitted into a closing hub.
	cancel()
	monitor.NotifyStopped("")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	hub.Close()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zlog.Error().Msgf("Failed to shutdown server: %v", err)
	}

	zlog.Info().Msg("Bridge stopped")
	return nil
}
