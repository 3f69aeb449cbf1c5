// @title        Public Interest Scorecard API
// @version      1.0
// @description  Weighted scoring and gap prioritisation for public-interest self-assessments.
// @BasePath     /
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/ZanzyTHEbar/public-interest-o-meter/internal/config"
	"github.com/ZanzyTHEbar/public-interest-o-meter/internal/monitoring"
	"github.com/ZanzyTHEbar/public-interest-o-meter/internal/presets"
)

var version = "1.0.0"

func main() {
	if err := run(); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load("")
	if err != nil {
		return err
	}

	gin.SetMode(cfg.GinMode)

	// Structured logging setup
	appLogger := monitoring.NewLoggerWithWriter(os.Stdout, cfg.SlogLevel())
	slog.SetDefault(appLogger.Logger)

	registry, err := presets.LoadFile(cfg.PresetsFile)
	if err != nil {
		return err
	}

	srvState := newServer(cfg, registry, appLogger)
	defer srvState.Close()

	r, err := srvState.router()
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: cfg.RequestTimeout,
	}

	srvState.security.Cleanup()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Starting server", "port", cfg.Port, "version", version, "presets", registry.Len())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// SIGHUP reloads presets; SIGINT and SIGTERM shut down gracefully
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

wait:
	for {
		select {
		case err, ok := <-errCh:
			if ok {
				return err
			}
			return nil
		case <-hup:
			if err := srvState.reloadPresets(); err != nil {
				slog.Error("Presets reload failed", "error", err)
			}
		case <-quit:
			break wait
		}
	}
	slog.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return err
	}

	slog.Info("Server exited")
	return nil
}
