package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pocketbudget/internal/backend"
	"pocketbudget/internal/cli"
	apphttp "pocketbudget/internal/http"
	applog "pocketbudget/internal/log"
	"pocketbudget/internal/predict"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	result, err := backend.Build(cfg, logger.Logger)
	if err != nil {
		logger.Error("Failed to build backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	predictor := buildPredictor(cfg.ModelPath)

	srv := apphttp.NewServer(":"+cfg.Port, result.Service, predictor)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		if result.Cleanup != nil {
			if err := result.Cleanup(); err != nil {
				logger.Error("Backend cleanup error", "error", err)
			}
		}
		cancel()
	}()

	logger.Info("Starting pocketbudget server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"model_configured", cfg.ModelPath != "")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}

// buildPredictor prefers the configured model artifact; without one the
// heuristic alone answers.
func buildPredictor(modelPath string) *predict.Predictor {
	if modelPath == "" {
		return predict.NewHeuristic()
	}
	loader := func() (predict.Model, error) {
		model, err := predict.LoadArtifact(modelPath)
		if err != nil {
			return nil, err
		}
		return model, nil
	}
	return predict.NewModelBacked(loader, predict.DefaultRoles())
}
