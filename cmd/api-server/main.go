package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"telugu-assistant/internal/api"
	"telugu-assistant/internal/app"
	"telugu-assistant/internal/common/config"
	"telugu-assistant/internal/common/logger"
	"telugu-assistant/internal/common/observability"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New("info", "console").Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.NewWithOptions(logger.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	obs := observability.New("api-server")
	defer obs.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := app.Build(ctx, cfg, log)
	if err != nil {
		zapLog.Fatal("startup failed", zap.Error(err))
	}
	defer deps.Close()

	checks := []api.Check{
		{Name: "storage", Ping: deps.Store.Ping},
		{Name: "redis", Ping: deps.Redis.Ping},
	}
	if deps.Search != nil {
		checks = append(checks, api.Check{Name: "elasticsearch", Ping: deps.Search.Ping})
	}

	server := api.New(api.NewConfig(cfg), api.Services{
		Auth:   deps.Auth,
		Chat:   deps.Chat,
		News:   deps.News,
		Speech: deps.Speech,
		Checks: checks,

		Observability: obs,
	}, log)

	go func() {
		zapLog.Info("api server listening", zap.String("address", cfg.HTTP.Address))
		if err := server.Listen(cfg.HTTP.Address); err != nil {
			zapLog.Error("api server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	zapLog.Info("shutdown signal received, draining requests")

	if err := server.ShutdownWithTimeout(shutdownTimeout); err != nil {
		zapLog.Error("api server shutdown failed", zap.Error(err))
	}
	zapLog.Info("api server stopped gracefully")
}
