// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"telugu-assistant/internal/app"
	"telugu-assistant/internal/common/camunda"
	"telugu-assistant/internal/common/config"
	"telugu-assistant/internal/common/logger"
	"telugu-assistant/internal/common/observability"
	"telugu-assistant/internal/workers/jobs"
	"telugu-assistant/pkg/registry"

	// Conversation workers (3)
	gtr "telugu-assistant/internal/workers/conversation/generate-telugu-response"
	sct "telugu-assistant/internal/workers/conversation/save-chat-turn"
	ss "telugu-assistant/internal/workers/conversation/synthesize-speech"

	// News workers (2)
	ftn "telugu-assistant/internal/workers/news/fetch-telugu-news"
	pnd "telugu-assistant/internal/workers/news/publish-news-digest"

	// Communication and auth workers (2)
	al "telugu-assistant/internal/workers/auth/auth-logout"
	swe "telugu-assistant/internal/workers/communication/send-welcome-email"
)

const (
	healthAddress   = ":8080"
	shutdownTimeout = 30 * time.Second
)

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

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...")

	if err := config.RequireBroker(cfg); err != nil {
		zapLog.Fatal("invalid configuration", zap.Error(err))
	}

	obs := observability.New("worker-manager")
	defer obs.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg, err := registry.Load(cfg.Registry.Path)
	if err != nil {
		zapLog.Fatal("activity registry load failed", zap.Error(err), zap.String("path", cfg.Registry.Path))
	}

	// --- Init Zeebe Client with retry ---
	zeebeClient, err := camunda.Connect(ctx, camunda.ClientConfig{
		GatewayAddress:         cfg.Camunda.BrokerAddress,
		UsePlaintextConnection: true,
		ConnectionTimeout:      config.GetDuration(cfg.Camunda.RequestTimeout),
	}, log)
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- Init storage, caches and services ---
	deps, err := app.Build(ctx, cfg, log)
	if err != nil {
		zapLog.Fatal("service initialization failed", zap.Error(err))
	}
	defer deps.Close()

	// --- Register workers ---
	handlers := []struct {
		taskType string
		handler  camunda.JobHandler
	}{
		{gtr.TaskType, gtr.NewHandler(jobConfig(cfg, gtr.TaskType), deps.Engine, reg, log)},
		{ss.TaskType, ss.NewHandler(jobConfig(cfg, ss.TaskType), deps.Speech, reg, log)},
		{sct.TaskType, sct.NewHandler(jobConfig(cfg, sct.TaskType), deps.Store, reg, log)},
		{ftn.TaskType, ftn.NewHandler(jobConfig(cfg, ftn.TaskType), deps.News, reg, log)},
		{pnd.TaskType, pnd.NewHandler(jobConfig(cfg, pnd.TaskType), deps.Notifier, reg, log)},
		{swe.TaskType, swe.NewHandler(jobConfig(cfg, swe.TaskType), deps.Notifier, reg, log)},
		{al.TaskType, al.NewHandler(jobConfig(cfg, al.TaskType), deps.Auth, reg, log)},
	}

	var workers []worker.JobWorker
	for _, h := range handlers {
		w := camunda.StartWorker(zeebeClient, h.taskType, config.GetWorkerConfig(cfg, h.taskType), h.handler, obs, log)
		if w != nil {
			workers = append(workers, w)
		}
	}
	zapLog.Info("Workers registered", zap.Int("started", len(workers)), zap.Int("total", len(handlers)))

	// --- Health & Metrics Server ---
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, "healthy")
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		if err := deps.Redis.Ping(r.Context()); err != nil {
			writeStatus(w, http.StatusServiceUnavailable, "not_ready")
			return
		}
		writeStatus(w, http.StatusOK, "ready")
	})
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/debug/pprof/", http.DefaultServeMux)

	healthServer := &http.Server{Addr: healthAddress, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("address", healthAddress))
		if err := healthServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	<-ctx.Done()
	zapLog.Info("Shutdown signal received, stopping workers...")

	for _, w := range workers {
		w.Close()
	}
	for _, w := range workers {
		w.AwaitClose()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := healthServer.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping health server", zap.Error(err))
	}

	if err := zeebeClient.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

func jobConfig(cfg *config.Config, taskType string) *jobs.Config {
	return jobs.NewConfig(config.GetWorkerConfig(cfg, taskType))
}

func writeStatus(w http.ResponseWriter, status int, state string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status": state,
		"time":   time.Now().Format(time.RFC3339),
	})
}
