// Package app assembles the services shared by the API server and the worker
// manager from a loaded configuration.
package app

import (
	"context"
	"fmt"
	"time"

	"telugu-assistant/internal/assistant"
	"telugu-assistant/internal/auth"
	"telugu-assistant/internal/chat"
	"telugu-assistant/internal/common/camunda"
	"telugu-assistant/internal/common/config"
	"telugu-assistant/internal/common/database"
	"telugu-assistant/internal/common/logger"
	"telugu-assistant/internal/generative"
	"telugu-assistant/internal/news"
	"telugu-assistant/internal/notify"
	"telugu-assistant/internal/speech"
	"telugu-assistant/internal/store"
)

var connectRetry = camunda.RetryConfig{
	MaxAttempts: 10,
	BaseDelay:   2 * time.Second,
	MaxDelay:    20 * time.Second,
}

// App holds every long-lived dependency. Close releases them.
type App struct {
	Config   *config.Config
	Store    store.Store
	Redis    *database.RedisClient
	Search   *database.ElasticsearchClient
	Engine   *assistant.Engine
	Speech   *speech.Synthesizer
	Chat     *chat.Service
	News     *news.Service
	Auth     *auth.Service
	Sessions *auth.SessionStore
	Notifier *notify.Notifier

	logger logger.Logger
}

// Build connects to storage, Redis and (when a news index is configured)
// Elasticsearch, then wires the services on top of them.
func Build(ctx context.Context, cfg *config.Config, log logger.Logger) (*App, error) {
	a := &App{Config: cfg, logger: log}

	err := camunda.RetryWithBackoff(ctx, connectRetry, log, "storage connection", func(ctx context.Context) error {
		s, err := store.Open(ctx, cfg)
		if err != nil {
			return err
		}
		if err := s.Ping(ctx); err != nil {
			_ = s.Close()
			return err
		}
		a.Store = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Info("storage connected", map[string]interface{}{"backend": cfg.Storage.Backend})

	a.Redis = database.NewRedis(cfg.Database.Redis)
	if err := camunda.RetryWithBackoff(ctx, connectRetry, log, "redis connection", a.Redis.Ping); err != nil {
		a.Close()
		return nil, err
	}
	log.Info("redis connected", map[string]interface{}{"address": cfg.Database.Redis.Address})

	newsOpts := []news.Option{
		news.WithCache(news.NewCache(a.Redis.Client, time.Duration(cfg.News.CacheTTL)*time.Second)),
	}
	if cfg.Database.Elasticsearch.NewsIndex != "" {
		archive, err := a.openArchive(ctx)
		if err != nil {
			log.Warn("news archive unavailable, search disabled", map[string]interface{}{"error": err.Error()})
		} else {
			newsOpts = append(newsOpts, news.WithArchive(archive))
		}
	}

	catalog, err := assistant.LoadCatalog(cfg.Assistant.CatalogPath)
	if err != nil {
		a.Close()
		return nil, err
	}

	var generator assistant.Generator
	if client := generative.NewClient(generative.NewConfig(cfg), log); client.Enabled() {
		generator = client
	} else {
		log.Info("generative model disabled, replies come from the catalog", nil)
	}

	a.Engine = assistant.NewEngine(&assistant.Config{
		GenerationTimeout: config.GetDuration(cfg.Assistant.GenerationTimeout),
	}, catalog, generator, assistant.SystemRandom(), log)
	a.Speech = speech.NewSynthesizer(speech.NewConfig(cfg), log)
	a.Chat = chat.NewService(a.Engine, a.Speech, a.Store, cfg.Chat.MaxHistory, log)
	a.News = news.NewService(news.NewFetcherFromConfig(cfg.News, log), cfg.News.Limit, log, newsOpts...)

	a.Notifier, err = notify.NewFromConfig(ctx, cfg, log)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Sessions = auth.NewSessionStore(a.Redis.Client)
	a.Auth = auth.NewService(auth.NewConfig(cfg), a.Store, a.Sessions, log)
	if cfg.Notifications.Email.Enabled {
		a.Auth.WithWelcomer(a.Notifier)
	}

	return a, nil
}

func (a *App) openArchive(ctx context.Context) (*news.Archive, error) {
	es, err := database.NewElasticsearch(a.Config.Database.Elasticsearch)
	if err != nil {
		return nil, err
	}
	if err := es.Ping(ctx); err != nil {
		return nil, err
	}
	index := a.Config.Database.Elasticsearch.NewsIndex
	if err := es.EnsureIndex(ctx, index, news.IndexMapping); err != nil {
		return nil, fmt.Errorf("news index %s: %w", index, err)
	}
	a.Search = es
	a.logger.Info("news archive ready", map[string]interface{}{
		"index": index,
		"url":   a.Config.Database.Elasticsearch.GetURL(),
	})
	return news.NewArchive(es.Client, index), nil
}

// Close releases connections in reverse order of creation.
func (a *App) Close() {
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.logger.Warn("redis close failed", map[string]interface{}{"error": err.Error()})
		}
	}
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			a.logger.Warn("store close failed", map[string]interface{}{"error": err.Error()})
		}
	}
}
