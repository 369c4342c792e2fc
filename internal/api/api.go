// Package api exposes the assistant over HTTP with fiber.
package api

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"telugu-assistant/internal/chat"
	"telugu-assistant/internal/common/config"
	"telugu-assistant/internal/common/logger"
	"telugu-assistant/internal/common/observability"
	"telugu-assistant/internal/models"
	"telugu-assistant/internal/news"
)

type AuthService interface {
	SignUp(ctx context.Context, email, password string) (*models.AuthResult, error)
	Login(ctx context.Context, email, password string) (*models.AuthResult, error)
	Validate(ctx context.Context, token string) (*models.Session, error)
	Logout(ctx context.Context, userID, sessionID string, all bool) (int, error)
}

type ChatService interface {
	Send(ctx context.Context, userID, text string, opts chat.Options) *chat.Result
	History(ctx context.Context, userID string) ([]models.ChatMessage, error)
	Clear(ctx context.Context, userID string) error
	Stats(ctx context.Context, userID string) (*models.UserStats, error)
}

type NewsService interface {
	Latest(ctx context.Context) news.Result
	Search(ctx context.Context, query string, size int) ([]news.Article, error)
}

type Synthesizer interface {
	SynthesizeLang(ctx context.Context, text, lang string) ([]byte, error)
}

// Check is a named readiness probe.
type Check struct {
	Name string
	Ping func(ctx context.Context) error
}

// Services are the dependencies behind the routes.
type Services struct {
	Auth   AuthService
	Chat   ChatService
	News   NewsService
	Speech Synthesizer
	Checks []Check

	// Observability counts replies by source; nil disables it.
	Observability *observability.Observability
}

type Config struct {
	AppName      string
	Version      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	BodyLimit    int
}

func NewConfig(cfg *config.Config) *Config {
	return &Config{
		AppName:      cfg.App.Name,
		Version:      cfg.App.Version,
		ReadTimeout:  config.GetDuration(cfg.HTTP.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.HTTP.WriteTimeout),
		BodyLimit:    cfg.HTTP.BodyLimit,
	}
}

type Server struct {
	config   *Config
	services Services
	logger   logger.Logger
}

// New builds the fiber app with every route registered.
func New(cfg *Config, services Services, log logger.Logger) *fiber.App {
	s := &Server{
		config:   cfg,
		services: services,
		logger:   log.With(map[string]interface{}{"component": "api"}),
	}

	app := fiber.New(fiber.Config{
		AppName:               cfg.AppName,
		DisableStartupMessage: true,
		ReadTimeout:           cfg.ReadTimeout,
		WriteTimeout:          cfg.WriteTimeout,
		BodyLimit:             cfg.BodyLimit,
		ErrorHandler:          errorHandler(s.logger),
	})

	app.Use(recover.New())
	app.Use(requestLogger(s.logger))
	app.Use(cors.New(cors.Config{
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, DELETE, OPTIONS",
	}))

	app.Get("/health", s.health)
	app.Get("/ready", s.ready)
	app.Get("/metrics", metricsHandler())

	v1 := app.Group("/api/v1")
	v1.Post("/auth/signup", s.signUp)
	v1.Post("/auth/login", s.login)
	v1.Get("/news", s.latestNews)
	v1.Get("/news/search", s.searchNews)
	v1.Post("/tts", s.synthesize)

	protected := v1.Group("", requireAuth(services.Auth))
	protected.Post("/auth/logout", s.logout)
	protected.Post("/chat", s.chat)
	protected.Get("/chat/history", s.history)
	protected.Delete("/chat/history", s.clearHistory)
	protected.Get("/profile/stats", s.stats)

	return app
}
