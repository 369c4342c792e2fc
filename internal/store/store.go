// Package store persists accounts and chat turns in Postgres or Supabase.
package store

import (
	"context"
	"errors"
	"fmt"

	"telugu-assistant/internal/common/config"
	"telugu-assistant/internal/common/database"
	"telugu-assistant/internal/models"
)

var (
	ErrUserExists   = errors.New("USER_ALREADY_EXISTS")
	ErrUserNotFound = errors.New("USER_NOT_FOUND")
)

// DefaultHistoryLimit bounds ChatHistory when the caller passes no limit.
const DefaultHistoryLimit = 100

type UserStore interface {
	CreateUser(ctx context.Context, email, passwordHash string) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindUserByID(ctx context.Context, id string) (*models.User, error)
}

type ChatStore interface {
	SaveChatMessage(ctx context.Context, userID, userMessage, aiResponse, audioFile string) error
	// ChatHistory returns the most recent limit turns, oldest first.
	ChatHistory(ctx context.Context, userID string, limit int) ([]models.ChatTurn, error)
	ClearChatHistory(ctx context.Context, userID string) error
	CountMessages(ctx context.Context, userID string) (int, error)
}

// Store is both stores plus lifecycle.
type Store interface {
	UserStore
	ChatStore
	Ping(ctx context.Context) error
	Close() error
}

// Open returns the backend selected by storage.backend.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.Storage.Backend {
	case config.StorageBackendSupabase:
		client, err := database.NewSupabase(cfg.Supabase)
		if err != nil {
			return nil, err
		}
		return NewSupabaseStore(client), nil

	case config.StorageBackendPostgres, "":
		pg, err := database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return nil, err
		}
		if err := pg.Migrate(ctx); err != nil {
			_ = pg.Close()
			return nil, err
		}
		return NewPostgresStore(pg.DB), nil

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

func historyLimit(limit int) int {
	if limit <= 0 {
		return DefaultHistoryLimit
	}
	return limit
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
