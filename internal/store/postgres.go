package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"telugu-assistant/internal/models"
)

const uniqueViolation = "23505"

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) CreateUser(ctx context.Context, email, passwordHash string) (*models.User, error) {
	user := &models.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, email, password, created_at) VALUES ($1, $2, $3, $4)`,
		user.ID, user.Email, user.PasswordHash, user.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return user, nil
}

func (s *PostgresStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findUser(ctx, `SELECT id, email, password, created_at FROM users WHERE email = $1`, email)
}

func (s *PostgresStore) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	return s.findUser(ctx, `SELECT id, email, password, created_at FROM users WHERE id = $1`, id)
}

func (s *PostgresStore) findUser(ctx context.Context, query, arg string) (*models.User, error) {
	var u models.User
	err := s.db.QueryRowContext(ctx, query, arg).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	return &u, nil
}

func (s *PostgresStore) SaveChatMessage(ctx context.Context, userID, userMessage, aiResponse, audioFile string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO chat_history (user_id, user_message, ai_response, audio_file, timestamp)
		 VALUES ($1, $2, $3, $4, $5)`,
		userID, userMessage, aiResponse, nullable(audioFile), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert chat turn: %w", err)
	}
	return nil
}

func (s *PostgresStore) ChatHistory(ctx context.Context, userID string, limit int) ([]models.ChatTurn, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, user_message, ai_response, audio_file, timestamp FROM (
			SELECT id, user_id, user_message, ai_response, audio_file, timestamp
			FROM chat_history WHERE user_id = $1
			ORDER BY timestamp DESC, id DESC LIMIT $2
		) recent ORDER BY timestamp ASC, id ASC`,
		userID, historyLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("query chat history: %w", err)
	}
	defer rows.Close()

	turns := []models.ChatTurn{}
	for rows.Next() {
		var t models.ChatTurn
		var audio sql.NullString
		if err := rows.Scan(&t.ID, &t.UserID, &t.UserMessage, &t.AIResponse, &audio, &t.Timestamp); err != nil {
			return nil, fmt.Errorf("scan chat turn: %w", err)
		}
		t.AudioFile = audio.String
		turns = append(turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chat history: %w", err)
	}
	return turns, nil
}

func (s *PostgresStore) ClearChatHistory(ctx context.Context, userID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM chat_history WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("delete chat history: %w", err)
	}
	return nil
}

func (s *PostgresStore) CountMessages(ctx context.Context, userID string) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chat_history WHERE user_id = $1`, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count chat turns: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
