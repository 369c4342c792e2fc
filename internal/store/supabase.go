package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/supabase-community/postgrest-go"
	"github.com/supabase-community/supabase-go"

	"telugu-assistant/internal/models"
)

const (
	usersTable = "users"
	chatTable  = "chat_history"
)

type userRow struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Password  string    `json:"password"`
	CreatedAt time.Time `json:"created_at"`
}

func (r userRow) toModel() *models.User {
	return &models.User{ID: r.ID, Email: r.Email, PasswordHash: r.Password, CreatedAt: r.CreatedAt}
}

type chatInsert struct {
	UserID      string      `json:"user_id"`
	UserMessage string      `json:"user_message"`
	AIResponse  string      `json:"ai_response"`
	AudioFile   interface{} `json:"audio_file"`
	Timestamp   time.Time   `json:"timestamp"`
}

type chatRow struct {
	ID          int64     `json:"id"`
	UserID      string    `json:"user_id"`
	UserMessage string    `json:"user_message"`
	AIResponse  string    `json:"ai_response"`
	AudioFile   *string   `json:"audio_file"`
	Timestamp   time.Time `json:"timestamp"`
}

// SupabaseStore talks to the hosted tables through PostgREST. The client
// takes no context, so deadlines on ctx are not enforced here.
type SupabaseStore struct {
	client *supabase.Client
}

func NewSupabaseStore(client *supabase.Client) *SupabaseStore {
	return &SupabaseStore{client: client}
}

func (s *SupabaseStore) CreateUser(ctx context.Context, email, passwordHash string) (*models.User, error) {
	row := userRow{
		ID:        uuid.New().String(),
		Email:     email,
		Password:  passwordHash,
		CreatedAt: time.Now().UTC(),
	}

	var inserted []userRow
	_, err := s.client.From(usersTable).
		Insert(row, false, "", "representation", "").
		ExecuteTo(&inserted)
	if err != nil {
		if isDuplicate(err) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	if len(inserted) > 0 {
		return inserted[0].toModel(), nil
	}
	return row.toModel(), nil
}

func (s *SupabaseStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findUser("email", email)
}

func (s *SupabaseStore) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	return s.findUser("id", id)
}

func (s *SupabaseStore) findUser(column, value string) (*models.User, error) {
	var rows []userRow
	_, err := s.client.From(usersTable).
		Select("*", "", false).
		Eq(column, value).
		Limit(1, "").
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrUserNotFound
	}
	return rows[0].toModel(), nil
}

func (s *SupabaseStore) SaveChatMessage(ctx context.Context, userID, userMessage, aiResponse, audioFile string) error {
	_, _, err := s.client.From(chatTable).
		Insert(chatInsert{
			UserID:      userID,
			UserMessage: userMessage,
			AIResponse:  aiResponse,
			AudioFile:   nullable(audioFile),
			Timestamp:   time.Now().UTC(),
		}, false, "", "minimal", "").
		Execute()
	if err != nil {
		return fmt.Errorf("insert chat turn: %w", err)
	}
	return nil
}

func (s *SupabaseStore) ChatHistory(ctx context.Context, userID string, limit int) ([]models.ChatTurn, error) {
	var rows []chatRow
	_, err := s.client.From(chatTable).
		Select("*", "", false).
		Eq("user_id", userID).
		Order("timestamp", &postgrest.OrderOpts{Ascending: false}).
		Limit(historyLimit(limit), "").
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("query chat history: %w", err)
	}

	turns := make([]models.ChatTurn, len(rows))
	for i, r := range rows {
		t := models.ChatTurn{
			ID:          r.ID,
			UserID:      r.UserID,
			UserMessage: r.UserMessage,
			AIResponse:  r.AIResponse,
			Timestamp:   r.Timestamp,
		}
		if r.AudioFile != nil {
			t.AudioFile = *r.AudioFile
		}
		// newest first on the wire
		turns[len(rows)-1-i] = t
	}
	return turns, nil
}

func (s *SupabaseStore) ClearChatHistory(ctx context.Context, userID string) error {
	_, _, err := s.client.From(chatTable).
		Delete("minimal", "").
		Eq("user_id", userID).
		Execute()
	if err != nil {
		return fmt.Errorf("delete chat history: %w", err)
	}
	return nil
}

func (s *SupabaseStore) CountMessages(ctx context.Context, userID string) (int, error) {
	_, count, err := s.client.From(chatTable).
		Select("id", "exact", true).
		Eq("user_id", userID).
		Execute()
	if err != nil {
		return 0, fmt.Errorf("count chat turns: %w", err)
	}
	return int(count), nil
}

func (s *SupabaseStore) Ping(ctx context.Context) error {
	_, _, err := s.client.From(usersTable).
		Select("id", "", true).
		Limit(1, "").
		Execute()
	return err
}

func (s *SupabaseStore) Close() error { return nil }

func isDuplicate(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, uniqueViolation) || strings.Contains(msg, "duplicate key")
}
