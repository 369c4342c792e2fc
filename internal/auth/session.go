package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"telugu-assistant/internal/models"
)

// SessionStore keeps live sessions in Redis under session:<userID>:<id>.
type SessionStore struct {
	client redis.UniversalClient
}

func NewSessionStore(client redis.UniversalClient) *SessionStore {
	return &SessionStore{client: client}
}

const scanCount = 100

func sessionKey(userID, sessionID string) string {
	return fmt.Sprintf("session:%s:%s", userID, sessionID)
}

func (s *SessionStore) Save(ctx context.Context, session *models.Session, ttl time.Duration) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, sessionKey(session.UserID, session.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

// Get returns ErrSessionExpired when the session is gone.
func (s *SessionStore) Get(ctx context.Context, userID, sessionID string) (*models.Session, error) {
	data, err := s.client.Get(ctx, sessionKey(userID, sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionExpired
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	var session models.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &session, nil
}

// Delete removes one session and reports how many keys went away.
func (s *SessionStore) Delete(ctx context.Context, userID, sessionID string) (int, error) {
	n, err := s.client.Del(ctx, sessionKey(userID, sessionID)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to delete session: %w", err)
	}
	return int(n), nil
}

// DeleteAll removes every session of the user. The user id is matched
// literally, never as a glob.
func (s *SessionStore) DeleteAll(ctx context.Context, userID string) (int, error) {
	var keys []string
	iter := s.client.Scan(ctx, 0, sessionKey(escapeGlob(userID), "*"), scanCount).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("failed to find sessions: %w", err)
	}
	if len(keys) == 0 {
		return 0, nil
	}

	n, err := s.client.Del(ctx, keys...).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to delete sessions: %w", err)
	}
	return int(n), nil
}

var globEscaper = strings.NewReplacer(`\`, `\\`, "*", `\*`, "?", `\?`, "[", `\[`, "]", `\]`)

func escapeGlob(s string) string {
	return globEscaper.Replace(s)
}
