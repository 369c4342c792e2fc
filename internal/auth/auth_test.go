package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"telugu-assistant/internal/common/logger"
	"telugu-assistant/internal/models"
	"telugu-assistant/internal/store"
)

// ==========================
// In-memory store
// ==========================

type memoryStore struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newMemoryStore() *memoryStore {
	return &memoryStore{users: map[string]*models.User{}}
}

func (m *memoryStore) CreateUser(ctx context.Context, email, hash string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[email]; ok {
		return nil, store.ErrUserExists
	}
	u := &models.User{ID: uuid.New().String(), Email: email, PasswordHash: hash, CreatedAt: time.Now()}
	m.users[email] = u
	return u, nil
}

func (m *memoryStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[email]; ok {
		return u, nil
	}
	return nil, store.ErrUserNotFound
}

func (m *memoryStore) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, store.ErrUserNotFound
}

type recordingWelcomer struct {
	emails []string
	err    error
}

func (r *recordingWelcomer) SendWelcome(ctx context.Context, email string) (string, error) {
	r.emails = append(r.emails, email)
	return "msg-1", r.err
}

// ==========================
// Test helpers
// ==========================

func newTestService(t *testing.T) (*Service, *memoryStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	mem := newMemoryStore()
	cfg := &Config{
		JWTSecret:      "test-secret",
		Issuer:         "Telugu AI Assistant",
		SessionTimeout: time.Hour,
		BcryptCost:     bcrypt.MinCost,
	}
	return NewService(cfg, mem, NewSessionStore(rdb), logger.NewTestLogger(t)), mem, mr
}

// ==========================
// Sign-up and login
// ==========================

func TestService_SignUp(t *testing.T) {
	s, mem, mr := newTestService(t)

	result, err := s.SignUp(context.Background(), "  ravi@example.com ", "secret1")
	require.NoError(t, err)

	assert.Equal(t, "ravi@example.com", result.User.Email)
	assert.NotEmpty(t, result.Token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), result.ExpiresAt, 5*time.Second)

	stored := mem.users["ravi@example.com"]
	require.NotNil(t, stored)
	assert.NotEqual(t, "secret1", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secret1")))

	keys := mr.Keys()
	require.Len(t, keys, 1)
	assert.True(t, strings.HasPrefix(keys[0], "session:"+result.User.ID+":"))
	assert.Equal(t, time.Hour, mr.TTL(keys[0]))
}

func TestService_SignUp_Validation(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"empty email", "", "secret1"},
		{"bad email", "ravi@", "secret1"},
		{"short password", "ravi@example.com", "12345"},
		{"empty password", "ravi@example.com", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _, _ := newTestService(t)
			_, err := s.SignUp(context.Background(), tt.email, tt.password)
			assert.ErrorIs(t, err, ErrValidationFailed)
		})
	}
}

func TestService_SignUp_TeluguPasswordCountsCodePoints(t *testing.T) {
	s, _, _ := newTestService(t)
	_, err := s.SignUp(context.Background(), "ravi@example.com", "తెలుగుపాస్")
	assert.NoError(t, err)
}

func TestService_SignUp_Duplicate(t *testing.T) {
	s, _, _ := newTestService(t)
	_, err := s.SignUp(context.Background(), "ravi@example.com", "secret1")
	require.NoError(t, err)

	_, err = s.SignUp(context.Background(), "ravi@example.com", "secret2")
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestService_SignUp_WelcomeFailureIsNotFatal(t *testing.T) {
	s, _, _ := newTestService(t)
	w := &recordingWelcomer{err: errors.New("ses throttled")}
	s.WithWelcomer(w)

	_, err := s.SignUp(context.Background(), "ravi@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, []string{"ravi@example.com"}, w.emails)
}

func TestService_Login(t *testing.T) {
	s, _, _ := newTestService(t)
	signed, err := s.SignUp(context.Background(), "ravi@example.com", "secret1")
	require.NoError(t, err)

	t.Run("success", func(t *testing.T) {
		result, err := s.Login(context.Background(), "ravi@example.com", "secret1")
		require.NoError(t, err)
		assert.Equal(t, signed.User.ID, result.User.ID)
		assert.NotEqual(t, signed.Token, result.Token)
	})

	for _, tc := range []struct{ name, email, password string }{
		{"wrong password", "ravi@example.com", "secret2"},
		{"unknown email", "sita@example.com", "secret1"},
		{"empty", "", ""},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.Login(context.Background(), tc.email, tc.password)
			assert.ErrorIs(t, err, ErrInvalidCredentials)
		})
	}
}

// ==========================
// Sessions
// ==========================

func TestService_Validate(t *testing.T) {
	s, _, mr := newTestService(t)
	result, err := s.SignUp(context.Background(), "ravi@example.com", "secret1")
	require.NoError(t, err)

	session, err := s.Validate(context.Background(), result.Token)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, session.UserID)
	assert.Equal(t, "ravi@example.com", session.Email)

	t.Run("tampered token", func(t *testing.T) {
		_, err := s.Validate(context.Background(), result.Token+"x")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("foreign secret", func(t *testing.T) {
		other := NewTokenIssuer("other-secret", "x", time.Hour)
		token, _, err := other.Issue(result.User.ID, "ravi@example.com")
		require.NoError(t, err)
		_, err = s.Validate(context.Background(), token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("session removed", func(t *testing.T) {
		mr.FlushAll()
		_, err := s.Validate(context.Background(), result.Token)
		assert.ErrorIs(t, err, ErrSessionExpired)
	})
}

func TestTokenIssuer_Expired(t *testing.T) {
	issuer := NewTokenIssuer("secret", "x", time.Minute)
	issuer.now = func() time.Time { return time.Now().Add(-2 * time.Minute) }
	token, _, err := issuer.Issue("u1", "a@b.co")
	require.NoError(t, err)

	issuer.now = time.Now
	_, err = issuer.Parse(token)
	assert.ErrorIs(t, err, ErrSessionExpired)
}

func TestTokenIssuer_RejectsOtherAlgorithms(t *testing.T) {
	issuer := NewTokenIssuer("secret", "x", time.Minute)
	claims := &Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "u1",
		ID:        "s1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = issuer.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestService_Logout(t *testing.T) {
	s, _, mr := newTestService(t)
	first, err := s.SignUp(context.Background(), "ravi@example.com", "secret1")
	require.NoError(t, err)
	_, err = s.Login(context.Background(), "ravi@example.com", "secret1")
	require.NoError(t, err)
	_, err = s.Login(context.Background(), "ravi@example.com", "secret1")
	require.NoError(t, err)
	require.Len(t, mr.Keys(), 3)

	session, err := s.Validate(context.Background(), first.Token)
	require.NoError(t, err)

	n, err := s.Logout(context.Background(), first.User.ID, session.ID, false)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	_, err = s.Validate(context.Background(), first.Token)
	assert.ErrorIs(t, err, ErrSessionExpired)

	n, err = s.Logout(context.Background(), first.User.ID, "", true)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Empty(t, mr.Keys())

	_, err = s.Logout(context.Background(), first.User.ID, "", false)
	assert.ErrorIs(t, err, ErrValidationFailed)
	_, err = s.Logout(context.Background(), "", "s1", false)
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestSessionStore_DeleteAll_RedisError(t *testing.T) {
	db, mock := redismock.NewClientMock()
	mock.ExpectScan(0, "session:u1:*", scanCount).SetErr(errors.New("connection refused"))

	_, err := NewSessionStore(db).DeleteAll(context.Background(), "u1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to find sessions")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionStore_DeleteAll_GlobUserID(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	sessions := NewSessionStore(rdb)
	ctx := context.Background()

	require.NoError(t, sessions.Save(ctx, &models.Session{ID: "s1", UserID: "alice"}, time.Hour))
	require.NoError(t, sessions.Save(ctx, &models.Session{ID: "s2", UserID: "bob"}, time.Hour))

	for _, userID := range []string{"*", "?????", "[ab]*", `\*`} {
		n, err := sessions.DeleteAll(ctx, userID)
		require.NoError(t, err, userID)
		assert.Zero(t, n, userID)
	}

	_, err := sessions.Get(ctx, "alice", "s1")
	assert.NoError(t, err)
	_, err = sessions.Get(ctx, "bob", "s2")
	assert.NoError(t, err)

	n, err := sessions.DeleteAll(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.True(t, mr.Exists("session:bob:s2"))
}

func TestEscapeGlob(t *testing.T) {
	assert.Equal(t, "user-1", escapeGlob("user-1"))
	assert.Equal(t, `\*\?\[x\]\\`, escapeGlob(`*?[x]\`))
}
