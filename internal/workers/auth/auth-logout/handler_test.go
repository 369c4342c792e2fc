package authlogout

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"telugu-assistant/internal/auth"
	apperrors "telugu-assistant/internal/common/errors"
	"telugu-assistant/internal/common/logger"
	"telugu-assistant/internal/models"
	"telugu-assistant/internal/workers/jobs"
)

// ==========================
// Mock Job Helper
// ==========================

func createMockJob(key int64, variables map[string]interface{}) entities.Job {
	variablesJSON, _ := json.Marshal(variables)

	activatedJob := &pb.ActivatedJob{
		Key:                      key,
		Type:                     TaskType,
		ProcessInstanceKey:       key * 10,
		BpmnProcessId:            "user-logout",
		ProcessDefinitionVersion: 1,
		ProcessDefinitionKey:     1,
		ElementId:                "Activity_AuthLogout",
		ElementInstanceKey:       1,
		CustomHeaders:            "{}",
		Worker:                   "test-worker",
		Retries:                  3,
		Variables:                string(variablesJSON),
	}

	return entities.Job{ActivatedJob: activatedJob}
}

// ==========================
// Test Helpers
// ==========================

func newAuthService(t *testing.T, client redis.UniversalClient) *auth.Service {
	cfg := &auth.Config{JWTSecret: "secret", SessionTimeout: time.Hour, PasswordMinLength: 6}
	return auth.NewService(cfg, nil, auth.NewSessionStore(client), logger.NewNoOpLogger())
}

func seedSessions(t *testing.T, client redis.UniversalClient, userID string, ids ...string) {
	store := auth.NewSessionStore(client)
	for _, id := range ids {
		require.NoError(t, store.Save(context.Background(), &models.Session{
			ID: id, UserID: userID, ExpiresAt: time.Now().Add(time.Hour),
		}, time.Hour))
	}
}

func createTestHandler(t *testing.T, sessions SessionRevoker) *Handler {
	return NewHandler(&jobs.Config{Timeout: 10 * time.Second}, sessions, nil, logger.NewTestLogger(t))
}

// ==========================
// Input Parsing Tests
// ==========================

func TestHandler_ParseInput(t *testing.T) {
	handler := createTestHandler(t, nil)

	tests := []struct {
		name      string
		variables map[string]interface{}
		wantErr   bool
		validate  func(*testing.T, *Input)
	}{
		{
			name:      "single session",
			variables: map[string]interface{}{"userId": "user-123", "jti": "sess-1"},
			validate: func(t *testing.T, input *Input) {
				assert.Equal(t, "user-123", input.UserID)
				assert.Equal(t, "sess-1", input.JTI)
				assert.False(t, input.LogoutAll)
			},
		},
		{
			name:      "logout all without jti",
			variables: map[string]interface{}{"userId": "user-123", "logoutAll": true},
			validate: func(t *testing.T, input *Input) {
				assert.True(t, input.LogoutAll)
			},
		},
		{
			name:      "missing userId",
			variables: map[string]interface{}{"jti": "sess-1"},
			wantErr:   true,
		},
		{
			name:      "neither jti nor logoutAll",
			variables: map[string]interface{}{"userId": "user-123"},
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input, err := handler.parseInput(createMockJob(12345, tt.variables))

			if tt.wantErr {
				stdErr, ok := apperrors.As(err)
				require.True(t, ok, "error should be StandardError")
				assert.Equal(t, apperrors.ErrCodeValidationFailed, stdErr.Code)
				return
			}
			require.NoError(t, err)
			tt.validate(t, input)
		})
	}
}

// ==========================
// Execute Tests
// ==========================

func TestHandler_Execute_SingleSession(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	seedSessions(t, client, "user-123", "sess-1", "sess-2")

	out, err := createTestHandler(t, newAuthService(t, client)).execute(context.Background(),
		&Input{UserID: "user-123", JTI: "sess-1"})

	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.Equal(t, 1, out.SessionsInvalidated)
	assert.False(t, mr.Exists("session:user-123:sess-1"))
	assert.True(t, mr.Exists("session:user-123:sess-2"))
}

func TestHandler_Execute_AllSessions(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	seedSessions(t, client, "user-123", "sess-1", "sess-2", "sess-3")
	seedSessions(t, client, "user-456", "sess-9")

	out, err := createTestHandler(t, newAuthService(t, client)).execute(context.Background(),
		&Input{UserID: "user-123", LogoutAll: true})

	require.NoError(t, err)
	assert.Equal(t, 3, out.SessionsInvalidated)
	assert.True(t, mr.Exists("session:user-456:sess-9"))
}

func TestHandler_Execute_WildcardUserID(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	seedSessions(t, client, "user-123", "sess-1")
	seedSessions(t, client, "user-456", "sess-9")

	out, err := createTestHandler(t, newAuthService(t, client)).execute(context.Background(),
		&Input{UserID: "*", LogoutAll: true})

	require.NoError(t, err)
	assert.Zero(t, out.SessionsInvalidated)
	assert.True(t, mr.Exists("session:user-123:sess-1"))
	assert.True(t, mr.Exists("session:user-456:sess-9"))
}

func TestHandler_Execute_RedisFailure(t *testing.T) {
	client, redisMock := redismock.NewClientMock()
	redisMock.ExpectScan(0, "session:user-123:*", 100).SetErr(redis.ErrClosed)

	_, err := createTestHandler(t, newAuthService(t, client)).execute(context.Background(),
		&Input{UserID: "user-123", LogoutAll: true})

	stdErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeDatabaseConnectionFailed, stdErr.Code)
	assert.True(t, stdErr.Retryable)
	assert.Equal(t, "user-123", stdErr.Metadata["userId"])
}
