package savechatturn

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "telugu-assistant/internal/common/errors"
	"telugu-assistant/internal/common/logger"
	"telugu-assistant/internal/workers/jobs"
	"telugu-assistant/pkg/registry"
)

// ==========================
// Mock Store
// ==========================

type MockTurnSaver struct {
	mock.Mock
}

func (m *MockTurnSaver) SaveChatMessage(ctx context.Context, userID, userMessage, aiResponse, audioFile string) error {
	return m.Called(ctx, userID, userMessage, aiResponse, audioFile).Error(0)
}

func createMockJob(key int64, variables map[string]interface{}) entities.Job {
	variablesJSON, _ := json.Marshal(variables)

	return entities.Job{ActivatedJob: &pb.ActivatedJob{
		Key:                key,
		Type:               TaskType,
		ProcessInstanceKey: key * 10,
		BpmnProcessId:      "telugu-chat-turn",
		ElementId:          "Activity_SaveChatTurn",
		CustomHeaders:      "{}",
		Worker:             "test-worker",
		Retries:            3,
		Variables:          string(variablesJSON),
	}}
}

func createTestHandler(t *testing.T, chats TurnSaver) *Handler {
	return NewHandler(&jobs.Config{Timeout: time.Second}, chats, nil, logger.NewTestLogger(t))
}

// ==========================
// Execute Tests
// ==========================

func TestHandler_Execute(t *testing.T) {
	chats := new(MockTurnSaver)
	chats.On("SaveChatMessage", mock.Anything, "u-1", "hello", "హలో!", "SUQz").Return(nil)

	out, err := createTestHandler(t, chats).execute(context.Background(), &Input{
		UserID: "u-1", UserMessage: "hello", AIResponse: "హలో!", AudioFile: "SUQz",
	})

	require.NoError(t, err)
	assert.True(t, out.Saved)
	chats.AssertExpectations(t)
}

func TestHandler_Execute_StoreFailure(t *testing.T) {
	chats := new(MockTurnSaver)
	chats.On("SaveChatMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("connection refused"))

	_, err := createTestHandler(t, chats).execute(context.Background(), &Input{UserID: "u-1", AIResponse: "x"})

	stdErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeChatSaveFailed, stdErr.Code)
	assert.True(t, stdErr.Retryable)
	assert.Equal(t, "u-1", stdErr.Metadata["userId"])
}

// ==========================
// Input Parsing Tests
// ==========================

func TestHandler_DecodeAgainstRegistry(t *testing.T) {
	reg, err := registry.Load(filepath.Join("..", "..", "..", "..", "configs", "activity-registry.json"))
	require.NoError(t, err)

	tests := []struct {
		name      string
		variables map[string]interface{}
		wantErr   bool
	}{
		{
			name:      "valid turn",
			variables: map[string]interface{}{"userId": "u-1", "userMessage": "hi", "aiResponse": "హలో"},
		},
		{
			name:      "missing aiResponse",
			variables: map[string]interface{}{"userId": "u-1", "userMessage": "hi"},
			wantErr:   true,
		},
		{
			name:      "userId wrong type",
			variables: map[string]interface{}{"userId": 42, "userMessage": "hi", "aiResponse": "హలో"},
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var input Input
			err := jobs.Decode(createMockJob(1, tt.variables), TaskType, reg, &input)
			if tt.wantErr {
				stdErr, ok := apperrors.As(err)
				require.True(t, ok)
				assert.Equal(t, apperrors.ErrCodeValidationFailed, stdErr.Code)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "u-1", input.UserID)
		})
	}
}
