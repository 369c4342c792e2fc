package registry

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRegistry() *ActivityRegistry {
	return &ActivityRegistry{
		Version: "1.0.0",
		Activities: []Activity{
			{
				ID:          "save-chat-turn",
				DisplayName: "Save Chat Turn",
				Category:    "conversation",
				TaskType:    "save-chat-turn",
				InputSchema: map[string]interface{}{
					"type":     "object",
					"required": []interface{}{"userId", "aiResponse"},
					"properties": map[string]interface{}{
						"userId":     map[string]interface{}{"type": "string", "minLength": 1},
						"aiResponse": map[string]interface{}{"type": "string"},
					},
				},
			},
			{
				ID:          "fetch-telugu-news",
				DisplayName: "Fetch Telugu News",
				Category:    "news",
				TaskType:    "fetch-telugu-news",
			},
		},
	}
}

// ==========================
// Validate
// ==========================

func TestRegistry_Validate(t *testing.T) {
	r := New(testRegistry())

	err := r.Validate("save-chat-turn", map[string]interface{}{"userId": "u1", "aiResponse": "నమస్కారం"})
	assert.NoError(t, err)

	err = r.Validate("save-chat-turn", map[string]interface{}{"userId": ""})
	require.Error(t, err)
	var schemaErr *SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Len(t, schemaErr.Violations, 2)
}

func TestRegistry_Validate_NoSchemaAcceptsAnything(t *testing.T) {
	r := New(testRegistry())
	assert.NoError(t, r.Validate("fetch-telugu-news", map[string]interface{}{"anything": 1}))
}

func TestRegistry_Validate_UnknownTaskType(t *testing.T) {
	r := New(testRegistry())
	assert.ErrorIs(t, r.Validate("crm-user-create", nil), ErrUnknownTaskType)
}

func TestSchema_Validate_RawJSON(t *testing.T) {
	s := MustCompileSchema(`{"type":"object","required":["message"]}`)

	assert.NoError(t, s.Validate([]byte(`{"message":"hi"}`)))
	assert.Error(t, s.Validate([]byte(`{}`)))

	err := s.Validate([]byte(`{not json`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not valid JSON")
}

func TestCompileSchema_Invalid(t *testing.T) {
	_, err := CompileSchema(`{"type": 12}`)
	assert.ErrorIs(t, err, ErrInvalidSchema)
}

// ==========================
// Mutations
// ==========================

func TestActivityRegistry_Add(t *testing.T) {
	reg := testRegistry()

	err := reg.Add(Activity{ID: "auth-logout", DisplayName: "Auth Logout", Category: "auth", TaskType: "auth-logout"})
	require.NoError(t, err)
	assert.Len(t, reg.Activities, 3)
	assert.NotEmpty(t, reg.LastUpdated)

	err = reg.Add(Activity{ID: "auth-logout"})
	assert.Error(t, err)
}

func TestActivityRegistry_Update(t *testing.T) {
	reg := testRegistry()

	require.NoError(t, reg.Update("save-chat-turn", "status", StatusVerified))
	require.NoError(t, reg.Update("save-chat-turn", "timeout", "15s"))
	require.NoError(t, reg.Update("save-chat-turn", "retries", "4"))

	a, ok := reg.Find("save-chat-turn")
	require.True(t, ok)
	assert.Equal(t, StatusVerified, a.ImplementationStatus)
	assert.Equal(t, "15s", a.Timeout)
	assert.Equal(t, 4, a.Retries)

	tests := []struct {
		name, id, field, value string
	}{
		{"bad status", "save-chat-turn", "status", "done"},
		{"bad timeout", "save-chat-turn", "timeout", "soon"},
		{"bad retries", "save-chat-turn", "retries", "many"},
		{"unknown field", "save-chat-turn", "owner", "x"},
		{"unknown id", "missing", "version", "2.0.0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, reg.Update(tt.id, tt.field, tt.value))
		})
	}
}

func TestActivityRegistry_Check(t *testing.T) {
	assert.NoError(t, testRegistry().Check())
	assert.Error(t, (&ActivityRegistry{}).Check())

	dupTask := testRegistry()
	dupTask.Activities[1].TaskType = "save-chat-turn"
	assert.ErrorContains(t, dupTask.Check(), "duplicate task type")

	badSchema := testRegistry()
	badSchema.Activities[1].InputSchema = map[string]interface{}{"type": 5}
	assert.ErrorIs(t, badSchema.Check(), ErrInvalidSchema)
}

// ==========================
// Persistence
// ==========================

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "registry.json")
	require.NoError(t, Save(testRegistry(), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, byte('\n'), data[len(data)-1])

	r, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, r.Activities, 2)
	assert.NoError(t, r.Validate("save-chat-turn", map[string]interface{}{"userId": "u", "aiResponse": "a"}))
}

func TestLoad_ShippedRegistry(t *testing.T) {
	r, err := Load(filepath.Join("..", "..", "configs", "activity-registry.json"))
	require.NoError(t, err)
	require.NoError(t, r.Check())

	for _, taskType := range []string{
		"generate-telugu-response", "synthesize-speech", "save-chat-turn",
		"fetch-telugu-news", "publish-news-digest", "send-welcome-email", "auth-logout",
	} {
		_, ok := r.Find(taskType)
		assert.True(t, ok, taskType)
	}

	assert.NoError(t, r.Validate("send-welcome-email", map[string]interface{}{"email": "user@example.com"}))
	assert.Error(t, r.Validate("send-welcome-email", map[string]interface{}{"email": "nope"}))
}
