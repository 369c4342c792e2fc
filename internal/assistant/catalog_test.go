package assistant

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalCatalog = `
triggers:
  - { intent: greeting, script: english, phrase: "yo" }
responses:
  greeting: ["g"]
  how_are_you: ["h"]
  help: ["p"]
  thanks: ["t"]
  default: ["d"]
adaptations:
  - { from: "yo", to: "హాయ్" }
`

func TestDefaultCatalog(t *testing.T) {
	c := DefaultCatalog()

	assert.Len(t, c.Triggers, 28)
	assert.Len(t, c.triggersFor(ScriptTelugu), 13)
	assert.Len(t, c.triggersFor(ScriptEnglish), 15)
	assert.Len(t, c.Adaptations, 11)

	for _, intent := range []Intent{IntentGreeting, IntentHowAreYou, IntentHelp, IntentThanks} {
		assert.Len(t, c.Responses[intent], 3, string(intent))
	}
	assert.Len(t, c.Responses[IntentDefault], 5)

	assert.Equal(t, Trigger{Intent: IntentGreeting, Script: ScriptTelugu, Phrase: "నమస్కారం"}, c.Triggers[0])
	assert.Equal(t, Adaptation{From: "hello", To: "నమస్కారం"}, c.Adaptations[0])
}

func TestParseCatalog(t *testing.T) {
	c, err := ParseCatalog([]byte(minimalCatalog))
	require.NoError(t, err)
	assert.Len(t, c.Triggers, 1)
	assert.Equal(t, []string{"d"}, c.Responses[IntentDefault])

	assert.Equal(t, IntentGreeting, NewClassifier(c).Classify("YO!"))
}

func TestParseCatalog_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"malformed yaml", "triggers: [unclosed"},
		{"missing default pool", `
responses:
  greeting: ["g"]
  how_are_you: ["h"]
  help: ["p"]
  thanks: ["t"]
`},
		{"blank response", `
responses:
  greeting: ["g"]
  how_are_you: ["h"]
  help: ["p"]
  thanks: ["  "]
  default: ["d"]
`},
		{"unknown response intent", `
responses:
  greeting: ["g"]
  how_are_you: ["h"]
  help: ["p"]
  thanks: ["t"]
  default: ["d"]
  farewell: ["bye"]
`},
		{"trigger for default intent", `
triggers:
  - { intent: default, script: english, phrase: "x" }
responses:
  greeting: ["g"]
  how_are_you: ["h"]
  help: ["p"]
  thanks: ["t"]
  default: ["d"]
`},
		{"unknown script", `
triggers:
  - { intent: greeting, script: hindi, phrase: "x" }
responses:
  greeting: ["g"]
  how_are_you: ["h"]
  help: ["p"]
  thanks: ["t"]
  default: ["d"]
`},
		{"empty phrase", `
triggers:
  - { intent: greeting, script: english, phrase: "" }
responses:
  greeting: ["g"]
  how_are_you: ["h"]
  help: ["p"]
  thanks: ["t"]
  default: ["d"]
`},
		{"empty adaptation source", `
responses:
  greeting: ["g"]
  how_are_you: ["h"]
  help: ["p"]
  thanks: ["t"]
  default: ["d"]
adaptations:
  - { from: "", to: "x" }
`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(tt.yaml))
			assert.ErrorIs(t, err, ErrInvalidCatalog)
		})
	}
}

func TestLoadCatalog(t *testing.T) {
	t.Run("empty path yields the embedded catalog", func(t *testing.T) {
		c, err := LoadCatalog("")
		require.NoError(t, err)
		assert.Equal(t, DefaultCatalog(), c)
	})

	t.Run("reads from disk", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "catalog.yaml")
		require.NoError(t, os.WriteFile(path, []byte(minimalCatalog), 0o600))

		c, err := LoadCatalog(path)
		require.NoError(t, err)
		assert.Len(t, c.Adaptations, 1)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadCatalog(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrInvalidCatalog)
	})
}
