package models

import "time"

// ChatTurn is one stored exchange: a user message and the assistant reply.
type ChatTurn struct {
	ID          int64     `json:"id" db:"id"`
	UserID      string    `json:"user_id" db:"user_id"`
	UserMessage string    `json:"user_message" db:"user_message"`
	AIResponse  string    `json:"ai_response" db:"ai_response"`
	AudioFile   string    `json:"audio_file,omitempty" db:"audio_file"`
	Timestamp   time.Time `json:"timestamp" db:"timestamp"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is a single side of a turn as shown in the history view.
type ChatMessage struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Audio     string    `json:"audio,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Messages expands turns into alternating user and assistant messages.
// Only the assistant side carries audio.
func Messages(turns []ChatTurn) []ChatMessage {
	messages := make([]ChatMessage, 0, 2*len(turns))
	for _, t := range turns {
		messages = append(messages,
			ChatMessage{Role: RoleUser, Content: t.UserMessage, Timestamp: t.Timestamp},
			ChatMessage{Role: RoleAssistant, Content: t.AIResponse, Audio: t.AudioFile, Timestamp: t.Timestamp},
		)
	}
	return messages
}
