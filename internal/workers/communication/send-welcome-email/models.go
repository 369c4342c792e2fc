package sendwelcome

import "time"

type Input struct {
	Email string `json:"email"`
}

type Output struct {
	Success   bool      `json:"success"`
	MessageID string    `json:"messageId"`
	Provider  string    `json:"provider"`
	SentAt    time.Time `json:"sentAt"`
}
