package publishdigest

import "telugu-assistant/internal/models"

type Input struct {
	Articles []models.Headline `json:"articles"`
}

type Output struct {
	MessageID string `json:"messageId"`
	Headlines int    `json:"headlines"`
}
