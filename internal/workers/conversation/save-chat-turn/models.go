package savechatturn

type Input struct {
	UserID      string `json:"userId"`
	UserMessage string `json:"userMessage"`
	AIResponse  string `json:"aiResponse"`
	// AudioFile is the base64 MP3 of the reply, if any.
	AudioFile string `json:"audioFile,omitempty"`
}

type Output struct {
	Saved bool `json:"saved"`
}
