package synthesizespeech

type Input struct {
	Text string `json:"text"`
	Lang string `json:"lang,omitempty"`
}

type Output struct {
	AudioBase64 string `json:"audioBase64"`
	Bytes       int    `json:"bytes"`
}
