package generateresponse

type Input struct {
	Message string `json:"message"`
	UserID  string `json:"userId,omitempty"`
}

type Output struct {
	Response     string `json:"response"`
	Intent       string `json:"intent,omitempty"`
	Language     string `json:"language,omitempty"`
	Source       string `json:"source"`
	LanguageHint string `json:"languageHint,omitempty"`
}
