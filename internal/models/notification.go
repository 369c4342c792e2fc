package models

// EmailMessage is an outgoing email.
type EmailMessage struct {
	To       []string `json:"to"`
	From     string   `json:"from"`
	Subject  string   `json:"subject"`
	Body     string   `json:"body"`
	HTMLBody string   `json:"htmlBody,omitempty"`
}

// Headline is the part of a news article carried in a digest.
type Headline struct {
	Title  string `json:"title"`
	Source string `json:"source"`
	Link   string `json:"link"`
}
