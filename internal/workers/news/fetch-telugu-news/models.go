package fetchnews

import "telugu-assistant/internal/news"

type Input struct {
	Category string `json:"category,omitempty"`
}

type Output struct {
	Articles   []news.Article `json:"articles"`
	Count      int            `json:"count"`
	FromBackup bool           `json:"fromBackup"`
}
