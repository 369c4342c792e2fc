package models

import "time"

// User is a registered account. PasswordHash never leaves the server.
type User struct {
	ID           string    `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// UserStats backs the profile page counters.
type UserStats struct {
	TotalMessages int `json:"total_messages"`
	DaysActive    int `json:"days_active"`
	NewsRead      int `json:"news_read"`
}
