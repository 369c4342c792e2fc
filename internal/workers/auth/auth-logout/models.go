package authlogout

import "time"

type Input struct {
	UserID string `json:"userId"`
	// JTI is the session id carried in the token's jti claim.
	JTI       string `json:"jti,omitempty"`
	LogoutAll bool   `json:"logoutAll,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

type Output struct {
	Success             bool      `json:"success"`
	Message             string    `json:"message"`
	SessionsInvalidated int       `json:"sessionsInvalidated"`
	LogoutAt            time.Time `json:"logoutAt"`
}
