// Package auth implements email/password accounts with JWT sessions backed
// by Redis.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"telugu-assistant/internal/common/config"
	"telugu-assistant/internal/common/logger"
	"telugu-assistant/internal/common/validation"
	"telugu-assistant/internal/models"
	"telugu-assistant/internal/store"
)

var (
	ErrInvalidCredentials = errors.New("INVALID_CREDENTIALS")
	ErrUserExists         = errors.New("USER_ALREADY_EXISTS")
	ErrValidationFailed   = errors.New("VALIDATION_FAILED")
	ErrInvalidToken       = errors.New("INVALID_TOKEN")
	ErrSessionExpired     = errors.New("SESSION_EXPIRED")
)

// Welcomer is told about every new account.
type Welcomer interface {
	SendWelcome(ctx context.Context, email string) (string, error)
}

type Config struct {
	JWTSecret         string
	Issuer            string
	SessionTimeout    time.Duration
	PasswordMinLength int
	BcryptCost        int
}

func NewConfig(cfg *config.Config) *Config {
	return &Config{
		JWTSecret:         cfg.Security.JWTSecret,
		Issuer:            cfg.App.Name,
		SessionTimeout:    time.Duration(cfg.Security.SessionTimeout) * time.Second,
		PasswordMinLength: cfg.Security.PasswordMinLength,
		BcryptCost:        cfg.Security.BcryptCost,
	}
}

type Service struct {
	config   *Config
	users    store.UserStore
	sessions *SessionStore
	tokens   *TokenIssuer
	welcomer Welcomer
	logger   logger.Logger
}

func NewService(cfg *Config, users store.UserStore, sessions *SessionStore, log logger.Logger) *Service {
	if cfg.SessionTimeout <= 0 {
		cfg.SessionTimeout = time.Hour
	}
	if cfg.PasswordMinLength <= 0 {
		cfg.PasswordMinLength = 6
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		config:   cfg,
		users:    users,
		sessions: sessions,
		tokens:   NewTokenIssuer(cfg.JWTSecret, cfg.Issuer, cfg.SessionTimeout),
		logger:   log.With(map[string]interface{}{"component": "auth"}),
	}
}

// WithWelcomer sets who is notified after sign-up.
func (s *Service) WithWelcomer(w Welcomer) *Service {
	s.welcomer = w
	return s
}

// SignUp creates an account and opens its first session.
func (s *Service) SignUp(ctx context.Context, email, password string) (*models.AuthResult, error) {
	email = validation.SanitizeInput(email)
	if vr := validation.ValidateCredentials(email, password, s.config.PasswordMinLength); !vr.Valid {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, vr.Error())
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.config.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.CreateUser(ctx, email, string(hash))
	if errors.Is(err, store.ErrUserExists) {
		return nil, ErrUserExists
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("user signed up", map[string]interface{}{"userId": user.ID})

	if s.welcomer != nil {
		if _, err := s.welcomer.SendWelcome(ctx, user.Email); err != nil {
			s.logger.Warn("welcome email failed", map[string]interface{}{
				"userId": user.ID,
				"error":  err.Error(),
			})
		}
	}

	return s.openSession(ctx, user)
}

// Login checks the password and opens a new session. Unknown email and
// wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (*models.AuthResult, error) {
	email = validation.SanitizeInput(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.FindUserByEmail(ctx, email)
	if errors.Is(err, store.ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	s.logger.Info("user logged in", map[string]interface{}{"userId": user.ID})
	return s.openSession(ctx, user)
}

func (s *Service) openSession(ctx context.Context, user *models.User) (*models.AuthResult, error) {
	token, claims, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	session := &models.Session{
		ID:        claims.ID,
		UserID:    user.ID,
		Email:     user.Email,
		CreatedAt: claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if err := s.sessions.Save(ctx, session, s.config.SessionTimeout); err != nil {
		return nil, err
	}

	return &models.AuthResult{User: user, Token: token, ExpiresAt: session.ExpiresAt}, nil
}

// Validate accepts a token only while it is correctly signed, unexpired and
// its session still exists.
func (s *Service) Validate(ctx context.Context, token string) (*models.Session, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}
	return s.sessions.Get(ctx, claims.Subject, claims.ID)
}

// Logout ends one session, or all of the user's sessions when all is set.
func (s *Service) Logout(ctx context.Context, userID, sessionID string, all bool) (int, error) {
	if userID == "" {
		return 0, fmt.Errorf("%w: userId is required", ErrValidationFailed)
	}

	var (
		n   int
		err error
	)
	switch {
	case all:
		n, err = s.sessions.DeleteAll(ctx, userID)
	case sessionID != "":
		n, err = s.sessions.Delete(ctx, userID, sessionID)
	default:
		return 0, fmt.Errorf("%w: sessionId or logoutAll is required", ErrValidationFailed)
	}
	if err != nil {
		return 0, err
	}

	s.logger.Info("sessions invalidated", map[string]interface{}{
		"userId":    userID,
		"count":     n,
		"logoutAll": all,
	})
	return n, nil
}
