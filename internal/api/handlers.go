package api

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"telugu-assistant/internal/chat"
	apperrors "telugu-assistant/internal/common/errors"
)

const (
	defaultSearchSize = 10
	maxSearchSize     = 50
	readyTimeout      = 3 * time.Second
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type chatRequest struct {
	Message     string `json:"message"`
	Voice       bool   `json:"voice"`
	SaveHistory bool   `json:"saveHistory"`
}

type ttsRequest struct {
	Text string `json:"text"`
	Lang string `json:"lang"`
}

type logoutRequest struct {
	All bool `json:"all"`
}

// ==========================
// Auth
// ==========================

func (s *Server) signUp(c *fiber.Ctx) error {
	var req credentialsRequest
	if err := bind(c, credentialsSchema, &req); err != nil {
		return err
	}
	result, err := s.services.Auth.SignUp(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

func (s *Server) login(c *fiber.Ctx) error {
	var req credentialsRequest
	if err := bind(c, credentialsSchema, &req); err != nil {
		return err
	}
	result, err := s.services.Auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(result)
}

func (s *Server) logout(c *fiber.Ctx) error {
	var req logoutRequest
	if err := bind(c, logoutSchema, &req); err != nil {
		return err
	}
	n, err := s.services.Auth.Logout(c.UserContext(), userID(c), sessionID(c), req.All)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"sessionsInvalidated": n})
}

// ==========================
// Chat
// ==========================

func (s *Server) chat(c *fiber.Ctx) error {
	var req chatRequest
	if err := bind(c, chatSchema, &req); err != nil {
		return err
	}
	result := s.services.Chat.Send(c.UserContext(), userID(c), req.Message, chat.Options{
		Voice:       req.Voice,
		SaveHistory: req.SaveHistory,
	})
	s.services.Observability.RecordReply(c.UserContext(), "api", string(result.Source))
	return c.JSON(result)
}

func (s *Server) history(c *fiber.Ctx) error {
	messages, err := s.services.Chat.History(c.UserContext(), userID(c))
	if err != nil {
		return historyError(err)
	}
	return c.JSON(fiber.Map{"messages": messages})
}

func (s *Server) clearHistory(c *fiber.Ctx) error {
	if err := s.services.Chat.Clear(c.UserContext(), userID(c)); err != nil {
		return historyError(err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func historyError(err error) error {
	if errors.Is(err, chat.ErrHistoryDisabled) {
		return err
	}
	return apperrors.NewHistoryQueryFailedError(err)
}

func (s *Server) stats(c *fiber.Ctx) error {
	stats, err := s.services.Chat.Stats(c.UserContext(), userID(c))
	if err != nil {
		return apperrors.NewHistoryQueryFailedError(err)
	}
	return c.JSON(stats)
}

// ==========================
// News and speech
// ==========================

func (s *Server) latestNews(c *fiber.Ctx) error {
	result := s.services.News.Latest(c.UserContext())
	return c.JSON(fiber.Map{
		"articles":   result.Articles,
		"count":      len(result.Articles),
		"fromBackup": result.FromBackup,
	})
}

func (s *Server) searchNews(c *fiber.Ctx) error {
	size := defaultSearchSize
	if raw := c.Query("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > maxSearchSize {
			return apperrors.NewValidationFailedError("size must be between 1 and " + strconv.Itoa(maxSearchSize))
		}
		size = n
	}

	articles, err := s.services.News.Search(c.UserContext(), c.Query("q"), size)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"articles": articles, "count": len(articles)})
}

func (s *Server) synthesize(c *fiber.Ctx) error {
	if s.services.Speech == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "speech synthesis is not configured")
	}
	var req ttsRequest
	if err := bind(c, ttsSchema, &req); err != nil {
		return err
	}
	audio, err := s.services.Speech.SynthesizeLang(c.UserContext(), req.Text, req.Lang)
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, "audio/mpeg")
	return c.Send(audio)
}

// ==========================
// Health
// ==========================

func (s *Server) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "healthy",
		"app":     s.config.AppName,
		"version": s.config.Version,
	})
}

func (s *Server) ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), readyTimeout)
	defer cancel()

	failed := fiber.Map{}
	for _, check := range s.services.Checks {
		if err := check.Ping(ctx); err != nil {
			failed[check.Name] = err.Error()
		}
	}
	if len(failed) > 0 {
		s.logger.Warn("readiness check failed", map[string]interface{}{"failed": failed})
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "not_ready", "failed": failed})
	}
	return c.JSON(fiber.Map{"status": "ready"})
}
