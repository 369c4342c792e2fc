package api

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"

	apperrors "telugu-assistant/internal/common/errors"
	"telugu-assistant/internal/common/logger"
	"telugu-assistant/internal/common/metrics"
)

const (
	localUserID    = "userID"
	localSessionID = "sessionID"
)

// requestLogger logs every request and records the HTTP metrics under the
// matched route pattern.
func requestLogger(log logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			// The error handler has not run yet; derive the status it will write.
			status = statusOf(err)
		}
		route := c.Route().Path
		elapsed := time.Since(start)

		metrics.HTTPRequests.WithLabelValues(route, c.Method(), strconv.Itoa(status)).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(route, c.Method()).Observe(elapsed.Seconds())

		log.Info("http request", map[string]interface{}{
			"method":     c.Method(),
			"path":       c.Path(),
			"route":      route,
			"status":     status,
			"durationMs": elapsed.Milliseconds(),
		})
		return err
	}
}

// requireAuth accepts "Authorization: Bearer <token>" with a live session and
// stores the user and session ids in Locals.
func requireAuth(auth AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			return apperrors.NewUnauthorizedError("missing authorization header")
		}
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			return apperrors.NewUnauthorizedError("invalid authorization header format")
		}

		session, err := auth.Validate(c.UserContext(), strings.TrimSpace(token))
		if err != nil {
			return toStandardError(err)
		}

		c.Locals(localUserID, session.UserID)
		c.Locals(localSessionID, session.ID)
		return c.Next()
	}
}

func userID(c *fiber.Ctx) string {
	id, _ := c.Locals(localUserID).(string)
	return id
}

func sessionID(c *fiber.Ctx) string {
	id, _ := c.Locals(localSessionID).(string)
	return id
}

// errorHandler writes {"error": StandardError} with the status of its code.
// fiber errors (404, 405, body too large) keep their own status.
func errorHandler(log logger.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{
				"error": fiber.Map{"code": statusCode(fe.Code), "message": fe.Message},
			})
		}

		stdErr := toStandardError(err)
		status := apperrors.HTTPStatus(stdErr.Code)
		if status >= fiber.StatusInternalServerError {
			log.Error("request failed", map[string]interface{}{
				"path":      c.Path(),
				"errorCode": string(stdErr.Code),
				"details":   stdErr.Details,
			})
		}
		return c.Status(status).JSON(fiber.Map{"error": stdErr})
	}
}

func statusOf(err error) int {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return apperrors.HTTPStatus(toStandardError(err).Code)
}

// statusCode turns 404 into NOT_FOUND.
func statusCode(status int) string {
	return strings.ToUpper(strings.ReplaceAll(utils.StatusMessage(status), " ", "_"))
}

func metricsHandler() fiber.Handler {
	handler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
	return func(c *fiber.Ctx) error {
		handler(c.Context())
		return nil
	}
}
