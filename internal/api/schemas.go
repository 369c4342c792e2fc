package api

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"

	apperrors "telugu-assistant/internal/common/errors"
	"telugu-assistant/pkg/registry"
)

var (
	credentialsSchema = registry.MustCompileSchema(`{
		"type": "object",
		"required": ["email", "password"],
		"properties": {
			"email": {"type": "string"},
			"password": {"type": "string"}
		}
	}`)

	chatSchema = registry.MustCompileSchema(`{
		"type": "object",
		"required": ["message"],
		"properties": {
			"message": {"type": "string", "maxLength": 2000},
			"voice": {"type": "boolean"},
			"saveHistory": {"type": "boolean"}
		}
	}`)

	ttsSchema = registry.MustCompileSchema(`{
		"type": "object",
		"required": ["text"],
		"properties": {
			"text": {"type": "string", "minLength": 1, "maxLength": 5000},
			"lang": {"type": "string", "pattern": "^[a-z]{2}$"}
		}
	}`)

	logoutSchema = registry.MustCompileSchema(`{
		"type": "object",
		"properties": {
			"all": {"type": "boolean"}
		}
	}`)
)

// bind validates the request body against schema and decodes it into out.
// An empty body is treated as {}.
func bind(c *fiber.Ctx, schema *registry.Schema, out interface{}) error {
	body := c.Body()
	if len(body) == 0 {
		body = []byte("{}")
	}
	if err := schema.Validate(body); err != nil {
		return apperrors.NewValidationFailedError(err.Error())
	}
	if err := json.Unmarshal(body, out); err != nil {
		return apperrors.NewValidationFailedError(err.Error())
	}
	return nil
}
