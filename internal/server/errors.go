package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/anubad/internal/providers/completion"
	translationdomain "github.com/smallbiznis/anubad/internal/translation/domain"
)

const (
	msgInvalidRequestBody = "Invalid request body"
	msgTextRequired       = "Please enter text to translate"
	msgTranslateFailed    = "An error occurred during translation"
	msgListFailed         = "Failed to fetch translations"
	msgNotFound           = "Not found"
	msgInternal           = "Internal server error"
)

var ErrNotFound = errors.New("not_found")

// ValidationError is a client input problem tied to one request field.
type ValidationError struct {
	Field   string
	Message string
}

func (v *ValidationError) Error() string {
	return "validation error: " + v.Field
}

// publicError carries the message a route wants shown for an internal failure.
type publicError struct {
	message string
	err     error
}

func (e *publicError) Error() string {
	if e.err == nil {
		return e.message
	}
	return e.err.Error()
}

func (e *publicError) Unwrap() error { return e.err }

type errorPayload struct {
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, payload)
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return &ValidationError{Field: "request", Message: msgInvalidRequestBody}
}

func textRequiredError() error {
	return &ValidationError{Field: "text", Message: msgTextRequired}
}

func withPublicMessage(err error, message string) error {
	if err == nil {
		return nil
	}
	return &publicError{message: message, err: err}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{Message: msgInternal}
	}

	var vErr *ValidationError
	if errors.As(err, &vErr) && vErr != nil {
		return http.StatusBadRequest, errorPayload{Message: vErr.Message, Field: vErr.Field}
	}

	switch {
	case errors.Is(err, translationdomain.ErrInvalidText):
		return http.StatusBadRequest, errorPayload{Message: msgTextRequired, Field: "text"}
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound, errorPayload{Message: msgNotFound}
	}

	var pErr *publicError
	if errors.As(err, &pErr) && pErr != nil {
		return http.StatusInternalServerError, errorPayload{Message: pErr.message}
	}
	return http.StatusInternalServerError, errorPayload{Message: msgInternal}
}

// classifyErrorForLog returns the error type and code recorded on the request log line.
func classifyErrorForLog(err error) (string, string) {
	var vErr *ValidationError
	switch {
	case err == nil:
		return "", ""
	case errors.As(err, &vErr):
		return "validation_error", vErr.Field
	case errors.Is(err, translationdomain.ErrInvalidText):
		return "validation_error", "text"
	case errors.Is(err, ErrNotFound):
		return "not_found", ""
	case errors.Is(err, completion.ErrAPICallFailed):
		return "provider_error", "api_call_failed"
	case errors.Is(err, translationdomain.ErrEmptyTranslation):
		return "provider_error", "empty_translation"
	default:
		return "internal_error", ""
	}
}
