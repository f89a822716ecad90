package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/bilgisen/picreel/internal/logger"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// ValidationError lists the failed fields of a request body.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %d field(s)", len(e.Fields))
}

// Bind parses the request body into dst and validates its struct tags.
func Bind(c *fiber.Ctx, dst any) error {
	if len(c.Body()) > 0 {
		if err := c.BodyParser(dst); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body: "+err.Error())
		}
	}
	return Validate(dst)
}

// BindQuery parses query parameters into dst and validates its struct tags.
func BindQuery(c *fiber.Ctx, dst any) error {
	if err := c.QueryParser(dst); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid query parameters: "+err.Error())
	}
	return Validate(dst)
}

// Validate checks the struct tags of s.
func Validate(s any) error {
	err := getValidator().Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fe.Tag()
	}
	return &ValidationError{Fields: fields}
}

// StatusClassifier maps domain errors to HTTP status codes. It returns 0 for
// errors it does not know.
type StatusClassifier func(err error) int

func statusFor(err error, classify StatusClassifier) int {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return fiber.StatusUnprocessableEntity
	}
	if classify != nil {
		if code := classify(err); code != 0 {
			return code
		}
	}
	return fiber.StatusInternalServerError
}

// ErrorHandler renders fiber and validation errors; everything else is a 500.
var ErrorHandler = NewErrorHandler(nil)

// NewErrorHandler renders every error returned by a handler as JSON, using
// classify for domain errors.
func NewErrorHandler(classify StatusClassifier) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := statusFor(err, classify)

		if code >= fiber.StatusInternalServerError {
			logger.Get().Error().
				Err(err).
				Str("method", c.Method()).
				Str("path", c.Path()).
				Int("status", code).
				Msg("HTTP error")
		}

		body := fiber.Map{"error": err.Error()}
		var ve *ValidationError
		var fe *fiber.Error
		switch {
		case errors.As(err, &ve):
			body = fiber.Map{"error": "Validation failed", "fields": ve.Fields}
		case code == fiber.StatusInternalServerError && !errors.As(err, &fe):
			body = fiber.Map{"error": http.StatusText(code), "detail": err.Error()}
		}
		return c.Status(code).JSON(body)
	}
}
