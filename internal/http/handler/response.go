package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"docrepo/internal/http/middleware"
	"docrepo/internal/service"
)

// envelope is the body of every JSON response.
type envelope struct {
	Status    bool   `json:"status"`
	Message   string `json:"message"`
	Data      any    `json:"data"`
	RequestID string `json:"request_id"`
}

const msgInvalidBody = "Invalid request body."

func writeOK(c *fiber.Ctx, status int, data any) error {
	return c.Status(status).JSON(envelope{
		Status:    true,
		Message:   service.MsgSuccess,
		Data:      data,
		RequestID: middleware.GetRequestID(c),
	})
}

// writeError writes a failure envelope. message must be safe to show to callers.
func writeError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(envelope{
		Status:    false,
		Message:   message,
		RequestID: middleware.GetRequestID(c),
	})
}

func badRequest(msg string) error {
	return &service.Error{Kind: service.KindValidation, Message: msg}
}

// ErrorHandler returns a Fiber global error handler that renders errors as envelopes.
// Service errors keep their user message; anything else gets a generic one.
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	log = log.Named("http")

	return func(c *fiber.Ctx, err error) error {
		status := middleware.StatusFor(err)

		var se *service.Error
		if errors.As(err, &se) {
			if status >= fiber.StatusInternalServerError {
				log.Error("request failed",
					zap.String("request_id", middleware.GetRequestID(c)),
					zap.Stringer("kind", se.Kind),
					zap.Error(err),
				)
			}
			return writeError(c, status, se.Message)
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "bad request")
		case fiber.StatusNotFound:
			return writeError(c, status, "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "method not allowed")
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, status, "request entity too large")
		default:
			log.Error("unhandled error",
				zap.String("request_id", middleware.GetRequestID(c)),
				zap.Error(err),
			)
			return writeError(c, fiber.StatusInternalServerError, "internal server error")
		}
	}
}
