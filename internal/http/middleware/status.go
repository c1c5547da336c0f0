package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"docrepo/internal/service"
)

// StatusFor maps an error returned by a handler to the HTTP status sent to the client.
func StatusFor(err error) int {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	switch service.KindOf(err) {
	case service.KindValidation:
		return fiber.StatusBadRequest
	case service.KindUnauthorized:
		return fiber.StatusUnauthorized
	case service.KindNotFound:
		return fiber.StatusNotFound
	case service.KindConflict:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}
