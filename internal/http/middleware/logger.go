package middleware

import (
	"io"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"docrepo/internal/logging"
)

// Logger logs one line per request with the fields:
// - request_id (taken from context locals set by RequestID middleware)
// - method
// - path
// - status
// - latency (in milliseconds, as float)
func Logger(log *zap.Logger) fiber.Handler {
	log = log.Named("http")

	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		// With an error the final status is only known once the error handler has run.
		status := c.Response().StatusCode()
		if err != nil {
			status = StatusFor(err)
		}
		rid, _ := c.Locals(RequestIDLocalKey).(string)

		log.Info("http_request",
			zap.String("request_id", rid),
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Float64("latency", float64(time.Since(start).Microseconds())/1000),
		)

		return err
	}
}

// LoggerWithWriter is Logger over a JSON logger writing to w with timestamps in loc.
func LoggerWithWriter(w io.Writer, loc *time.Location) fiber.Handler {
	log, err := logging.NewWithWriter(w, "info", loc)
	if err != nil {
		log = zap.NewNop()
	}
	return Logger(log)
}
