package logging

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const RequestIDHeader = "X-Request-ID"

// FiberMiddleware logs each request and attaches a request scoped logger to the user context
func FiberMiddleware(logger zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		requestID := c.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set(RequestIDHeader, requestID)

		reqLogger := logger.With().Str("request_id", requestID).Logger()
		c.SetUserContext(reqLogger.WithContext(c.UserContext()))

		// resolve the error here so the logged status matches the response
		err := c.Next()
		if err != nil {
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		statusCode := c.Response().StatusCode()
		var e *zerolog.Event
		switch {
		case statusCode >= 500:
			e = reqLogger.Error().Err(err)
		case statusCode >= 400:
			e = reqLogger.Warn()
		default:
			e = reqLogger.Info()
		}
		e.Str("method", c.Method()).
			Str("path", c.Path()).
			Str("ip", c.IP()).
			Int("status", statusCode).
			Dur("duration", time.Since(start)).
			Msg("request completed")
		return nil
	}
}
