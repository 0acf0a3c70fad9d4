// Package server exposes the country list, historical series and forecasts over http.
package server

import (
	"context"
	"errors"
	"fmt"
	"time"

	forecaster "github.com/aouyang1/go-tempcast"
	"github.com/aouyang1/go-tempcast/cache"
	"github.com/aouyang1/go-tempcast/config"
	"github.com/aouyang1/go-tempcast/logging"
	"github.com/aouyang1/go-tempcast/timedataset"
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"
)

var ErrNilDependency = errors.New("server dependency is nil")

// Server owns the fiber app and the dataset, forecaster and cache its handlers share
type Server struct {
	app    *fiber.App
	cfg    config.ServerConfig
	ds     *timedataset.Dataset
	fc     *forecaster.Forecaster
	cache  *cache.Cache
	logger zerolog.Logger
}

// New builds the app and registers all routes
func New(cfg config.ServerConfig, ds *timedataset.Dataset, fc *forecaster.Forecaster, c *cache.Cache, logger zerolog.Logger) (*Server, error) {
	if ds == nil || fc == nil || c == nil {
		return nil, ErrNilDependency
	}

	s := &Server{
		cfg:    cfg,
		ds:     ds,
		fc:     fc,
		cache:  c,
		logger: logger,
	}
	s.app = fiber.New(fiber.Config{
		AppName:               "tempcast",
		DisableStartupMessage: true,
		UnescapePath:          true,
		Immutable:             true,
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
		ErrorHandler:          s.errorHandler,
	})
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.app.Use(logging.FiberMiddleware(s.logger))
	s.app.Use(recover.New())

	s.app.Get("/health", s.Health)

	v1 := s.app.Group("/v1")
	v1.Get("/countries", s.Countries)
	v1.Get("/countries/:country/series", s.Series)
	v1.Get("/countries/:country/forecast", s.Forecast)
	v1.Get("/countries/:country/plot", s.Plot)

	s.app.Use(s.NotFound)
}

// App exposes the fiber app, mainly for app.Test
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves on the configured host and port until Shutdown
func (s *Server) Listen() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.HTTPPort)
	s.logger.Info().Str("address", addr).Msg("server listening")
	return s.app.Listen(addr)
}

// Shutdown stops accepting requests and waits for in-flight ones until ctx ends
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	code := "ERROR"
	message := "Internal Server Error"

	var ae *apiError
	var fe *fiber.Error
	switch {
	case errors.As(err, &ae):
		status, code, message = ae.status, ae.code, ae.message
	case errors.As(err, &fe):
		status, message = fe.Code, fe.Message
	}

	if status >= fiber.StatusInternalServerError {
		zerolog.Ctx(c.UserContext()).Error().Err(err).
			Str("path", c.Path()).
			Str("method", c.Method()).
			Int("status", status).
			Msg("request error")
	}

	return c.Status(status).JSON(ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
			Path:    c.Path(),
		},
	})
}

func (s *Server) forecastTimeout() time.Duration {
	return s.cfg.ForecastTimeout
}
