package server

import (
	"context"
	"errors"
	"strconv"
	"time"

	forecaster "github.com/aouyang1/go-tempcast"
	"github.com/aouyang1/go-tempcast/cache"
	"github.com/aouyang1/go-tempcast/timedataset"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// Health handles health check requests
func (s *Server) Health(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Countries: len(s.ds.Countries()),
	})
}

// NotFound handles unknown routes
func (s *Server) NotFound(c *fiber.Ctx) error {
	return newAPIError(fiber.StatusNotFound, "NOT_FOUND", "Route not found")
}

// Countries lists every country in the dataset
// GET /v1/countries
func (s *Server) Countries(c *fiber.Ctx) error {
	return c.JSON(CountriesResponse{Countries: s.ds.Countries()})
}

// Series returns the historical series of a country
// GET /v1/countries/:country/series
func (s *Server) Series(c *fiber.Ctx) error {
	country := c.Params("country")
	series := s.ds.Select(country)
	if series.Len() == 0 {
		return newAPIError(fiber.StatusNotFound, "EMPTY_SERIES", "no observations for country "+country)
	}
	return c.JSON(SeriesResponse{
		Country: country,
		T:       series.T,
		Y:       series.Y,
	})
}

// Forecast fits both models for a country and returns their forecasts
// GET /v1/countries/:country/forecast?target_year=2040
func (s *Server) Forecast(c *fiber.Ctx) error {
	country, series, targetYear, err := s.parseForecastRequest(c)
	if err != nil {
		return err
	}
	if series.Len() == 0 {
		return newAPIError(fiber.StatusNotFound, "EMPTY_SERIES", "no observations for country "+country)
	}

	res, err := s.forecast(c, country, series, targetYear)
	if err != nil {
		return err
	}
	return c.JSON(res)
}

// Plot renders the history and both forecasts as an html chart
// GET /v1/countries/:country/plot?target_year=2040
func (s *Server) Plot(c *fiber.Ctx) error {
	country, series, targetYear, err := s.parseForecastRequest(c)
	if err != nil {
		return err
	}
	if series.Len() == 0 {
		return newAPIError(fiber.StatusNotFound, "EMPTY_SERIES", "no observations for country "+country)
	}

	res, err := s.forecast(c, country, series, targetYear)
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return forecaster.PlotForecast(c, country, series, res)
}

func (s *Server) parseForecastRequest(c *fiber.Ctx) (string, *timedataset.TimeDataset, int, error) {
	country := c.Params("country")

	targetYear := s.fc.Options().TargetYear
	if raw := c.Query("target_year"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil || year < 1 {
			return "", nil, 0, newAPIError(fiber.StatusBadRequest, "INVALID_TARGET_YEAR", "target_year must be a positive integer")
		}
		targetYear = year
	}
	return country, s.ds.Select(country), targetYear, nil
}

// forecast runs through the cache so concurrent requests for a country share one fit
func (s *Server) forecast(c *fiber.Ctx, country string, series *timedataset.TimeDataset, targetYear int) (*forecaster.Results, error) {
	ctx := c.UserContext()
	if timeout := s.forecastTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	key := cache.Key{Country: country, TargetYear: targetYear}
	res, err := s.cache.GetOrCompute(ctx, key, func(ctx context.Context) (*forecaster.Results, error) {
		return s.fc.ForecastTo(ctx, series, targetYear)
	})
	if err != nil {
		logger := zerolog.Ctx(c.UserContext())
		if errors.Is(err, context.DeadlineExceeded) {
			logger.Warn().Str("country", country).Msg("forecast timed out")
			return nil, newAPIError(fiber.StatusGatewayTimeout, "TIMEOUT", "forecast did not finish in time")
		}
		return nil, err
	}
	return res, nil
}

// apiError is rendered by the error handler as an ErrorResponse
type apiError struct {
	status  int
	code    string
	message string
}

func (e *apiError) Error() string {
	return e.code + ": " + e.message
}

func newAPIError(status int, code, message string) error {
	return &apiError{status: status, code: code, message: message}
}
