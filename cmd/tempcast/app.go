package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	forecaster "github.com/aouyang1/go-tempcast"
	"github.com/aouyang1/go-tempcast/cache"
	"github.com/aouyang1/go-tempcast/config"
	"github.com/aouyang1/go-tempcast/logging"
	"github.com/aouyang1/go-tempcast/server"
	"github.com/aouyang1/go-tempcast/timedataset"
	"github.com/goccy/go-json"
	"github.com/pkg/profile"
	"github.com/rs/zerolog"
)

var ErrUsage = errors.New("usage error")

const usage = `usage: tempcast [-config path] [-profile cpu|mem] <command> [flags]

commands:
  countries   list the countries in the dataset
  forecast    forecast one country and print the model summary
  serve       serve the http api
`

// app holds what every command needs after configuration is loaded
type app struct {
	cfg    *config.Config
	logger zerolog.Logger
	stdout io.Writer
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("tempcast", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "Path to configuration file")
	profileMode := fs.String("profile", "", "Write a cpu or mem profile to the working directory")
	fs.Usage = func() { fmt.Fprint(stderr, usage) }
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() < 1 {
		fs.Usage()
		return 2
	}

	switch *profileMode {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.Quiet, profile.NoShutdownHook).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath("."), profile.Quiet, profile.NoShutdownHook).Stop()
	default:
		fmt.Fprintf(stderr, "unknown profile mode %q\n", *profileMode)
		return 2
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to load config: %v\n", err)
		return 1
	}
	logger, closer, err := logging.New(cfg.Logging)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to initialize logger: %v\n", err)
		return 1
	}
	defer closer.Close()

	a := &app{cfg: cfg, logger: logger, stdout: stdout}

	cmd, cmdArgs := fs.Arg(0), fs.Args()[1:]
	switch cmd {
	case "countries":
		err = a.countries()
	case "forecast":
		err = a.forecast(cmdArgs, stderr)
	case "serve":
		err = a.serve()
	default:
		err = fmt.Errorf("unknown command %q, %w", cmd, ErrUsage)
	}

	if errors.Is(err, ErrUsage) {
		fmt.Fprintln(stderr, err)
		fs.Usage()
		return 2
	}
	if err != nil {
		logger.Error().Err(err).Str("command", cmd).Msg("command failed")
		fmt.Fprintf(stderr, "%s: %v\n", cmd, err)
		return 1
	}
	return 0
}

func (a *app) loadDataset() (*timedataset.Dataset, error) {
	ds, err := timedataset.LoadCSVFile(a.cfg.Data.Path, a.cfg.Data.CSVOptions())
	if err != nil {
		return nil, fmt.Errorf("unable to load dataset, %w", err)
	}
	a.logger.Info().
		Str("path", a.cfg.Data.Path).
		Int("observations", ds.Len()).
		Int("countries", len(ds.Countries())).
		Msg("dataset loaded")
	return ds, nil
}

func (a *app) newForecaster() (*forecaster.Forecaster, error) {
	opt, err := a.cfg.Forecast.ForecasterOptions(a.logger)
	if err != nil {
		return nil, err
	}
	return forecaster.New(opt)
}

func (a *app) newCache(ctx context.Context) (*cache.Cache, error) {
	if !a.cfg.Cache.Enabled {
		return cache.New(nil, a.logger), nil
	}
	switch a.cfg.Cache.Backend {
	case "redis":
		store, err := cache.NewRedisStore(ctx, a.cfg.Cache.RedisURL, a.cfg.Cache.Prefix, a.cfg.Cache.TTL)
		if err != nil {
			return nil, err
		}
		return cache.New(store, a.logger), nil
	default:
		return cache.New(cache.NewMemoryStore(a.cfg.Cache.TTL), a.logger), nil
	}
}

func (a *app) countries() error {
	ds, err := a.loadDataset()
	if err != nil {
		return err
	}
	for _, c := range ds.Countries() {
		if _, err := fmt.Fprintln(a.stdout, c); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) forecast(args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("forecast", flag.ContinueOnError)
	fs.SetOutput(stderr)
	country := fs.String("country", "", "Country to forecast")
	targetYear := fs.Int("target-year", a.cfg.Forecast.TargetYear, "Year to forecast out to")
	out := fs.String("out", "", "Write an html chart to this path")
	jsonOut := fs.String("json", "", "Write the results as json to this path, - for stdout")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%v, %w", err, ErrUsage)
	}
	if *country == "" {
		return fmt.Errorf("-country is required, %w", ErrUsage)
	}

	ds, err := a.loadDataset()
	if err != nil {
		return err
	}
	fc, err := a.newForecaster()
	if err != nil {
		return err
	}

	series := ds.Select(*country)
	if series.Len() == 0 {
		return fmt.Errorf("no observations for country %q", *country)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := fc.ForecastTo(ctx, series, *targetYear)
	if err != nil {
		return fmt.Errorf("unable to forecast %s, %w", *country, err)
	}

	if *jsonOut != "-" {
		if err := res.TablePrint(a.stdout); err != nil {
			return err
		}
	}
	if *jsonOut != "" {
		if err := writeJSON(*jsonOut, a.stdout, res); err != nil {
			return err
		}
	}
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			return fmt.Errorf("unable to create chart file, %w", err)
		}
		defer f.Close()
		if err := forecaster.PlotForecast(f, *country, series, res); err != nil {
			return fmt.Errorf("unable to render chart, %w", err)
		}
	}
	return nil
}

func writeJSON(path string, stdout io.Writer, res *forecaster.Results) error {
	b, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("unable to encode results, %w", err)
	}
	b = append(b, '\n')
	if path == "-" {
		_, err := stdout.Write(b)
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

func (a *app) serve() error {
	a.logger.Info().Str("version", Version).Str("commit", GitCommit).Msg("tempcast starting")

	ds, err := a.loadDataset()
	if err != nil {
		return err
	}
	fc, err := a.newForecaster()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := a.newCache(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	srv, err := server.New(a.cfg.Server, ds, fc, c, a.logger)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Listen()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Error().Err(err).Msg("server forced to shutdown")
		return err
	}
	a.logger.Info().Msg("server exited")
	return nil
}
