package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"headsign.transitboard.org/internal/app"
	"headsign.transitboard.org/internal/config"
	"headsign.transitboard.org/internal/configstore"
	"headsign.transitboard.org/internal/gtfsrtsource"
	"headsign.transitboard.org/internal/logging"
	"headsign.transitboard.org/internal/mbta"
	"headsign.transitboard.org/internal/models"
	"headsign.transitboard.org/internal/poller"
	"headsign.transitboard.org/internal/reconcile"
	"headsign.transitboard.org/internal/restapi"
	"headsign.transitboard.org/internal/stops"
	"headsign.transitboard.org/internal/trmnl"
)

func main() {
	configPath := flag.String("config", "config.yml", "Path to the YAML config file")
	once := flag.Bool("once", false, "Run one update cycle and exit")
	interval := flag.Int("interval", 0, "Override the poll interval in seconds")
	route := flag.String("route", "", "Override the tracked route and persist it")
	dbPath := flag.String("db", "", "Override the route config database path")
	flag.Parse()

	logger := logging.NewStructuredLogger(os.Stdout, slog.LevelInfo)
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	if *interval > 0 {
		cfg.Display.PollIntervalS = *interval
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}

	store, err := configstore.Open(cfg.DBPath, logger)
	if err != nil {
		logger.Error("failed to open route config store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	if *route != "" {
		if err := store.Save(context.Background(), models.RouteConfig{RouteID: *route}); err != nil {
			logger.Error("failed to update route", "error", err, "route_id", *route)
			os.Exit(1)
		}
		logger.Info("route updated", "route_id", *route)
	}

	timeout := time.Duration(cfg.MBTA.TimeoutMS) * time.Millisecond
	client := mbta.NewClient(cfg.MBTA.BaseURL, cfg.MBTA.APIKey, timeout, logger)

	var source poller.DataSource = client
	if cfg.GTFSRT.TripUpdatesURL != "" {
		source = gtfsrtsource.NewSource(cfg.GTFSRT.TripUpdatesURL, timeout, client, logger)
		logger.Info("using GTFS-RT trip updates source", "url", cfg.GTFSRT.TripUpdatesURL)
	}

	reconciler := &reconcile.Reconciler{
		K:        cfg.Display.PredictionsPerDirection,
		MaxStops: cfg.Display.MaxStops,
		Names:    client.StopNames(),
	}
	limiter := trmnl.NewRateLimiter(cfg.Display.HourlySendCap)
	sender := trmnl.NewHTTPSender(cfg.Display.WebhookURL, timeout, logger)
	publisher := trmnl.NewPublisher(sender, limiter, logger)
	resolver := stops.NewResolver(client, logger)

	loop := poller.New(logger, store, source, resolver, reconciler, publisher, limiter)

	if *once {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		loop.RunOnce(logging.WithLogger(ctx, logger))
		return
	}

	loop.Start(time.Duration(cfg.Display.PollIntervalS) * time.Second)

	application := &app.Application{
		Config:  cfg,
		Logger:  logger,
		Store:   store,
		Limiter: limiter,
	}
	api := restapi.NewRestAPI(application)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      api.Routes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	shutdownErr := make(chan error)
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		logger.Info("shutting down", "signal", s.String())
		loop.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		shutdownErr <- srv.Shutdown(ctx)
	}()

	logger.Info("starting server", "addr", srv.Addr)
	err = srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		logger.Error(err.Error())
		os.Exit(1)
	}
	if err := <-shutdownErr; err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
	logger.Info("stopped")
}
