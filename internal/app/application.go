package app

import (
	"log/slog"

	"headsign.transitboard.org/internal/config"
	"headsign.transitboard.org/internal/configstore"
	"headsign.transitboard.org/internal/trmnl"
)

// Application holds the dependencies shared by the HTTP handlers and
// middleware: the loaded configuration, the logger, the route selection
// store, and the delivery rate limiter (read-only from the API side).
type Application struct {
	Config  config.AppConfig
	Logger  *slog.Logger
	Store   *configstore.Store
	Limiter *trmnl.RateLimiter
}
