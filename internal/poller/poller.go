// Package poller owns the update cycle: fetch feed data, reconcile it, and
// push changed boards to the display under the delivery budget.
package poller

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"headsign.transitboard.org/internal/logging"
	"headsign.transitboard.org/internal/models"
	"headsign.transitboard.org/internal/reconcile"
	"headsign.transitboard.org/internal/trmnl"
)

const cycleTimeout = 60 * time.Second

// RouteStore loads the currently selected route.
type RouteStore interface {
	Load(ctx context.Context) (models.RouteConfig, error)
}

// DataSource supplies live predictions and scheduled departures for a route.
type DataSource interface {
	Predictions(ctx context.Context, routeID string) ([]models.Prediction, error)
	ScheduledDepartures(ctx context.Context, routeID string) ([]models.ScheduledDeparture, error)
}

// OrderResolver produces the ordered stop name list for a route.
type OrderResolver interface {
	StopOrder(ctx context.Context, routeID string) []string
}

// DisplayPublisher delivers a rendered payload to the sink.
type DisplayPublisher interface {
	Publish(ctx context.Context, payload trmnl.Payload) error
}

// Poller runs the fetch → reconcile → publish cycle. One Poller owns the
// rate limiter state and the last-published fingerprint; no failure in a
// cycle terminates the loop.
type Poller struct {
	Logger     *slog.Logger
	Store      RouteStore
	Source     DataSource
	Resolver   OrderResolver
	Reconciler *reconcile.Reconciler
	Publisher  DisplayPublisher
	Limiter    *trmnl.RateLimiter

	lastFingerprint string
	shutdownChan    chan struct{}
	wg              sync.WaitGroup
	now             func() time.Time
}

// New creates a poller over the given collaborators.
func New(logger *slog.Logger, store RouteStore, source DataSource, resolver OrderResolver,
	rec *reconcile.Reconciler, publisher DisplayPublisher, limiter *trmnl.RateLimiter) *Poller {
	return &Poller{
		Logger:       logger,
		Store:        store,
		Source:       source,
		Resolver:     resolver,
		Reconciler:   rec,
		Publisher:    publisher,
		Limiter:      limiter,
		shutdownChan: make(chan struct{}),
		now:          time.Now,
	}
}

// Start launches the poll loop in a goroutine. The first cycle runs
// immediately; subsequent cycles follow the ticker.
func (p *Poller) Start(interval time.Duration) {
	p.wg.Add(1)
	go p.runPeriodically(interval)
}

// Stop shuts the loop down between cycles and waits for it to exit.
func (p *Poller) Stop() {
	close(p.shutdownChan)
	p.wg.Wait()
}

func (p *Poller) runPeriodically(interval time.Duration) {
	defer p.wg.Done()

	logger := p.Logger.With(slog.String("component", "poller"))
	logging.LogOperation(logger, "starting update loop",
		slog.Duration("interval", interval))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		ctx, cancel := context.WithTimeout(context.Background(), cycleTimeout)
		ctx = logging.WithLogger(ctx, logger)
		p.RunOnce(ctx)
		cancel()

		select {
		case <-ticker.C:
		case <-p.shutdownChan:
			logging.LogOperation(logger, "shutting down update loop")
			return
		}
	}
}

// RunOnce executes a single cycle. Every failure is contained: fetch errors
// degrade to empty data, delivery errors are logged, and the next cycle acts
// as the retry.
func (p *Poller) RunOnce(ctx context.Context) {
	now := p.now()
	logger := logging.FromContext(ctx)

	cfg, err := p.Store.Load(ctx)
	if err != nil {
		logging.LogError(logger, "failed to load route config", err)
		return
	}

	predictions, err := p.Source.Predictions(ctx, cfg.RouteID)
	if err != nil {
		logging.LogError(logger, "failed to fetch predictions, treating as empty", err,
			slog.String("route_id", cfg.RouteID))
		predictions = nil
	}

	schedules, err := p.Source.ScheduledDepartures(ctx, cfg.RouteID)
	if err != nil {
		logging.LogError(logger, "failed to fetch schedules, treating as empty", err,
			slog.String("route_id", cfg.RouteID))
		schedules = nil
	}

	fingerprint := reconcile.Fingerprint(predictions)
	if fingerprint == p.lastFingerprint {
		logging.LogOperation(logger, "predictions unchanged, skipping display update",
			slog.String("route_id", cfg.RouteID))
		return
	}

	if !p.Limiter.CanSend(now) {
		count, cap := p.Limiter.Status(now)
		logging.LogOperation(logger, "delivery budget exhausted, skipping cycle",
			slog.Int("sends_this_hour", count),
			slog.Int("hourly_cap", cap))
		return
	}

	stopOrder := p.Resolver.StopOrder(ctx, cfg.RouteID)
	stops := p.Reconciler.Reconcile(ctx, now, predictions, schedules, stopOrder)
	payload := trmnl.RenderPayload(cfg.RouteID, now, stops,
		p.Reconciler.MaxStops, p.Reconciler.K, p.Reconciler.Location)

	if err := p.Publisher.Publish(ctx, payload); err != nil {
		// Already logged by the publisher; keep the old fingerprint so the
		// next cycle retries this snapshot.
		return
	}

	p.lastFingerprint = fingerprint
	count, cap := p.Limiter.Status(p.now())
	logging.LogOperation(logger, "display updated",
		slog.String("route_id", cfg.RouteID),
		slog.Int("predictions", len(predictions)),
		slog.Int("sends_this_hour", count),
		slog.Int("hourly_cap", cap))
}
