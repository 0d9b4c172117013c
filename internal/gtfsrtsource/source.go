// Package gtfsrtsource provides live predictions from a GTFS-Realtime trip
// updates feed, as an alternative to the V3 predictions endpoint. The MBTA
// publishes both; the GTFS-RT feed needs no API key.
package gtfsrtsource

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/jamespfennell/gtfs"

	"headsign.transitboard.org/internal/logging"
	"headsign.transitboard.org/internal/models"
)

// ScheduleSource supplies the scheduled departures a GTFS-RT feed cannot:
// trip updates carry no static timetable.
type ScheduleSource interface {
	ScheduledDepartures(ctx context.Context, routeID string) ([]models.ScheduledDeparture, error)
}

// Source reads a GTFS-RT trip updates feed and maps it onto the prediction
// model, delegating schedules to the fallback source.
type Source struct {
	tripUpdatesURL string
	httpClient     *http.Client
	schedules      ScheduleSource
	logger         *slog.Logger
}

func NewSource(tripUpdatesURL string, timeout time.Duration, schedules ScheduleSource, logger *slog.Logger) *Source {
	return &Source{
		tripUpdatesURL: tripUpdatesURL,
		httpClient:     &http.Client{Timeout: timeout},
		schedules:      schedules,
		logger:         logger,
	}
}

// Predictions fetches and decodes the trip updates feed, keeping only stop
// time updates for the requested route with a concrete future-facing time.
func (s *Source) Predictions(ctx context.Context, routeID string) ([]models.Prediction, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.tripUpdatesURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch trip updates: %w", err)
	}
	defer logging.SafeCloseWithLogging(resp.Body, s.logger, "gtfsrt_response_body")

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d from trip updates feed", resp.StatusCode)
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	realtime, err := gtfs.ParseRealtime(b, &gtfs.ParseRealtimeOptions{})
	if err != nil {
		return nil, fmt.Errorf("parse trip updates: %w", err)
	}

	var predictions []models.Prediction
	for _, trip := range realtime.Trips {
		if trip.ID.RouteID != routeID {
			continue
		}

		direction := models.Outbound
		if trip.ID.DirectionID == gtfs.DirectionID_True {
			direction = models.Inbound
		}

		for _, stu := range trip.StopTimeUpdates {
			if stu.StopID == nil {
				continue
			}
			arrival := eventTime(stu.Arrival)
			departure := eventTime(stu.Departure)
			if arrival == nil && departure == nil {
				continue
			}
			predictions = append(predictions, models.Prediction{
				RouteID:       routeID,
				StopID:        *stu.StopID,
				ArrivalTime:   arrival,
				DepartureTime: departure,
				Direction:     direction,
			})
		}
	}
	return predictions, nil
}

// ScheduledDepartures delegates to the fallback schedule source.
func (s *Source) ScheduledDepartures(ctx context.Context, routeID string) ([]models.ScheduledDeparture, error) {
	return s.schedules.ScheduledDepartures(ctx, routeID)
}

func eventTime(ev *gtfs.StopTimeEvent) *string {
	if ev == nil || ev.Time == nil {
		return nil
	}
	v := ev.Time.Format(time.RFC3339)
	return &v
}
