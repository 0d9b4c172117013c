// Package mbta is a client for the parts of the MBTA V3 API the display
// needs: live predictions, scheduled departures, route stop sequences, and
// stop metadata.
package mbta

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"headsign.transitboard.org/internal/logging"
	"headsign.transitboard.org/internal/models"
)

// Client talks to the MBTA V3 API. All calls carry the caller's context plus
// the client-level timeout so a stalled upstream cannot block the poll loop.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
	stops      *StopCache
}

// NewClient creates an MBTA API client. apiKey may be empty; unauthenticated
// requests are allowed at a lower upstream quota.
func NewClient(baseURL, apiKey string, timeout time.Duration, logger *slog.Logger) *Client {
	c := &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
	c.stops = NewStopCache(c.fetchStopName)
	return c
}

func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer logging.SafeCloseWithLogging(resp.Body, c.logger, "mbta_response_body")

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, path)
	}
	return io.ReadAll(resp.Body)
}

// Predictions fetches live predictions for a route, each resolved to a stop
// id. Direction ids are translated to Direction here, at the ingestion
// boundary.
func (c *Client) Predictions(ctx context.Context, routeID string) ([]models.Prediction, error) {
	query := url.Values{
		"filter[route]": {routeID},
		"include":       {"stop"},
		"sort":          {"stop_sequence"},
		"page[limit]":   {"500"},
	}
	body, err := c.get(ctx, "/predictions", query)
	if err != nil {
		return nil, fmt.Errorf("fetch predictions: %w", err)
	}

	var doc listDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decode predictions: %w", err)
	}

	predictions := make([]models.Prediction, 0, len(doc.Data))
	for _, res := range doc.Data {
		var attrs predictionAttributes
		if err := json.Unmarshal(res.Attributes, &attrs); err != nil {
			continue
		}
		predictions = append(predictions, models.Prediction{
			RouteID:       res.Relationships.Route.Data.ID,
			StopID:        res.Relationships.Stop.Data.ID,
			ArrivalTime:   attrs.ArrivalTime,
			DepartureTime: attrs.DepartureTime,
			Direction:     models.DirectionFromID(attrs.DirectionID),
			Status:        attrs.Status,
		})
	}
	return predictions, nil
}

// ScheduledDepartures fetches today's timetable for a route. Stop names are
// resolved from the response's included stop resources when present.
func (c *Client) ScheduledDepartures(ctx context.Context, routeID string) ([]models.ScheduledDeparture, error) {
	query := url.Values{
		"filter[route]": {routeID},
		"filter[date]":  {time.Now().Format("2006-01-02")},
		"sort":          {"departure_time"},
		"include":       {"route,stop"},
	}
	body, err := c.get(ctx, "/schedules", query)
	if err != nil {
		return nil, fmt.Errorf("fetch schedules: %w", err)
	}

	var doc listDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decode schedules: %w", err)
	}

	stopNames := make(map[string]string)
	for _, inc := range doc.Included {
		if inc.Type != "stop" {
			continue
		}
		var attrs stopAttributes
		if err := json.Unmarshal(inc.Attributes, &attrs); err == nil {
			stopNames[inc.ID] = attrs.Name
		}
	}

	schedules := make([]models.ScheduledDeparture, 0, len(doc.Data))
	for _, res := range doc.Data {
		var attrs scheduleAttributes
		if err := json.Unmarshal(res.Attributes, &attrs); err != nil {
			continue
		}
		stopID := res.Relationships.Stop.Data.ID
		schedules = append(schedules, models.ScheduledDeparture{
			RouteID:       res.Relationships.Route.Data.ID,
			StopID:        stopID,
			StopName:      stopNames[stopID],
			DepartureTime: attrs.DepartureTime,
			Direction:     models.DirectionFromID(attrs.DirectionID),
		})
	}
	return schedules, nil
}

// RouteStopSequence fetches the stop ids for a route in sequence order. Used
// for variable-topology routes that have no predefined station list.
func (c *Client) RouteStopSequence(ctx context.Context, routeID string) ([]string, error) {
	query := url.Values{
		"filter[route]": {routeID},
		"include":       {"route"},
		"sort":          {"stop_sequence"},
	}
	body, err := c.get(ctx, "/stops", query)
	if err != nil {
		return nil, fmt.Errorf("fetch route stops: %w", err)
	}

	var doc listDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decode route stops: %w", err)
	}

	ids := make([]string, 0, len(doc.Data))
	for _, res := range doc.Data {
		ids = append(ids, res.ID)
	}
	return ids, nil
}

// StopName resolves a stop id to its display name through the memoizing
// stop cache.
func (c *Client) StopName(ctx context.Context, stopID string) (string, error) {
	return c.stops.Name(ctx, stopID)
}

// PrimeStops warms the stop cache for a batch of stop ids.
func (c *Client) PrimeStops(ctx context.Context, stopIDs []string) {
	c.stops.Prime(ctx, stopIDs)
}

// StopNames exposes the cache for components that only need name resolution.
func (c *Client) StopNames() *StopCache {
	return c.stops
}

func (c *Client) fetchStopName(ctx context.Context, stopID string) (string, error) {
	body, err := c.get(ctx, "/stops/"+url.PathEscape(stopID), nil)
	if err != nil {
		return "", fmt.Errorf("fetch stop %s: %w", stopID, err)
	}

	var doc singleDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return "", fmt.Errorf("decode stop %s: %w", stopID, err)
	}

	var attrs stopAttributes
	if err := json.Unmarshal(doc.Data.Attributes, &attrs); err != nil {
		return "", fmt.Errorf("decode stop %s attributes: %w", stopID, err)
	}
	if attrs.Name == "" {
		return "", fmt.Errorf("stop %s has no name", stopID)
	}
	return attrs.Name, nil
}
