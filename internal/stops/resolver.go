// Package stops resolves the canonical display order of stops for a route.
package stops

import (
	"context"
	"log/slog"

	"headsign.transitboard.org/internal/logging"
)

// subwayStopOrder lists the stations of each fixed-topology line in the
// toward-terminus direction. This is the single source of truth for display
// order on those lines.
var subwayStopOrder = map[string][]string{
	"Orange": {
		"Oak Grove", "Malden Center", "Wellington", "Assembly", "Sullivan Square",
		"Community College", "North Station", "Haymarket", "State", "Downtown Crossing",
		"Chinatown", "Tufts Medical Center", "Back Bay", "Massachusetts Avenue",
		"Ruggles", "Roxbury Crossing", "Jackson Square", "Stony Brook",
		"Green Street", "Forest Hills",
	},
	"Red": {
		"Alewife", "Davis", "Porter", "Harvard", "Central", "Kendall/MIT",
		"Charles/MGH", "Park Street", "Downtown Crossing", "South Station",
		"Broadway", "Andrew", "JFK/UMass", "Savin Hill", "Fields Corner",
		"Shawmut", "Ashmont", "North Quincy", "Wollaston", "Quincy Center",
		"Quincy Adams", "Braintree",
	},
	"Blue": {
		"Wonderland", "Revere Beach", "Beachmont", "Suffolk Downs", "Orient Heights",
		"Wood Island", "Airport", "Maverick", "Bowdoin", "Government Center",
		"State", "Aquarium",
	},
}

// SequenceSource fetches a route's stop sequence and resolves stop names,
// for routes without a predefined order.
type SequenceSource interface {
	RouteStopSequence(ctx context.Context, routeID string) ([]string, error)
	StopName(ctx context.Context, stopID string) (string, error)
}

// Resolver produces the ordered stop name list for a route.
type Resolver struct {
	source SequenceSource
	logger *slog.Logger
}

func NewResolver(source SequenceSource, logger *slog.Logger) *Resolver {
	return &Resolver{source: source, logger: logger}
}

// StopOrder returns stop display names in display order. Fixed-topology
// lines use the predefined table; other routes are resolved dynamically. Any
// fetch failure yields an empty list so the cycle renders zero stops instead
// of failing.
func (r *Resolver) StopOrder(ctx context.Context, routeID string) []string {
	if order, ok := subwayStopOrder[routeID]; ok {
		out := make([]string, len(order))
		copy(out, order)
		return out
	}

	ids, err := r.source.RouteStopSequence(ctx, routeID)
	if err != nil {
		logging.LogError(r.logger, "failed to fetch stop sequence", err,
			slog.String("route_id", routeID))
		return nil
	}

	names := make([]string, 0, len(ids))
	for _, id := range ids {
		name, err := r.source.StopName(ctx, id)
		if err != nil {
			// Unresolvable stops cannot be placed in display order.
			continue
		}
		names = append(names, name)
	}
	return names
}
