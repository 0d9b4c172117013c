// Package trmnl renders the display payload and delivers it to the TRMNL
// webhook under the sink's rate limits.
package trmnl

import (
	"fmt"
	"time"

	"headsign.transitboard.org/internal/models"
	"headsign.transitboard.org/internal/reconcile"
)

// lineColors maps route ids to the hex color shown in the board header.
var lineColors = map[string]string{
	"Red":     "#FA2D27",
	"Orange":  "#FD8A03",
	"Blue":    "#2F5DA6",
	"Green-B": "#00843D",
	"Green-C": "#00843D",
	"Green-D": "#00843D",
	"Green-E": "#00843D",
}

const defaultLineColor = "#666666"

// Payload is the webhook body. The template consumes a flat variable map:
// "l" line name, "c" line color, "u" last-updated time, and per stop slot X
// "nX" stop name plus "iXn"/"oXn" for the nth inbound/outbound time.
type Payload struct {
	MergeVariables map[string]string `json:"merge_variables"`
}

// LineColor returns the header color for a route.
func LineColor(routeID string) string {
	if c, ok := lineColors[routeID]; ok {
		return c
	}
	return defaultLineColor
}

// RenderPayload builds the merge-variable map for a reconciled board. Every
// slot up to maxStops×k is set, with "" for unused slots, so the template
// clears values left over from the previous refresh.
func RenderPayload(routeID string, updatedAt time.Time, stops []models.ReconciledStop, maxStops, k int, loc *time.Location) Payload {
	if loc == nil {
		loc = time.Local
	}

	vars := map[string]string{
		"l": routeID,
		"c": LineColor(routeID),
		"u": reconcile.ShortTime(updatedAt, loc),
	}

	for i := 0; i < maxStops; i++ {
		vars[fmt.Sprintf("n%d", i)] = ""
		for j := 1; j <= k; j++ {
			vars[fmt.Sprintf("i%d%d", i, j)] = ""
			vars[fmt.Sprintf("o%d%d", i, j)] = ""
		}
	}

	for i, stop := range stops {
		if i >= maxStops {
			break
		}
		vars[fmt.Sprintf("n%d", i)] = stop.StopName
		for j, label := range stop.Inbound {
			if j >= k {
				break
			}
			vars[fmt.Sprintf("i%d%d", i, j+1)] = label
		}
		for j, label := range stop.Outbound {
			if j >= k {
				break
			}
			vars[fmt.Sprintf("o%d%d", i, j+1)] = label
		}
	}

	return Payload{MergeVariables: vars}
}
