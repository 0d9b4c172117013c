// Package reconcile merges live predictions and scheduled departures into
// the bounded per-stop, per-direction lists the display renders.
package reconcile

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"headsign.transitboard.org/internal/models"
)

// NameResolver resolves stop ids to display names. Prime warms the resolver
// for a batch of ids so per-entry lookups hit a populated cache.
type NameResolver interface {
	Name(ctx context.Context, stopID string) (string, error)
	Prime(ctx context.Context, stopIDs []string)
}

// Reconciler produces the display view from raw feed data.
type Reconciler struct {
	// K is the maximum number of times shown per direction at one stop.
	K int
	// MaxStops is the display's stop slot count.
	MaxStops int
	// Names resolves stop ids; entries whose id cannot be resolved are
	// dropped since they cannot be placed in display order.
	Names NameResolver
	// Location is the timezone for display labels. Defaults to time.Local.
	Location *time.Location
}

type entry struct {
	at    time.Time
	label string
}

type stopBucket struct {
	stopID string
	live   map[models.Direction][]entry
	sched  map[models.Direction][]entry
}

func newStopBucket() *stopBucket {
	return &stopBucket{
		live:  make(map[models.Direction][]entry),
		sched: make(map[models.Direction][]entry),
	}
}

// Reconcile merges predictions and schedules into one ReconciledStop per
// entry of stopOrder, up to MaxStops, in that exact order. Stops with no
// retained times still appear with empty lists. Only times strictly after
// now are kept; live entries win, schedules extend them with strictly later
// times, and each direction list is capped at K.
func (r *Reconciler) Reconcile(
	ctx context.Context,
	now time.Time,
	predictions []models.Prediction,
	schedules []models.ScheduledDeparture,
	stopOrder []string,
) []models.ReconciledStop {
	loc := r.Location
	if loc == nil {
		loc = time.Local
	}

	ids := make([]string, 0, len(predictions))
	for _, p := range predictions {
		ids = append(ids, p.StopID)
	}
	r.Names.Prime(ctx, ids)

	buckets := make(map[string]*stopBucket)
	bucketFor := func(name string) *stopBucket {
		b, ok := buckets[name]
		if !ok {
			b = newStopBucket()
			buckets[name] = b
		}
		return b
	}

	for _, p := range predictions {
		t, ok := parseEntryTime(p.DepartureTime, p.ArrivalTime)
		if !ok || !t.After(now) {
			continue
		}
		name, err := r.Names.Name(ctx, p.StopID)
		if err != nil {
			continue
		}
		b := bucketFor(name)
		if b.stopID == "" {
			b.stopID = p.StopID
		}
		b.live[p.Direction] = append(b.live[p.Direction], entry{at: t, label: ShortTime(t, loc)})
	}

	for _, s := range schedules {
		t, ok := parseEntryTime(s.DepartureTime, nil)
		if !ok || !t.After(now) {
			continue
		}
		name := s.StopName
		if name == "" {
			resolved, err := r.Names.Name(ctx, s.StopID)
			if err != nil {
				continue
			}
			name = resolved
		}
		b := bucketFor(name)
		if b.stopID == "" {
			b.stopID = s.StopID
		}
		b.sched[s.Direction] = append(b.sched[s.Direction], entry{at: t, label: ShortTime(t, loc)})
	}

	max := r.MaxStops
	if len(stopOrder) < max {
		max = len(stopOrder)
	}

	out := make([]models.ReconciledStop, 0, max)
	for i := 0; i < max; i++ {
		name := stopOrder[i]
		stop := models.ReconciledStop{
			StopID:   strconv.Itoa(i),
			StopName: name,
			Inbound:  []string{},
			Outbound: []string{},
		}
		if b, ok := buckets[name]; ok {
			if b.stopID != "" {
				stop.StopID = b.stopID
			}
			stop.Inbound = r.mergeDirection(b, models.Inbound)
			stop.Outbound = r.mergeDirection(b, models.Outbound)
		}
		out = append(out, stop)
	}
	return out
}

// mergeDirection merges one stop's live and scheduled entries for a single
// direction: up to K live times first, then scheduled times strictly later
// than the last accepted live time, skipping duplicate labels throughout.
func (r *Reconciler) mergeDirection(b *stopBucket, dir models.Direction) []string {
	live := append([]entry(nil), b.live[dir]...)
	sched := append([]entry(nil), b.sched[dir]...)

	// Sort on the parsed time, never on the label: "10:30 AM" sorts after
	// "2:15 PM" lexically.
	sort.Slice(live, func(i, j int) bool { return live[i].at.Before(live[j].at) })
	sort.Slice(sched, func(i, j int) bool { return sched[i].at.Before(sched[j].at) })

	labels := make([]string, 0, r.K)
	seen := make(map[string]bool, r.K)
	var lastLive time.Time
	haveLive := false

	for _, e := range live {
		if len(labels) == r.K {
			break
		}
		if seen[e.label] {
			continue
		}
		labels = append(labels, e.label)
		seen[e.label] = true
		lastLive = e.at
		haveLive = true
	}

	for _, e := range sched {
		if len(labels) == r.K {
			break
		}
		if haveLive && !e.at.After(lastLive) {
			continue
		}
		if seen[e.label] {
			continue
		}
		labels = append(labels, e.label)
		seen[e.label] = true
	}
	return labels
}

func parseEntryTime(primary, fallback *string) (time.Time, bool) {
	raw := ""
	if primary != nil && *primary != "" {
		raw = *primary
	} else if fallback != nil && *fallback != "" {
		raw = *fallback
	}
	if raw == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ShortTime formats a timestamp as the compact label the display shows,
// e.g. "2:15p".
func ShortTime(t time.Time, loc *time.Location) string {
	s := strings.ToLower(t.In(loc).Format("3:04PM"))
	return strings.TrimSuffix(s, "m")
}
