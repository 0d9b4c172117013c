package models

// Direction identifies which way a train is headed on a route. The upstream
// MBTA V3 API encodes this as direction_id 0 or 1; that integer is translated
// into a Direction exactly once, at the ingestion boundary, so nothing
// downstream re-derives the mapping.
type Direction int

const (
	Outbound Direction = iota
	Inbound
)

// DirectionFromID maps the MBTA V3 direction_id to a Direction.
// For the heavy-rail lines this service targets, 0 is outbound and 1 is
// inbound, matching the ordering of the destinations attribute on the
// V3 /routes resource.
func DirectionFromID(id int) Direction {
	if id == 1 {
		return Inbound
	}
	return Outbound
}

func (d Direction) String() string {
	if d == Inbound {
		return "inbound"
	}
	return "outbound"
}
