package models

// Prediction is a live arrival/departure estimate for one stop on one route.
// Times are RFC 3339 strings as delivered by the upstream feed; either may be
// absent (e.g. the first stop of a trip has no arrival). Predictions are
// fetched fresh every cycle and never persisted.
type Prediction struct {
	RouteID       string    `json:"routeId"`
	StopID        string    `json:"stopId"`
	ArrivalTime   *string   `json:"arrivalTime"`
	DepartureTime *string   `json:"departureTime"`
	Direction     Direction `json:"direction"`
	Status        *string   `json:"status"`
}

// ScheduledDeparture is a static timetable entry used to extend sparse live
// data. StopName is filled when the source resolved it from the feed's
// included resources; it may be empty, in which case the stop id must be
// resolved through the stop cache like a prediction's.
type ScheduledDeparture struct {
	RouteID       string    `json:"routeId"`
	StopID        string    `json:"stopId"`
	StopName      string    `json:"stopName"`
	DepartureTime *string   `json:"departureTime"`
	Direction     Direction `json:"direction"`
}

// ReconciledStop is one display slot on the board: a stop with up to K
// formatted times per direction, already in chronological order.
type ReconciledStop struct {
	StopID   string   `json:"stopId"`
	StopName string   `json:"stopName"`
	Inbound  []string `json:"inbound"`
	Outbound []string `json:"outbound"`
}
