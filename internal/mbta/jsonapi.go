package mbta

import "encoding/json"

// The V3 API speaks JSON:API. Only the envelope pieces the client reads are
// modeled; attributes stay raw until the resource type is known.

type listDocument struct {
	Data     []resource `json:"data"`
	Included []resource `json:"included"`
}

type singleDocument struct {
	Data resource `json:"data"`
}

type resource struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	Attributes    json.RawMessage `json:"attributes"`
	Relationships relationships   `json:"relationships"`
}

type relationships struct {
	Route relationship `json:"route"`
	Stop  relationship `json:"stop"`
}

type relationship struct {
	Data relationshipData `json:"data"`
}

type relationshipData struct {
	ID string `json:"id"`
}

type predictionAttributes struct {
	ArrivalTime   *string `json:"arrival_time"`
	DepartureTime *string `json:"departure_time"`
	DirectionID   int     `json:"direction_id"`
	Status        *string `json:"status"`
}

type scheduleAttributes struct {
	DepartureTime *string `json:"departure_time"`
	DirectionID   int     `json:"direction_id"`
}

type stopAttributes struct {
	Name string `json:"name"`
}
