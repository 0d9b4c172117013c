package models

import (
	"fmt"
	"regexp"
)

var (
	subwayRoutePattern = regexp.MustCompile(`^(Red|Orange|Blue|Green-[A-E])$`)
	busRoutePattern    = regexp.MustCompile(`^[A-Za-z0-9]+$`)
)

// RouteConfig selects the route the display tracks. It is the only piece of
// durable configuration the service owns.
type RouteConfig struct {
	RouteID string `json:"route_id"`
}

// Validate checks that the route id is either a subway line or a plausible
// bus route identifier.
func (c RouteConfig) Validate() error {
	if subwayRoutePattern.MatchString(c.RouteID) {
		return nil
	}
	if busRoutePattern.MatchString(c.RouteID) {
		return nil
	}
	return fmt.Errorf("invalid route id %q", c.RouteID)
}

// IsSubway reports whether the route is one of the fixed-topology heavy- or
// light-rail lines with a predefined station order.
func (c RouteConfig) IsSubway() bool {
	return subwayRoutePattern.MatchString(c.RouteID)
}
