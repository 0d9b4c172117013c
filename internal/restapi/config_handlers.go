package restapi

import (
	"encoding/json"
	"net/http"

	"headsign.transitboard.org/internal/models"
)

// getConfigHandler returns the currently tracked route.
func (api *RestAPI) getConfigHandler(w http.ResponseWriter, r *http.Request) {
	cfg, err := api.Store.Load(r.Context())
	if err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}
	api.sendJSON(w, r, http.StatusOK, cfg)
}

// updateConfigHandler validates and persists a new route selection. The poll
// loop picks it up on its next cycle.
func (api *RestAPI) updateConfigHandler(w http.ResponseWriter, r *http.Request) {
	var cfg models.RouteConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		api.badRequestResponse(w, r, "malformed request body")
		return
	}
	if err := cfg.Validate(); err != nil {
		api.badRequestResponse(w, r, err.Error())
		return
	}
	if err := api.Store.Save(r.Context(), cfg); err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}

	api.sendJSON(w, r, http.StatusOK, map[string]string{
		"status": "success",
		"route":  cfg.RouteID,
	})
}

// statusHandler reports the delivery budget for the current hour.
func (api *RestAPI) statusHandler(w http.ResponseWriter, r *http.Request) {
	count, cap := api.Limiter.Status(timeNow())

	api.sendJSON(w, r, http.StatusOK, map[string]int{
		"sends_this_hour": count,
		"hourly_cap":      cap,
	})
}
