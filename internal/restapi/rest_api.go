// Package restapi exposes the small HTTP surface of the service: reading
// and updating the tracked route, plus a status endpoint for the delivery
// budget.
package restapi

import (
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"headsign.transitboard.org/internal/app"
)

// RestAPI wires the config endpoints over the shared Application.
type RestAPI struct {
	*app.Application
	rateLimiter func(http.Handler) http.Handler
}

// NewRestAPI creates a RestAPI instance with an initialized rate limiter.
func NewRestAPI(app *app.Application) *RestAPI {
	return &RestAPI{
		Application: app,
		rateLimiter: NewRateLimitMiddleware(60, time.Minute),
	}
}

// Routes returns the handler tree with rate limiting, API key auth, and
// request logging applied.
func (api *RestAPI) Routes() http.Handler {
	router := httprouter.New()
	router.HandlerFunc(http.MethodGet, "/config", api.getConfigHandler)
	router.HandlerFunc(http.MethodPost, "/config", api.updateConfigHandler)
	router.HandlerFunc(http.MethodGet, "/status", api.statusHandler)

	handler := api.requireAPIKey(router)
	handler = api.rateLimiter(handler)
	return api.withRequestLogging(handler)
}

func (api *RestAPI) requireAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if api.RequestHasInvalidAPIKey(r) {
			api.invalidAPIKeyResponse(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
