package app

import "net/http"

// RequestHasInvalidAPIKey reports whether the request's key query parameter
// fails authentication. When no keys are configured the API is open, which
// matches how the service behaves on a trusted home network.
func (app *Application) RequestHasInvalidAPIKey(r *http.Request) bool {
	key := r.URL.Query().Get("key")
	return app.IsInvalidAPIKey(key)
}

func (app *Application) IsInvalidAPIKey(key string) bool {
	validKeys := app.Config.Server.APIKeys
	if len(validKeys) == 0 {
		return false
	}
	if key == "" {
		return true
	}

	for _, validKey := range validKeys {
		if key == validKey {
			return false
		}
	}

	return true
}
