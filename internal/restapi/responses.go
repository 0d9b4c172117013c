package restapi

import (
	"encoding/json"
	"net/http"
	"time"
)

// timeNow is a variable so handler tests can pin the clock.
var timeNow = time.Now

func (api *RestAPI) sendJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		api.Logger.Error("failed to encode response", "error", err, "path", r.URL.Path)
	}
}

type errorResponse struct {
	Code int    `json:"code"`
	Text string `json:"text"`
}

func (api *RestAPI) invalidAPIKeyResponse(w http.ResponseWriter, r *http.Request) {
	api.sendJSON(w, r, http.StatusUnauthorized, errorResponse{
		Code: http.StatusUnauthorized,
		Text: "permission denied",
	})
}

func (api *RestAPI) badRequestResponse(w http.ResponseWriter, r *http.Request, text string) {
	api.sendJSON(w, r, http.StatusBadRequest, errorResponse{
		Code: http.StatusBadRequest,
		Text: text,
	})
}

func (api *RestAPI) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	api.Logger.Error("internal server error", "error", err, "path", r.URL.Path)
	api.sendJSON(w, r, http.StatusInternalServerError, errorResponse{
		Code: http.StatusInternalServerError,
		Text: "internal server error",
	})
}
