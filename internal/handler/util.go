package handler

import (
	"encoding/json"
	"net/http"
)

// errorResponse is the JSON error shape shared by every gateway
// endpoint. The widget surfaces it verbatim, so messages stay short and
// end-user safe.
type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes v as the JSON response body.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes the gateway's JSON error shape.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
