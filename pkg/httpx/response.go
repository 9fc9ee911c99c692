package httpx

import (
	"encoding/json"
	"net/http"
)

// Envelope is the uniform response shape for every API endpoint:
// {success, data?, error?, message?}.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
// It automatically sets the Content-Type and Cache-Control headers.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteData writes a success envelope wrapping data.
func WriteData(w http.ResponseWriter, code int, data any) {
	WriteJSON(w, code, Envelope{Success: true, Data: data})
}

// WriteMessage writes a success envelope with data and a human-readable message.
func WriteMessage(w http.ResponseWriter, code int, data any, message string) {
	WriteJSON(w, code, Envelope{Success: true, Data: data, Message: message})
}

// WriteError writes a failure envelope with the given error string.
func WriteError(w http.ResponseWriter, code int, errMsg string) {
	WriteJSON(w, code, Envelope{Success: false, Error: errMsg})
}

// NoCache sets the Cache-Control and Pragma headers to prevent caching.
// Required for responses carrying tokens or verification codes.
func NoCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
}
