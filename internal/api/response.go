// Package api exposes the transcription service over HTTP with a uniform
// JSON envelope.
package api

import (
	"encoding/json"
	"net/http"
	"time"
)

// Envelope is the uniform JSON response shape. Success responses carry Data;
// failures carry Error. Timestamp is always set.
type Envelope struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

func respond(w http.ResponseWriter, status int, env Envelope) {
	env.Timestamp = time.Now().UTC()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}

func respondData(w http.ResponseWriter, status int, message string, data interface{}) {
	respond(w, status, Envelope{Success: true, Message: message, Data: data})
}

func respondError(w http.ResponseWriter, status int, message, detail string) {
	respond(w, status, Envelope{Success: false, Message: message, Error: detail})
}
