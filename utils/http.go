package utils

import (
	"encoding/json"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// ErrorResponse is the JSON error body. RequestID matches the request_id
// field of the server's log lines for the same request.
type ErrorResponse struct {
	Error     string                 `json:"error"`
	Message   string                 `json:"message,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

// SuccessResponse wraps successful JSON payloads in a data field
type SuccessResponse struct {
	Data interface{} `json:"data,omitempty"`
}

// WriteJSON writes data as JSON with the given status code
func WriteJSON(w http.ResponseWriter, status int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data == nil {
		return nil
	}
	return json.NewEncoder(w).Encode(data)
}

// WriteOK writes a 200 response with data wrapped in SuccessResponse
func WriteOK(w http.ResponseWriter, data interface{}) error {
	return WriteJSON(w, http.StatusOK, SuccessResponse{Data: data})
}

// WriteError writes an ErrorResponse tagged with the request ID of r.
// An empty message falls back to the status text.
func WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string, details map[string]interface{}) error {
	if message == "" {
		message = http.StatusText(status)
	}
	return WriteJSON(w, status, ErrorResponse{
		Error:     code,
		Message:   message,
		RequestID: chimw.GetReqID(r.Context()),
		Details:   details,
	})
}

// WriteBadRequest writes a 400 with optional field details
func WriteBadRequest(w http.ResponseWriter, r *http.Request, message string, details map[string]interface{}) error {
	return WriteError(w, r, http.StatusBadRequest, "bad_request", message, details)
}

// WriteUnauthorized writes a 401
func WriteUnauthorized(w http.ResponseWriter, r *http.Request, message string) error {
	if message == "" {
		message = "Authentication required"
	}
	return WriteError(w, r, http.StatusUnauthorized, "unauthorized", message, nil)
}

// WriteNotFound writes a 404
func WriteNotFound(w http.ResponseWriter, r *http.Request, message string) error {
	if message == "" {
		message = "Resource not found"
	}
	return WriteError(w, r, http.StatusNotFound, "not_found", message, nil)
}

// WriteInternalServerError writes a 500
func WriteInternalServerError(w http.ResponseWriter, r *http.Request, message string) error {
	return WriteError(w, r, http.StatusInternalServerError, "internal_error", message, nil)
}
