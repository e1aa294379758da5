package utils

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// WriteJSON writes payload as JSON with the given status.
func WriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// Success writes {success:true} merged with fields.
func Success(w http.ResponseWriter, status int, fields map[string]any) {
	body := map[string]any{"success": true}
	for k, v := range fields {
		body[k] = v
	}
	WriteJSON(w, status, body)
}

// Fail writes {success:false, message}.
func Fail(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, map[string]any{"success": false, "message": message})
}

// ErrorResponder turns service errors into {success:false, message} bodies.
type ErrorResponder struct {
	// ExposeInternal echoes unclassified error text in 500 responses.
	ExposeInternal bool
}

func (er ErrorResponder) Respond(w http.ResponseWriter, r *http.Request, err error) {
	if apiErr, ok := AsAPIError(err); ok {
		body := map[string]any{"success": false, "message": apiErr.Message}
		if len(apiErr.Errors) > 0 {
			body["errors"] = apiErr.Errors
		}
		for k, v := range apiErr.Data {
			body[k] = v
		}
		WriteJSON(w, apiErr.Status, body)
		return
	}

	slog.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	message := "Internal server error"
	if er.ExposeInternal {
		message = err.Error()
	}
	Fail(w, http.StatusInternalServerError, message)
}
