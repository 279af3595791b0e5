package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"nestegg/internal/core"
)

type errorEnvelope struct {
	Error string `json:"error"`
}

// setCORSHeaders attaches the permissive CORS policy every response carries,
// error envelopes included.
func setCORSHeaders(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
	h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// writeError maps the error taxonomy onto status codes and a JSON envelope.
// Unauthenticated and not-found carry fixed messages; everything else
// surfaces the error string, which is acceptable for an internal tool.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	msg := err.Error()

	var badReq *core.BadRequestError
	var upstream *core.UpstreamError
	switch {
	case errors.Is(err, core.ErrUnauthenticated):
		status = http.StatusUnauthorized
		msg = "unauthenticated"
	case errors.Is(err, core.ErrNotFound):
		status = http.StatusNotFound
		msg = "not found"
	case errors.As(err, &badReq):
		status = http.StatusBadRequest
		msg = badReq.Msg
	case errors.As(err, &upstream):
		status = http.StatusInternalServerError
	}

	if status >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "Request failed",
			"error", err, "status", status, "method", r.Method, "url", r.URL.Path)
	} else {
		slog.InfoContext(r.Context(), "Request rejected",
			"error", err, "status", status, "method", r.Method, "url", r.URL.Path)
	}

	writeJSON(w, status, errorEnvelope{Error: msg})
}

func writeNotFound(w http.ResponseWriter, r *http.Request) {
	slog.InfoContext(r.Context(), "No route matched", "method", r.Method, "url", r.URL.Path)
	writeJSON(w, http.StatusNotFound, errorEnvelope{Error: "not found"})
}
