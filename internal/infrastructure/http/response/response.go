package response

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/mrops-br/catalog-api/internal/domain"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// JSON sends a JSON response
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// StatusFor maps an error kind to its HTTP status
func StatusFor(err error) int {
	switch domain.KindOf(err) {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error logs err at the boundary and sends its public message. Storage
// failures never leak their cause.
func Error(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	status := StatusFor(err)

	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	logger.Log(r.Context(), level, "Request failed",
		slog.Int("status", status),
		slog.String("kind", string(domain.KindOf(err))),
		slog.String("error", err.Error()),
	)

	JSON(w, status, ErrorResponse{Error: domain.PublicMessage(err)})
}
