package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"cheop/internal/model"
)

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("encoding response", "error", err)
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}

// businessError maps a typed business error from the store or engine onto an
// HTTP response and returns true. Unrecognized errors are left to the caller,
// which should log them and answer 500.
func businessError(w http.ResponseWriter, err error) bool {
	var (
		validation   *model.ValidationError
		authz        *model.AuthorizationError
		conflict     *model.ConflictError
		notFound     *model.NotFoundError
		insufficient *model.InsufficientStockError
	)

	switch {
	case errors.As(err, &validation):
		jsonError(w, http.StatusBadRequest, validation.Error())
	case errors.As(err, &authz):
		jsonError(w, http.StatusForbidden, authz.Error())
	case errors.As(err, &conflict):
		jsonError(w, http.StatusConflict, conflict.Error())
	case errors.As(err, &notFound):
		jsonError(w, http.StatusNotFound, notFound.Error())
	case errors.As(err, &insufficient):
		// Structured so the caller can tell what to top up and by how much.
		jsonResponse(w, http.StatusConflict, map[string]any{
			"error":    insufficient.Error(),
			"item_id":  insufficient.ItemID,
			"item":     insufficient.ItemName,
			"held":     insufficient.Held,
			"required": insufficient.Required,
		})
	default:
		return false
	}
	return true
}
