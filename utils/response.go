package utils

import (
	"encoding/json"
	"errors"
	"net/http"

	"shopkart/models"
)

// M is shorthand for response payload maps.
type M map[string]interface{}

// RespondJSON writes a JSON body with the given status.
func RespondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// RespondSuccess writes the standard success envelope, merging extra fields
// alongside "success": true.
func RespondSuccess(w http.ResponseWriter, status int, extra M) {
	payload := M{"success": true}
	for k, v := range extra {
		payload[k] = v
	}
	RespondJSON(w, status, payload)
}

// RespondError translates a domain error into the failure envelope with the
// matching HTTP status.
func RespondError(w http.ResponseWriter, err error) {
	RespondJSON(w, StatusForError(err), M{
		"success": false,
		"message": err.Error(),
	})
}

// StatusForError maps the domain error taxonomy onto HTTP statuses.
func StatusForError(err error) int {
	switch {
	case errors.Is(err, models.ErrValidation),
		errors.Is(err, models.ErrEmptyCart),
		errors.Is(err, models.ErrInsufficientStock):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrInvalidTransition),
		errors.Is(err, models.ErrAlreadyInState):
		return http.StatusConflict
	case errors.Is(err, models.ErrGateway):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
