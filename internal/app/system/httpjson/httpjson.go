// internal/app/system/httpjson/httpjson.go
package httpjson

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dalemusser/crewdeck/internal/app/system/apperr"
	"go.uber.org/zap"
)

// Write encodes data as a JSON response with the given status code.
func Write(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// Error writes a JSON error body with the given status code.
func Error(w http.ResponseWriter, status int, msg string) {
	Write(w, status, map[string]any{"error": msg})
}

// WriteErr maps an error from the stores onto the response.
// Typed categories map 1:1; anything unknown degrades to a generic
// 500 so internal details never leak to the client.
func WriteErr(w http.ResponseWriter, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, apperr.ErrInvalidArgument):
		Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, apperr.ErrForbidden):
		Error(w, http.StatusForbidden, err.Error())
	case errors.Is(err, apperr.ErrNotFound):
		Error(w, http.StatusNotFound, err.Error())
	default:
		if logger != nil {
			logger.Error("unexpected failure", zap.Error(err))
		}
		Error(w, http.StatusInternalServerError, "internal error")
	}
}

// Decode reads a JSON request body into dst.
// Unknown fields are rejected so client typos surface as 400s.
func Decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperr.InvalidArgument("malformed JSON body")
	}
	return nil
}
