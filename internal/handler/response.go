package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/evyataryagoni/iplocator/internal/apperror"
	"github.com/evyataryagoni/iplocator/internal/messages"
	"github.com/evyataryagoni/iplocator/internal/models"
)

// maxBodyBytes caps request bodies; payloads here are a few hundred bytes
const maxBodyBytes = 1 << 20

// respondJSON writes a JSON response with the given status code
func respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// If encoding fails, we can't change the status code since headers are already sent
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// respondError writes an error response with consistent formatting
func respondError(w http.ResponseWriter, statusCode int, message string) {
	respondJSON(w, statusCode, models.ErrorResponse{Error: message})
}

// respondAppError picks the status from the error kind. Causes of internal
// errors never reach the client.
func respondAppError(w http.ResponseWriter, err error, msgs *messages.Catalog) {
	kind := apperror.KindOf(err)

	message := msgs.Format(messages.Internal)
	var appErr *apperror.Error
	if errors.As(err, &appErr) && appErr.Message != "" {
		message = appErr.Message
	}

	respondError(w, apperror.HTTPStatus(kind), message)
}

// decodeBody parses a JSON body into dst. An empty body leaves dst zeroed.
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// parseID parses a positive numeric identifier
func parseID(raw string) (uint, bool) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// pathID reads the {id} URL parameter, answering 400 when it is malformed
func pathID(w http.ResponseWriter, r *http.Request, msgs *messages.Catalog) (uint, bool) {
	raw := chi.URLParam(r, "id")
	id, ok := parseID(raw)
	if !ok {
		respondError(w, http.StatusBadRequest, msgs.Format(messages.InvalidID, raw))
	}
	return id, ok
}
