package handler

import (
	"net/http"

	"github.com/evyataryagoni/iplocator/internal/messages"
	"github.com/evyataryagoni/iplocator/internal/models"
	"github.com/evyataryagoni/iplocator/internal/service"
)

// LocationHandler handles HTTP requests for locations
// This is the handler layer - it deals with HTTP concerns only
//
// Responsibilities:
//   - Parse HTTP requests (query parameters, path ids, JSON bodies)
//   - Call service methods
//   - Format HTTP responses (JSON)
//   - Set appropriate status codes
type LocationHandler struct {
	service *service.LocationService
	msgs    *messages.Catalog
}

// NewLocationHandler creates a new location handler
func NewLocationHandler(svc *service.LocationService, msgs *messages.Catalog) *LocationHandler {
	if msgs == nil {
		msgs = messages.Default()
	}
	return &LocationHandler{
		service: svc,
		msgs:    msgs,
	}
}

// Resolve handles POST /api/location?ip=<ip>
// @Summary      Resolve IP address
// @Description  Returns the stored location of an IP, fetching it from the geolocation API on first sight
// @Tags         Locations
// @Accept       json
// @Produce      json
// @Param        ip    query     string              true  "IP address (IPv4 or IPv6)"  example(8.8.8.8)
// @Param        user  body      models.UserPayload  true  "Requesting user"
// @Success      200   {object}  models.LocationDetails
// @Failure      400   {object}  models.ErrorResponse  "Invalid IP address"
// @Failure      404   {object}  models.ErrorResponse  "User not found"
// @Failure      429   {object}  models.ErrorResponse  "Rate limit exceeded"
// @Failure      500   {object}  models.ErrorResponse  "Internal server error"
// @Router       /api/location [post]
func (h *LocationHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	ip := r.URL.Query().Get("ip")

	var user models.UserPayload
	if err := decodeBody(w, r, &user); err != nil {
		respondError(w, http.StatusBadRequest, h.msgs.Format(messages.InvalidBody))
		return
	}

	location, err := h.service.Resolve(r.Context(), ip, user.Username)
	if err != nil {
		respondAppError(w, err, h.msgs)
		return
	}

	respondJSON(w, http.StatusOK, location)
}

// Get handles GET /api/locations/{id}
// @Summary      Get location
// @Tags         Locations
// @Produce      json
// @Param        id   path      int  true  "Location ID"
// @Success      200  {object}  models.LocationDetails
// @Failure      400  {object}  models.ErrorResponse  "Invalid id"
// @Failure      404  {object}  models.ErrorResponse  "Location not found"
// @Router       /api/locations/{id} [get]
func (h *LocationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, h.msgs)
	if !ok {
		return
	}

	location, err := h.service.Get(r.Context(), id)
	if err != nil {
		respondAppError(w, err, h.msgs)
		return
	}

	respondJSON(w, http.StatusOK, location)
}

// List handles GET /api/locations
// @Summary      List locations
// @Tags         Locations
// @Produce      json
// @Success      200  {array}   models.LocationDetails
// @Failure      500  {object}  models.ErrorResponse
// @Router       /api/locations [get]
func (h *LocationHandler) List(w http.ResponseWriter, r *http.Request) {
	locations, err := h.service.List(r.Context())
	if err != nil {
		respondAppError(w, err, h.msgs)
		return
	}

	respondJSON(w, http.StatusOK, locations)
}

// Create handles POST /api/locations?userId=<id>
// @Summary      Create location
// @Description  Stores a client-supplied location owned by the given user
// @Tags         Locations
// @Accept       json
// @Produce      json
// @Param        userId    query     int                     true  "Owner user ID"
// @Param        location  body      models.LocationPayload  true  "Location"
// @Success      200       {object}  models.LocationDetails
// @Failure      400       {object}  models.ErrorResponse  "Invalid location"
// @Failure      404       {object}  models.ErrorResponse  "User not found"
// @Failure      409       {object}  models.ErrorResponse  "IP already stored"
// @Router       /api/locations [post]
func (h *LocationHandler) Create(w http.ResponseWriter, r *http.Request) {
	rawUserID := r.URL.Query().Get("userId")
	userID, ok := parseID(rawUserID)
	if !ok {
		respondError(w, http.StatusBadRequest, h.msgs.Format(messages.InvalidID, rawUserID))
		return
	}

	var payload models.LocationPayload
	if err := decodeBody(w, r, &payload); err != nil {
		respondError(w, http.StatusBadRequest, h.msgs.Format(messages.InvalidBody))
		return
	}

	location, err := h.service.Create(r.Context(), payload, userID)
	if err != nil {
		respondAppError(w, err, h.msgs)
		return
	}

	respondJSON(w, http.StatusOK, location)
}

// Update handles PUT /api/locations/{id}
// @Summary      Replace location
// @Description  Overwrites every field; omitted fields are cleared
// @Tags         Locations
// @Accept       json
// @Produce      json
// @Param        id        path      int                     true  "Location ID"
// @Param        location  body      models.LocationPayload  true  "Location"
// @Success      200       {object}  models.LocationDetails
// @Failure      400       {object}  models.ErrorResponse  "Invalid input"
// @Failure      404       {object}  models.ErrorResponse  "Location not found"
// @Failure      409       {object}  models.ErrorResponse  "IP already stored"
// @Router       /api/locations/{id} [put]
func (h *LocationHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, h.msgs)
	if !ok {
		return
	}

	var payload models.LocationPayload
	if err := decodeBody(w, r, &payload); err != nil {
		respondError(w, http.StatusBadRequest, h.msgs.Format(messages.InvalidBody))
		return
	}

	location, err := h.service.Update(r.Context(), id, payload)
	if err != nil {
		respondAppError(w, err, h.msgs)
		return
	}

	respondJSON(w, http.StatusOK, location)
}

// Delete handles DELETE /api/locations/{id}
// @Summary      Delete location
// @Tags         Locations
// @Param        id   path  int  true  "Location ID"
// @Success      204
// @Failure      400  {object}  models.ErrorResponse  "Invalid id"
// @Failure      404  {object}  models.ErrorResponse  "Location not found"
// @Router       /api/locations/{id} [delete]
func (h *LocationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, h.msgs)
	if !ok {
		return
	}

	if _, err := h.service.Delete(r.Context(), id); err != nil {
		respondAppError(w, err, h.msgs)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListByUser handles GET /api/users/{id}/locations
// @Summary      List a user's locations
// @Tags         Users
// @Produce      json
// @Param        id   path      int  true  "User ID"
// @Success      200  {array}   models.LocationDetails
// @Failure      400  {object}  models.ErrorResponse  "Invalid id"
// @Failure      404  {object}  models.ErrorResponse  "User not found"
// @Router       /api/users/{id}/locations [get]
func (h *LocationHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, h.msgs)
	if !ok {
		return
	}

	locations, err := h.service.ListByUser(r.Context(), id)
	if err != nil {
		respondAppError(w, err, h.msgs)
		return
	}

	respondJSON(w, http.StatusOK, locations)
}
