package handler

import (
	"net/http"

	"github.com/evyataryagoni/iplocator/internal/messages"
	"github.com/evyataryagoni/iplocator/internal/models"
	"github.com/evyataryagoni/iplocator/internal/service"
)

// UserHandler handles HTTP requests for users
type UserHandler struct {
	service *service.UserService
	msgs    *messages.Catalog
}

// NewUserHandler creates a new user handler
func NewUserHandler(svc *service.UserService, msgs *messages.Catalog) *UserHandler {
	if msgs == nil {
		msgs = messages.Default()
	}
	return &UserHandler{
		service: svc,
		msgs:    msgs,
	}
}

// Create handles POST /api/users
// @Summary      Create user
// @Tags         Users
// @Accept       json
// @Produce      json
// @Param        user  body      models.UserPayload  true  "User"
// @Success      201   {object}  models.UserSummary
// @Failure      400   {object}  models.ErrorResponse  "Invalid username"
// @Failure      409   {object}  models.ErrorResponse  "Username taken"
// @Router       /api/users [post]
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload models.UserPayload
	if err := decodeBody(w, r, &payload); err != nil {
		respondError(w, http.StatusBadRequest, h.msgs.Format(messages.InvalidBody))
		return
	}

	user, err := h.service.Create(r.Context(), payload)
	if err != nil {
		respondAppError(w, err, h.msgs)
		return
	}

	respondJSON(w, http.StatusCreated, user)
}

// List handles GET /api/users
// @Summary      List users
// @Tags         Users
// @Produce      json
// @Success      200  {array}   models.UserSummary
// @Failure      500  {object}  models.ErrorResponse
// @Router       /api/users [get]
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.List(r.Context())
	if err != nil {
		respondAppError(w, err, h.msgs)
		return
	}

	respondJSON(w, http.StatusOK, users)
}

// Get handles GET /api/users/{id}
// @Summary      Get user with locations
// @Tags         Users
// @Produce      json
// @Param        id   path      int  true  "User ID"
// @Success      200  {object}  models.UserDetails
// @Failure      400  {object}  models.ErrorResponse  "Invalid id"
// @Failure      404  {object}  models.ErrorResponse  "User not found"
// @Router       /api/users/{id} [get]
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, h.msgs)
	if !ok {
		return
	}

	user, err := h.service.Get(r.Context(), id)
	if err != nil {
		respondAppError(w, err, h.msgs)
		return
	}

	respondJSON(w, http.StatusOK, user)
}

// Update handles PUT /api/users/{id}
// @Summary      Rename user
// @Tags         Users
// @Accept       json
// @Produce      json
// @Param        id    path      int                 true  "User ID"
// @Param        user  body      models.UserPayload  true  "User"
// @Success      200   {object}  models.UserSummary
// @Failure      400   {object}  models.ErrorResponse  "Invalid input"
// @Failure      404   {object}  models.ErrorResponse  "User not found"
// @Failure      409   {object}  models.ErrorResponse  "Username taken"
// @Router       /api/users/{id} [put]
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, h.msgs)
	if !ok {
		return
	}

	var payload models.UserPayload
	if err := decodeBody(w, r, &payload); err != nil {
		respondError(w, http.StatusBadRequest, h.msgs.Format(messages.InvalidBody))
		return
	}

	user, err := h.service.Update(r.Context(), id, payload)
	if err != nil {
		respondAppError(w, err, h.msgs)
		return
	}

	respondJSON(w, http.StatusOK, user)
}

// Delete handles DELETE /api/users/{id}
// @Summary      Delete user
// @Description  Deletes the user and every location it owns
// @Tags         Users
// @Param        id   path  int  true  "User ID"
// @Success      204
// @Failure      400  {object}  models.ErrorResponse  "Invalid id"
// @Failure      404  {object}  models.ErrorResponse  "User not found"
// @Router       /api/users/{id} [delete]
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, h.msgs)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		respondAppError(w, err, h.msgs)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
