package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/savemyigcse/backend/internal/api/response"
	"github.com/savemyigcse/backend/internal/auth"
	"github.com/savemyigcse/backend/internal/models"
	"github.com/savemyigcse/backend/internal/services"
	"github.com/savemyigcse/backend/internal/types"
)

// UserHandler handles HTTP requests for user management.
type UserHandler struct {
	service services.UserServiceProvider
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service services.UserServiceProvider) *UserHandler {
	return &UserHandler{service: service}
}

// GetMe retrieves the currently authenticated user from the token.
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		log.Error().Msg("Could not retrieve user claims from context")
		response.Fail(w, http.StatusInternalServerError, "Could not retrieve user from token")
		return
	}

	user, err := h.service.GetUserByID(claims.UserID)
	if err != nil {
		log.Error().Err(err).Str("user_id", claims.UserID).Msg("User from token not found")
		response.Error(w, err)
		return
	}
	response.OK(w, http.StatusOK, user.ToSafeView())
}

// Get handles retrieving a user by their ID.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	user, err := h.service.GetUserByID(id)
	if err != nil {
		log.Warn().Err(err).Str("user_id", id).Msg("Failed to get user by ID")
		response.Error(w, err)
		return
	}
	response.OK(w, http.StatusOK, user.ToSafeView())
}

// List handles the paginated user listing.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	page, limit = services.NormalizePage(page, limit)

	users, total, err := h.service.ListUsers(page, limit)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list users")
		response.Error(w, err)
		return
	}

	views := make([]models.SafeUser, 0, len(users))
	for _, u := range users {
		views = append(views, u.ToSafeView())
	}
	response.Paginated(w, views, page, limit, total)
}

// UpdatePayload defines the profile fields accepted on update.
type UpdatePayload struct {
	Name         string               `json:"name"`
	ExamBoard    *types.ExamBoard     `json:"examBoard"`
	Subjects     []string             `json:"subjects"`
	Avatar       string               `json:"avatar"`
	Preferences  *models.Preferences  `json:"preferences"`
	Subscription *models.Subscription `json:"subscription"`
}

// Update handles updating a user's profile information.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var payload UpdatePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		response.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.service.UpdateUser(id, services.UpdateUserParams{
		Name:         payload.Name,
		ExamBoard:    payload.ExamBoard,
		Subjects:     payload.Subjects,
		Avatar:       payload.Avatar,
		Preferences:  payload.Preferences,
		Subscription: payload.Subscription,
	})
	if err != nil {
		log.Error().Err(err).Str("user_id", id).Msg("Failed to update user")
		response.Error(w, err)
		return
	}
	response.OK(w, http.StatusOK, user.ToSafeView())
}

// ChangePassword handles changing a user's password.
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var payload struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		response.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.service.UpdatePassword(id, payload.CurrentPassword, payload.NewPassword); err != nil {
		log.Warn().Err(err).Str("user_id", id).Msg("Failed to change password")
		response.Error(w, err)
		return
	}
	response.Message(w, http.StatusOK, "Password updated successfully")
}

// Delete handles the permanent deletion of a user account.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.service.DeleteUser(id); err != nil {
		log.Error().Err(err).Str("user_id", id).Msg("Failed to delete user")
		response.Error(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
