package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/savemyigcse/backend/internal/api/response"
	"github.com/savemyigcse/backend/internal/models"
	"github.com/savemyigcse/backend/internal/services"
	"github.com/savemyigcse/backend/internal/types"
)

// SubjectHandler handles HTTP requests for subject management.
type SubjectHandler struct {
	service services.SubjectServiceProvider
}

// NewSubjectHandler creates a new SubjectHandler.
func NewSubjectHandler(service services.SubjectServiceProvider) *SubjectHandler {
	return &SubjectHandler{service: service}
}

// GetAll handles listing subjects, optionally filtered by exam board.
func (h *SubjectHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	var board *types.ExamBoard
	if b := r.URL.Query().Get("examBoard"); b != "" {
		eb := types.ExamBoard(b)
		if !eb.Valid() {
			response.Fail(w, http.StatusBadRequest, "Unknown exam board")
			return
		}
		board = &eb
	}

	subjects, err := h.service.GetAllSubjects(board)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list subjects")
		response.Error(w, err)
		return
	}
	response.OK(w, http.StatusOK, subjects)
}

// Get handles retrieving a subject by its ID.
func (h *SubjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	subject, err := h.service.GetSubjectByID(id)
	if err != nil {
		log.Warn().Err(err).Str("subject_id", id).Msg("Failed to get subject")
		response.Error(w, err)
		return
	}
	response.OK(w, http.StatusOK, subject)
}

// Create handles creating a new subject.
func (h *SubjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	var subject models.Subject
	if err := json.NewDecoder(r.Body).Decode(&subject); err != nil {
		response.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	created, err := h.service.CreateSubject(subject)
	if err != nil {
		log.Warn().Err(err).Str("code", subject.Code).Msg("Failed to create subject")
		response.Error(w, err)
		return
	}
	response.OK(w, http.StatusCreated, created)
}

// Update handles updating an existing subject.
func (h *SubjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var subject models.Subject
	if err := json.NewDecoder(r.Body).Decode(&subject); err != nil {
		response.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	updated, err := h.service.UpdateSubject(id, subject)
	if err != nil {
		log.Warn().Err(err).Str("subject_id", id).Msg("Failed to update subject")
		response.Error(w, err)
		return
	}
	response.OK(w, http.StatusOK, updated)
}

// Delete handles removing a subject.
func (h *SubjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.service.DeleteSubject(id); err != nil {
		log.Error().Err(err).Str("subject_id", id).Msg("Failed to delete subject")
		response.Error(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
