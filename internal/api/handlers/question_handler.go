package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/savemyigcse/backend/internal/api/response"
	"github.com/savemyigcse/backend/internal/models"
	"github.com/savemyigcse/backend/internal/services"
	"github.com/savemyigcse/backend/internal/types"
)

// QuestionHandler handles HTTP requests for question management.
type QuestionHandler struct {
	service services.QuestionServiceProvider
}

// NewQuestionHandler creates a new QuestionHandler.
func NewQuestionHandler(service services.QuestionServiceProvider) *QuestionHandler {
	return &QuestionHandler{service: service}
}

// List handles the filtered, paginated question listing.
func (h *QuestionHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page, _ := strconv.Atoi(query.Get("page"))
	limit, _ := strconv.Atoi(query.Get("limit"))
	page, limit = services.NormalizePage(page, limit)

	filter := services.QuestionFilter{
		TopicID:    query.Get("topic"),
		Type:       types.QuestionType(query.Get("type")),
		Difficulty: types.Difficulty(query.Get("difficulty")),
		ExamBoard:  types.ExamBoard(query.Get("examBoard")),
	}

	questions, total, err := h.service.ListQuestions(filter, page, limit)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list questions")
		response.Error(w, err)
		return
	}
	response.Paginated(w, questions, page, limit, total)
}

// Get handles retrieving a question by its ID.
func (h *QuestionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	question, err := h.service.GetQuestionByID(id)
	if err != nil {
		log.Warn().Err(err).Str("question_id", id).Msg("Failed to get question")
		response.Error(w, err)
		return
	}
	response.OK(w, http.StatusOK, question)
}

// Create handles creating a new question.
func (h *QuestionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var question models.Question
	if err := json.NewDecoder(r.Body).Decode(&question); err != nil {
		response.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	created, err := h.service.CreateQuestion(question)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to create question")
		response.Error(w, err)
		return
	}
	response.OK(w, http.StatusCreated, created)
}

// Update handles updating an existing question.
func (h *QuestionHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var question models.Question
	if err := json.NewDecoder(r.Body).Decode(&question); err != nil {
		response.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	updated, err := h.service.UpdateQuestion(id, question)
	if err != nil {
		log.Warn().Err(err).Str("question_id", id).Msg("Failed to update question")
		response.Error(w, err)
		return
	}
	response.OK(w, http.StatusOK, updated)
}

// Delete handles removing a question.
func (h *QuestionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.service.DeleteQuestion(id); err != nil {
		log.Error().Err(err).Str("question_id", id).Msg("Failed to delete question")
		response.Error(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
