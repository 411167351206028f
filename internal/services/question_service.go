package services

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/savemyigcse/backend/internal/apperrors"
	"github.com/savemyigcse/backend/internal/models"
	"github.com/savemyigcse/backend/internal/types"
)

// QuestionFilter narrows a question listing. Zero values mean "any".
type QuestionFilter struct {
	TopicID    string
	Type       types.QuestionType
	Difficulty types.Difficulty
	ExamBoard  types.ExamBoard
}

// QuestionServiceProvider defines the interface for question services.
type QuestionServiceProvider interface {
	ListQuestions(filter QuestionFilter, page, limit int) ([]models.Question, int, error)
	GetQuestionByID(id string) (models.Question, error)
	CreateQuestion(question models.Question) (models.Question, error)
	UpdateQuestion(id string, question models.Question) (models.Question, error)
	DeleteQuestion(id string) error
}

// QuestionService provides business logic for question management.
type QuestionService struct {
	db *sql.DB
}

// NewQuestionService creates a new QuestionService.
func NewQuestionService(db *sql.DB) *QuestionService {
	return &QuestionService{db: db}
}

const questionColumns = `id, topic_id, type, difficulty, question, options_json, answer,
	mark_scheme, marks, exam_board, year, tags_json, created_at, updated_at`

// scanQuestion is a helper to scan a question from a row or rows object.
func scanQuestion(scanner interface{ Scan(...any) error }) (models.Question, error) {
	var q models.Question
	var options, tags sql.NullString
	var year sql.NullInt64

	err := scanner.Scan(&q.ID, &q.TopicID, &q.Type, &q.Difficulty, &q.Question,
		&options, &q.Answer, &q.MarkScheme, &q.Marks, &q.ExamBoard, &year, &tags,
		&q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return q, err
	}

	q.OptionsJSON = options.String
	q.TagsJSON = tags.String
	if year.Valid {
		y := int(year.Int64)
		q.Year = &y
	}
	q.PrepareForAPI()
	return q, nil
}

// validateQuestion merges struct-tag validation with the checks the tags
// cannot express: the year window is bounded by the current calendar
// year, and options only make sense on multiple-choice questions.
func validateQuestion(q models.Question) error {
	ve := checkStruct(q)
	if q.Year != nil {
		currentYear := time.Now().Year()
		if *q.Year < models.MinYear || *q.Year > currentYear {
			ve.Add("year", fmt.Sprintf("range=%d-%d", models.MinYear, currentYear))
		}
	}
	if ve.HasViolations() {
		return ve
	}
	return nil
}

// ListQuestions returns one page of questions matching the filter, plus
// the total match count.
func (s *QuestionService) ListQuestions(filter QuestionFilter, page, limit int) ([]models.Question, int, error) {
	page, limit = NormalizePage(page, limit)

	where := " WHERE 1=1"
	var args []any
	if filter.TopicID != "" {
		where += " AND topic_id = ?"
		args = append(args, filter.TopicID)
	}
	if filter.Type != "" {
		where += " AND type = ?"
		args = append(args, string(filter.Type))
	}
	if filter.Difficulty != "" {
		where += " AND difficulty = ?"
		args = append(args, string(filter.Difficulty))
	}
	if filter.ExamBoard != "" {
		where += " AND exam_board = ?"
		args = append(args, string(filter.ExamBoard))
	}

	var total int
	if err := s.db.QueryRow("SELECT COUNT(1) FROM questions"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := "SELECT " + questionColumns + " FROM questions" + where + " ORDER BY created_at DESC LIMIT ? OFFSET ?"
	rows, err := s.db.Query(query, append(args, limit, (page-1)*limit)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var questions []models.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, 0, err
		}
		questions = append(questions, q)
	}
	return questions, total, rows.Err()
}

// GetQuestionByID retrieves a single question by its ID.
func (s *QuestionService) GetQuestionByID(id string) (models.Question, error) {
	row := s.db.QueryRow("SELECT "+questionColumns+" FROM questions WHERE id = ?", id)
	q, err := scanQuestion(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.Question{}, &apperrors.NotFoundError{Resource: "question", ID: id}
		}
		return models.Question{}, err
	}
	return q, nil
}

// CreateQuestion validates and persists a new question.
func (s *QuestionService) CreateQuestion(q models.Question) (models.Question, error) {
	if q.Type != types.QuestionTypeMCQ {
		q.Options = nil // options are meaningful only for multiple choice
	}
	if err := validateQuestion(q); err != nil {
		return models.Question{}, err
	}

	now := time.Now().UTC()
	q.ID = uuid.New().String()
	q.CreatedAt = now
	q.UpdatedAt = now
	q.PrepareForSave()

	_, err := s.db.Exec(`INSERT INTO questions (id, topic_id, type, difficulty, question, options_json,
		answer, mark_scheme, marks, exam_board, year, tags_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		q.ID, q.TopicID, string(q.Type), string(q.Difficulty), q.Question, q.OptionsJSON,
		q.Answer, q.MarkScheme, q.Marks, string(q.ExamBoard), nullableYear(q.Year), q.TagsJSON,
		q.CreatedAt, q.UpdatedAt)
	if err != nil {
		return models.Question{}, err
	}
	return q, nil
}

// UpdateQuestion validates and writes new question fields.
func (s *QuestionService) UpdateQuestion(id string, q models.Question) (models.Question, error) {
	existing, err := s.GetQuestionByID(id)
	if err != nil {
		return models.Question{}, err
	}

	if q.Type != types.QuestionTypeMCQ {
		q.Options = nil
	}
	q.ID = existing.ID
	q.CreatedAt = existing.CreatedAt
	q.UpdatedAt = time.Now().UTC()
	if err := validateQuestion(q); err != nil {
		return models.Question{}, err
	}
	q.PrepareForSave()

	_, err = s.db.Exec(`UPDATE questions SET topic_id = ?, type = ?, difficulty = ?, question = ?,
		options_json = ?, answer = ?, mark_scheme = ?, marks = ?, exam_board = ?, year = ?,
		tags_json = ?, updated_at = ? WHERE id = ?`,
		q.TopicID, string(q.Type), string(q.Difficulty), q.Question, q.OptionsJSON,
		q.Answer, q.MarkScheme, q.Marks, string(q.ExamBoard), nullableYear(q.Year), q.TagsJSON,
		q.UpdatedAt, id)
	if err != nil {
		return models.Question{}, err
	}
	return q, nil
}

// DeleteQuestion removes a question from the database.
func (s *QuestionService) DeleteQuestion(id string) error {
	_, err := s.db.Exec("DELETE FROM questions WHERE id = ?", id)
	return err
}

// nullableYear maps a missing year to NULL.
func nullableYear(year *int) any {
	if year == nil {
		return nil
	}
	return *year
}
