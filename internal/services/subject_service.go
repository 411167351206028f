package services

import (
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/savemyigcse/backend/internal/apperrors"
	"github.com/savemyigcse/backend/internal/models"
	"github.com/savemyigcse/backend/internal/types"
)

// SubjectServiceProvider defines the interface for subject services.
type SubjectServiceProvider interface {
	GetAllSubjects(board *types.ExamBoard) ([]models.Subject, error)
	GetSubjectByID(id string) (models.Subject, error)
	CreateSubject(subject models.Subject) (models.Subject, error)
	UpdateSubject(id string, subject models.Subject) (models.Subject, error)
	DeleteSubject(id string) error
}

// SubjectService provides business logic for subject management.
type SubjectService struct {
	db *sql.DB
}

// NewSubjectService creates a new SubjectService.
func NewSubjectService(db *sql.DB) *SubjectService {
	return &SubjectService{db: db}
}

// scanSubject is a helper to scan a subject from a row or rows object.
func scanSubject(scanner interface{ Scan(...any) error }) (models.Subject, error) {
	var subject models.Subject
	var icon sql.NullString
	err := scanner.Scan(&subject.ID, &subject.Name, &subject.Code, &subject.ExamBoard,
		&subject.Description, &icon, &subject.CreatedAt, &subject.UpdatedAt)
	if err != nil {
		return subject, err
	}
	subject.Icon = icon.String
	return subject, nil
}

// normalizeSubject trims the text fields and uppercases the code. The
// uniqueness check always sees the normalized code.
func normalizeSubject(subject *models.Subject) {
	subject.Name = strings.TrimSpace(subject.Name)
	subject.Code = strings.ToUpper(strings.TrimSpace(subject.Code))
	subject.Description = strings.TrimSpace(subject.Description)
}

// GetAllSubjects retrieves subjects, optionally filtered by exam board.
func (s *SubjectService) GetAllSubjects(board *types.ExamBoard) ([]models.Subject, error) {
	const base = "SELECT id, name, code, exam_board, description, icon, created_at, updated_at FROM subjects"

	var rows *sql.Rows
	var err error
	if board != nil {
		rows, err = s.db.Query(base+" WHERE exam_board = ? ORDER BY name", string(*board))
	} else {
		rows, err = s.db.Query(base + " ORDER BY name")
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subjects []models.Subject
	for rows.Next() {
		subject, err := scanSubject(rows)
		if err != nil {
			return nil, err
		}
		subjects = append(subjects, subject)
	}
	return subjects, rows.Err()
}

// GetSubjectByID retrieves a single subject by its ID.
func (s *SubjectService) GetSubjectByID(id string) (models.Subject, error) {
	row := s.db.QueryRow("SELECT id, name, code, exam_board, description, icon, created_at, updated_at FROM subjects WHERE id = ?", id)
	subject, err := scanSubject(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.Subject{}, &apperrors.NotFoundError{Resource: "subject", ID: id}
		}
		return models.Subject{}, err
	}
	return subject, nil
}

// CreateSubject validates and persists a new subject, enforcing the
// composite uniqueness of (code, examBoard).
func (s *SubjectService) CreateSubject(subject models.Subject) (models.Subject, error) {
	normalizeSubject(&subject)
	if ve := checkStruct(subject); ve.HasViolations() {
		return models.Subject{}, ve
	}

	now := time.Now().UTC()
	subject.ID = uuid.New().String()
	subject.CreatedAt = now
	subject.UpdatedAt = now

	tx, err := s.db.Begin()
	if err != nil {
		return models.Subject{}, err
	}
	defer tx.Rollback()

	var count int
	err = tx.QueryRow("SELECT COUNT(1) FROM subjects WHERE code = ? AND exam_board = ?",
		subject.Code, string(subject.ExamBoard)).Scan(&count)
	if err != nil {
		return models.Subject{}, err
	}
	if count > 0 {
		return models.Subject{}, &apperrors.ConflictError{Fields: []string{"code", "examBoard"}}
	}

	_, err = tx.Exec(`INSERT INTO subjects (id, name, code, exam_board, description, icon, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		subject.ID, subject.Name, subject.Code, string(subject.ExamBoard), subject.Description,
		nullString(subject.Icon), subject.CreatedAt, subject.UpdatedAt)
	if err != nil {
		if apperrors.IsUniqueViolation(err) {
			return models.Subject{}, &apperrors.ConflictError{Fields: []string{"code", "examBoard"}}
		}
		return models.Subject{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.Subject{}, err
	}
	return subject, nil
}

// UpdateSubject validates and writes new subject fields, keeping the
// composite uniqueness intact.
func (s *SubjectService) UpdateSubject(id string, subject models.Subject) (models.Subject, error) {
	existing, err := s.GetSubjectByID(id)
	if err != nil {
		return models.Subject{}, err
	}

	normalizeSubject(&subject)
	subject.ID = existing.ID
	subject.CreatedAt = existing.CreatedAt
	subject.UpdatedAt = time.Now().UTC()
	if ve := checkStruct(subject); ve.HasViolations() {
		return models.Subject{}, ve
	}

	tx, err := s.db.Begin()
	if err != nil {
		return models.Subject{}, err
	}
	defer tx.Rollback()

	var count int
	err = tx.QueryRow("SELECT COUNT(1) FROM subjects WHERE code = ? AND exam_board = ? AND id != ?",
		subject.Code, string(subject.ExamBoard), id).Scan(&count)
	if err != nil {
		return models.Subject{}, err
	}
	if count > 0 {
		return models.Subject{}, &apperrors.ConflictError{Fields: []string{"code", "examBoard"}}
	}

	_, err = tx.Exec(`UPDATE subjects SET name = ?, code = ?, exam_board = ?, description = ?, icon = ?,
		updated_at = ? WHERE id = ?`,
		subject.Name, subject.Code, string(subject.ExamBoard), subject.Description,
		nullString(subject.Icon), subject.UpdatedAt, id)
	if err != nil {
		if apperrors.IsUniqueViolation(err) {
			return models.Subject{}, &apperrors.ConflictError{Fields: []string{"code", "examBoard"}}
		}
		return models.Subject{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.Subject{}, err
	}
	return subject, nil
}

// DeleteSubject removes a subject from the database.
func (s *SubjectService) DeleteSubject(id string) error {
	_, err := s.db.Exec("DELETE FROM subjects WHERE id = ?", id)
	return err
}
