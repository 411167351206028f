package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/savemyigcse/backend/internal/apperrors"
	"github.com/savemyigcse/backend/internal/models"
	"github.com/savemyigcse/backend/internal/types"
)

func mathsSubject() models.Subject {
	return models.Subject{
		Name:        "Mathematics",
		Code:        "math",
		ExamBoard:   types.ExamBoardGCSEAQA,
		Description: "GCSE mathematics syllabus",
	}
}

func TestCreateSubjectNormalizesCode(t *testing.T) {
	svc := NewSubjectService(newTestDB(t))

	created, err := svc.CreateSubject(mathsSubject())
	require.NoError(t, err)
	assert.Equal(t, "MATH", created.Code)

	stored, err := svc.GetSubjectByID(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "MATH", stored.Code, "stored code reads back uppercased")
}

func TestCreateSubjectCompositeUniqueness(t *testing.T) {
	svc := NewSubjectService(newTestDB(t))

	_, err := svc.CreateSubject(mathsSubject())
	require.NoError(t, err)

	// Identical (code, examBoard) after normalization is rejected.
	dup := mathsSubject()
	dup.Code = "MATH"
	_, err = svc.CreateSubject(dup)
	require.Error(t, err)

	var conflict *apperrors.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, []string{"code", "examBoard"}, conflict.Fields)

	// The same code under a different board is fine.
	other := mathsSubject()
	other.ExamBoard = types.ExamBoardIGCSECIE
	_, err = svc.CreateSubject(other)
	assert.NoError(t, err)
}

func TestCreateSubjectValidation(t *testing.T) {
	svc := NewSubjectService(newTestDB(t))

	_, err := svc.CreateSubject(models.Subject{
		Code:      "PHY",
		ExamBoard: types.ExamBoard("unknown_board"),
	})
	require.Error(t, err)

	var ve *apperrors.ValidationError
	require.ErrorAs(t, err, &ve)

	violated := map[string]bool{}
	for _, v := range ve.Violations {
		violated[v.Field] = true
	}
	assert.True(t, violated["name"])
	assert.True(t, violated["examBoard"])
	assert.True(t, violated["description"])
}

func TestUpdateSubjectKeepsUniqueness(t *testing.T) {
	svc := NewSubjectService(newTestDB(t))

	math, err := svc.CreateSubject(mathsSubject())
	require.NoError(t, err)

	physics := mathsSubject()
	physics.Name = "Physics"
	physics.Code = "PHY"
	created, err := svc.CreateSubject(physics)
	require.NoError(t, err)

	// Renaming physics to the maths code under the same board conflicts.
	created.Code = "math"
	_, err = svc.UpdateSubject(created.ID, created)
	var conflict *apperrors.ConflictError
	require.ErrorAs(t, err, &conflict)

	// Updating a subject onto its own code is not a conflict.
	math.Description = "Updated description"
	updated, err := svc.UpdateSubject(math.ID, math)
	require.NoError(t, err)
	assert.Equal(t, "Updated description", updated.Description)
}

func TestGetAllSubjectsFiltersByBoard(t *testing.T) {
	svc := NewSubjectService(newTestDB(t))

	_, err := svc.CreateSubject(mathsSubject())
	require.NoError(t, err)
	other := mathsSubject()
	other.ExamBoard = types.ExamBoardALevelCIE
	_, err = svc.CreateSubject(other)
	require.NoError(t, err)

	all, err := svc.GetAllSubjects(nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	board := types.ExamBoardALevelCIE
	filtered, err := svc.GetAllSubjects(&board)
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, board, filtered[0].ExamBoard)
}
