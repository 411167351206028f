package models

import (
	"time"

	"github.com/savemyigcse/backend/internal/types"
)

// Subject represents a taught subject scoped to an exam board. The
// (Code, ExamBoard) pair is unique; the code is normalized to uppercase
// before the uniqueness check.
type Subject struct {
	ID          string          `json:"id"`
	Name        string          `json:"name" validate:"required,max=100"`
	Code        string          `json:"code" validate:"required"`
	ExamBoard   types.ExamBoard `json:"examBoard" validate:"required,oneof=igcse_cie igcse_edexcel gcse_aqa gcse_edexcel gcse_ocr a_level_cie a_level_aqa a_level_edexcel"`
	Description string          `json:"description" validate:"required,max=500"`
	Icon        string          `json:"icon,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}
