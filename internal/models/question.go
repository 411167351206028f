package models

import (
	"encoding/json"
	"time"

	"github.com/savemyigcse/backend/internal/types"
)

// Question is an exam question attached to a topic. Once its fields pass
// validation it carries no further behavior.
type Question struct {
	ID         string             `json:"id"`
	TopicID    string             `json:"topic" validate:"required"`
	Type       types.QuestionType `json:"type" validate:"required,oneof=mcq short_answer essay calculation"`
	Difficulty types.Difficulty   `json:"difficulty" validate:"required,oneof=easy medium hard"`
	Question   string             `json:"question" validate:"required"`
	Options    []string           `json:"options,omitempty"`
	Answer     string             `json:"answer" validate:"required"`
	MarkScheme string             `json:"markScheme" validate:"required"`
	Marks      int                `json:"marks" validate:"required,min=1"`
	ExamBoard  types.ExamBoard    `json:"examBoard" validate:"required,oneof=igcse_cie igcse_edexcel gcse_aqa gcse_edexcel gcse_ocr a_level_cie a_level_aqa a_level_edexcel"`
	Year       *int               `json:"year,omitempty"`
	Tags       []string           `json:"tags,omitempty"`
	CreatedAt  time.Time          `json:"createdAt"`
	UpdatedAt  time.Time          `json:"updatedAt"`

	// JSON string fields for DB storage
	OptionsJSON string `json:"-"`
	TagsJSON    string `json:"-"`
}

// MinYear is the lower bound for the optional exam year. The upper bound
// is the current calendar year at validation time.
const MinYear = 2000

// PrepareForSave marshals the slice fields into their respective JSON
// strings for DB storage.
func (q *Question) PrepareForSave() {
	optionsBytes, _ := json.Marshal(q.Options)
	q.OptionsJSON = string(optionsBytes)

	tagsBytes, _ := json.Marshal(q.Tags)
	q.TagsJSON = string(tagsBytes)
}

// PrepareForAPI unmarshals the JSON string columns back into their slice
// fields after a read.
func (q *Question) PrepareForAPI() {
	if q.OptionsJSON != "" {
		json.Unmarshal([]byte(q.OptionsJSON), &q.Options)
	}
	if q.TagsJSON != "" {
		json.Unmarshal([]byte(q.TagsJSON), &q.Tags)
	}
}
