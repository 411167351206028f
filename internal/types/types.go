// Package types holds the enumerations and API envelope shapes shared by
// every consumer of the API. It is the single source of truth for the
// closed value sets used in validation; it has no behavior beyond
// membership checks.
package types

// Role is a user's role in the platform.
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

// Roles lists every valid role.
var Roles = []Role{RoleStudent, RoleTeacher, RoleAdmin}

// Valid reports whether r is a member of the role enumeration.
func (r Role) Valid() bool {
	for _, v := range Roles {
		if r == v {
			return true
		}
	}
	return false
}

// ExamBoard identifies the curriculum variant governing a subject or question.
type ExamBoard string

const (
	ExamBoardIGCSECIE      ExamBoard = "igcse_cie"
	ExamBoardIGCSEEdexcel  ExamBoard = "igcse_edexcel"
	ExamBoardGCSEAQA       ExamBoard = "gcse_aqa"
	ExamBoardGCSEEdexcel   ExamBoard = "gcse_edexcel"
	ExamBoardGCSEOCR       ExamBoard = "gcse_ocr"
	ExamBoardALevelCIE     ExamBoard = "a_level_cie"
	ExamBoardALevelAQA     ExamBoard = "a_level_aqa"
	ExamBoardALevelEdexcel ExamBoard = "a_level_edexcel"
)

// ExamBoards lists every valid exam board.
var ExamBoards = []ExamBoard{
	ExamBoardIGCSECIE,
	ExamBoardIGCSEEdexcel,
	ExamBoardGCSEAQA,
	ExamBoardGCSEEdexcel,
	ExamBoardGCSEOCR,
	ExamBoardALevelCIE,
	ExamBoardALevelAQA,
	ExamBoardALevelEdexcel,
}

// Valid reports whether b is a member of the exam board enumeration.
func (b ExamBoard) Valid() bool {
	for _, v := range ExamBoards {
		if b == v {
			return true
		}
	}
	return false
}

// Difficulty grades a question, note or flashcard.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Difficulties lists every valid difficulty.
var Difficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

// Valid reports whether d is a member of the difficulty enumeration.
func (d Difficulty) Valid() bool {
	for _, v := range Difficulties {
		if d == v {
			return true
		}
	}
	return false
}

// QuestionType classifies how a question is answered and marked.
type QuestionType string

const (
	QuestionTypeMCQ         QuestionType = "mcq"
	QuestionTypeShortAnswer QuestionType = "short_answer"
	QuestionTypeEssay       QuestionType = "essay"
	QuestionTypeCalculation QuestionType = "calculation"
)

// QuestionTypes lists every valid question type.
var QuestionTypes = []QuestionType{
	QuestionTypeMCQ,
	QuestionTypeShortAnswer,
	QuestionTypeEssay,
	QuestionTypeCalculation,
}

// Valid reports whether t is a member of the question type enumeration.
func (t QuestionType) Valid() bool {
	for _, v := range QuestionTypes {
		if t == v {
			return true
		}
	}
	return false
}

// SubscriptionPlan is the billing plan attached to a user's subscription.
type SubscriptionPlan string

const (
	PlanFree    SubscriptionPlan = "free"
	PlanPremium SubscriptionPlan = "premium"
)

// Valid reports whether p is a known plan.
func (p SubscriptionPlan) Valid() bool {
	return p == PlanFree || p == PlanPremium
}

// SubscriptionStatus is the state of a user's subscription.
type SubscriptionStatus string

const (
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionInactive  SubscriptionStatus = "inactive"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
)

// Valid reports whether s is a known subscription status.
func (s SubscriptionStatus) Valid() bool {
	return s == SubscriptionActive || s == SubscriptionInactive || s == SubscriptionCancelled
}

// Theme is a user's UI theme preference.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Valid reports whether t is a known theme.
func (t Theme) Valid() bool {
	return t == ThemeLight || t == ThemeDark
}

// APIResponse is the uniform envelope for non-paginated responses.
type APIResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Stack   string `json:"stack,omitempty"` // populated only outside production
}

// Pagination describes the window of a paginated listing.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// PaginatedResponse is the uniform envelope for list responses.
type PaginatedResponse struct {
	Success    bool       `json:"success"`
	Data       any        `json:"data"`
	Pagination Pagination `json:"pagination"`
}
