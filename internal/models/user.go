package models

import (
	"encoding/json"
	"time"

	"github.com/savemyigcse/backend/internal/types"
)

// Subscription is a billing record owned inline by a user. It has no
// identity of its own.
type Subscription struct {
	Plan                 types.SubscriptionPlan   `json:"plan" validate:"required,oneof=free premium"`
	Status               types.SubscriptionStatus `json:"status" validate:"required,oneof=active inactive cancelled"`
	StartDate            *time.Time               `json:"startDate,omitempty"`
	EndDate              *time.Time               `json:"endDate,omitempty"`
	StripeCustomerID     string                   `json:"stripeCustomerId,omitempty"`
	StripeSubscriptionID string                   `json:"stripeSubscriptionId,omitempty"`
}

// Preferences holds a user's UI and notification settings.
type Preferences struct {
	Notifications bool        `json:"notifications"`
	Theme         types.Theme `json:"theme" validate:"required,oneof=light dark"`
}

// User is the internal user record, password hash and token state
// included. It must never be serialized for an external consumer; the
// outward-facing shape is SafeUser, produced by ToSafeView.
type User struct {
	ID           string           `json:"id"`
	Email        string           `json:"email" validate:"required,email"`
	PasswordHash string           `json:"-"`
	Name         string           `json:"name" validate:"required,max=100"`
	Role         types.Role       `json:"role" validate:"required,oneof=student teacher admin"`
	ExamBoard    *types.ExamBoard `json:"examBoard,omitempty" validate:"omitempty,oneof=igcse_cie igcse_edexcel gcse_aqa gcse_edexcel gcse_ocr a_level_cie a_level_aqa a_level_edexcel"`
	Subjects     []string         `json:"subjects,omitempty"`
	Avatar       string           `json:"avatar,omitempty"`

	IsEmailVerified          bool       `json:"isEmailVerified"`
	EmailVerificationToken   string     `json:"-"`
	EmailVerificationExpires *time.Time `json:"-"`
	ResetPasswordToken       string     `json:"-"`
	ResetPasswordExpires     *time.Time `json:"-"`

	Subscription *Subscription `json:"subscription,omitempty" validate:"omitempty"`
	Preferences  *Preferences  `json:"preferences,omitempty" validate:"omitempty"`

	LastLogin *time.Time `json:"lastLogin,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`

	// JSON string fields for DB storage
	SubjectsJSON     string `json:"-"`
	SubscriptionJSON string `json:"-"`
	PreferencesJSON  string `json:"-"`
}

// SafeUser is the externally-serializable subset of a user record. The
// credential and both token/expiry pairs do not exist on this type, so
// no handler can leak them by accident.
type SafeUser struct {
	ID              string           `json:"id"`
	Email           string           `json:"email"`
	Name            string           `json:"name"`
	Role            types.Role       `json:"role"`
	ExamBoard       *types.ExamBoard `json:"examBoard,omitempty"`
	Subjects        []string         `json:"subjects,omitempty"`
	Avatar          string           `json:"avatar,omitempty"`
	IsEmailVerified bool             `json:"isEmailVerified"`
	Subscription    *Subscription    `json:"subscription,omitempty"`
	Preferences     *Preferences     `json:"preferences,omitempty"`
	LastLogin       *time.Time       `json:"lastLogin,omitempty"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}

// ToSafeView produces the outward-facing representation of the user.
// Every serialization path for external consumers goes through here.
func (u User) ToSafeView() SafeUser {
	return SafeUser{
		ID:              u.ID,
		Email:           u.Email,
		Name:            u.Name,
		Role:            u.Role,
		ExamBoard:       u.ExamBoard,
		Subjects:        u.Subjects,
		Avatar:          u.Avatar,
		IsEmailVerified: u.IsEmailVerified,
		Subscription:    u.Subscription,
		Preferences:     u.Preferences,
		LastLogin:       u.LastLogin,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}

// PrepareForSave marshals the structured fields into their respective
// JSON strings for DB storage.
func (u *User) PrepareForSave() {
	subjectsBytes, _ := json.Marshal(u.Subjects)
	u.SubjectsJSON = string(subjectsBytes)

	if u.Subscription != nil {
		subBytes, _ := json.Marshal(u.Subscription)
		u.SubscriptionJSON = string(subBytes)
	} else {
		u.SubscriptionJSON = ""
	}

	if u.Preferences != nil {
		prefBytes, _ := json.Marshal(u.Preferences)
		u.PreferencesJSON = string(prefBytes)
	} else {
		u.PreferencesJSON = ""
	}
}

// PrepareForAPI unmarshals the JSON string columns back into their
// structured fields after a read.
func (u *User) PrepareForAPI() {
	if u.SubjectsJSON != "" {
		json.Unmarshal([]byte(u.SubjectsJSON), &u.Subjects)
	}
	if u.SubscriptionJSON != "" {
		json.Unmarshal([]byte(u.SubscriptionJSON), &u.Subscription)
	}
	if u.PreferencesJSON != "" {
		json.Unmarshal([]byte(u.PreferencesJSON), &u.Preferences)
	}
}
