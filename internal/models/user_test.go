package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/savemyigcse/backend/internal/types"
)

func TestSafeViewOmitsSensitiveFields(t *testing.T) {
	expires := time.Now().Add(time.Hour)
	board := types.ExamBoardIGCSECIE
	user := User{
		ID:                       "user-1",
		Email:                    "a@b.com",
		PasswordHash:             "$2a$10$secret",
		Name:                     "Test Student",
		Role:                     types.RoleStudent,
		ExamBoard:                &board,
		Subjects:                 []string{"subj-1"},
		IsEmailVerified:          true,
		EmailVerificationToken:   "verify-token",
		EmailVerificationExpires: &expires,
		ResetPasswordToken:       "reset-token",
		ResetPasswordExpires:     &expires,
		Subscription: &Subscription{
			Plan:   types.PlanPremium,
			Status: types.SubscriptionActive,
		},
		Preferences: &Preferences{Notifications: true, Theme: types.ThemeDark},
	}

	raw, err := json.Marshal(user.ToSafeView())
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(raw, &fields))

	for _, key := range []string{
		"password", "passwordHash",
		"emailVerificationToken", "emailVerificationExpires",
		"resetPasswordToken", "resetPasswordExpires",
	} {
		assert.NotContains(t, fields, key)
	}

	// Everything else passes through unchanged.
	assert.Equal(t, "a@b.com", fields["email"])
	assert.Equal(t, "student", fields["role"])
	assert.Equal(t, "igcse_cie", fields["examBoard"])
	assert.Equal(t, true, fields["isEmailVerified"])
	require.Contains(t, fields, "subscription")
	sub := fields["subscription"].(map[string]any)
	assert.Equal(t, "premium", sub["plan"])
}

func TestUserJSONColumnsRoundTrip(t *testing.T) {
	user := User{
		Subjects: []string{"subj-1", "subj-2"},
		Subscription: &Subscription{
			Plan:   types.PlanFree,
			Status: types.SubscriptionActive,
		},
		Preferences: &Preferences{Notifications: false, Theme: types.ThemeLight},
	}
	user.PrepareForSave()
	require.NotEmpty(t, user.SubjectsJSON)
	require.NotEmpty(t, user.SubscriptionJSON)

	restored := User{
		SubjectsJSON:     user.SubjectsJSON,
		SubscriptionJSON: user.SubscriptionJSON,
		PreferencesJSON:  user.PreferencesJSON,
	}
	restored.PrepareForAPI()
	assert.Equal(t, user.Subjects, restored.Subjects)
	assert.Equal(t, user.Subscription, restored.Subscription)
	assert.Equal(t, user.Preferences, restored.Preferences)
}
