package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/savemyigcse/backend/internal/api/response"
	"github.com/savemyigcse/backend/internal/auth"
	"github.com/savemyigcse/backend/internal/services"
	"github.com/savemyigcse/backend/internal/types"
)

// AuthHandler handles registration, login and the token flows.
type AuthHandler struct {
	service services.UserServiceProvider
	secure  bool // Secure cookie flag, set in production
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(service services.UserServiceProvider, secureCookies bool) *AuthHandler {
	return &AuthHandler{service: service, secure: secureCookies}
}

// RegisterPayload defines the structure for registration requests.
type RegisterPayload struct {
	Email     string           `json:"email"`
	Password  string           `json:"password"`
	Name      string           `json:"name"`
	ExamBoard *types.ExamBoard `json:"examBoard,omitempty"`
}

// LoginPayload defines the structure for login requests.
type LoginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register handles new user registration.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload RegisterPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		response.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.service.CreateUser(services.RegisterParams{
		Email:     payload.Email,
		Password:  payload.Password,
		Name:      payload.Name,
		ExamBoard: payload.ExamBoard,
	})
	if err != nil {
		log.Warn().Err(err).Str("email", payload.Email).Msg("Failed to register user")
		response.Error(w, err)
		return
	}

	response.OK(w, http.StatusCreated, user.ToSafeView())
}

// Login handles user authentication and JWT generation.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload LoginPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		response.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.service.AuthenticateUser(payload.Email, payload.Password)
	if err != nil {
		log.Warn().Err(err).Str("email", payload.Email).Msg("Failed authentication attempt")
		response.Fail(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := auth.GenerateJWT(user)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to generate JWT")
		response.Fail(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    token,
		Expires:  time.Now().Add(24 * time.Hour),
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
	})

	response.OK(w, http.StatusOK, map[string]any{
		"token": token,
		"user":  user.ToSafeView(),
	})
}

// RequestVerification issues a fresh email verification token. Delivery
// is out of band; the token is returned so a mailer can pick it up.
func (h *AuthHandler) RequestVerification(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		response.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if _, err := h.service.IssueEmailVerificationToken(payload.Email); err != nil {
		log.Warn().Err(err).Str("email", payload.Email).Msg("Failed to issue verification token")
	}
	// Same response whether or not the account exists.
	response.Message(w, http.StatusOK, "If the account exists, a verification email has been sent")
}

// VerifyEmail consumes a verification token.
func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		response.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.service.VerifyEmail(payload.Token); err != nil {
		log.Warn().Err(err).Msg("Email verification failed")
		response.Fail(w, http.StatusBadRequest, "Invalid or expired verification token")
		return
	}
	response.Message(w, http.StatusOK, "Email verified")
}

// ForgotPassword issues a password reset token.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		response.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if _, err := h.service.IssuePasswordResetToken(payload.Email); err != nil {
		log.Warn().Err(err).Str("email", payload.Email).Msg("Failed to issue reset token")
	}
	response.Message(w, http.StatusOK, "If the account exists, a reset email has been sent")
}

// ResetPassword consumes a reset token and sets a new credential.
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Token       string `json:"token"`
		NewPassword string `json:"newPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		response.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.service.ResetPassword(payload.Token, payload.NewPassword); err != nil {
		log.Warn().Err(err).Msg("Password reset failed")
		response.Error(w, err)
		return
	}
	response.Message(w, http.StatusOK, "Password updated")
}
