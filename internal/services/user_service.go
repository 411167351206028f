package services

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/savemyigcse/backend/internal/apperrors"
	"github.com/savemyigcse/backend/internal/models"
	"github.com/savemyigcse/backend/internal/types"
)

// Token lifetimes for the two opaque token/expiry pairs on a user.
const (
	emailVerificationTTL = 24 * time.Hour
	passwordResetTTL     = time.Hour
)

// minPasswordLength is the minimum accepted plaintext credential length.
const minPasswordLength = 6

// RegisterParams carries the fields accepted on registration.
type RegisterParams struct {
	Email     string
	Password  string
	Name      string
	Role      types.Role
	ExamBoard *types.ExamBoard
}

// UpdateUserParams carries the profile fields a user may change. The
// credential is never updated through this path.
type UpdateUserParams struct {
	Name         string
	ExamBoard    *types.ExamBoard
	Subjects     []string
	Avatar       string
	Preferences  *models.Preferences
	Subscription *models.Subscription
}

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	CreateUser(params RegisterParams) (models.User, error)
	GetUserByID(id string) (models.User, error)
	ListUsers(page, limit int) ([]models.User, int, error)
	UpdateUser(id string, params UpdateUserParams) (models.User, error)
	UpdatePassword(id, currentPassword, newPassword string) error
	AuthenticateUser(email, password string) (models.User, error)
	DeleteUser(id string) error
	IssueEmailVerificationToken(email string) (string, error)
	VerifyEmail(token string) error
	IssuePasswordResetToken(email string) (string, error)
	ResetPassword(token, newPassword string) error
	PurgeExpiredTokens(now time.Time) (int64, error)
}

// UserService provides business logic for user accounts.
type UserService struct {
	db *sql.DB
}

// NewUserService creates a new UserService.
func NewUserService(db *sql.DB) *UserService {
	return &UserService{db: db}
}

const userColumns = `id, email, password_hash, name, role, exam_board, subjects_json, avatar,
	is_email_verified, email_verification_token, email_verification_expires,
	reset_password_token, reset_password_expires, subscription_json, preferences_json,
	last_login, created_at, updated_at`

// scanUser is a helper to scan a user from a row or rows object.
func scanUser(scanner interface{ Scan(...any) error }) (models.User, error) {
	var user models.User
	var examBoard, subjects, avatar, verifyToken, resetToken sql.NullString
	var subscription, preferences sql.NullString
	var verifyExpires, resetExpires, lastLogin sql.NullTime

	err := scanner.Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.Name, &user.Role,
		&examBoard, &subjects, &avatar,
		&user.IsEmailVerified, &verifyToken, &verifyExpires,
		&resetToken, &resetExpires, &subscription, &preferences,
		&lastLogin, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return user, err
	}

	if examBoard.Valid {
		board := types.ExamBoard(examBoard.String)
		user.ExamBoard = &board
	}
	user.SubjectsJSON = subjects.String
	user.Avatar = avatar.String
	user.EmailVerificationToken = verifyToken.String
	if verifyExpires.Valid {
		user.EmailVerificationExpires = &verifyExpires.Time
	}
	user.ResetPasswordToken = resetToken.String
	if resetExpires.Valid {
		user.ResetPasswordExpires = &resetExpires.Time
	}
	user.SubscriptionJSON = subscription.String
	user.PreferencesJSON = preferences.String
	if lastLogin.Valid {
		user.LastLogin = &lastLogin.Time
	}

	user.PrepareForAPI()
	return user, nil
}

// normalizeEmail trims and lowercases an address. Uniqueness checks run
// on the normalized form.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// setPassword hashes the plaintext credential into the record. It is the
// only way a credential reaches a user record, so a write can never
// commit a plaintext password: if hashing fails the write is aborted.
func setPassword(user *models.User, plaintext string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordHash = string(hashed)
	return nil
}

// checkPassword compares a candidate plaintext against the stored hash.
func checkPassword(user models.User, plaintext string) bool {
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(plaintext)) == nil
}

// validateUser merges struct-tag validation with the credential rules.
// password is empty on writes that do not touch the credential.
func validateUser(user models.User, password string, passwordRequired bool) error {
	ve := checkStruct(user)
	if passwordRequired && password == "" {
		ve.Add("password", "required")
	} else if password != "" && len(password) < minPasswordLength {
		ve.Add("password", fmt.Sprintf("min=%d", minPasswordLength))
	}
	if ve.HasViolations() {
		return ve
	}
	return nil
}

// CreateUser validates and persists a new account, hashing the credential.
func (s *UserService) CreateUser(params RegisterParams) (models.User, error) {
	now := time.Now().UTC()
	user := models.User{
		ID:        uuid.New().String(),
		Email:     normalizeEmail(params.Email),
		Name:      strings.TrimSpace(params.Name),
		Role:      params.Role,
		ExamBoard: params.ExamBoard,
		Subscription: &models.Subscription{
			Plan:   types.PlanFree,
			Status: types.SubscriptionActive,
		},
		Preferences: &models.Preferences{
			Notifications: true,
			Theme:         types.ThemeLight,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if user.Role == "" {
		user.Role = types.RoleStudent
	}

	if err := validateUser(user, params.Password, true); err != nil {
		return models.User{}, err
	}
	if err := setPassword(&user, params.Password); err != nil {
		return models.User{}, err
	}
	user.PrepareForSave()

	tx, err := s.db.Begin()
	if err != nil {
		return models.User{}, err
	}
	defer tx.Rollback()

	var count int
	if err := tx.QueryRow("SELECT COUNT(1) FROM users WHERE email = ?", user.Email).Scan(&count); err != nil {
		return models.User{}, err
	}
	if count > 0 {
		return models.User{}, &apperrors.ConflictError{Fields: []string{"email"}}
	}

	_, err = tx.Exec(`INSERT INTO users (id, email, password_hash, name, role, exam_board, subjects_json,
		avatar, is_email_verified, subscription_json, preferences_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID, user.Email, user.PasswordHash, user.Name, user.Role, nullableBoard(user.ExamBoard),
		user.SubjectsJSON, nullString(user.Avatar), user.IsEmailVerified,
		nullString(user.SubscriptionJSON), nullString(user.PreferencesJSON),
		user.CreatedAt, user.UpdatedAt)
	if err != nil {
		if apperrors.IsUniqueViolation(err) {
			return models.User{}, &apperrors.ConflictError{Fields: []string{"email"}}
		}
		return models.User{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.User{}, err
	}
	return user, nil
}

// GetUserByID retrieves a single user by their ID.
func (s *UserService) GetUserByID(id string) (models.User, error) {
	row := s.db.QueryRow("SELECT "+userColumns+" FROM users WHERE id = ?", id)
	user, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.User{}, &apperrors.NotFoundError{Resource: "user", ID: id}
		}
		return models.User{}, err
	}
	return user, nil
}

// GetUserByEmail retrieves a single user by their normalized email,
// including the password hash. Internal use only.
func (s *UserService) GetUserByEmail(email string) (models.User, error) {
	email = normalizeEmail(email)
	row := s.db.QueryRow("SELECT "+userColumns+" FROM users WHERE email = ?", email)
	user, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.User{}, &apperrors.NotFoundError{Resource: "user", ID: email}
		}
		return models.User{}, err
	}
	return user, nil
}

// ListUsers returns one page of users and the total count.
func (s *UserService) ListUsers(page, limit int) ([]models.User, int, error) {
	page, limit = NormalizePage(page, limit)

	var total int
	if err := s.db.QueryRow("SELECT COUNT(1) FROM users").Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.db.Query("SELECT "+userColumns+" FROM users ORDER BY created_at DESC LIMIT ? OFFSET ?",
		limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, user)
	}
	return users, total, rows.Err()
}

// UpdateUser updates a user's profile fields. The credential and token
// state are untouched by this path.
func (s *UserService) UpdateUser(id string, params UpdateUserParams) (models.User, error) {
	user, err := s.GetUserByID(id)
	if err != nil {
		return models.User{}, err
	}

	if params.Name != "" {
		user.Name = strings.TrimSpace(params.Name)
	}
	if params.ExamBoard != nil {
		user.ExamBoard = params.ExamBoard
	}
	if params.Subjects != nil {
		user.Subjects = params.Subjects
	}
	if params.Avatar != "" {
		user.Avatar = params.Avatar
	}
	if params.Preferences != nil {
		user.Preferences = params.Preferences
	}
	if params.Subscription != nil {
		user.Subscription = params.Subscription
	}
	user.UpdatedAt = time.Now().UTC()

	if err := validateUser(user, "", false); err != nil {
		return models.User{}, err
	}
	user.PrepareForSave()

	_, err = s.db.Exec(`UPDATE users SET name = ?, exam_board = ?, subjects_json = ?, avatar = ?,
		subscription_json = ?, preferences_json = ?, updated_at = ? WHERE id = ?`,
		user.Name, nullableBoard(user.ExamBoard), user.SubjectsJSON, nullString(user.Avatar),
		nullString(user.SubscriptionJSON), nullString(user.PreferencesJSON), user.UpdatedAt, id)
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

// UpdatePassword verifies the current password, then hashes and stores a
// new one.
func (s *UserService) UpdatePassword(id, currentPassword, newPassword string) error {
	user, err := s.GetUserByID(id)
	if err != nil {
		return err
	}
	if !checkPassword(user, currentPassword) {
		ve := &apperrors.ValidationError{}
		ve.Add("currentPassword", "incorrect")
		return ve
	}
	if len(newPassword) < minPasswordLength {
		ve := &apperrors.ValidationError{}
		ve.Add("newPassword", fmt.Sprintf("min=%d", minPasswordLength))
		return ve
	}
	if err := setPassword(&user, newPassword); err != nil {
		return err
	}
	_, err = s.db.Exec("UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?",
		user.PasswordHash, time.Now().UTC(), id)
	return err
}

// AuthenticateUser verifies a user's credentials and records the login.
func (s *UserService) AuthenticateUser(email, password string) (models.User, error) {
	user, err := s.GetUserByEmail(email)
	if err != nil {
		return models.User{}, fmt.Errorf("authentication failed: user not found")
	}
	if !checkPassword(user, password) {
		return models.User{}, fmt.Errorf("authentication failed: invalid password")
	}

	now := time.Now().UTC()
	user.LastLogin = &now
	if _, err := s.db.Exec("UPDATE users SET last_login = ? WHERE id = ?", now, user.ID); err != nil {
		return models.User{}, err
	}
	return user, nil
}

// DeleteUser removes a user from the database.
func (s *UserService) DeleteUser(id string) error {
	_, err := s.db.Exec("DELETE FROM users WHERE id = ?", id)
	return err
}

// IssueEmailVerificationToken stores a fresh opaque verification token
// for the account and returns it for delivery.
func (s *UserService) IssueEmailVerificationToken(email string) (string, error) {
	user, err := s.GetUserByEmail(email)
	if err != nil {
		return "", err
	}
	token := uuid.New().String()
	expires := time.Now().UTC().Add(emailVerificationTTL)
	_, err = s.db.Exec(`UPDATE users SET email_verification_token = ?, email_verification_expires = ?,
		updated_at = ? WHERE id = ?`, token, expires, time.Now().UTC(), user.ID)
	if err != nil {
		return "", err
	}
	return token, nil
}

// VerifyEmail marks the account verified if the token matches and is not
// expired, then clears the token pair.
func (s *UserService) VerifyEmail(token string) error {
	res, err := s.db.Exec(`UPDATE users SET is_email_verified = 1, email_verification_token = NULL,
		email_verification_expires = NULL, updated_at = ?
		WHERE email_verification_token = ? AND email_verification_expires > ?`,
		time.Now().UTC(), token, time.Now().UTC())
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return &apperrors.NotFoundError{Resource: "verification token", ID: token}
	}
	return nil
}

// IssuePasswordResetToken stores a fresh opaque reset token for the
// account and returns it for delivery.
func (s *UserService) IssuePasswordResetToken(email string) (string, error) {
	user, err := s.GetUserByEmail(email)
	if err != nil {
		return "", err
	}
	token := uuid.New().String()
	expires := time.Now().UTC().Add(passwordResetTTL)
	_, err = s.db.Exec(`UPDATE users SET reset_password_token = ?, reset_password_expires = ?,
		updated_at = ? WHERE id = ?`, token, expires, time.Now().UTC(), user.ID)
	if err != nil {
		return "", err
	}
	return token, nil
}

// ResetPassword sets a new credential if the reset token matches and is
// not expired, then clears the token pair.
func (s *UserService) ResetPassword(token, newPassword string) error {
	row := s.db.QueryRow("SELECT "+userColumns+` FROM users
		WHERE reset_password_token = ? AND reset_password_expires > ?`, token, time.Now().UTC())
	user, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return &apperrors.NotFoundError{Resource: "reset token", ID: token}
		}
		return err
	}
	if len(newPassword) < minPasswordLength {
		ve := &apperrors.ValidationError{}
		ve.Add("newPassword", fmt.Sprintf("min=%d", minPasswordLength))
		return ve
	}
	if err := setPassword(&user, newPassword); err != nil {
		return err
	}
	_, err = s.db.Exec(`UPDATE users SET password_hash = ?, reset_password_token = NULL,
		reset_password_expires = NULL, updated_at = ? WHERE id = ?`,
		user.PasswordHash, time.Now().UTC(), user.ID)
	return err
}

// PurgeExpiredTokens clears verification and reset token pairs whose
// expiry lies before now. Returns the number of touched rows.
func (s *UserService) PurgeExpiredTokens(now time.Time) (int64, error) {
	res, err := s.db.Exec(`UPDATE users SET
		email_verification_token = CASE WHEN email_verification_expires < ? THEN NULL ELSE email_verification_token END,
		email_verification_expires = CASE WHEN email_verification_expires < ? THEN NULL ELSE email_verification_expires END,
		reset_password_token = CASE WHEN reset_password_expires < ? THEN NULL ELSE reset_password_token END,
		reset_password_expires = CASE WHEN reset_password_expires < ? THEN NULL ELSE reset_password_expires END
		WHERE email_verification_expires < ? OR reset_password_expires < ?`,
		now, now, now, now, now, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// nullString maps "" to NULL for optional text columns.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// nullableBoard maps a missing exam board to NULL.
func nullableBoard(b *types.ExamBoard) any {
	if b == nil {
		return nil
	}
	return string(*b)
}
