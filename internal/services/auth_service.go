package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/awakenedyouth/awakened-be/internal/auth"
	"github.com/awakenedyouth/awakened-be/internal/localstore"
	"github.com/awakenedyouth/awakened-be/internal/metrics"
	"github.com/awakenedyouth/awakened-be/internal/models"
	"github.com/rs/zerolog/log"
)

// resetTokenTTL is how long a password reset token stays valid.
const resetTokenTTL = time.Hour

// AdminAccount is the hardcoded editor login. It never appears in the users list.
type AdminAccount struct {
	Login    string
	Password string
	Email    string
}

// adminUserID is the synthetic identity of the editor account.
const adminUserID = "admin"

// RegisterInput is the data needed to create a contributor account.
type RegisterInput struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// AuthServiceProvider defines the interface for authentication and user management.
type AuthServiceProvider interface {
	Register(ctx context.Context, in RegisterInput) (models.User, error)
	Login(ctx context.Context, email, password string) (auth.Session, error)
	Logout(ctx context.Context, session auth.Session, currentPath string) string
	RequestPasswordReset(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, token, newPassword string) error
	GetUserByID(ctx context.Context, id string) (models.User, error)
	GetAllUsers(ctx context.Context, session auth.Session) ([]models.User, error)
	UpdateUserStatus(ctx context.Context, session auth.Session, userID, status string) (models.User, error)
	PurgeExpiredResetTokens(ctx context.Context) (int, error)
}

// AuthService provides business logic for accounts, sessions and password resets.
type AuthService struct {
	store         localstore.Store
	notifications NotificationServiceProvider
	activities    ActivityServiceProvider
	metrics       *metrics.Metrics
	admin         AdminAccount
	now           func() time.Time
	newID         func() string
}

// NewAuthService creates a new AuthService.
func NewAuthService(store localstore.Store, notifications NotificationServiceProvider, activities ActivityServiceProvider, m *metrics.Metrics, admin AdminAccount) *AuthService {
	return &AuthService{
		store:         store,
		notifications: notifications,
		activities:    activities,
		metrics:       m,
		admin:         admin,
		now:           time.Now,
		newID:         newID,
	}
}

func (s *AuthService) adminSession() auth.Session {
	return auth.Session{UserID: adminUserID, Name: "Admin", Email: s.admin.Email, Role: models.RoleAdmin}
}

// Register creates a contributor account.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (models.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if err := validateInput(in); err != nil {
		return models.User{}, err
	}

	hashed, err := auth.HashPassword(in.Password)
	if err != nil {
		return models.User{}, err
	}

	unlock := locks.lock(localstore.KeyUsers)
	users, err := localstore.LoadList[models.User](ctx, s.store, localstore.KeyUsers)
	if err != nil {
		unlock()
		return models.User{}, err
	}
	for _, u := range users {
		if u.Email == in.Email {
			unlock()
			return models.User{}, fmt.Errorf("register %s: %w", in.Email, ErrDuplicateEmail)
		}
	}

	user := models.User{
		ID:           s.newID(),
		Name:         in.Name,
		Email:        in.Email,
		Password:     hashed,
		Role:         models.RoleContributor,
		Status:       models.StatusActive,
		RegisteredAt: s.now().UTC(),
	}
	users = append(users, user)
	err = localstore.SaveList(ctx, s.store, localstore.KeyUsers, users)
	unlock()
	if err != nil {
		return models.User{}, err
	}

	log.Info().Str("user_id", user.ID).Str("email", user.Email).Msg("New contributor registered")
	if _, err := s.notifications.NotifyAdmin(ctx, models.NotificationNewUser, "New User Registration",
		fmt.Sprintf("%s has registered as a contributor", user.Name), user.Public()); err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to notify admin of registration")
	}
	if err := s.activities.LogActivity(ctx, "user", fmt.Sprintf("New user registered: %s", user.Name)); err != nil {
		log.Warn().Err(err).Msg("Failed to log activity")
	}
	return user.Public(), nil
}

// Login checks credentials and returns the session to persist.
func (s *AuthService) Login(ctx context.Context, email, password string) (auth.Session, error) {
	if s.admin.Login != "" && email == s.admin.Login && password == s.admin.Password {
		s.metrics.Login("ok")
		log.Info().Msg("Admin logged in")
		return s.adminSession(), nil
	}

	defer locks.lock(localstore.KeyUsers)()
	users, err := localstore.LoadList[models.User](ctx, s.store, localstore.KeyUsers)
	if err != nil {
		return auth.Session{}, err
	}

	idx := -1
	for i, u := range users {
		if u.Email == email && auth.CheckPassword(u.Password, password) {
			idx = i
			break
		}
	}
	if idx == -1 {
		s.metrics.Login("invalid")
		return auth.Session{}, fmt.Errorf("login %s: %w", email, ErrInvalidCredentials)
	}
	if users[idx].Status != models.StatusActive {
		s.metrics.Login("inactive")
		return auth.Session{}, fmt.Errorf("login %s: %w", email, ErrAccountInactive)
	}

	users[idx].LastLogin = timePtr(s.now().UTC())
	if err := localstore.SaveList(ctx, s.store, localstore.KeyUsers, users); err != nil {
		return auth.Session{}, err
	}
	s.metrics.Login("ok")
	return auth.NewSession(users[idx]), nil
}

// Logout ends session. It returns where the caller should navigate: "/" when
// currentPath is a privileged page, empty otherwise.
func (s *AuthService) Logout(ctx context.Context, session auth.Session, currentPath string) string {
	if session.IsLoggedIn() {
		log.Info().Str("user_id", session.UserID).Msg("User logged out")
	}
	if strings.Contains(currentPath, "writer-dashboard") || strings.Contains(currentPath, "admin") {
		return "/"
	}
	return ""
}

// RequestPasswordReset issues a one-hour reset token for email.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	users, err := localstore.LoadList[models.User](ctx, s.store, localstore.KeyUsers)
	if err != nil {
		return "", err
	}
	known := email != "" && email == s.admin.Email
	for _, u := range users {
		if u.Email == email {
			known = true
			break
		}
	}
	if !known {
		return "", fmt.Errorf("password reset for %s: %w", email, ErrNotFound)
	}

	token := strings.ReplaceAll(s.newID(), "-", "")
	defer locks.lock(localstore.KeyResetTokens)()
	tokens, err := localstore.LoadList[models.ResetToken](ctx, s.store, localstore.KeyResetTokens)
	if err != nil {
		return "", err
	}
	tokens = append(tokens, models.ResetToken{Email: email, Token: token, ExpiresAt: s.now().UTC().Add(resetTokenTTL)})
	if err := localstore.SaveList(ctx, s.store, localstore.KeyResetTokens, tokens); err != nil {
		return "", err
	}

	// Email delivery is simulated.
	log.Info().Str("email", email).Str("reset_link", "reset-password.html?token="+token).Msg("Password reset email sent")
	return token, nil
}

// ResetPassword consumes token and sets the account's new password.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < 6 {
		return fmt.Errorf("%w: password must be at least 6 characters", ErrInvalidInput)
	}

	defer locks.lock(localstore.KeyResetTokens)()
	tokens, err := localstore.LoadList[models.ResetToken](ctx, s.store, localstore.KeyResetTokens)
	if err != nil {
		return err
	}
	idx := -1
	for i, t := range tokens {
		if t.Token == token {
			idx = i
			break
		}
	}
	if token == "" || idx == -1 {
		return ErrInvalidToken
	}
	reset := tokens[idx]
	if s.now().After(reset.ExpiresAt) {
		return ErrExpiredToken
	}

	if reset.Email == s.admin.Email {
		log.Warn().Msg("Admin password reset requested; the admin password is managed through ADMIN_PASSWORD")
	} else if err := s.setPassword(ctx, reset.Email, newPassword); err != nil {
		return err
	}

	tokens = append(tokens[:idx], tokens[idx+1:]...)
	return localstore.SaveList(ctx, s.store, localstore.KeyResetTokens, tokens)
}

func (s *AuthService) setPassword(ctx context.Context, email, password string) error {
	hashed, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	defer locks.lock(localstore.KeyUsers)()
	users, err := localstore.LoadList[models.User](ctx, s.store, localstore.KeyUsers)
	if err != nil {
		return err
	}
	for i := range users {
		if users[i].Email == email {
			users[i].Password = hashed
			return localstore.SaveList(ctx, s.store, localstore.KeyUsers, users)
		}
	}
	// The account vanished after the token was issued; the token is still consumed.
	return nil
}

// PurgeExpiredResetTokens deletes tokens past their expiry and returns how many were removed.
func (s *AuthService) PurgeExpiredResetTokens(ctx context.Context) (int, error) {
	defer locks.lock(localstore.KeyResetTokens)()
	tokens, err := localstore.LoadList[models.ResetToken](ctx, s.store, localstore.KeyResetTokens)
	if err != nil {
		return 0, err
	}
	now := s.now()
	kept := tokens[:0]
	for _, t := range tokens {
		if !now.After(t.ExpiresAt) {
			kept = append(kept, t)
		}
	}
	removed := len(tokens) - len(kept)
	if removed == 0 {
		return 0, nil
	}
	return removed, localstore.SaveList(ctx, s.store, localstore.KeyResetTokens, kept)
}

// GetUserByID retrieves a single user by their ID.
func (s *AuthService) GetUserByID(ctx context.Context, id string) (models.User, error) {
	users, err := localstore.LoadList[models.User](ctx, s.store, localstore.KeyUsers)
	if err != nil {
		return models.User{}, err
	}
	for _, u := range users {
		if u.ID == id {
			return u.Public(), nil
		}
	}
	return models.User{}, fmt.Errorf("user %s: %w", id, ErrNotFound)
}

// GetAllUsers lists every registered account. Admin only.
func (s *AuthService) GetAllUsers(ctx context.Context, session auth.Session) ([]models.User, error) {
	if !session.IsAdmin() {
		return nil, fmt.Errorf("list users: %w", ErrAccessDenied)
	}
	users, err := localstore.LoadList[models.User](ctx, s.store, localstore.KeyUsers)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i] = users[i].Public()
	}
	return users, nil
}

// UpdateUserStatus activates or deactivates an account. Admin only.
func (s *AuthService) UpdateUserStatus(ctx context.Context, session auth.Session, userID, status string) (models.User, error) {
	if !session.IsAdmin() {
		return models.User{}, fmt.Errorf("update user status: %w", ErrAccessDenied)
	}
	if status != models.StatusActive && status != models.StatusInactive {
		return models.User{}, fmt.Errorf("user status %q: %w", status, ErrInvalidStatus)
	}

	defer locks.lock(localstore.KeyUsers)()
	users, err := localstore.LoadList[models.User](ctx, s.store, localstore.KeyUsers)
	if err != nil {
		return models.User{}, err
	}
	for i := range users {
		if users[i].ID == userID {
			users[i].Status = status
			if err := localstore.SaveList(ctx, s.store, localstore.KeyUsers, users); err != nil {
				return models.User{}, err
			}
			return users[i].Public(), nil
		}
	}
	return models.User{}, fmt.Errorf("user %s: %w", userID, ErrNotFound)
}
