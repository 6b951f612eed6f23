package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sheikh-riyadh/due-sample-server/internal/auth"
	"github.com/sheikh-riyadh/due-sample-server/internal/model"
	"github.com/sheikh-riyadh/due-sample-server/internal/store"
)

// MinPasswordLength is the shortest password CreateUser accepts.
const MinPasswordLength = 8

// AuthService checks credentials and manages credential records.
type AuthService struct {
	store  store.Store
	tokens *auth.TokenManager
	now    func() time.Time
}

func NewAuthService(s store.Store, tokens *auth.TokenManager) *AuthService {
	return &AuthService{store: s, tokens: tokens, now: time.Now}
}

// Login verifies the credential pair and issues a session token. Every
// mismatch returns ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, time.Time, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return "", time.Time{}, ErrInvalidCredentials
	}
	u, err := s.store.Users().GetByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return "", time.Time{}, ErrInvalidCredentials
	}
	if err != nil {
		return "", time.Time{}, err
	}
	ok, err := auth.VerifyPassword(u.PasswordHash, password)
	if err != nil || !ok {
		return "", time.Time{}, ErrInvalidCredentials
	}
	return s.tokens.Issue(u.Email, u.Role)
}

// CreateUser stores a credential record with a bcrypt hash of password.
func (s *AuthService) CreateUser(ctx context.Context, email, password, role string) (*model.User, error) {
	email = normalizeEmail(email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, NewValidationError("email", "must be an email address")
	}
	if len(password) < MinPasswordLength {
		return nil, NewValidationError("password", "must be at least 8 characters")
	}
	if !auth.ValidRole(role) {
		return nil, NewValidationError("role", "must be admin or staff")
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	u := &model.User{Email: email, PasswordHash: hash, Role: role, CreatedAt: s.now().UTC()}
	if err := s.store.Users().Create(ctx, u); err != nil {
		if store.IsDuplicateKey(err, store.KeyEmail) {
			return nil, NewDuplicateKeyError("email", MsgDuplicateEmail)
		}
		return nil, err
	}
	return u, nil
}

func normalizeEmail(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}
