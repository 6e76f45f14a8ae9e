package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"postboard/internal/models"
	"postboard/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

// AuthService handles registration, login and session token parsing.
type AuthService struct {
	users    repository.UserRepo
	tokens   *TokenService
	activity activityRecorder
}

func NewAuthService(users repository.UserRepo, tokens *TokenService, activity activityRecorder) *AuthService {
	return &AuthService{users: users, tokens: tokens, activity: activity}
}

// SignUp validates the form, stores the user and returns a session token for it.
func (s *AuthService) SignUp(ctx context.Context, in RegisterInput) (string, error) {
	reg, err := ValidateRegistration(in)
	if err != nil {
		return "", err
	}

	hash, err := hashPassword(reg.Password)
	if err != nil {
		return "", validationErr("%v", err)
	}

	u := &models.User{
		Username:     reg.Username,
		Email:        reg.Email,
		PasswordHash: hash,
		FullName:     reg.FullName,
		Age:          reg.Age,
		Image:        models.DefaultImage,
	}
	// No pre-check: the unique indexes decide concurrent sign-ups.
	if _, err := s.users.Create(ctx, u); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateEmail):
			return "", ErrDuplicateEmail
		case errors.Is(err, repository.ErrDuplicateUsername):
			return "", ErrDuplicateUsername
		default:
			return "", storeErr("create user", err)
		}
	}

	token, err := s.tokens.Issue(u.Email)
	if err != nil {
		return "", err
	}
	s.record(ctx, u.ID, ActivityRegister, "account created", map[string]any{"username": u.Username})
	return token, nil
}

// GenerateToken checks credentials and returns a session token.
// An unknown email and a wrong password both yield ErrInvalidCredentials.
func (s *AuthService) GenerateToken(ctx context.Context, email, password string) (string, error) {
	email = normalizeIdentity(email)
	if email == "" || password == "" {
		return "", ErrInvalidCredentials
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return "", storeErr("load user", err)
	}
	if u == nil {
		// burn the same bcrypt work as a real mismatch
		_ = verifyPassword(dummyHash(), password)
		return "", ErrInvalidCredentials
	}
	if err := verifyPassword(u.PasswordHash, password); err != nil {
		return "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(u.Email)
	if err != nil {
		return "", err
	}
	s.record(ctx, u.ID, ActivityLogin, "logged in", nil)
	return token, nil
}

// ParseToken verifies a session token and returns the identity it carries.
func (s *AuthService) ParseToken(accessToken string) (Identity, error) {
	return s.tokens.Verify(accessToken)
}

func (s *AuthService) record(ctx context.Context, userID int64, typ, desc string, meta any) {
	if s.activity != nil {
		s.activity.Record(ctx, userID, typ, desc, meta)
	}
}

// helper: hash password safely
func hashPassword(password string) (string, error) {
	if strings.TrimSpace(password) == "" {
		return "", errors.New("password is empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// helper: verify password against hash
func verifyPassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

var (
	dummyOnce sync.Once
	dummy     string
)

func dummyHash() string {
	dummyOnce.Do(func() {
		h, _ := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.DefaultCost)
		dummy = string(h)
	})
	return dummy
}
