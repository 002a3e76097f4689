package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/faccoco/web-todo/internal/auth"
	"github.com/faccoco/web-todo/internal/domain"
	"github.com/faccoco/web-todo/internal/repository"
)

var (
	// ErrInvalidCredentials indicates that provided login credentials are incorrect.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserAlreadyExists is returned when registering a username or email that is taken.
	ErrUserAlreadyExists = errors.New("user already exists")
	// ErrInvalidToken indicates a bearer token that failed validation for any reason.
	ErrInvalidToken = errors.New("invalid token")
)

// ValidationError rejects malformed or missing input fields. The HTTP
// layer maps it to a 400 response carrying the message.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

func validationError(msg string) error {
	return &ValidationError{msg: msg}
}

// UserService describes account lifecycle and token operations.
type UserService interface {
	Register(ctx context.Context, username, email, password string) (*domain.User, error)
	Authenticate(ctx context.Context, username, password string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	IssueToken(user *domain.User) string
	ValidateToken(ctx context.Context, token string) (*domain.User, error)
}

type userService struct {
	users repository.UserRepository
	codec *auth.TokenCodec
}

func NewUserService(users repository.UserRepository, codec *auth.TokenCodec) UserService {
	return &userService{
		users: users,
		codec: codec,
	}
}

func (s *userService) Register(ctx context.Context, username, email, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	if username == "" {
		return nil, validationError("username is required")
	}
	if email == "" {
		return nil, validationError("email is required")
	}
	if password == "" {
		return nil, validationError("password is required")
	}
	if strings.Contains(username, ":") {
		return nil, validationError("username must not contain ':'")
	}

	// Friendly pre-check only; the UNIQUE constraint on insert is the
	// authoritative duplicate signal, so a concurrent registration
	// between these two calls still fails cleanly.
	exists, err := s.users.Exists(ctx, username, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUserAlreadyExists
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}
	if _, err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserAlreadyExists
		}
		return nil, err
	}

	return user, nil
}

func (s *userService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !auth.VerifyPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

func (s *userService) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *userService) IssueToken(user *domain.User) string {
	return s.codec.Issue(user.ID, user.Username, time.Now().UTC())
}

// ValidateToken checks the token's shape, age, and signature, then
// re-fetches the user to confirm the account still exists. Every failure
// collapses to ErrInvalidToken.
func (s *userService) ValidateToken(ctx context.Context, token string) (*domain.User, error) {
	identity, err := s.codec.Validate(token, time.Now().UTC())
	if err != nil {
		return nil, ErrInvalidToken
	}

	user, err := s.users.GetByID(ctx, identity.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return user, nil
}
