package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	"github.com/Tomlord1122/taskapi/internal/auth"
	"github.com/Tomlord1122/taskapi/internal/domain"
	"github.com/Tomlord1122/taskapi/internal/repository"
)

const (
	MinUsernameLength = 3
	MinPasswordLength = 6
)

// RegisterRequest is the body of POST /register.
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginRequest is the body of POST /login.
type LoginRequest = RegisterRequest

// UserResponse is the public view of a user. The password hash never leaves
// the service layer.
type UserResponse struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

// PasswordHasher is satisfied by *auth.PasswordHasher.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) bool
}

// UserService covers registration, credential checks and profile lookup.
type UserService interface {
	Register(ctx context.Context, req RegisterRequest) (*UserResponse, error)
	// Authenticate returns ErrUnauthorized for both an unknown username and a
	// wrong password.
	Authenticate(ctx context.Context, username, password string) (*UserResponse, error)
	GetByID(ctx context.Context, id uint) (*UserResponse, error)
}

type userService struct {
	repo   repository.UserRepository
	hasher PasswordHasher
	// dummyHash is compared against when the username is unknown so that
	// both failure paths pay for one bcrypt comparison.
	dummyHash string
}

func NewUserService(repo repository.UserRepository, hasher PasswordHasher) (UserService, error) {
	dummy, err := hasher.Hash("placeholder-password")
	if err != nil {
		return nil, fmt.Errorf("preparing dummy hash: %w", err)
	}
	return &userService{repo: repo, hasher: hasher, dummyHash: dummy}, nil
}

func (s *userService) Register(ctx context.Context, req RegisterRequest) (*UserResponse, error) {
	username := strings.TrimSpace(req.Username)
	if utf8.RuneCountInString(username) < MinUsernameLength {
		return nil, fmt.Errorf("%w: username must be at least %d characters", ErrValidation, MinUsernameLength)
	}
	if utf8.RuneCountInString(req.Password) < MinPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrValidation, MinPasswordLength)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return nil, fmt.Errorf("%w: password must be at most %d bytes", ErrValidation, auth.MaxPasswordBytes)
		}
		log.Printf("Error hashing password during registration: %v", err)
		return nil, errors.New("failed to register user")
	}

	user := &domain.User{Username: username, PasswordHash: hash}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("%w: username already exists", ErrConflict)
		}
		log.Printf("Error creating user in repository: %v", err)
		return nil, errors.New("failed to register user")
	}

	return toUserResponse(user), nil
}

func (s *userService) Authenticate(ctx context.Context, username, password string) (*UserResponse, error) {
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.hasher.Verify(password, s.dummyHash)
			return nil, ErrUnauthorized
		}
		log.Printf("Error looking up user for login: %v", err)
		return nil, errors.New("failed to authenticate")
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, ErrUnauthorized
	}
	return toUserResponse(user), nil
}

func (s *userService) GetByID(ctx context.Context, id uint) (*UserResponse, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: user %d", ErrNotFound, id)
		}
		log.Printf("Error fetching user %d: %v", id, err)
		return nil, errors.New("failed to retrieve user")
	}
	return toUserResponse(user), nil
}

func toUserResponse(u *domain.User) *UserResponse {
	return &UserResponse{ID: u.ID, Username: u.Username}
}
