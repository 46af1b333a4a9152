// Package users handles account registration and login.
package users

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dbpulse/dbpulse/internal/auth"
	"github.com/dbpulse/dbpulse/internal/models"
)

var (
	// ErrValidation - required registration fields missing
	ErrValidation = errors.New("users: name, age, email and password are required")

	// ErrAlreadyExists - email already registered
	ErrAlreadyExists = errors.New("users: user already exists")
)

// Store persists user accounts.
type Store interface {
	Insert(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindAll(ctx context.Context) ([]models.User, error)
}

// Service wires account operations to the store and token manager.
type Service struct {
	store  Store
	tokens *auth.Manager
}

// NewService creates a user service.
func NewService(store Store, tokens *auth.Manager) *Service {
	return &Service{store: store, tokens: tokens}
}

// RegisterInput is the caller-provided registration payload.
type RegisterInput struct {
	Name     string `json:"name"`
	Age      int    `json:"age"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates a new account with a hashed password.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	if input.Name == "" || input.Age == 0 || input.Email == "" || input.Password == "" {
		return nil, ErrValidation
	}

	existing, err := s.store.FindByEmail(ctx, input.Email)
	if err != nil {
		return nil, fmt.Errorf("users: looking up email: %w", err)
	}
	if existing != nil {
		return nil, ErrAlreadyExists
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("users: hashing password: %w", err)
	}

	user := &models.User{
		ID:           primitive.NewObjectID().Hex(),
		Name:         input.Name,
		Age:          input.Age,
		Email:        input.Email,
		PasswordHash: hash,
	}
	if err := s.store.Insert(ctx, user); err != nil {
		return nil, fmt.Errorf("users: inserting user: %w", err)
	}
	return user, nil
}

// Login verifies credentials and issues a bearer token.
func (s *Service) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	if email == "" || password == "" {
		return nil, "", auth.ErrBadCredentials
	}

	user, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", fmt.Errorf("users: looking up email: %w", err)
	}
	if user == nil {
		return nil, "", auth.ErrBadCredentials
	}
	if err := auth.CheckPassword(user.PasswordHash, password); err != nil {
		return nil, "", err
	}

	token, err := s.tokens.CreateToken(user)
	if err != nil {
		return nil, "", fmt.Errorf("users: issuing token: %w", err)
	}
	return user, token, nil
}

// List returns every registered user.
func (s *Service) List(ctx context.Context) ([]models.User, error) {
	return s.store.FindAll(ctx)
}
