package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/nutriscan/nutriscan-go/internal/crypto"
	"github.com/nutriscan/nutriscan-go/internal/model"
	"github.com/nutriscan/nutriscan-go/internal/repository"
)

var (
	ErrCredentialsRequired = errors.New("email and password are required")
	ErrEmailRequired       = errors.New("email is required")
	ErrEmailTaken          = errors.New("email already exists")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrUserNotFound        = repository.ErrUserNotFound
)

// UserService handles account and authentication business logic.
type UserService struct {
	repo      UserStore
	jwtSecret string
	jwtExpiry time.Duration
	logger    *slog.Logger
}

// NewUserService creates a new UserService.
func NewUserService(repo UserStore, secret string, expiry time.Duration, logger *slog.Logger) *UserService {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserService{
		repo:      repo,
		jwtSecret: secret,
		jwtExpiry: expiry,
		logger:    logger,
	}
}

// Register creates an account and returns it with a session token.
func (s *UserService) Register(ctx context.Context, req model.CreateUserRequest) (model.AuthResult, error) {
	user, err := s.create(ctx, req)
	if err != nil {
		return model.AuthResult{}, err
	}
	return s.authResult(user)
}

// Login checks the credentials and returns the user with a session token.
func (s *UserService) Login(ctx context.Context, req model.LoginRequest) (model.AuthResult, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		return model.AuthResult{}, ErrCredentialsRequired
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return model.AuthResult{}, err
	}

	match, err := crypto.VerifyPassword(req.Password, user.AuthHash)
	if err != nil {
		// Placeholder accounts carry hashes in an unknown format.
		s.logger.Warn("unverifiable password hash", "user_id", user.ID, "error", err)
		return model.AuthResult{}, ErrInvalidCredentials
	}
	if !match {
		return model.AuthResult{}, ErrInvalidCredentials
	}

	if crypto.NeedsRehash(user.AuthHash) {
		s.rehash(ctx, user, req.Password)
	}

	return s.authResult(user)
}

// rehash upgrades a stored hash to the current parameters. Failure is not
// fatal to the login.
func (s *UserService) rehash(ctx context.Context, user *model.User, password string) {
	hash, err := crypto.HashPassword(password)
	if err != nil {
		s.logger.Warn("rehash failed", "user_id", user.ID, "error", err)
		return
	}
	user.AuthHash = hash
	if err := s.repo.Update(ctx, user); err != nil {
		s.logger.Warn("storing rehashed password failed", "user_id", user.ID, "error", err)
	}
}

func (s *UserService) create(ctx context.Context, req model.CreateUserRequest) (*model.User, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" || strings.TrimSpace(req.Password) == "" {
		return nil, ErrCredentialsRequired
	}

	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, err
	}

	hash, err := crypto.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Name:      plainText(req.Name),
		Email:     email,
		AuthHash:  hash,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	user.UpdatedAt = user.CreatedAt

	s.logger.Info("user created", "user_id", user.ID)
	return user, nil
}

func (s *UserService) authResult(user *model.User) (model.AuthResult, error) {
	token, err := crypto.GenerateToken(user.ID, user.Email, s.jwtSecret, s.jwtExpiry)
	if err != nil {
		return model.AuthResult{}, err
	}
	return model.AuthResult{User: user.Response(), Token: token}, nil
}
