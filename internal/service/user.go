package service

import (
	"context"
	"errors"
	"strings"

	"github.com/nutriscan/nutriscan-go/internal/crypto"
	"github.com/nutriscan/nutriscan-go/internal/model"
	"github.com/nutriscan/nutriscan-go/internal/repository"
)

// Create adds a user without issuing a token.
func (s *UserService) Create(ctx context.Context, req model.CreateUserRequest) (model.UserResponse, error) {
	user, err := s.create(ctx, req)
	if err != nil {
		return model.UserResponse{}, err
	}
	return user.Response(), nil
}

// GetByID returns a single user.
func (s *UserService) GetByID(ctx context.Context, id int64) (model.UserResponse, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return model.UserResponse{}, err
	}
	return user.Response(), nil
}

// GetByEmail returns the user with the given email.
func (s *UserService) GetByEmail(ctx context.Context, email string) (model.UserResponse, error) {
	user, err := s.repo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return model.UserResponse{}, err
	}
	return user.Response(), nil
}

// List returns all users.
func (s *UserService) List(ctx context.Context) ([]model.UserResponse, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	resp := make([]model.UserResponse, len(users))
	for i := range users {
		resp[i] = users[i].Response()
	}
	return resp, nil
}

// Update applies a partial update and returns the stored result.
func (s *UserService) Update(ctx context.Context, id int64, req model.UpdateUserRequest) (model.UserResponse, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return model.UserResponse{}, err
	}

	if req.Name != nil {
		user.Name = plainText(*req.Name)
	}
	if req.Email != nil {
		email := strings.TrimSpace(*req.Email)
		if email == "" {
			return model.UserResponse{}, ErrEmailRequired
		}
		user.Email = email
	}
	if req.Password != nil && *req.Password != "" {
		hash, err := crypto.HashPassword(*req.Password)
		if err != nil {
			return model.UserResponse{}, err
		}
		user.AuthHash = hash
	}

	if err := s.repo.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return model.UserResponse{}, ErrEmailTaken
		}
		return model.UserResponse{}, err
	}

	return s.GetByID(ctx, id)
}

// Delete removes a user and, through the schema, their logs.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("user deleted", "user_id", id)
	return nil
}
