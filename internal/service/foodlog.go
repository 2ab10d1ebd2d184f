package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/nutriscan/nutriscan-go/internal/model"
	"github.com/nutriscan/nutriscan-go/internal/repository"
)

var ErrLogNotFound = repository.ErrLogNotFound

// LogService reads and deletes food logs.
type LogService struct {
	logs        LogStore
	ingredients IngredientStore
	users       UserStore
	logger      *slog.Logger
}

// NewLogService creates a new LogService.
func NewLogService(logs LogStore, ingredients IngredientStore, users UserStore, logger *slog.Logger) *LogService {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogService{logs: logs, ingredients: ingredients, users: users, logger: logger}
}

// Get returns a log with its owner and ingredients.
func (s *LogService) Get(ctx context.Context, id int64) (model.FoodLogResponse, error) {
	log, err := s.logs.GetByID(ctx, id)
	if err != nil {
		return model.FoodLogResponse{}, err
	}

	ingredients, err := s.ingredients.ListByLogID(ctx, id)
	if err != nil {
		return model.FoodLogResponse{}, err
	}

	var owner *model.UserResponse
	user, err := s.users.GetByID(ctx, log.UserID)
	switch {
	case err == nil:
		r := user.Response()
		owner = &r
	case !errors.Is(err, repository.ErrUserNotFound):
		return model.FoodLogResponse{}, err
	}

	return model.NewFoodLogResponse(*log, owner, ingredients), nil
}

// ListByUser returns a user's logs, newest first, each with its ingredients.
func (s *LogService) ListByUser(ctx context.Context, userID int64) ([]model.FoodLogResponse, error) {
	logs, err := s.logs.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, len(logs))
	for i, l := range logs {
		ids[i] = l.ID
	}
	grouped, err := s.ingredients.ListByLogIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	resp := make([]model.FoodLogResponse, len(logs))
	for i, l := range logs {
		resp[i] = model.NewFoodLogResponse(l, nil, grouped[l.ID])
	}
	return resp, nil
}

// Delete removes a log and its ingredients.
func (s *LogService) Delete(ctx context.Context, id int64) error {
	if err := s.logs.DeleteWithIngredients(ctx, id); err != nil {
		return err
	}
	s.logger.Info("food log deleted", "log_id", id)
	return nil
}
