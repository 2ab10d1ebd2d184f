package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nutriscan/nutriscan-go/internal/metrics"
	"github.com/nutriscan/nutriscan-go/internal/model"
	"github.com/nutriscan/nutriscan-go/internal/repository"
)

// FoodTools executes the analysis tool calls against the stores. A
// FoodTools bound to a log rejects calls for any other log.
type FoodTools struct {
	logs        LogStore
	ingredients IngredientStore
	metrics     metrics.Recorder
	logger      *slog.Logger
	logID       int64
}

// NewFoodTools creates an unbound FoodTools.
func NewFoodTools(logs LogStore, ingredients IngredientStore, rec metrics.Recorder, logger *slog.Logger) *FoodTools {
	if rec == nil {
		rec = metrics.Nop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FoodTools{logs: logs, ingredients: ingredients, metrics: rec, logger: logger}
}

// For returns a copy bound to logID.
func (t *FoodTools) For(logID int64) *FoodTools {
	bound := *t
	bound.logID = logID
	return &bound
}

func (t *FoodTools) checkLog(logID *int64) (model.ToolResult, bool) {
	if logID == nil {
		return model.FailedTool("logId is required."), false
	}
	if t.logID != 0 && *logID != t.logID {
		return model.FailedTool(fmt.Sprintf("logId must be %d.", t.logID)), false
	}
	return model.ToolResult{}, true
}

// LogFoodIngredients stores the detected ingredients of a log.
func (t *FoodTools) LogFoodIngredients(ctx context.Context, logID *int64, entries []model.IngredientEntry) model.ToolResult {
	if res, ok := t.checkLog(logID); !ok {
		t.logger.Warn("logFoodIngredients rejected", "message", res.Message)
		return res
	}
	id := *logID

	if len(entries) == 0 {
		t.logger.Warn("logFoodIngredients called with no ingredients", "log_id", id)
		return model.FailedTool("No ingredients provided.")
	}

	count := 0
	for _, e := range entries {
		ing := &model.FoodIngredient{
			LogID:  id,
			Name:   plainText(e.Ingredient),
			Kcal:   e.Kcal,
			Weight: e.Weight.Round(2),
		}
		if err := t.ingredients.Create(ctx, ing); err != nil {
			msg := fmt.Sprintf("Failed to log ingredients for logId %d. Error: %v", id, err)
			t.logger.Error("logFoodIngredients failed", "log_id", id, "stored", count, "error", err)
			t.metrics.RecordIngredients(count)
			return model.FailedTool(msg)
		}
		count++
	}

	t.metrics.RecordIngredients(count)
	t.logger.Info("ingredients logged", "log_id", id, "count", count)
	return model.ToolResult{Status: model.StatusSuccess, LogID: id, Count: &count}
}

// SetAnalysisConfidence records the model's confidence in its analysis.
func (t *FoodTools) SetAnalysisConfidence(ctx context.Context, logID *int64, confidence *int) model.ToolResult {
	if res, ok := t.checkLog(logID); !ok {
		return res
	}
	id := *logID

	if confidence == nil {
		return model.FailedTool("confidence is required.")
	}
	c := *confidence
	if c < model.MinConfidence || c > model.MaxConfidence {
		return model.FailedTool("confidence must be between 0 and 100.")
	}

	if err := t.logs.UpdateConfidence(ctx, id, c); err != nil {
		if errors.Is(err, repository.ErrLogNotFound) {
			return model.FailedTool(fmt.Sprintf("FoodLog not found for id: %d", id))
		}
		t.logger.Error("setAnalysisConfidence failed", "log_id", id, "error", err)
		return model.FailedTool(fmt.Sprintf("Failed to set confidence for logId %d: %v", id, err))
	}

	return model.ToolResult{Status: model.StatusSuccess, LogID: id, Confidence: &c}
}
