package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/nutriscan/nutriscan-go/internal/model"
	"github.com/shopspring/decimal"
)

type countingRecorder struct {
	ingredients int
	analyses    map[string]int
}

func (c *countingRecorder) RecordRequest(string, string, int, time.Duration) {}
func (c *countingRecorder) RecordAnalysis(outcome string) {
	if c.analyses == nil {
		c.analyses = map[string]int{}
	}
	c.analyses[outcome]++
}
func (c *countingRecorder) RecordIngredients(n int) { c.ingredients += n }

func int64Ptr(v int64) *int64 { return &v }
func intPtr(v int) *int { return &v }

func entry(name string, kcal int, weight string) model.IngredientEntry {
	return model.IngredientEntry{Ingredient: name, Kcal: kcal, Weight: decimal.RequireFromString(weight)}
}

func TestLogFoodIngredients(t *testing.T) {
	ings := newMemIngredients()
	rec := &countingRecorder{}
	tools := NewFoodTools(newMemLogs(ings), ings, rec, discardLogger)

	res := tools.LogFoodIngredients(context.Background(), int64Ptr(5), []model.IngredientEntry{
		entry("Lettuce", 10, "60"),
		entry("Tomato <script>", 5, "30.456"),
	})

	if res.Status != model.StatusSuccess || res.Count == nil || *res.Count != 2 || res.LogID != 5 {
		t.Fatalf("unexpected result %+v", res)
	}
	if ings.rows[1].Name != "Tomato" {
		t.Errorf("expected markup stripped, got %q", ings.rows[1].Name)
	}
	if ings.rows[1].Weight.String() != "30.46" {
		t.Errorf("expected weight rounded to 2 places, got %s", ings.rows[1].Weight)
	}
	if rec.ingredients != 2 {
		t.Errorf("expected 2 ingredients recorded, got %d", rec.ingredients)
	}
}

func TestLogFoodIngredients_Rejects(t *testing.T) {
	ings := newMemIngredients()
	tools := NewFoodTools(newMemLogs(ings), ings, nil, discardLogger)
	ctx := context.Background()

	tests := []struct {
		name    string
		tools   *FoodTools
		logID   *int64
		entries []model.IngredientEntry
		wantMsg string
	}{
		{"nil log id", tools, nil, []model.IngredientEntry{entry("a", 1, "1")}, "logId is required."},
		{"empty list", tools, int64Ptr(1), nil, "No ingredients provided."},
		{"other log", tools.For(3), int64Ptr(4), []model.IngredientEntry{entry("a", 1, "1")}, "logId must be 3."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := tt.tools.LogFoodIngredients(ctx, tt.logID, tt.entries)
			if res.Status != model.StatusFailed || res.Message != tt.wantMsg {
				t.Errorf("expected FAILED %q, got %+v", tt.wantMsg, res)
			}
		})
	}
	if len(ings.rows) != 0 {
		t.Errorf("expected nothing stored, got %d rows", len(ings.rows))
	}
}

func TestLogFoodIngredients_StoreError(t *testing.T) {
	ings := newMemIngredients()
	ings.failAfter = 1
	tools := NewFoodTools(newMemLogs(ings), ings, nil, discardLogger)

	res := tools.LogFoodIngredients(context.Background(), int64Ptr(8), []model.IngredientEntry{
		entry("a", 1, "1"), entry("b", 1, "1"),
	})
	if res.Status != model.StatusFailed || !strings.HasPrefix(res.Message, "Failed to log ingredients for logId 8.") {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestSetAnalysisConfidence(t *testing.T) {
	ings := newMemIngredients()
	logs := newMemLogs(ings)
	log := &model.FoodLog{UserID: 1}
	logs.Create(context.Background(), log)
	tools := NewFoodTools(logs, ings, nil, discardLogger)
	ctx := context.Background()

	res := tools.SetAnalysisConfidence(ctx, int64Ptr(log.ID), intPtr(85))
	if res.Status != model.StatusSuccess || res.Confidence == nil || *res.Confidence != 85 {
		t.Fatalf("unexpected result %+v", res)
	}
	if logs.byID[log.ID].Confidence != 85 {
		t.Errorf("expected stored confidence 85, got %d", logs.byID[log.ID].Confidence)
	}

	tests := []struct {
		name       string
		logID      *int64
		confidence *int
		wantMsg    string
	}{
		{"nil log id", nil, intPtr(5), "logId is required."},
		{"nil confidence", int64Ptr(log.ID), nil, "confidence is required."},
		{"too high", int64Ptr(log.ID), intPtr(101), "confidence must be between 0 and 100."},
		{"negative", int64Ptr(log.ID), intPtr(-1), "confidence must be between 0 and 100."},
		{"missing log", int64Ptr(99), intPtr(50), "FoodLog not found for id: 99"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := tools.SetAnalysisConfidence(ctx, tt.logID, tt.confidence)
			if res.Status != model.StatusFailed || res.Message != tt.wantMsg {
				t.Errorf("expected FAILED %q, got %+v", tt.wantMsg, res)
			}
		})
	}
}
