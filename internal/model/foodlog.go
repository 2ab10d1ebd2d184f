package model

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// FoodLog is one recorded meal analysis.
type FoodLog struct {
	ID         int64
	UserID     int64
	ImagePath  string
	Confidence int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// FoodIngredient is one AI-identified component of a FoodLog.
type FoodIngredient struct {
	ID     int64
	LogID  int64
	Name   string
	Kcal   int
	Weight decimal.Decimal
}

// FoodLogResponse is a log with its owner and nested ingredients.
type FoodLogResponse struct {
	ID          int64                `json:"id"`
	UserID      int64                `json:"userId"`
	ImagePath   string               `json:"imagePath"`
	Confidence  int                  `json:"confidence"`
	User        *UserResponse        `json:"user,omitempty"`
	Ingredients []IngredientResponse `json:"ingredients"`
	CreatedAt   time.Time            `json:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt"`
}

// IngredientResponse is the wire form of a FoodIngredient.
type IngredientResponse struct {
	ID             int64           `json:"id"`
	LogID          int64           `json:"logId"`
	IngredientName string          `json:"ingredientName"`
	Kcal           int             `json:"kcal"`
	Weight         decimal.Decimal `json:"weight"`
}

// MarshalJSON writes Weight as a JSON number rather than a quoted string.
func (r IngredientResponse) MarshalJSON() ([]byte, error) {
	type plain IngredientResponse
	return json.Marshal(struct {
		plain
		Weight json.Number `json:"weight"`
	}{plain(r), json.Number(r.Weight.String())})
}

// NewFoodLogResponse assembles the response for a log. A nil ingredient
// slice is rendered as an empty list.
func NewFoodLogResponse(log FoodLog, owner *UserResponse, ingredients []FoodIngredient) FoodLogResponse {
	resp := FoodLogResponse{
		ID:          log.ID,
		UserID:      log.UserID,
		ImagePath:   log.ImagePath,
		Confidence:  log.Confidence,
		User:        owner,
		Ingredients: make([]IngredientResponse, len(ingredients)),
		CreatedAt:   log.CreatedAt,
		UpdatedAt:   log.UpdatedAt,
	}
	for i, ing := range ingredients {
		resp.Ingredients[i] = IngredientResponse{
			ID:             ing.ID,
			LogID:          ing.LogID,
			IngredientName: ing.Name,
			Kcal:           ing.Kcal,
			Weight:         ing.Weight,
		}
	}
	return resp
}

// Totals are the sums over a log's ingredients. They are always derived,
// never stored.
type Totals struct {
	Kcal   int
	Weight decimal.Decimal
	Items  int
}

// TotalsOf sums ingredients.
func TotalsOf(ingredients []IngredientResponse) Totals {
	t := Totals{Weight: decimal.Zero, Items: len(ingredients)}
	for _, ing := range ingredients {
		t.Kcal += ing.Kcal
		t.Weight = t.Weight.Add(ing.Weight)
	}
	return t
}

// Totals recomputes the log's totals from its ingredients.
func (l FoodLogResponse) Totals() Totals {
	return TotalsOf(l.Ingredients)
}
