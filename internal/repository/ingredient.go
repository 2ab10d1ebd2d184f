package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/nutriscan/nutriscan-go/internal/model"
)

const ingredientColumns = `id, log_id, ingredient_name, kcal, weight`

// IngredientRepository handles food ingredient persistence operations.
type IngredientRepository struct {
	db *sql.DB
}

// NewIngredientRepository creates a new IngredientRepository.
func NewIngredientRepository(db *sql.DB) *IngredientRepository {
	return &IngredientRepository{db: db}
}

// Create inserts an ingredient and sets the generated ID on it.
func (r *IngredientRepository) Create(ctx context.Context, ing *model.FoodIngredient) error {
	query := `INSERT INTO food_ingredients (log_id, ingredient_name, kcal, weight) VALUES (?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query, ing.LogID, ing.Name, ing.Kcal, ing.Weight)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}

	ing.ID = id
	return nil
}

// ListByLogID returns the ingredients of one log in insertion order.
func (r *IngredientRepository) ListByLogID(ctx context.Context, logID int64) ([]model.FoodIngredient, error) {
	query := `SELECT ` + ingredientColumns + ` FROM food_ingredients WHERE log_id = ? ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, logID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanIngredients(rows)
}

// ListByLogIDs returns the ingredients of several logs grouped by log ID.
func (r *IngredientRepository) ListByLogIDs(ctx context.Context, logIDs []int64) (map[int64][]model.FoodIngredient, error) {
	grouped := make(map[int64][]model.FoodIngredient, len(logIDs))
	if len(logIDs) == 0 {
		return grouped, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(logIDs)), ",")
	query := `SELECT ` + ingredientColumns + ` FROM food_ingredients WHERE log_id IN (` + placeholders + `) ORDER BY id`

	args := make([]any, len(logIDs))
	for i, id := range logIDs {
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ingredients, err := scanIngredients(rows)
	if err != nil {
		return nil, err
	}
	for _, ing := range ingredients {
		grouped[ing.LogID] = append(grouped[ing.LogID], ing)
	}

	return grouped, nil
}

func scanIngredients(rows *sql.Rows) ([]model.FoodIngredient, error) {
	ingredients := []model.FoodIngredient{}
	for rows.Next() {
		var ing model.FoodIngredient
		if err := rows.Scan(&ing.ID, &ing.LogID, &ing.Name, &ing.Kcal, &ing.Weight); err != nil {
			return nil, err
		}
		ingredients = append(ingredients, ing)
	}
	return ingredients, rows.Err()
}
