package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/nutriscan/nutriscan-go/internal/model"
)

var ErrLogNotFound = errors.New("food log not found")

const logColumns = `id, user_id, image_path, confidence, created_at, updated_at`

// FoodLogRepository handles food log persistence operations.
type FoodLogRepository struct {
	db *sql.DB
}

// NewFoodLogRepository creates a new FoodLogRepository.
func NewFoodLogRepository(db *sql.DB) *FoodLogRepository {
	return &FoodLogRepository{db: db}
}

// Create inserts a log and sets the generated ID on it.
func (r *FoodLogRepository) Create(ctx context.Context, log *model.FoodLog) error {
	query := `INSERT INTO food_logs (user_id, image_path, confidence) VALUES (?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query, log.UserID, log.ImagePath, log.Confidence)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}

	log.ID = id
	return nil
}

// GetByID retrieves a single log.
func (r *FoodLogRepository) GetByID(ctx context.Context, id int64) (*model.FoodLog, error) {
	query := `SELECT ` + logColumns + ` FROM food_logs WHERE id = ?`

	log := &model.FoodLog{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&log.ID, &log.UserID, &log.ImagePath, &log.Confidence, &log.CreatedAt, &log.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLogNotFound
		}
		return nil, err
	}

	return log, nil
}

// ListByUser retrieves a user's logs, newest first.
func (r *FoodLogRepository) ListByUser(ctx context.Context, userID int64) ([]model.FoodLog, error) {
	query := `SELECT ` + logColumns + ` FROM food_logs WHERE user_id = ? ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := []model.FoodLog{}
	for rows.Next() {
		var l model.FoodLog
		if err := rows.Scan(&l.ID, &l.UserID, &l.ImagePath, &l.Confidence, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}

	return logs, rows.Err()
}

// UpdateConfidence sets the analysis confidence score of a log.
func (r *FoodLogRepository) UpdateConfidence(ctx context.Context, id int64, confidence int) error {
	result, err := r.db.ExecContext(ctx, `UPDATE food_logs SET confidence = ? WHERE id = ?`, confidence, id)
	if err != nil {
		return err
	}

	// Zero rows either means no such log or an unchanged value.
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}

	return nil
}

// DeleteWithIngredients removes a log and its ingredients in one transaction.
func (r *FoodLogRepository) DeleteWithIngredients(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM food_ingredients WHERE log_id = ?`, id); err != nil {
		return err
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM food_logs WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrLogNotFound
	}

	return tx.Commit()
}
