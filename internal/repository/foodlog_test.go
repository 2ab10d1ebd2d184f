package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nutriscan/nutriscan-go/internal/model"
)

var logRowColumns = []string{"id", "user_id", "image_path", "confidence", "created_at", "updated_at"}

func TestFoodLogRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFoodLogRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO food_logs (user_id, image_path, confidence) VALUES (?, ?, ?)`)).
		WithArgs(int64(7), "/images/a.jpg", 0).
		WillReturnResult(sqlmock.NewResult(42, 1))

	log := &model.FoodLog{UserID: 7, ImagePath: "/images/a.jpg"}
	require.NoError(t, repo.Create(context.Background(), log))
	assert.Equal(t, int64(42), log.ID)
}

func TestFoodLogRepository_GetByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFoodLogRepository(db)
	now := time.Now()

	mock.ExpectQuery(`FROM food_logs WHERE id = \?`).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows(logRowColumns).AddRow(42, 7, "/images/a.jpg", 88, now, now))

	log, err := repo.GetByID(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, 88, log.Confidence)
	assert.Equal(t, int64(7), log.UserID)
}

func TestFoodLogRepository_ListByUser(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFoodLogRepository(db)
	now := time.Now()

	mock.ExpectQuery(`FROM food_logs WHERE user_id = \? ORDER BY created_at DESC, id DESC`).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(logRowColumns).
			AddRow(43, 7, "/b.jpg", 70, now, now).
			AddRow(42, 7, "/a.jpg", 88, now, now))

	logs, err := repo.ListByUser(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, int64(43), logs[0].ID)
}

func TestFoodLogRepository_ListByUser_Empty(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`FROM food_logs WHERE user_id`).
		WillReturnRows(sqlmock.NewRows(logRowColumns))

	logs, err := NewFoodLogRepository(db).ListByUser(context.Background(), 7)
	require.NoError(t, err)
	assert.NotNil(t, logs)
	assert.Empty(t, logs)
}

func TestFoodLogRepository_UpdateConfidence_Missing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFoodLogRepository(db)

	mock.ExpectExec(`UPDATE food_logs SET confidence = \? WHERE id = \?`).
		WithArgs(90, int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`FROM food_logs WHERE id = \?`).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows(logRowColumns))

	err := repo.UpdateConfidence(context.Background(), 5, 90)
	assert.ErrorIs(t, err, ErrLogNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFoodLogRepository_DeleteWithIngredients(t *testing.T) {
	t.Run("commits both deletes", func(t *testing.T) {
		db, mock := newMockDB(t)

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM food_ingredients WHERE log_id = \?`).WithArgs(int64(42)).
			WillReturnResult(sqlmock.NewResult(0, 3))
		mock.ExpectExec(`DELETE FROM food_logs WHERE id = \?`).WithArgs(int64(42)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, NewFoodLogRepository(db).DeleteWithIngredients(context.Background(), 42))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back when log is missing", func(t *testing.T) {
		db, mock := newMockDB(t)

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM food_ingredients`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`DELETE FROM food_logs`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := NewFoodLogRepository(db).DeleteWithIngredients(context.Background(), 42)
		assert.ErrorIs(t, err, ErrLogNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back on ingredient failure", func(t *testing.T) {
		db, mock := newMockDB(t)

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM food_ingredients`).WillReturnError(errors.New("lock wait timeout"))
		mock.ExpectRollback()

		err := NewFoodLogRepository(db).DeleteWithIngredients(context.Background(), 42)
		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestIngredientRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec(`INSERT INTO food_ingredients`).
		WithArgs(int64(42), "Tomato", 5, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(100, 1))

	ing := &model.FoodIngredient{LogID: 42, Name: "Tomato", Kcal: 5, Weight: decimal.RequireFromString("30.00")}
	require.NoError(t, NewIngredientRepository(db).Create(context.Background(), ing))
	assert.Equal(t, int64(100), ing.ID)
}

func TestIngredientRepository_ListByLogID(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`FROM food_ingredients WHERE log_id = \? ORDER BY id`).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "log_id", "ingredient_name", "kcal", "weight"}).
			AddRow(1, 42, "Lettuce", 10, "60.00").
			AddRow(2, 42, "Tomato", 5, "30.50"))

	ings, err := NewIngredientRepository(db).ListByLogID(context.Background(), 42)
	require.NoError(t, err)
	require.Len(t, ings, 2)
	assert.Equal(t, "Tomato", ings[1].Name)
	assert.True(t, decimal.RequireFromString("30.5").Equal(ings[1].Weight))
}

func TestIngredientRepository_ListByLogIDs(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE log_id IN (?,?) ORDER BY id`)).
		WithArgs(int64(42), int64(43)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "log_id", "ingredient_name", "kcal", "weight"}).
			AddRow(1, 42, "Rice", 200, "150.00").
			AddRow(2, 43, "Egg", 70, "50.00").
			AddRow(3, 42, "Chicken", 165, "100.00"))

	grouped, err := NewIngredientRepository(db).ListByLogIDs(context.Background(), []int64{42, 43})
	require.NoError(t, err)
	assert.Len(t, grouped[42], 2)
	assert.Len(t, grouped[43], 1)
}

func TestIngredientRepository_ListByLogIDs_NoIDs(t *testing.T) {
	db, mock := newMockDB(t)

	grouped, err := NewIngredientRepository(db).ListByLogIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, grouped)
	assert.NoError(t, mock.ExpectationsWereMet())
}
