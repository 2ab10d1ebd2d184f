package service

import (
	"context"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/nutriscan/nutriscan-go/internal/model"
)

// UserStore is the user persistence used by the services.
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	Update(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id int64) error
	EnsureExists(ctx context.Context, id int64, authHash string) error
}

// LogStore is the food log persistence used by the services.
type LogStore interface {
	Create(ctx context.Context, log *model.FoodLog) error
	GetByID(ctx context.Context, id int64) (*model.FoodLog, error)
	ListByUser(ctx context.Context, userID int64) ([]model.FoodLog, error)
	UpdateConfidence(ctx context.Context, id int64, confidence int) error
	DeleteWithIngredients(ctx context.Context, id int64) error
}

// IngredientStore is the ingredient persistence used by the services.
type IngredientStore interface {
	Create(ctx context.Context, ing *model.FoodIngredient) error
	ListByLogID(ctx context.Context, logID int64) ([]model.FoodIngredient, error)
	ListByLogIDs(ctx context.Context, logIDs []int64) (map[int64][]model.FoodIngredient, error)
}

var textPolicy = bluemonday.StrictPolicy()

// plainText strips markup from user or model supplied text.
func plainText(s string) string {
	return strings.TrimSpace(html.UnescapeString(textPolicy.Sanitize(s)))
}
