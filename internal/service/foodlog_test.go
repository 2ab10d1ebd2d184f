package service

import (
	"context"
	"errors"
	"testing"

	"github.com/nutriscan/nutriscan-go/internal/model"
	"github.com/shopspring/decimal"
)

type logFixture struct {
	svc   *LogService
	users *memUsers
	logs  *memLogs
	ings  *memIngredients
}

func newLogFixture() logFixture {
	users := newMemUsers()
	ings := newMemIngredients()
	logs := newMemLogs(ings)
	return logFixture{
		svc:   NewLogService(logs, ings, users, discardLogger),
		users: users,
		logs:  logs,
		ings:  ings,
	}
}

func (f logFixture) addLog(t *testing.T, userID int64, ingredients ...string) int64 {
	t.Helper()
	l := &model.FoodLog{UserID: userID, ImagePath: "/img.jpg", Confidence: 80}
	if err := f.logs.Create(context.Background(), l); err != nil {
		t.Fatal(err)
	}
	for i, name := range ingredients {
		f.ings.Create(context.Background(), &model.FoodIngredient{
			LogID: l.ID, Name: name, Kcal: 100 * (i + 1), Weight: decimal.NewFromFloat(50.5),
		})
	}
	return l.ID
}

func TestLogService_Get(t *testing.T) {
	f := newLogFixture()
	f.users.Create(context.Background(), &model.User{Email: "u@x.io"})
	id := f.addLog(t, 1, "Rice", "Egg")

	got, err := f.svc.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("Get() unexpected error: %v", err)
	}
	if len(got.Ingredients) != 2 || got.Ingredients[1].IngredientName != "Egg" {
		t.Errorf("unexpected ingredients %+v", got.Ingredients)
	}
	if got.User == nil || got.User.Email != "u@x.io" {
		t.Errorf("expected owner attached, got %+v", got.User)
	}

	// Reading twice yields the same document.
	again, _ := f.svc.Get(context.Background(), id)
	if again.ID != got.ID || len(again.Ingredients) != len(got.Ingredients) || again.Confidence != got.Confidence {
		t.Error("expected repeated Get to be stable")
	}
}

func TestLogService_GetMissingOwner(t *testing.T) {
	f := newLogFixture()
	id := f.addLog(t, 42)

	got, err := f.svc.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("Get() unexpected error: %v", err)
	}
	if got.User != nil {
		t.Errorf("expected no owner, got %+v", got.User)
	}
	if got.Ingredients == nil {
		t.Error("expected empty ingredient list, got nil")
	}
}

func TestLogService_GetNotFound(t *testing.T) {
	f := newLogFixture()
	if _, err := f.svc.Get(context.Background(), 9); !errors.Is(err, ErrLogNotFound) {
		t.Errorf("expected ErrLogNotFound, got %v", err)
	}
}

func TestLogService_ListByUser(t *testing.T) {
	f := newLogFixture()
	first := f.addLog(t, 1, "Rice")
	second := f.addLog(t, 1, "Egg", "Toast")
	f.addLog(t, 2, "Soup")

	got, err := f.svc.ListByUser(context.Background(), 1)
	if err != nil {
		t.Fatalf("ListByUser() unexpected error: %v", err)
	}
	if len(got) != 2 || got[0].ID != second || got[1].ID != first {
		t.Fatalf("expected newest first, got %+v", got)
	}
	if len(got[0].Ingredients) != 2 || len(got[1].Ingredients) != 1 {
		t.Errorf("expected ingredients grouped per log, got %d and %d", len(got[0].Ingredients), len(got[1].Ingredients))
	}
	if f.ings.batchReqs != 1 {
		t.Errorf("expected a single batched ingredient query, got %d", f.ings.batchReqs)
	}

	none, err := f.svc.ListByUser(context.Background(), 77)
	if err != nil || none == nil || len(none) != 0 {
		t.Errorf("expected empty non-nil list, got %v, %v", none, err)
	}
}

func TestLogService_Delete(t *testing.T) {
	f := newLogFixture()
	id := f.addLog(t, 1, "Rice")

	if err := f.svc.Delete(context.Background(), id); err != nil {
		t.Fatalf("Delete() unexpected error: %v", err)
	}
	if rows, _ := f.ings.ListByLogID(context.Background(), id); len(rows) != 0 {
		t.Errorf("expected ingredients removed, got %d", len(rows))
	}
	if err := f.svc.Delete(context.Background(), id); !errors.Is(err, ErrLogNotFound) {
		t.Errorf("expected ErrLogNotFound, got %v", err)
	}
}
