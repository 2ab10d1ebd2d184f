package screens

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/nutriscan/nutriscan-go/internal/apiclient"
	"github.com/nutriscan/nutriscan-go/internal/localstore"
	"github.com/nutriscan/nutriscan-go/internal/model"
	"github.com/nutriscan/nutriscan-go/internal/session"
	"github.com/nutriscan/nutriscan-go/internal/settings"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type fakeAPI struct {
	mu    sync.Mutex
	calls []string

	RegisterFn   func(req model.CreateUserRequest) (model.AuthResult, error)
	LoginFn      func(req model.LoginRequest) (model.AuthResult, error)
	UpdateUserFn func(id int64, req model.UpdateUserRequest) (model.UserResponse, error)
	GetLogFn     func(id int64) (model.FoodLogResponse, error)
	ListFn       func(ctx context.Context, userID int64) ([]model.FoodLogResponse, error)
	DeleteLogFn  func(id int64) error
	UploadFn     func(img apiclient.Image, userID int64, notes string) (model.UploadResponse, error)
}

func (f *fakeAPI) record(name string) {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	f.mu.Unlock()
}

func (f *fakeAPI) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeAPI) Register(_ context.Context, req model.CreateUserRequest) (model.AuthResult, error) {
	f.record("Register")
	return f.RegisterFn(req)
}

func (f *fakeAPI) Login(_ context.Context, req model.LoginRequest) (model.AuthResult, error) {
	f.record("Login")
	return f.LoginFn(req)
}

func (f *fakeAPI) UpdateUser(_ context.Context, id int64, req model.UpdateUserRequest) (model.UserResponse, error) {
	f.record("UpdateUser")
	return f.UpdateUserFn(id, req)
}

func (f *fakeAPI) GetLog(_ context.Context, id int64) (model.FoodLogResponse, error) {
	f.record("GetLog")
	return f.GetLogFn(id)
}

func (f *fakeAPI) ListLogsByUser(ctx context.Context, userID int64) ([]model.FoodLogResponse, error) {
	f.record("ListLogsByUser")
	return f.ListFn(ctx, userID)
}

func (f *fakeAPI) DeleteLog(_ context.Context, id int64) error {
	f.record("DeleteLog")
	return f.DeleteLogFn(id)
}

func (f *fakeAPI) UploadFoodImage(_ context.Context, img apiclient.Image, userID int64, notes string) (model.UploadResponse, error) {
	f.record("UploadFoodImage")
	return f.UploadFn(img, userID, notes)
}

type fixture struct {
	api  *fakeAPI
	kv   *localstore.Memory
	deps Deps
}

func newFixture(t *testing.T, user *model.UserResponse) *fixture {
	t.Helper()
	kv := localstore.NewMemory()
	sess := session.New(kv, discard)
	if user != nil {
		sess.Login(*user)
	}
	api := &fakeAPI{}
	ctx := session.WithStore(context.Background(), sess)
	return &fixture{
		api:  api,
		kv:   kv,
		deps: NewDeps(ctx, api, settings.NewStore(kv, discard), discard),
	}
}

func signedIn(id int64) *model.UserResponse {
	return &model.UserResponse{ID: id, Email: "user@example.com", Name: "Ana"}
}

func ingredient(kcal int, grams int64) model.IngredientResponse {
	return model.IngredientResponse{Kcal: kcal, Weight: decimal.NewFromInt(grams)}
}

func foodLog(id int64, ings ...model.IngredientResponse) model.FoodLogResponse {
	if ings == nil {
		ings = []model.IngredientResponse{}
	}
	return model.FoodLogResponse{ID: id, UserID: 7, Ingredients: ings}
}

func always(ok bool) Confirmer {
	return ConfirmFunc(func(string) bool { return ok })
}
