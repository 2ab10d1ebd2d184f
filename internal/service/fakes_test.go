package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"

	"github.com/nutriscan/nutriscan-go/internal/model"
	"github.com/nutriscan/nutriscan-go/internal/repository"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type memUsers struct {
	mu      sync.Mutex
	nextID  int64
	byID    map[int64]*model.User
	updates int
	err     error
}

func newMemUsers() *memUsers {
	return &memUsers{nextID: 1, byID: map[int64]*model.User{}}
}

func (m *memUsers) Create(_ context.Context, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	for _, existing := range m.byID {
		if existing.Email == u.Email {
			return repository.ErrDuplicateEmail
		}
	}
	u.ID = m.nextID
	m.nextID++
	cp := *u
	m.byID[u.ID] = &cp
	return nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, u := range m.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *memUsers) GetByID(_ context.Context, id int64) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.byID[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) List(_ context.Context) ([]model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	users := []model.User{}
	for _, u := range m.byID {
		users = append(users, *u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (m *memUsers) Update(_ context.Context, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, existing := range m.byID {
		if id != u.ID && existing.Email == u.Email {
			return repository.ErrDuplicateEmail
		}
	}
	m.updates++
	cp := *u
	m.byID[u.ID] = &cp
	return nil
}

func (m *memUsers) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return repository.ErrUserNotFound
	}
	delete(m.byID, id)
	return nil
}

func (m *memUsers) EnsureExists(_ context.Context, id int64, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		m.byID[id] = &model.User{ID: id, Name: "Test User", Email: "placeholder", AuthHash: hash}
	}
	return nil
}

type memLogs struct {
	mu        sync.Mutex
	nextID    int64
	byID      map[int64]*model.FoodLog
	createErr error
	deleted   []int64
	ings      *memIngredients
}

func newMemLogs(ings *memIngredients) *memLogs {
	return &memLogs{nextID: 1, byID: map[int64]*model.FoodLog{}, ings: ings}
}

func (m *memLogs) Create(_ context.Context, l *model.FoodLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	l.ID = m.nextID
	m.nextID++
	cp := *l
	m.byID[l.ID] = &cp
	return nil
}

func (m *memLogs) GetByID(_ context.Context, id int64) (*model.FoodLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.byID[id]
	if !ok {
		return nil, repository.ErrLogNotFound
	}
	cp := *l
	return &cp, nil
}

func (m *memLogs) ListByUser(_ context.Context, userID int64) ([]model.FoodLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	logs := []model.FoodLog{}
	for _, l := range m.byID {
		if l.UserID == userID {
			logs = append(logs, *l)
		}
	}
	sort.Slice(logs, func(i, j int) bool { return logs[i].ID > logs[j].ID })
	return logs, nil
}

func (m *memLogs) UpdateConfidence(_ context.Context, id int64, c int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.byID[id]
	if !ok {
		return repository.ErrLogNotFound
	}
	l.Confidence = c
	return nil
}

func (m *memLogs) DeleteWithIngredients(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return repository.ErrLogNotFound
	}
	delete(m.byID, id)
	m.deleted = append(m.deleted, id)
	if m.ings != nil {
		m.ings.deleteLog(id)
	}
	return nil
}

type memIngredients struct {
	mu        sync.Mutex
	nextID    int64
	rows      []model.FoodIngredient
	failAfter int
	batchReqs int
}

func newMemIngredients() *memIngredients {
	return &memIngredients{nextID: 1, failAfter: -1}
}

func (m *memIngredients) Create(_ context.Context, ing *model.FoodIngredient) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAfter >= 0 && len(m.rows) >= m.failAfter {
		return errors.New("insert failed")
	}
	ing.ID = m.nextID
	m.nextID++
	m.rows = append(m.rows, *ing)
	return nil
}

func (m *memIngredients) ListByLogID(_ context.Context, logID int64) ([]model.FoodIngredient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.FoodIngredient{}
	for _, r := range m.rows {
		if r.LogID == logID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memIngredients) ListByLogIDs(_ context.Context, ids []int64) (map[int64][]model.FoodIngredient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batchReqs++
	want := map[int64]bool{}
	for _, id := range ids {
		want[id] = true
	}
	out := map[int64][]model.FoodIngredient{}
	for _, r := range m.rows {
		if want[r.LogID] {
			out[r.LogID] = append(out[r.LogID], r)
		}
	}
	return out, nil
}

func (m *memIngredients) deleteLog(id int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.rows[:0]
	for _, r := range m.rows {
		if r.LogID != id {
			kept = append(kept, r)
		}
	}
	m.rows = kept
}
