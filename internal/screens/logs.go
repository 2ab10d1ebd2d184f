package screens

import (
	"context"
	"sort"
	"sync"

	"github.com/nutriscan/nutriscan-go/internal/apiclient"
	"github.com/nutriscan/nutriscan-go/internal/model"
	"github.com/nutriscan/nutriscan-go/internal/nav"
	"github.com/nutriscan/nutriscan-go/internal/settings"
)

// deletePrompt is shown before a log is deleted.
const deletePrompt = "Are you sure you want to delete this meal log?"

// logList is a user's logs as fetched by one screen.
type logList struct {
	mu    sync.Mutex
	state LoadState
	logs  []model.FoodLogResponse
	err   string
}

func (l *logList) start() {
	l.mu.Lock()
	l.state = Loading
	l.err = ""
	l.mu.Unlock()
}

func (l *logList) set(logs []model.FoodLogResponse, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err != nil {
		l.state, l.logs, l.err = Empty, nil, apiclient.Message(err)
		return
	}
	sort.SliceStable(logs, func(i, j int) bool { return logs[i].ID > logs[j].ID })
	l.logs = logs
	l.state = Ready
	if len(logs) == 0 {
		l.state = Empty
	}
}

func (l *logList) snapshot() ([]model.FoodLogResponse, LoadState, string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]model.FoodLogResponse(nil), l.logs...), l.state, l.err
}

func (l *logList) remove(id int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	kept := l.logs[:0:0]
	for _, log := range l.logs {
		if log.ID != id {
			kept = append(kept, log)
		}
	}
	l.logs = kept
	if len(kept) == 0 {
		l.state = Empty
	}
}

// fetchLogs loads the signed-in user's logs into l.
func fetchLogs(ctx context.Context, d Deps, l *logList) <-chan struct{} {
	l.start()
	user, ok := d.Session.User()
	if !ok {
		l.set(nil, ErrNotSignedIn)
		return closed()
	}
	return load(ctx, d.Nav.Visit(),
		func(ctx context.Context) ([]model.FoodLogResponse, error) {
			return d.API.ListLogsByUser(ctx, user.ID)
		},
		func(logs []model.FoodLogResponse, err error) {
			if err != nil {
				d.logger().Warn("failed to load logs", "user_id", user.ID, "error", err)
			}
			l.set(logs, err)
		})
}

func totalKcal(logs []model.FoodLogResponse) int {
	total := 0
	for _, log := range logs {
		total += log.Totals().Kcal
	}
	return total
}

// DailyLog lists every log of the signed-in user, newest first.
type DailyLog struct {
	notifier
	d    Deps
	list logList
}

func NewDailyLog(d Deps) *DailyLog {
	return &DailyLog{d: d}
}

// Load fetches the logs. Results arriving after the user navigated away
// are dropped.
func (s *DailyLog) Load(ctx context.Context) <-chan struct{} {
	return fetchLogs(ctx, s.d, &s.list)
}

// Logs returns the current list, its state and the load error if any.
func (s *DailyLog) Logs() ([]model.FoodLogResponse, LoadState, string) {
	return s.list.snapshot()
}

// TotalKcal is recomputed from the ingredients on every call.
func (s *DailyLog) TotalKcal() int {
	logs, _, _ := s.list.snapshot()
	return totalKcal(logs)
}

// MealType returns the local tag for a log, falling back by position.
func (s *DailyLog) MealType(logID int64, index int) settings.MealType {
	return mealName(s.d, logID, index)
}

// Delete removes a log after confirmation. On success the entry leaves the
// local list without a refetch; on failure the list is untouched.
func (s *DailyLog) Delete(ctx context.Context, logID int64, c Confirmer) error {
	if !c.Confirm(deletePrompt) {
		return ErrCancelled
	}
	if err := s.d.API.DeleteLog(ctx, logID); err != nil {
		s.notify(SeverityError, apiclient.Message(err))
		s.d.logger().Warn("failed to delete log", "log_id", logID, "error", err)
		return err
	}
	s.list.remove(logID)
	s.d.Settings.RemoveMealTag(logID)
	s.notify(SeveritySuccess, "Log deleted successfully")
	return nil
}

// Open returns the detail overlay for a log. Deleting from it drops the
// entry here too.
func (s *DailyLog) Open(logID int64) *Detail {
	return newDetail(s.d, logID, func() { s.list.remove(logID) })
}

func mealName(d Deps, logID int64, index int) settings.MealType {
	if m, ok := d.Settings.MealTag(logID); ok {
		return m
	}
	return settings.FallbackMealType(index)
}

// Detail is the log detail overlay shown inside home and the daily log.
type Detail struct {
	notifier
	LogID int64

	d         Deps
	onDeleted func()

	mu    sync.Mutex
	state LoadState
	log   model.FoodLogResponse
	err   string
}

func newDetail(d Deps, logID int64, onDeleted func()) *Detail {
	return &Detail{d: d, LogID: logID, onDeleted: onDeleted, state: Loading}
}

// Load fetches the log.
func (s *Detail) Load(ctx context.Context) <-chan struct{} {
	return loadLog(ctx, s.d, s.LogID, func(log model.FoodLogResponse, state LoadState, msg string) {
		s.mu.Lock()
		s.log, s.state, s.err = log, state, msg
		s.mu.Unlock()
	})
}

// Log returns the fetched log, the state and the error text.
func (s *Detail) Log() (model.FoodLogResponse, LoadState, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.log, s.state, s.err
}

// Delete removes the log after confirmation.
func (s *Detail) Delete(ctx context.Context, c Confirmer) error {
	if !c.Confirm("Are you sure you want to delete this log? This action cannot be undone.") {
		return ErrCancelled
	}
	if err := s.d.API.DeleteLog(ctx, s.LogID); err != nil {
		s.notify(SeverityError, "Failed to delete log")
		s.d.logger().Warn("failed to delete log", "log_id", s.LogID, "error", err)
		return err
	}
	s.d.Settings.RemoveMealTag(s.LogID)
	s.notify(SeveritySuccess, "Log deleted successfully")
	if s.onDeleted != nil {
		s.onDeleted()
	}
	return nil
}

// loadLog fetches one log and reports it through apply.
func loadLog(ctx context.Context, d Deps, logID int64, apply func(model.FoodLogResponse, LoadState, string)) <-chan struct{} {
	if logID <= 0 {
		apply(model.FoodLogResponse{}, Empty, "No log ID provided")
		return closed()
	}
	apply(model.FoodLogResponse{}, Loading, "")
	return load(ctx, d.Nav.Visit(),
		func(ctx context.Context) (model.FoodLogResponse, error) {
			return d.API.GetLog(ctx, logID)
		},
		func(log model.FoodLogResponse, err error) {
			if err != nil {
				d.logger().Warn("failed to load log", "log_id", logID, "error", err)
				apply(model.FoodLogResponse{}, Empty, apiclient.Message(err))
				return
			}
			apply(log, Ready, "")
		})
}

// Results shows the log produced by a scan.
type Results struct {
	Dest nav.Results

	d     Deps
	mu    sync.Mutex
	state LoadState
	log   model.FoodLogResponse
	err   string
}

func NewResults(d Deps, dest nav.Results) *Results {
	return &Results{d: d, Dest: dest, state: Loading}
}

// Load fetches the analyzed log.
func (s *Results) Load(ctx context.Context) <-chan struct{} {
	return loadLog(ctx, s.d, s.Dest.LogID, func(log model.FoodLogResponse, state LoadState, msg string) {
		s.mu.Lock()
		s.log, s.state, s.err = log, state, msg
		s.mu.Unlock()
	})
}

// Log returns the fetched log, the state and the error text.
func (s *Results) Log() (model.FoodLogResponse, LoadState, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.log, s.state, s.err
}

// Totals are recomputed from the fetched ingredients.
func (s *Results) Totals() model.Totals {
	log, _, _ := s.Log()
	return log.Totals()
}

// MealType is the tag passed from the scan, else the stored one.
func (s *Results) MealType() settings.MealType {
	if s.Dest.MealType != "" {
		return s.Dest.MealType
	}
	m, _ := s.d.Settings.MealTag(s.Dest.LogID)
	return m
}
