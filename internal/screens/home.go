package screens

import (
	"context"
	"sync"

	"github.com/nutriscan/nutriscan-go/internal/settings"
)

var mealTimes = []string{"8:00 AM", "12:30 PM", "6:00 PM", "9:00 PM"}

// Meal is one row of the home dashboard.
type Meal struct {
	LogID int64
	Name  settings.MealType
	Kcal  int
	Time  string
}

// HomeView is what the dashboard renders.
type HomeView struct {
	State        LoadState
	CalorieGoal  int
	Consumed     int
	Percent      float64
	TargetWeight float64
	WeightUnit   string
	Meals        []Meal
}

// Home is the dashboard: today's meals against the calorie goal.
type Home struct {
	d    Deps
	list logList

	mu       sync.Mutex
	prefs    settings.Settings
	selected *Detail
}

func NewHome(d Deps) *Home {
	return &Home{d: d, prefs: settings.Defaults()}
}

// Load reads the settings and fetches the logs.
func (s *Home) Load(ctx context.Context) <-chan struct{} {
	if user, ok := s.d.Session.User(); ok {
		prefs := s.d.Settings.Load(user.ID)
		s.mu.Lock()
		s.prefs = prefs
		s.mu.Unlock()
	}
	return fetchLogs(ctx, s.d, &s.list)
}

// View assembles the dashboard. Totals are recomputed on every call.
func (s *Home) View() HomeView {
	logs, state, _ := s.list.snapshot()

	s.mu.Lock()
	prefs := s.prefs
	s.mu.Unlock()

	v := HomeView{
		State:        state,
		CalorieGoal:  prefs.DailyCalorieGoal,
		TargetWeight: prefs.TargetWeight,
		WeightUnit:   prefs.WeightUnit(),
		Meals:        make([]Meal, len(logs)),
	}
	for i, log := range logs {
		kcal := log.Totals().Kcal
		v.Consumed += kcal
		v.Meals[i] = Meal{
			LogID: log.ID,
			Name:  mealName(s.d, log.ID, i),
			Kcal:  kcal,
			Time:  mealTimes[i%len(mealTimes)],
		}
	}
	if v.CalorieGoal > 0 {
		v.Percent = min(float64(v.Consumed)/float64(v.CalorieGoal)*100, 100)
	}
	return v
}

// Select opens the detail overlay. Deleting from it closes the overlay and
// drops the entry from the dashboard without a refetch.
func (s *Home) Select(logID int64) *Detail {
	detail := newDetail(s.d, logID, func() {
		s.list.remove(logID)
		s.Close()
	})
	s.mu.Lock()
	s.selected = detail
	s.mu.Unlock()
	return detail
}

// Selected returns the open overlay, or nil.
func (s *Home) Selected() *Detail {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// Close dismisses the overlay.
func (s *Home) Close() {
	s.mu.Lock()
	s.selected = nil
	s.mu.Unlock()
}
