package screens

import (
	"context"
	"strings"
	"sync"

	"github.com/nutriscan/nutriscan-go/internal/apiclient"
	"github.com/nutriscan/nutriscan-go/internal/model"
	"github.com/nutriscan/nutriscan-go/internal/nav"
	"github.com/nutriscan/nutriscan-go/internal/settings"
)

// Calorie goal and target weight bounds offered in settings.
const (
	MinCalorieGoal  = 1200
	MaxCalorieGoal  = 4000
	MinTargetWeight = 40
	MaxTargetWeight = 150
)

// Profile shows the user, their stats and a settings summary.
type Profile struct {
	notifier
	d    Deps
	list logList

	mu    sync.Mutex
	prefs settings.Settings
}

func NewProfile(d Deps) *Profile {
	return &Profile{d: d, prefs: settings.Defaults()}
}

// Load reads the settings and fetches the logs for the stats.
func (s *Profile) Load(ctx context.Context) <-chan struct{} {
	if user, ok := s.d.Session.User(); ok {
		prefs := s.d.Settings.Load(user.ID)
		s.mu.Lock()
		s.prefs = prefs
		s.mu.Unlock()
	}
	return fetchLogs(ctx, s.d, &s.list)
}

// User returns the signed-in user.
func (s *Profile) User() (model.UserResponse, bool) {
	return s.d.Session.User()
}

// Settings returns the settings read by the last Load.
func (s *Profile) Settings() settings.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prefs
}

// Stats returns the meal count and total calories.
func (s *Profile) Stats() (meals, kcal int) {
	logs, _, _ := s.list.snapshot()
	return len(logs), totalKcal(logs)
}

// Logout signs out after confirmation and navigates to login.
func (s *Profile) Logout(c Confirmer) error {
	if !c.Confirm("Are you sure you want to log out?") {
		return ErrCancelled
	}
	s.d.Session.Logout()
	s.notify(SeverityInfo, "Successfully logged out")
	s.d.Nav.Navigate(nav.Login{})
	return nil
}

// SettingsForm edits the local settings. Each change is saved at once.
type SettingsForm struct {
	notifier
	d      Deps
	userID int64

	mu       sync.Mutex
	settings settings.Settings
}

// NewSettingsForm loads the signed-in user's settings.
func NewSettingsForm(d Deps) (*SettingsForm, error) {
	user, ok := d.Session.User()
	if !ok {
		return nil, ErrNotSignedIn
	}
	s := d.Settings.Load(user.ID)
	if s.Name == "" {
		s.Name = user.Name
	}
	return &SettingsForm{d: d, userID: user.ID, settings: s}, nil
}

// Settings returns the current values.
func (f *SettingsForm) Settings() settings.Settings {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.settings
}

func (f *SettingsForm) update(change func(*settings.Settings)) {
	f.mu.Lock()
	next := f.settings
	change(&next)
	f.settings = f.d.Settings.Save(f.userID, next)
	f.mu.Unlock()
	f.notify(SeveritySuccess, "Settings saved successfully")
}

func (f *SettingsForm) SetCalorieGoal(kcal int) error {
	if kcal < MinCalorieGoal || kcal > MaxCalorieGoal {
		return invalid("dailyCalorieGoal", "Calorie goal must be between 1200 and 4000")
	}
	f.update(func(s *settings.Settings) { s.DailyCalorieGoal = kcal })
	return nil
}

func (f *SettingsForm) SetTargetWeight(weight float64) error {
	if weight < MinTargetWeight || weight > MaxTargetWeight {
		return invalid("targetWeight", "Target weight must be between 40 and 150")
	}
	f.update(func(s *settings.Settings) { s.TargetWeight = weight })
	return nil
}

func (f *SettingsForm) SetActivityLevel(level string) error {
	if !settings.ValidActivity(level) {
		return invalid("activityLevel", "Unknown activity level "+level)
	}
	f.update(func(s *settings.Settings) { s.ActivityLevel = level })
	return nil
}

func (f *SettingsForm) SetUnits(units string) error {
	if units != settings.UnitsMetric && units != settings.UnitsImperial {
		return invalid("units", "Units must be metric or imperial")
	}
	f.update(func(s *settings.Settings) { s.Units = units })
	return nil
}

func (f *SettingsForm) ToggleReminders() {
	f.update(func(s *settings.Settings) { s.MealReminders = !s.MealReminders })
}

// SetName saves the display name locally and pushes it to the account.
// A failed push leaves the local change in place.
func (f *SettingsForm) SetName(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return invalid("name", "Name cannot be empty")
	}
	f.update(func(s *settings.Settings) { s.Name = name })

	user, err := f.d.API.UpdateUser(ctx, f.userID, model.UpdateUserRequest{Name: &name})
	if err != nil {
		f.notify(SeverityError, apiclient.Message(err))
		f.d.logger().Warn("failed to update profile", "user_id", f.userID, "error", err)
		return err
	}
	f.d.Session.UpdateUser(user)
	f.notify(SeveritySuccess, "Profile updated successfully")
	return nil
}

// DeleteAccount clears the local settings and signs out. The server
// account is left in place.
func (f *SettingsForm) DeleteAccount(c Confirmer) error {
	if !c.Confirm("Delete your account? This removes your local data and signs you out.") {
		return ErrCancelled
	}
	f.d.Settings.Delete(f.userID)
	f.d.Session.Logout()
	f.notify(SeverityInfo, "Account deleted successfully")
	f.d.Nav.Navigate(nav.Login{})
	return nil
}
