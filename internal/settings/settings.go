// Package settings stores per-user preferences and meal-type tags on the
// client. Nothing here has a server copy.
package settings

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/nutriscan/nutriscan-go/internal/localstore"
)

// Activity levels.
const (
	ActivitySedentary  = "sedentary"
	ActivityLight      = "light"
	ActivityModerate   = "moderate"
	ActivityActive     = "active"
	ActivityVeryActive = "very_active"
)

// Units.
const (
	UnitsMetric   = "metric"
	UnitsImperial = "imperial"
)

var activityLevels = []string{ActivitySedentary, ActivityLight, ActivityModerate, ActivityActive, ActivityVeryActive}

// ActivityLevels lists the valid activity levels, least active first.
func ActivityLevels() []string {
	return append([]string(nil), activityLevels...)
}

// ValidActivity reports whether level is a known activity level.
func ValidActivity(level string) bool {
	for _, l := range activityLevels {
		if l == level {
			return true
		}
	}
	return false
}

// Settings are one user's preferences.
type Settings struct {
	Name             string  `json:"name"`
	DailyCalorieGoal int     `json:"dailyCalorieGoal"`
	TargetWeight     float64 `json:"targetWeight"`
	ActivityLevel    string  `json:"activityLevel"`
	Units            string  `json:"units"`
	MealReminders    bool    `json:"mealReminders"`
}

// Defaults returns the settings used for anything not stored.
func Defaults() Settings {
	return Settings{
		DailyCalorieGoal: 2000,
		TargetWeight:     70,
		ActivityLevel:    ActivityModerate,
		Units:            UnitsMetric,
		MealReminders:    true,
	}
}

// WeightUnit is "kg" or "lb" depending on Units.
func (s Settings) WeightUnit() string {
	if s.Units == UnitsImperial {
		return "lb"
	}
	return "kg"
}

// ActivityLabel formats the activity level for display, "very_active"
// becoming "Very Active".
func (s Settings) ActivityLabel() string {
	words := strings.Split(s.ActivityLevel, "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// normalize replaces out-of-range values with defaults.
func (s Settings) normalize() Settings {
	d := Defaults()
	if s.DailyCalorieGoal <= 0 {
		s.DailyCalorieGoal = d.DailyCalorieGoal
	}
	if s.TargetWeight <= 0 {
		s.TargetWeight = d.TargetWeight
	}
	if !ValidActivity(s.ActivityLevel) {
		s.ActivityLevel = d.ActivityLevel
	}
	if s.Units != UnitsMetric && s.Units != UnitsImperial {
		s.Units = d.Units
	}
	return s
}

// Store reads and writes settings and meal tags in a localstore.Store.
// Storage failures are logged; reads then fall back to defaults.
type Store struct {
	kv     localstore.Store
	logger *slog.Logger
}

// NewStore creates a Store over kv.
func NewStore(kv localstore.Store, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{kv: kv, logger: logger}
}

// Key is the storage key for a user's settings.
func Key(userID int64) string {
	return "settings_" + strconv.FormatInt(userID, 10)
}

// Load returns the user's settings merged over Defaults. Partial or
// missing records never fail.
func (s *Store) Load(userID int64) Settings {
	out := Defaults()
	if _, err := localstore.GetJSON(s.kv, Key(userID), &out); err != nil {
		s.logger.Warn("failed to load settings", "user_id", userID, "error", err)
		return Defaults()
	}
	return out.normalize()
}

// Save persists the user's settings and returns what was stored.
func (s *Store) Save(userID int64, settings Settings) Settings {
	settings = settings.normalize()
	if err := localstore.SetJSON(s.kv, Key(userID), settings); err != nil {
		s.logger.Warn("failed to save settings", "user_id", userID, "error", err)
	}
	return settings
}

// Delete removes the user's settings.
func (s *Store) Delete(userID int64) {
	if err := s.kv.Remove(Key(userID)); err != nil {
		s.logger.Warn("failed to delete settings", "user_id", userID, "error", err)
	}
}
