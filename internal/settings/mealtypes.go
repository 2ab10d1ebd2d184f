package settings

import (
	"strconv"

	"github.com/nutriscan/nutriscan-go/internal/localstore"
)

// MealTypesKey stores the log id to meal type table.
const MealTypesKey = "mealTypes"

// MealType is the user's label for a logged meal. The server does not
// model it, so tags live only in local storage and are lost with it.
type MealType string

const (
	Breakfast MealType = "Breakfast"
	Lunch     MealType = "Lunch"
	Dinner    MealType = "Dinner"
	Snack     MealType = "Snack"
)

var mealTypes = []MealType{Breakfast, Lunch, Dinner, Snack}

// MealTypes lists the meal types in display order.
func MealTypes() []MealType {
	return append([]MealType(nil), mealTypes...)
}

// ParseMealType matches s against the known meal types.
func ParseMealType(s string) (MealType, bool) {
	for _, m := range mealTypes {
		if string(m) == s {
			return m, true
		}
	}
	return "", false
}

// FallbackMealType names an untagged meal by its position in a list.
func FallbackMealType(index int) MealType {
	if index < 0 {
		index = -index
	}
	return mealTypes[index%len(mealTypes)]
}

func (s *Store) mealTable() map[string]MealType {
	table := map[string]MealType{}
	if _, err := localstore.GetJSON(s.kv, MealTypesKey, &table); err != nil {
		s.logger.Warn("failed to load meal types", "error", err)
		return map[string]MealType{}
	}
	if table == nil {
		return map[string]MealType{}
	}
	return table
}

// MealTag returns the tag stored for logID.
func (s *Store) MealTag(logID int64) (MealType, bool) {
	m, ok := s.mealTable()[strconv.FormatInt(logID, 10)]
	return m, ok
}

// MealTags returns the whole table keyed by log id.
func (s *Store) MealTags() map[int64]MealType {
	out := make(map[int64]MealType)
	for k, v := range s.mealTable() {
		id, err := strconv.ParseInt(k, 10, 64)
		if err != nil {
			continue
		}
		out[id] = v
	}
	return out
}

// SetMealTag records the meal type chosen for logID.
func (s *Store) SetMealTag(logID int64, meal MealType) {
	table := s.mealTable()
	table[strconv.FormatInt(logID, 10)] = meal
	s.saveMealTable(table)
}

// RemoveMealTag drops the tag for a deleted log.
func (s *Store) RemoveMealTag(logID int64) {
	table := s.mealTable()
	key := strconv.FormatInt(logID, 10)
	if _, ok := table[key]; !ok {
		return
	}
	delete(table, key)
	s.saveMealTable(table)
}

func (s *Store) saveMealTable(table map[string]MealType) {
	if err := localstore.SetJSON(s.kv, MealTypesKey, table); err != nil {
		s.logger.Warn("failed to save meal types", "error", err)
	}
}
