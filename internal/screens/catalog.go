package screens

import (
	"strings"
	"sync"
)

// Food is a catalog entry on the search screen.
type Food struct {
	ID       string
	Name     string
	Kcal     int
	Category string
}

// Search categories. CategoryAll matches everything.
const (
	CategoryAll     = "All"
	CategoryRecent  = "Recent"
	CategoryPopular = "Popular"
	CategoryHealthy = "Healthy"
	CategoryLowCal  = "Low-Cal"
)

var catalog = []Food{
	{ID: "1", Name: "Banana", Kcal: 89, Category: CategoryRecent},
	{ID: "2", Name: "Grilled Chicken", Kcal: 165, Category: CategoryPopular},
	{ID: "3", Name: "Quinoa Bowl", Kcal: 120, Category: CategoryPopular},
	{ID: "4", Name: "Mixed Vegetables", Kcal: 35, Category: CategoryPopular},
	{ID: "5", Name: "Salmon Fillet", Kcal: 208, Category: CategoryHealthy},
	{ID: "6", Name: "Avocado Toast", Kcal: 250, Category: CategoryHealthy},
}

// Categories lists the search filters in display order.
func Categories() []string {
	return []string{CategoryRecent, CategoryPopular, CategoryHealthy, CategoryLowCal}
}

// SearchFoods filters the catalog by a case-insensitive name substring
// and a category.
func SearchFoods(query, category string) []Food {
	query = strings.ToLower(strings.TrimSpace(query))
	var out []Food
	for _, f := range catalog {
		if !strings.Contains(strings.ToLower(f.Name), query) {
			continue
		}
		if category != CategoryAll && category != "" && f.Category != category {
			continue
		}
		out = append(out, f)
	}
	return out
}

// FavoriteMeal is a saved meal.
type FavoriteMeal struct {
	ID          string
	Name        string
	Kcal        int
	Ingredients []string
	SavedDate   string
}

// Favorites is the saved meals screen. Removal is local only.
type Favorites struct {
	mu    sync.Mutex
	meals []FavoriteMeal
}

func NewFavorites() *Favorites {
	return &Favorites{meals: []FavoriteMeal{
		{ID: "1", Name: "Morning Oatmeal Bowl", Kcal: 320, Ingredients: []string{"Oats", "Banana", "Berries", "Honey"}, SavedDate: "2025-01-02"},
		{ID: "2", Name: "Protein Power Lunch", Kcal: 485, Ingredients: []string{"Grilled Chicken", "Quinoa", "Mixed Vegetables"}, SavedDate: "2025-01-01"},
		{ID: "3", Name: "Avocado Toast Special", Kcal: 290, Ingredients: []string{"Sourdough Bread", "Avocado", "Cherry Tomatoes", "Feta"}, SavedDate: "2024-12-30"},
		{ID: "4", Name: "Salmon Dinner Delight", Kcal: 520, Ingredients: []string{"Grilled Salmon", "Sweet Potato", "Asparagus"}, SavedDate: "2024-12-28"},
	}}
}

// Meals returns the remaining favorites.
func (f *Favorites) Meals() []FavoriteMeal {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]FavoriteMeal(nil), f.meals...)
}

// Remove drops a favorite and reports whether it existed.
func (f *Favorites) Remove(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, m := range f.meals {
		if m.ID == id {
			f.meals = append(f.meals[:i], f.meals[i+1:]...)
			return true
		}
	}
	return false
}
