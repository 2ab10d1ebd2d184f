package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nutriscan/nutriscan-go/internal/apiclient"
	"github.com/nutriscan/nutriscan-go/internal/model"
	"github.com/nutriscan/nutriscan-go/internal/nav"
	"github.com/nutriscan/nutriscan-go/internal/screens"
	"github.com/nutriscan/nutriscan-go/internal/settings"
)

func header(w io.Writer, title string) {
	fmt.Fprintf(w, "\n== %s ==\n", title)
}

func renderNotice(w io.Writer, n screens.Notice) {
	if n.Message != "" {
		fmt.Fprintf(w, "[%s] %s\n", n.Severity, n.Message)
	}
}

func renderLog(w io.Writer, log model.FoodLogResponse) {
	totals := log.Totals()
	fmt.Fprintf(w, "Log #%d  %d kcal  %sg  %d items\n", log.ID, totals.Kcal, totals.Weight.String(), totals.Items)
	for _, ing := range log.Ingredients {
		fmt.Fprintf(w, "  - %-24s %5d kcal %8sg\n", ing.IngredientName, ing.Kcal, ing.Weight.String())
	}
}

func parseID(args []string) (int64, error) {
	if len(args) != 1 {
		return 0, errors.New("expected one log id")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid log id %q", args[0])
	}
	return id, nil
}

func wait(ctx context.Context, done <-chan struct{}) {
	select {
	case <-done:
	case <-ctx.Done():
	}
}

type loginView struct {
	a    *app
	form *screens.LoginForm
}

func (v *loginView) load(context.Context) <-chan struct{} { return closedChan() }

func (v *loginView) render(w io.Writer) {
	header(w, "Login")
	if v.form.Error != "" {
		fmt.Fprintln(w, v.form.Error)
	}
	fmt.Fprintln(w, "login <email> <password> | register")
}

func (v *loginView) handle(ctx context.Context, cmd string, args []string) (bool, error) {
	switch cmd {
	case "login":
		v.form.Email, v.form.Password = "", ""
		if len(args) > 0 {
			v.form.Email = args[0]
		}
		if len(args) > 1 {
			v.form.Password = args[1]
		}
		return true, v.form.Submit(ctx)
	case "register":
		v.a.deps.Nav.Navigate(nav.Register{})
		return true, nil
	}
	return false, nil
}

type registerView struct {
	a    *app
	form *screens.RegisterForm
}

func (v *registerView) load(context.Context) <-chan struct{} { return closedChan() }

func (v *registerView) render(w io.Writer) {
	header(w, "Register")
	if v.form.Error != "" {
		fmt.Fprintln(w, v.form.Error)
	}
	fmt.Fprintln(w, "register [name] <email> <password> <confirm> | login")
}

func (v *registerView) handle(ctx context.Context, cmd string, args []string) (bool, error) {
	switch cmd {
	case "register":
		f := v.form
		f.Name, f.Email, f.Password, f.Confirm = "", "", "", ""
		if len(args) == 4 {
			f.Name, args = args[0], args[1:]
		}
		for i, field := range []*string{&f.Email, &f.Password, &f.Confirm} {
			if i < len(args) {
				*field = args[i]
			}
		}
		return true, f.Submit(ctx)
	case "login":
		v.a.deps.Nav.Navigate(nav.Login{})
		return true, nil
	}
	return false, nil
}

// detailCommand handles the commands of an open log overlay.
func detailCommand(ctx context.Context, a *app, detail *screens.Detail, cmd string) (bool, error) {
	if detail == nil {
		return false, nil
	}
	if cmd == "delete" {
		return true, detail.Delete(ctx, a.confirmer(ctx))
	}
	return false, nil
}

func renderDetail(w io.Writer, detail *screens.Detail) {
	if detail == nil {
		return
	}
	log, state, msg := detail.Log()
	fmt.Fprintln(w, "-- detail --")
	switch state {
	case screens.Ready:
		renderLog(w, log)
	case screens.Empty:
		fmt.Fprintln(w, msg)
	default:
		fmt.Fprintln(w, "Loading...")
	}
	renderNotice(w, detail.Notice())
	fmt.Fprintln(w, "delete | close")
}

type homeView struct {
	a    *app
	home *screens.Home
}

func (v *homeView) load(ctx context.Context) <-chan struct{} { return v.home.Load(ctx) }

func (v *homeView) render(w io.Writer) {
	header(w, "Home")
	hv := v.home.View()
	fmt.Fprintf(w, "Calories %d / %d (%.0f%%)  Target %.1f %s\n",
		hv.Consumed, hv.CalorieGoal, hv.Percent, hv.TargetWeight, hv.WeightUnit)
	switch hv.State {
	case screens.Loading:
		fmt.Fprintln(w, "Loading...")
	case screens.Empty:
		fmt.Fprintln(w, "No meals logged yet.")
	}
	for _, m := range hv.Meals {
		fmt.Fprintf(w, "  [%d] %-9s %5d kcal  %s\n", m.LogID, m.Name, m.Kcal, m.Time)
	}
	if detail := v.home.Selected(); detail != nil {
		renderDetail(w, detail)
		return
	}
	fmt.Fprintln(w, "open <id>")
}

func (v *homeView) handle(ctx context.Context, cmd string, args []string) (bool, error) {
	switch cmd {
	case "open":
		id, err := parseID(args)
		if err != nil {
			return true, err
		}
		wait(ctx, v.home.Select(id).Load(ctx))
		return true, nil
	case "close":
		v.home.Close()
		return true, nil
	}
	return detailCommand(ctx, v.a, v.home.Selected(), cmd)
}

type scanView struct {
	a    *app
	scan *screens.Scan
}

func (v *scanView) load(context.Context) <-chan struct{} { return closedChan() }

func (v *scanView) render(w io.Writer) {
	header(w, "Scan")
	if img, ok := v.scan.Image(); ok {
		fmt.Fprintf(w, "Image: %s (%s, %d bytes)\n", img.Filename, img.ContentType, len(img.Data))
	} else {
		fmt.Fprintln(w, "Image: none")
	}
	meal := string(v.scan.MealType())
	if meal == "" {
		meal = "none"
	}
	fmt.Fprintf(w, "Meal: %s\n", meal)
	if v.scan.Notes != "" {
		fmt.Fprintf(w, "Notes: %s\n", v.scan.Notes)
	}
	renderNotice(w, v.scan.Notice())

	names := make([]string, 0, len(settings.MealTypes()))
	for _, m := range settings.MealTypes() {
		names = append(names, string(m))
	}
	fmt.Fprintf(w, "image <path> | meal <%s> | notes <text> | submit\n", strings.Join(names, "|"))
}

func (v *scanView) handle(ctx context.Context, cmd string, args []string) (bool, error) {
	switch cmd {
	case "image":
		if len(args) != 1 {
			return true, errors.New("usage: image <path>")
		}
		data, err := os.ReadFile(args[0])
		if err != nil {
			return true, err
		}
		return true, v.scan.SelectImage(apiclient.Image{Filename: filepath.Base(args[0]), Data: data})
	case "meal":
		if len(args) != 1 {
			return true, errors.New("usage: meal <type>")
		}
		meal, ok := settings.ParseMealType(args[0])
		if !ok {
			return true, fmt.Errorf("unknown meal type %q", args[0])
		}
		return true, v.scan.SelectMealType(meal)
	case "notes":
		v.scan.Notes = strings.Join(args, " ")
		return true, nil
	case "submit":
		fmt.Fprintln(v.a.out, "Analyzing...")
		_, err := v.scan.Submit(ctx)
		return true, err
	}
	return false, nil
}

type resultsView struct {
	results *screens.Results
}

func (v *resultsView) load(ctx context.Context) <-chan struct{} { return v.results.Load(ctx) }

func (v *resultsView) render(w io.Writer) {
	header(w, "Results")
	log, state, msg := v.results.Log()
	switch state {
	case screens.Ready:
		if meal := v.results.MealType(); meal != "" {
			fmt.Fprintf(w, "Meal: %s\n", meal)
		}
		renderLog(w, log)
		fmt.Fprintf(w, "Confidence: %d%%\n", log.Confidence)
	case screens.Empty:
		fmt.Fprintln(w, msg)
	default:
		fmt.Fprintln(w, "Loading...")
	}
	fmt.Fprintln(w, "go home | go scan")
}

func (v *resultsView) handle(context.Context, string, []string) (bool, error) {
	return false, nil
}

type dailyLogView struct {
	a      *app
	log    *screens.DailyLog
	detail *screens.Detail
}

func (v *dailyLogView) load(ctx context.Context) <-chan struct{} { return v.log.Load(ctx) }

func (v *dailyLogView) render(w io.Writer) {
	header(w, "Daily Log")
	logs, state, msg := v.log.Logs()
	switch state {
	case screens.Loading:
		fmt.Fprintln(w, "Loading...")
	case screens.Empty:
		if msg != "" {
			fmt.Fprintln(w, msg)
		} else {
			fmt.Fprintln(w, "No logs yet.")
		}
	}
	for i, log := range logs {
		fmt.Fprintf(w, "  [%d] %-9s %5d kcal  %d items\n", log.ID, v.log.MealType(log.ID, i), log.Totals().Kcal, len(log.Ingredients))
	}
	fmt.Fprintf(w, "Total: %d kcal\n", v.log.TotalKcal())
	renderNotice(w, v.log.Notice())
	if v.detail != nil {
		renderDetail(w, v.detail)
		return
	}
	fmt.Fprintln(w, "open <id> | delete <id>")
}

func (v *dailyLogView) handle(ctx context.Context, cmd string, args []string) (bool, error) {
	switch cmd {
	case "open":
		id, err := parseID(args)
		if err != nil {
			return true, err
		}
		v.detail = v.log.Open(id)
		wait(ctx, v.detail.Load(ctx))
		return true, nil
	case "close":
		v.detail = nil
		return true, nil
	case "delete":
		if len(args) == 0 && v.detail != nil {
			err := v.detail.Delete(ctx, v.a.confirmer(ctx))
			if err == nil {
				v.detail = nil
			}
			return true, err
		}
		id, err := parseID(args)
		if err != nil {
			return true, err
		}
		return true, v.log.Delete(ctx, id, v.a.confirmer(ctx))
	}
	return false, nil
}

type profileView struct {
	a       *app
	profile *screens.Profile
}

func (v *profileView) load(ctx context.Context) <-chan struct{} { return v.profile.Load(ctx) }

func (v *profileView) render(w io.Writer) {
	header(w, "Profile")
	if user, ok := v.profile.User(); ok {
		fmt.Fprintf(w, "%s <%s>\n", user.Name, user.Email)
	}
	meals, kcal := v.profile.Stats()
	fmt.Fprintf(w, "Meals logged: %d  Total: %d kcal\n", meals, kcal)
	s := v.profile.Settings()
	fmt.Fprintf(w, "Goal %d kcal  Target %.1f %s  Activity %s\n", s.DailyCalorieGoal, s.TargetWeight, s.WeightUnit(), s.ActivityLabel())
	renderNotice(w, v.profile.Notice())
	fmt.Fprintln(w, "logout | go settings")
}

func (v *profileView) handle(ctx context.Context, cmd string, _ []string) (bool, error) {
	if cmd == "logout" {
		return true, v.profile.Logout(v.a.confirmer(ctx))
	}
	return false, nil
}

type settingsView struct {
	a    *app
	form *screens.SettingsForm
}

func (v *settingsView) load(context.Context) <-chan struct{} { return closedChan() }

func (v *settingsView) render(w io.Writer) {
	header(w, "Settings")
	s := v.form.Settings()
	reminders := "off"
	if s.MealReminders {
		reminders = "on"
	}
	fmt.Fprintf(w, "Name: %s\nDaily goal: %d kcal\nTarget weight: %.1f %s\nActivity: %s\nUnits: %s\nReminders: %s\n",
		s.Name, s.DailyCalorieGoal, s.TargetWeight, s.WeightUnit(), s.ActivityLabel(), s.Units, reminders)
	renderNotice(w, v.form.Notice())
	fmt.Fprintln(w, "name <text> | goal <kcal> | weight <n> | activity <level> | units <metric|imperial> | reminders | delete-account")
}

func (v *settingsView) handle(ctx context.Context, cmd string, args []string) (bool, error) {
	arg := strings.Join(args, " ")
	switch cmd {
	case "name":
		return true, v.form.SetName(ctx, arg)
	case "goal":
		kcal, err := strconv.Atoi(arg)
		if err != nil {
			return true, fmt.Errorf("invalid calorie goal %q", arg)
		}
		return true, v.form.SetCalorieGoal(kcal)
	case "weight":
		weight, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return true, fmt.Errorf("invalid weight %q", arg)
		}
		return true, v.form.SetTargetWeight(weight)
	case "activity":
		return true, v.form.SetActivityLevel(arg)
	case "units":
		return true, v.form.SetUnits(arg)
	case "reminders":
		v.form.ToggleReminders()
		return true, nil
	case "delete-account":
		return true, v.form.DeleteAccount(v.a.confirmer(ctx))
	}
	return false, nil
}

type searchView struct {
	query    string
	category string
}

func (v *searchView) load(context.Context) <-chan struct{} { return closedChan() }

func (v *searchView) render(w io.Writer) {
	header(w, "Search")
	fmt.Fprintf(w, "Query: %q  Category: %s\n", v.query, v.category)
	foods := screens.SearchFoods(v.query, v.category)
	if len(foods) == 0 {
		fmt.Fprintln(w, "No foods found.")
	}
	for _, f := range foods {
		fmt.Fprintf(w, "  %-18s %4d kcal  %s\n", f.Name, f.Kcal, f.Category)
	}
	fmt.Fprintf(w, "find <text> | category <%s|%s>\n", screens.CategoryAll, strings.Join(screens.Categories(), "|"))
}

func (v *searchView) handle(_ context.Context, cmd string, args []string) (bool, error) {
	switch cmd {
	case "find":
		v.query = strings.Join(args, " ")
		return true, nil
	case "category":
		v.category = strings.Join(args, " ")
		return true, nil
	}
	return false, nil
}

type favoritesView struct {
	favorites *screens.Favorites
}

func (v *favoritesView) load(context.Context) <-chan struct{} { return closedChan() }

func (v *favoritesView) render(w io.Writer) {
	header(w, "Favorites")
	for _, m := range v.favorites.Meals() {
		fmt.Fprintf(w, "  [%s] %-24s %4d kcal  %s  (saved %s)\n", m.ID, m.Name, m.Kcal, strings.Join(m.Ingredients, ", "), m.SavedDate)
	}
	fmt.Fprintln(w, "remove <id>")
}

func (v *favoritesView) handle(_ context.Context, cmd string, args []string) (bool, error) {
	if cmd != "remove" {
		return false, nil
	}
	if len(args) != 1 || !v.favorites.Remove(args[0]) {
		return true, fmt.Errorf("no favorite %q", strings.Join(args, " "))
	}
	return true, nil
}

func closedChan() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
