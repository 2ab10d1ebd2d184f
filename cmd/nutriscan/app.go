package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nutriscan/nutriscan-go/internal/apiclient"
	"github.com/nutriscan/nutriscan-go/internal/nav"
	"github.com/nutriscan/nutriscan-go/internal/screens"
)

// view is one mounted screen.
type view interface {
	load(ctx context.Context) <-chan struct{}
	render(w io.Writer)
	// handle runs a screen command and reports false for commands the
	// screen does not know.
	handle(ctx context.Context, cmd string, args []string) (bool, error)
}

// app is the root router: it mounts the navigator's current destination,
// renders it and feeds it commands read line by line.
type app struct {
	deps  screens.Deps
	in    io.Reader
	out   io.Writer
	lines chan string

	view      view
	mounted   nav.Destination
	remountAt int
}

func newApp(d screens.Deps, in io.Reader, out io.Writer) *app {
	return &app{deps: d, in: in, out: out}
}

func (a *app) run(ctx context.Context) error {
	a.lines = make(chan string)
	go func() {
		defer close(a.lines)
		sc := bufio.NewScanner(a.in)
		for sc.Scan() {
			select {
			case a.lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	fmt.Fprintln(a.out, "NutriScan. Type help for commands.")
	for {
		if err := a.mount(ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		a.view.render(a.out)

		fmt.Fprint(a.out, "> ")
		line, ok := a.readLine(ctx)
		if !ok {
			fmt.Fprintln(a.out)
			return nil
		}
		if a.exec(ctx, line) {
			return nil
		}
	}
}

func (a *app) readLine(ctx context.Context) (string, bool) {
	select {
	case line, ok := <-a.lines:
		return line, ok
	case <-ctx.Done():
		return "", false
	}
}

// mount builds a fresh view when the destination or its remount key
// changed, and waits for its first fetch.
func (a *app) mount(ctx context.Context) error {
	dest := a.deps.Nav.Current()
	key := a.deps.Nav.RemountKey(dest.Screen())
	if a.view != nil && dest == a.mounted && key == a.remountAt {
		return nil
	}

	a.view = a.newView(dest)
	a.mounted, a.remountAt = dest, key
	select {
	case <-a.view.load(ctx):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (a *app) newView(dest nav.Destination) view {
	d := a.deps
	switch dest := dest.(type) {
	case nav.Register:
		return &registerView{a: a, form: screens.NewRegisterForm(d)}
	case nav.Home:
		return &homeView{a: a, home: screens.NewHome(d)}
	case nav.Scan:
		return &scanView{a: a, scan: screens.NewScan(d)}
	case nav.Results:
		return &resultsView{results: screens.NewResults(d, dest)}
	case nav.DailyLog:
		return &dailyLogView{a: a, log: screens.NewDailyLog(d)}
	case nav.Profile:
		return &profileView{a: a, profile: screens.NewProfile(d)}
	case nav.Settings:
		form, err := screens.NewSettingsForm(d)
		if err != nil {
			return &loginView{a: a, form: screens.NewLoginForm(d)}
		}
		return &settingsView{a: a, form: form}
	case nav.Search:
		return &searchView{category: screens.CategoryAll}
	case nav.Favorites:
		return &favoritesView{favorites: screens.NewFavorites()}
	default:
		return &loginView{a: a, form: screens.NewLoginForm(d)}
	}
}

// exec runs one input line and reports whether the client should exit.
func (a *app) exec(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	switch cmd {
	case "quit", "exit":
		return true
	case "help":
		a.help()
		return false
	case "go":
		if len(args) != 1 {
			fmt.Fprintln(a.out, "usage: go <screen>")
			return false
		}
		dest, ok := nav.Parse(strings.ToLower(args[0]))
		if !ok {
			fmt.Fprintf(a.out, "unknown screen %q\n", args[0])
			return false
		}
		if got := a.deps.Nav.Navigate(dest); got != dest {
			fmt.Fprintln(a.out, "Please log in first.")
		}
		return false
	}

	handled, err := a.view.handle(ctx, cmd, args)
	switch {
	case !handled:
		fmt.Fprintf(a.out, "unknown command %q, type help\n", cmd)
	case errors.Is(err, screens.ErrCancelled):
		fmt.Fprintln(a.out, "Cancelled.")
	case err != nil:
		fmt.Fprintf(a.out, "! %s\n", apiclient.Message(err))
	}
	return false
}

// confirmer asks on the terminal. Anything but y or yes declines.
func (a *app) confirmer(ctx context.Context) screens.Confirmer {
	return screens.ConfirmFunc(func(prompt string) bool {
		fmt.Fprintf(a.out, "%s [y/N] ", prompt)
		line, ok := a.readLine(ctx)
		if !ok {
			return false
		}
		answer := strings.ToLower(strings.TrimSpace(line))
		return answer == "y" || answer == "yes"
	})
}

func (a *app) help() {
	fmt.Fprint(a.out, `Commands:
  go <home|scan|dailylog|profile|settings|search|favorites|login|register>
  help | quit
Screen commands are listed under each screen.
`)
}
