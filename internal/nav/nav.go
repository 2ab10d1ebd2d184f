// Package nav decides which client screen is showing and carries each
// destination's payload.
package nav

import (
	"sync"

	"github.com/nutriscan/nutriscan-go/internal/settings"
)

// Screen identifies a top-level screen.
type Screen string

const (
	ScreenHome      Screen = "home"
	ScreenScan      Screen = "scan"
	ScreenProfile   Screen = "profile"
	ScreenSettings  Screen = "settings"
	ScreenResults   Screen = "results"
	ScreenLogin     Screen = "login"
	ScreenRegister  Screen = "register"
	ScreenDailyLog  Screen = "dailylog"
	ScreenSearch    Screen = "search"
	ScreenFavorites Screen = "favorites"
)

// Destination is a navigation target. Each variant carries only the
// fields its screen reads.
type Destination interface {
	Screen() Screen
	destination()
}

type (
	Home      struct{}
	Scan      struct{}
	Profile   struct{}
	Settings  struct{}
	Login     struct{}
	Register  struct{}
	DailyLog  struct{}
	Search    struct{}
	Favorites struct{}

	// Results shows one analyzed log.
	Results struct {
		LogID    int64
		MealType settings.MealType
	}
)

func (Home) Screen() Screen { return ScreenHome }
func (Scan) Screen() Screen { return ScreenScan }
func (Profile) Screen() Screen { return ScreenProfile }
func (Settings) Screen() Screen { return ScreenSettings }
func (Results) Screen() Screen { return ScreenResults }
func (Login) Screen() Screen { return ScreenLogin }
func (Register) Screen() Screen { return ScreenRegister }
func (DailyLog) Screen() Screen { return ScreenDailyLog }
func (Search) Screen() Screen { return ScreenSearch }
func (Favorites) Screen() Screen { return ScreenFavorites }

func (Home) destination() {}
func (Scan) destination() {}
func (Profile) destination() {}
func (Settings) destination() {}
func (Results) destination() {}
func (Login) destination() {}
func (Register) destination() {}
func (DailyLog) destination() {}
func (Search) destination() {}
func (Favorites) destination() {}

// Parse maps a screen name to its payload-free destination. Results needs
// a log id and is never returned.
func Parse(name string) (Destination, bool) {
	switch Screen(name) {
	case ScreenHome:
		return Home{}, true
	case ScreenScan:
		return Scan{}, true
	case ScreenProfile:
		return Profile{}, true
	case ScreenSettings:
		return Settings{}, true
	case ScreenLogin:
		return Login{}, true
	case ScreenRegister:
		return Register{}, true
	case ScreenDailyLog:
		return DailyLog{}, true
	case ScreenSearch:
		return Search{}, true
	case ScreenFavorites:
		return Favorites{}, true
	}
	return nil, false
}

func public(s Screen) bool {
	return s == ScreenLogin || s == ScreenRegister
}

// Authenticator reports whether a session exists.
type Authenticator interface {
	IsAuthenticated() bool
}

// Navigator is the router state machine. It is safe for concurrent use.
type Navigator struct {
	mu      sync.Mutex
	auth    Authenticator
	current Destination
	remount map[Screen]int
	seq     uint64
}

// New starts at home when signed in and at login otherwise.
func New(auth Authenticator) *Navigator {
	n := &Navigator{auth: auth, remount: make(map[Screen]int)}
	if auth.IsAuthenticated() {
		n.current = Home{}
	} else {
		n.current = Login{}
	}
	return n
}

// Navigate moves to dest and returns where it actually went. Without a
// session anything but login and register lands on login.
func (n *Navigator) Navigate(dest Destination) Destination {
	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.auth.IsAuthenticated() && !public(dest.Screen()) {
		dest = Login{}
	}

	from := n.current.Screen()
	to := dest.Screen()
	if from == ScreenSettings && (to == ScreenHome || to == ScreenProfile) {
		n.remount[to]++
	}

	n.current = dest
	n.seq++
	return dest
}

// Current is the screen to render. It re-applies the session guard, so a
// logout without navigation still shows login.
func (n *Navigator) Current() Destination {
	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.auth.IsAuthenticated() && !public(n.current.Screen()) {
		return Login{}
	}
	return n.current
}

// RemountKey changes whenever screen must discard its state and refetch.
func (n *Navigator) RemountKey(screen Screen) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.remount[screen]
}

// Visit identifies one stay on a screen.
type Visit struct {
	nav *Navigator
	seq uint64
}

// Visit returns a token for the current stay.
func (n *Navigator) Visit() Visit {
	n.mu.Lock()
	defer n.mu.Unlock()
	return Visit{nav: n, seq: n.seq}
}

// Current reports whether no navigation has happened since the visit
// began. Async results for a stale visit must be dropped.
func (v Visit) Current() bool {
	if v.nav == nil {
		return false
	}
	v.nav.mu.Lock()
	defer v.nav.mu.Unlock()
	return v.nav.seq == v.seq
}
