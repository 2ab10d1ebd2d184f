// Package screens holds the per-screen state and data flows of the
// terminal client. Rendering lives in cmd/nutriscan.
package screens

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/nutriscan/nutriscan-go/internal/apiclient"
	"github.com/nutriscan/nutriscan-go/internal/model"
	"github.com/nutriscan/nutriscan-go/internal/nav"
	"github.com/nutriscan/nutriscan-go/internal/session"
	"github.com/nutriscan/nutriscan-go/internal/settings"
)

var (
	ErrNotSignedIn    = errors.New("not signed in")
	ErrCancelled      = errors.New("cancelled")
	ErrAnalysisFailed = errors.New("analysis failed")
)

// API is the part of the API client the screens call.
type API interface {
	Register(ctx context.Context, req model.CreateUserRequest) (model.AuthResult, error)
	Login(ctx context.Context, req model.LoginRequest) (model.AuthResult, error)
	UpdateUser(ctx context.Context, id int64, req model.UpdateUserRequest) (model.UserResponse, error)
	GetLog(ctx context.Context, id int64) (model.FoodLogResponse, error)
	ListLogsByUser(ctx context.Context, userID int64) ([]model.FoodLogResponse, error)
	DeleteLog(ctx context.Context, id int64) error
	UploadFoodImage(ctx context.Context, img apiclient.Image, userID int64, notes string) (model.UploadResponse, error)
}

// Deps are shared by every screen.
type Deps struct {
	API      API
	Session  *session.Store
	Settings *settings.Store
	Nav      *nav.Navigator
	Logger   *slog.Logger
}

// NewDeps builds the screen dependencies around the session installed in
// ctx with session.WithStore. It panics when ctx carries none.
func NewDeps(ctx context.Context, api API, prefs *settings.Store, logger *slog.Logger) Deps {
	sess := session.MustFromContext(ctx)
	return Deps{
		API:      api,
		Session:  sess,
		Settings: prefs,
		Nav:      nav.New(sess),
		Logger:   logger,
	}
}

func (d Deps) logger() *slog.Logger {
	if d.Logger == nil {
		return slog.Default()
	}
	return d.Logger
}

// ValidationError is a local input problem caught before any request.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

// Confirmer asks the user to confirm a destructive action.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(prompt string) bool

func (f ConfirmFunc) Confirm(prompt string) bool {
	return f(prompt)
}

// Severity of a Notice.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Notice is the last transient message a screen wants shown.
type Notice struct {
	Severity Severity
	Message  string
}

type notifier struct {
	mu     sync.Mutex
	notice Notice
}

func (n *notifier) notify(sev Severity, msg string) {
	n.mu.Lock()
	n.notice = Notice{Severity: sev, Message: msg}
	n.mu.Unlock()
}

// Notice returns the latest notice.
func (n *notifier) Notice() Notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.notice
}

// LoadState is the lifecycle of a screen's fetch.
type LoadState int

const (
	Loading LoadState = iota
	Ready
	// Empty covers both an empty result and a failed request.
	Empty
)

func (s LoadState) String() string {
	switch s {
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	default:
		return "empty"
	}
}

// load runs fetch in its own goroutine and hands the result to apply only
// while visit is still current. The returned channel closes when done.
func load[T any](ctx context.Context, visit nav.Visit, fetch func(context.Context) (T, error), apply func(T, error)) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		v, err := fetch(ctx)
		if !visit.Current() {
			return
		}
		apply(v, err)
	}()
	return done
}

func closed() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
