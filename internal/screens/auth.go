package screens

import (
	"context"
	"regexp"

	"github.com/nutriscan/nutriscan-go/internal/apiclient"
	"github.com/nutriscan/nutriscan-go/internal/model"
	"github.com/nutriscan/nutriscan-go/internal/nav"
)

// MinPasswordLength is enforced at registration.
const MinPasswordLength = 6

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// LoginForm is the login screen. Fields survive a failed attempt.
type LoginForm struct {
	Email    string
	Password string
	// Error is the message shown for the last failure.
	Error string

	d Deps
}

func NewLoginForm(d Deps) *LoginForm {
	return &LoginForm{d: d}
}

// Submit signs in and navigates home.
func (f *LoginForm) Submit(ctx context.Context) error {
	f.Error = ""
	if f.Email == "" || f.Password == "" {
		err := invalid("email", "Please enter your email and password")
		f.Error = err.Error()
		return err
	}

	res, err := f.d.API.Login(ctx, model.LoginRequest{Email: f.Email, Password: f.Password})
	if err != nil {
		f.Error = apiclient.Message(err)
		f.d.logger().Warn("login failed", "email", f.Email, "error", err)
		return err
	}

	signIn(f.d, res)
	return nil
}

// RegisterForm is the registration screen.
type RegisterForm struct {
	Name     string
	Email    string
	Password string
	Confirm  string
	Error    string

	d Deps
}

func NewRegisterForm(d Deps) *RegisterForm {
	return &RegisterForm{d: d}
}

// Validate checks the form in the order the fields appear.
func (f *RegisterForm) Validate() error {
	switch {
	case f.Email == "":
		return invalid("email", "Please enter your email")
	case !emailPattern.MatchString(f.Email):
		return invalid("email", "Please enter a valid email address")
	case f.Password == "":
		return invalid("password", "Please enter a password")
	case len(f.Password) < MinPasswordLength:
		return invalid("password", "Password must be at least 6 characters")
	case f.Confirm == "":
		return invalid("confirm", "Please confirm your password")
	case f.Password != f.Confirm:
		return invalid("confirm", "Passwords do not match")
	}
	return nil
}

// Submit creates the account, signs in and navigates home.
func (f *RegisterForm) Submit(ctx context.Context) error {
	f.Error = ""
	if err := f.Validate(); err != nil {
		f.Error = err.Error()
		return err
	}

	res, err := f.d.API.Register(ctx, model.CreateUserRequest{Name: f.Name, Email: f.Email, Password: f.Password})
	if err != nil {
		f.Error = apiclient.Message(err)
		f.d.logger().Warn("registration failed", "email", f.Email, "error", err)
		return err
	}

	signIn(f.d, res)
	return nil
}

func signIn(d Deps, res model.AuthResult) {
	d.Session.Login(res.User)
	d.Session.SetToken(res.Token)
	d.Nav.Navigate(nav.Home{})
}
