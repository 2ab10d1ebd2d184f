package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/nutriscan/nutriscan-go/internal/model"
)

// Register creates an account. Missing email or password is rejected
// before any request is sent.
func (c *Client) Register(ctx context.Context, req model.CreateUserRequest) (model.AuthResult, error) {
	if req.Email == "" || req.Password == "" {
		return model.AuthResult{}, ErrCredentialsRequired
	}
	return c.authenticate(ctx, "/users/register", req)
}

// Login authenticates with email and password.
func (c *Client) Login(ctx context.Context, req model.LoginRequest) (model.AuthResult, error) {
	return c.authenticate(ctx, "/users/login", req)
}

func (c *Client) authenticate(ctx context.Context, path string, body any) (model.AuthResult, error) {
	req, err := jsonRequest(http.MethodPost, path, body)
	if err != nil {
		return model.AuthResult{}, err
	}

	var user model.UserResponse
	header, err := c.do(ctx, req, &user)
	if err != nil {
		return model.AuthResult{}, err
	}
	return model.AuthResult{User: user, Token: header.Get(TokenHeader)}, nil
}

// CreateUser uses the admin-style creation path. No token is issued.
func (c *Client) CreateUser(ctx context.Context, body model.CreateUserRequest) (model.UserResponse, error) {
	var user model.UserResponse
	req, err := jsonRequest(http.MethodPost, "/users", body)
	if err != nil {
		return user, err
	}
	_, err = c.do(ctx, req, &user)
	return user, err
}

// ListUsers returns every user.
func (c *Client) ListUsers(ctx context.Context) ([]model.UserResponse, error) {
	var users []model.UserResponse
	req, _ := jsonRequest(http.MethodGet, "/users", nil)
	_, err := c.do(ctx, req, &users)
	return users, err
}

// GetUserByEmail looks a user up by email.
func (c *Client) GetUserByEmail(ctx context.Context, email string) (model.UserResponse, error) {
	var user model.UserResponse
	req, _ := jsonRequest(http.MethodGet, "/users?email="+url.QueryEscape(email), nil)
	_, err := c.do(ctx, req, &user)
	return user, err
}

// GetUserByID fetches one user.
func (c *Client) GetUserByID(ctx context.Context, id int64) (model.UserResponse, error) {
	var user model.UserResponse
	req, _ := jsonRequest(http.MethodGet, userPath(id), nil)
	_, err := c.do(ctx, req, &user)
	return user, err
}

// UpdateUser applies a partial update and returns the refreshed user.
func (c *Client) UpdateUser(ctx context.Context, id int64, body model.UpdateUserRequest) (model.UserResponse, error) {
	var user model.UserResponse
	req, err := jsonRequest(http.MethodPut, userPath(id), body)
	if err != nil {
		return user, err
	}
	_, err = c.do(ctx, req, &user)
	return user, err
}

// DeleteUser removes a user.
func (c *Client) DeleteUser(ctx context.Context, id int64) error {
	req, _ := jsonRequest(http.MethodDelete, userPath(id), nil)
	_, err := c.do(ctx, req, nil)
	return err
}

func userPath(id int64) string {
	return "/users/" + strconv.FormatInt(id, 10)
}
