package apiclient

import (
	"context"
	"net/http"
	"strconv"

	"github.com/nutriscan/nutriscan-go/internal/model"
)

// GetLog fetches one log with its ingredients.
func (c *Client) GetLog(ctx context.Context, id int64) (model.FoodLogResponse, error) {
	var log model.FoodLogResponse
	req, _ := jsonRequest(http.MethodGet, "/logs/"+strconv.FormatInt(id, 10), nil)
	_, err := c.do(ctx, req, &log)
	return log, err
}

// ListLogsByUser lists a user's logs via /logs/user/{id}.
func (c *Client) ListLogsByUser(ctx context.Context, userID int64) ([]model.FoodLogResponse, error) {
	return c.listLogs(ctx, "/logs/user/"+strconv.FormatInt(userID, 10))
}

// ListLogsByUserQuery lists a user's logs via /logs?userId=. The server
// answers it with the same handler as ListLogsByUser.
func (c *Client) ListLogsByUserQuery(ctx context.Context, userID int64) ([]model.FoodLogResponse, error) {
	return c.listLogs(ctx, "/logs?userId="+strconv.FormatInt(userID, 10))
}

func (c *Client) listLogs(ctx context.Context, path string) ([]model.FoodLogResponse, error) {
	var logs []model.FoodLogResponse
	req, _ := jsonRequest(http.MethodGet, path, nil)
	_, err := c.do(ctx, req, &logs)
	return logs, err
}

// DeleteLog removes a log and its ingredients.
func (c *Client) DeleteLog(ctx context.Context, id int64) error {
	req, _ := jsonRequest(http.MethodDelete, "/logs/"+strconv.FormatInt(id, 10), nil)
	_, err := c.do(ctx, req, nil)
	return err
}
