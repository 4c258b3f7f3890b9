package gateway

import (
	"context"
	"net/http"

	"github.com/SAP-F-2025/thesis-review-portal/internal/models"
	"github.com/SAP-F-2025/thesis-review-portal/internal/session"
)

// Ping checks that the backend answers GET /api/test with a JSON body.
func (c *Client) Ping(ctx context.Context) error {
	var body map[string]interface{}
	return c.do(ctx, "ping", request{method: http.MethodGet, path: "/test"}, &body)
}

// Login authenticates against the backend. On success the token and profile
// are written into sess; persisting sess is the caller's job.
func (c *Client) Login(ctx context.Context, sess *session.Session, n Notifier, username, password string) bool {
	const op = "login"
	c.logger.InfoContext(ctx, "Attempting login", "username", username)

	req, err := jsonRequest(http.MethodPost, "/login", models.LoginRequest{Username: username, Password: password}, nil)
	if err != nil {
		c.fail(ctx, n, op, err, "Login failed", "Login failed, please check your network connection")
		return false
	}

	var resp models.LoginResponse
	if err := c.do(ctx, op, req, &resp); err != nil {
		c.fail(ctx, n, op, err, "Login failed", "Login failed, please check your network connection")
		return false
	}

	user := resp.User
	sess.Token = resp.Token
	sess.User = &user
	return true
}

// Register creates an account. It does not log the user in.
func (c *Client) Register(ctx context.Context, n Notifier, form models.RegisterRequest) bool {
	const op = "register"

	req, err := jsonRequest(http.MethodPost, "/register", form, nil)
	if err != nil {
		c.fail(ctx, n, op, err, "Registration failed", "Registration failed, please try again later")
		return false
	}
	if err := c.do(ctx, op, req, nil); err != nil {
		c.fail(ctx, n, op, err, "Registration failed", "Registration failed, please try again later")
		return false
	}
	return true
}
