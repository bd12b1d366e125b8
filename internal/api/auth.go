package api

import (
	"context"
	"net/http"

	"github.com/inovacc/bidmatch/internal/model"
)

// LoginResult is what a successful sign-in yields.
type LoginResult struct {
	Token string
	User  model.Profile
}

// Login exchanges credentials for a bearer token. It is the only call that
// does not require one.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	req, err := jsonRequest(http.MethodPost, "/login", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, err
	}

	req.public = true

	body, err := c.do(ctx, req)
	if err != nil {
		return nil, err
	}

	var res LoginResult
	if err := decodePath(body, "data.token", &res.Token); err != nil {
		return nil, err
	}

	if err := decodePath(body, "data.user", &res.User); err != nil {
		return nil, err
	}

	if res.Token == "" {
		return nil, ErrMalformedResponse
	}

	return &res, nil
}

// Logout revokes the token server-side.
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.send(ctx, http.MethodPost, "/logout", nil)
	return err
}
