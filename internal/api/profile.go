package api

import (
	"context"
	"net/http"

	"github.com/inovacc/bidmatch/internal/model"
)

// ProfileUpdate carries editable profile fields. Nil fields are left as is.
type ProfileUpdate struct {
	Name    *string `json:"name,omitempty"`
	Company *string `json:"company,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	City    *string `json:"city,omitempty"`
	State   *string `json:"state,omitempty"`
	Zip     *string `json:"zip,omitempty"`
}

// GetProfile returns the signed-in account.
func (c *Client) GetProfile(ctx context.Context) (*model.Profile, error) {
	body, err := c.get(ctx, "/profile", nil)
	if err != nil {
		return nil, err
	}

	var p model.Profile
	if err := decodePath(body, "data.user", &p); err != nil {
		return nil, err
	}

	return &p, nil
}

// UpdateProfile saves profile edits and returns the stored profile.
func (c *Client) UpdateProfile(ctx context.Context, in ProfileUpdate) (*model.Profile, error) {
	body, err := c.send(ctx, http.MethodPut, "/profile", in)
	if err != nil {
		return nil, err
	}

	var p model.Profile
	if err := decodePath(body, "data.user", &p); err != nil {
		return nil, err
	}

	return &p, nil
}
