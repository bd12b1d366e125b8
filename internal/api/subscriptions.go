package api

import (
	"context"
	"net/http"

	"github.com/inovacc/bidmatch/internal/model"
)

// ListSubscriptions returns the account's subscriptions, newest first.
func (c *Client) ListSubscriptions(ctx context.Context) ([]model.Subscription, error) {
	body, err := c.get(ctx, "/subscriptions", nil)
	if err != nil {
		return nil, err
	}

	page, err := decodePage[model.Subscription](body, "subscriptions")
	if err != nil {
		return nil, err
	}

	return page.Items, nil
}

// ListPlans returns the plans that can be subscribed to.
func (c *Client) ListPlans(ctx context.Context) ([]model.Plan, error) {
	body, err := c.get(ctx, "/plans", nil)
	if err != nil {
		return nil, err
	}

	out := []model.Plan{}
	if err := decodePath(body, "data.plans", &out); err != nil {
		return nil, err
	}

	return out, nil
}

// CancelSubscription asks the server to cancel a subscription. The new
// status is only known after re-fetching.
func (c *Client) CancelSubscription(ctx context.Context, id int64) error {
	_, err := c.send(ctx, http.MethodPost, "/subscriptions/cancel", map[string]int64{
		"subscription_id": id,
	})

	return err
}
