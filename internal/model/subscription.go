package model

import "time"

// SubscriptionStatus is the server-side state of a subscription.
type SubscriptionStatus string

const (
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
	SubscriptionExpired   SubscriptionStatus = "expired"
)

// Plan is a purchasable membership tier.
type Plan struct {
	ID       int64    `json:"id"`
	Name     string   `json:"name"`
	Price    float64  `json:"price"`
	Interval string   `json:"interval"`
	Features []string `json:"features,omitempty"`
}

// Subscription binds an account to a plan for a date range.
type Subscription struct {
	ID       int64              `json:"id"`
	PlanID   int64              `json:"plan_id"`
	Plan     *Plan              `json:"plan,omitempty"`
	Active   bool               `json:"active"`
	Status   SubscriptionStatus `json:"status"`
	StartsAt *time.Time         `json:"starts_at,omitempty"`
	EndsAt   *time.Time         `json:"ends_at,omitempty"`
}

// PlanName returns the embedded plan name or a placeholder.
func (s Subscription) PlanName() string {
	if s.Plan != nil && s.Plan.Name != "" {
		return s.Plan.Name
	}

	return "—"
}

// Cancellable reports whether the server would accept a cancel request.
func (s Subscription) Cancellable() bool {
	return s.Active && s.Status == SubscriptionActive
}
