package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/inovacc/bidmatch/internal/model"
)

// SearchContractors runs a free-text contractor search. Blank queries
// return no results without a request.
func (c *Client) SearchContractors(ctx context.Context, query string) ([]model.Contractor, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []model.Contractor{}, nil
	}

	if c.search != nil {
		if err := c.search.Wait(ctx); err != nil {
			return nil, &TransportError{Op: "search rate limit", Err: err}
		}
	}

	body, err := c.get(ctx, "/contractors/search", url.Values{"q": []string{query}})
	if err != nil {
		return nil, err
	}

	out := []model.Contractor{}
	if err := decodePath(body, "data.contractors", &out); err != nil {
		return nil, err
	}

	return out, nil
}

// RatingInput is a new review.
type RatingInput struct {
	ContractorID int64  `json:"contractor_id"`
	ProjectID    int64  `json:"project_id,omitempty"`
	Score        int    `json:"score"`
	Comment      string `json:"comment"`
}

// ListRatings returns the reviews left on a contractor.
func (c *Client) ListRatings(ctx context.Context, contractorID int64) ([]model.Rating, error) {
	body, err := c.get(ctx, fmt.Sprintf("/contractors/%d/ratings", contractorID), nil)
	if err != nil {
		return nil, err
	}

	page, err := decodePage[model.Rating](body, "ratings")
	if err != nil {
		return nil, err
	}

	return page.Items, nil
}

// CreateRating posts a review.
func (c *Client) CreateRating(ctx context.Context, in RatingInput) (*model.Rating, error) {
	body, err := c.send(ctx, http.MethodPost, "/ratings", in)
	if err != nil {
		return nil, err
	}

	var r model.Rating
	if err := decodePath(body, "data.rating", &r); err != nil {
		return nil, err
	}

	return &r, nil
}
