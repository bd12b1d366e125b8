package api

import (
	"context"

	"github.com/inovacc/bidmatch/internal/model"
)

// ListTransactions returns one page of payment history.
func (c *Client) ListTransactions(ctx context.Context, page int) (*Page[model.Transaction], error) {
	body, err := c.get(ctx, "/transactions", pageQuery(page))
	if err != nil {
		return nil, err
	}

	return decodePage[model.Transaction](body, "transactions")
}

// AllTransactions walks every page. Used by exports. The walk stops early
// when the server returns an empty page or does not advance.
func (c *Client) AllTransactions(ctx context.Context) ([]model.Transaction, error) {
	var out []model.Transaction

	for page := 1; ; page++ {
		p, err := c.ListTransactions(ctx, page)
		if err != nil {
			return nil, err
		}

		out = append(out, p.Items...)

		if len(p.Items) == 0 || p.CurrentPage < page || !p.HasNext() {
			return out, nil
		}
	}
}
