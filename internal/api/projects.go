package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/inovacc/bidmatch/internal/model"
)

// ListProjects returns one page of the signed-in user's projects.
func (c *Client) ListProjects(ctx context.Context, page int) (*Page[model.Project], error) {
	body, err := c.get(ctx, "/projects", pageQuery(page))
	if err != nil {
		return nil, err
	}

	return decodePage[model.Project](body, "projects")
}

// GetProject loads one project for display or editing.
func (c *Client) GetProject(ctx context.Context, id int64) (*model.Project, error) {
	body, err := c.get(ctx, fmt.Sprintf("/projects/%d", id), nil)
	if err != nil {
		return nil, err
	}

	var p model.Project
	if err := decodePath(body, "data.project", &p); err != nil {
		return nil, err
	}

	if p.ID == 0 {
		return nil, fmt.Errorf("%w: project %d missing from response", ErrMalformedResponse, id)
	}

	return &p, nil
}

// CreateProject posts a new project as multipart form data.
func (c *Client) CreateProject(ctx context.Context, sub *ProjectSubmission) (*model.Project, error) {
	return c.submitProject(ctx, "/projects", sub, false)
}

// UpdateProject saves an edited project. The form is POSTed with
// _method=PUT because multipart PUT bodies are not parsed server-side.
func (c *Client) UpdateProject(ctx context.Context, id int64, sub *ProjectSubmission) (*model.Project, error) {
	return c.submitProject(ctx, fmt.Sprintf("/projects/%d", id), sub, true)
}

func (c *Client) submitProject(ctx context.Context, path string, sub *ProjectSubmission, update bool) (*model.Project, error) {
	if sub == nil {
		return nil, fmt.Errorf("submission is required")
	}

	body, contentType, err := sub.encode(update)
	if err != nil {
		return nil, err
	}

	resp, err := c.do(ctx, request{
		method:      http.MethodPost,
		path:        path,
		body:        body,
		contentType: contentType,
	})
	if err != nil {
		return nil, err
	}

	var p model.Project
	if err := decodePath(resp, "data.project", &p); err != nil {
		return nil, err
	}

	return &p, nil
}

// DeleteProject removes a project.
func (c *Client) DeleteProject(ctx context.Context, id int64) error {
	_, err := c.do(ctx, request{method: http.MethodDelete, path: fmt.Sprintf("/projects/%d", id)})
	return err
}

// ListCategories returns the trade categories projects can be filed under.
func (c *Client) ListCategories(ctx context.Context) ([]model.Category, error) {
	body, err := c.get(ctx, "/categories", nil)
	if err != nil {
		return nil, err
	}

	out := []model.Category{}
	if err := decodePath(body, "data.categories", &out); err != nil {
		return nil, err
	}

	return out, nil
}
