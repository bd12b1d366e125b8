package staging

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/inovacc/bidmatch/internal/api"
	"github.com/inovacc/bidmatch/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticCreds struct{}

func (staticCreds) Token() (string, error) { return "tok", nil }
func (staticCreds) ClearToken() error      { return nil }

func newClient(t *testing.T, url string) *api.Client {
	t.Helper()

	c, err := api.NewClient(url, staticCreds{}, api.ClientOptions{Timeout: 5 * time.Second})
	require.NoError(t, err)

	return c
}

func validFields() map[string]string {
	return map[string]string{
		FieldCity:            "Austin",
		FieldState:           "TX",
		FieldZip:             "78701",
		FieldCategory:        "1",
		FieldDescription:     "<p>Repaint office</p>",
		FieldEstimateDueDate: "2025-01-10",
		FieldStartDate:       "2025-01-15",
		FieldEndDate:         "2025-02-01",
		FieldContactEmail:    "1",
	}
}

func formWith(fields map[string]string, opts Options) *Buffer {
	b := NewProjectForm(opts)
	for k, v := range fields {
		b.SetField(k, v)
	}

	return b
}

func TestValidateProject(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(f map[string]string)
		wantField string
	}{
		{name: "valid", mutate: func(f map[string]string) {}},
		{name: "zip plus four", mutate: func(f map[string]string) { f[FieldZip] = "78701-1234" }},
		{name: "missing city", mutate: func(f map[string]string) { f[FieldCity] = "  " }, wantField: FieldCity},
		{name: "long state", mutate: func(f map[string]string) { f[FieldState] = "Texas" }, wantField: FieldState},
		{name: "bad zip", mutate: func(f map[string]string) { f[FieldZip] = "787" }, wantField: FieldZip},
		{name: "no category", mutate: func(f map[string]string) { f[FieldCategory] = "0" }, wantField: FieldCategory},
		{name: "empty description", mutate: func(f map[string]string) { f[FieldDescription] = "<p> </p>" }, wantField: FieldDescription},
		{name: "bad date", mutate: func(f map[string]string) { f[FieldStartDate] = "01/15/2025" }, wantField: FieldStartDate},
		{name: "end before start", mutate: func(f map[string]string) { f[FieldEndDate] = "2025-01-14" }, wantField: FieldEndDate},
		{name: "estimate after start", mutate: func(f map[string]string) { f[FieldEstimateDueDate] = "2025-01-16" }, wantField: FieldEstimateDueDate},
		{name: "no contact method", mutate: func(f map[string]string) { f[FieldContactEmail] = "" }, wantField: FieldContactMethods},
		{name: "unknown status", mutate: func(f map[string]string) { f[FieldStatus] = "archived" }, wantField: FieldStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validFields()
			tt.mutate(f)

			errs := ValidateProject(f)

			if tt.wantField == "" {
				assert.Empty(t, errs)
				return
			}

			assert.Len(t, errs, 1, "%v", errs)
			assert.NotEmpty(t, errs[tt.wantField])
		})
	}
}

func TestSubmitProject_ValidationBlocksRequest(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { hits++ }))
	defer srv.Close()

	client := newClient(t, srv.URL)
	tt := &toasts{}

	fields := validFields()
	fields[FieldCity] = ""
	b := formWith(fields, Options{Notifier: tt})

	err := b.SubmitProject(context.Background(), func(ctx context.Context, sub *api.ProjectSubmission) error {
		_, err := client.CreateProject(ctx, sub)
		return err
	})

	var valErr *api.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Zero(t, hits, "no network call")
	assert.NotEmpty(t, b.Error(FieldCity))
	assert.NotEmpty(t, valErr.Fields[FieldCity])
	assert.Len(t, tt.items, 1, "a notification is shown")
	assert.Equal(t, "Austin", validFields()[FieldCity])
}

func TestSubmitProject_CreateScenario(t *testing.T) {
	var (
		mu     sync.Mutex
		posts  int
		fields map[string][]string
		files  int
	)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !assert.Equal(t, "POST /projects", r.Method+" "+r.URL.Path) {
			http.Error(w, "unexpected", http.StatusBadRequest)
			return
		}

		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			return
		}

		mu.Lock()
		posts++
		fields = r.MultipartForm.Value
		files = len(r.MultipartForm.File)
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	client := newClient(t, srv.URL)
	b := formWith(validFields(), Options{})

	err := b.SubmitProject(context.Background(), func(ctx context.Context, sub *api.ProjectSubmission) error {
		_, err := client.CreateProject(ctx, sub)
		return err
	})
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()

	assert.Equal(t, 1, posts)
	assert.Equal(t, []string{"Austin"}, fields["city"])
	assert.Equal(t, []string{"TX"}, fields["state"])
	assert.Equal(t, []string{"78701"}, fields["zip"])
	assert.Equal(t, []string{"1"}, fields["category_id"])
	assert.Equal(t, []string{"2025-01-10"}, fields["estimate_due_date"])
	assert.Equal(t, []string{"2025-01-15"}, fields["start_date"])
	assert.Equal(t, []string{"2025-02-01"}, fields["end_date"])
	assert.Equal(t, []string{"<p>Repaint office</p>"}, fields["description"])
	assert.Equal(t, []string{"1"}, fields["contact_methods[email]"])
	assert.Equal(t, []string{"0"}, fields["contact_methods[phone]"])
	assert.Equal(t, []string{"0"}, fields["attachments_count"])
	assert.Zero(t, files, "attachments array is empty")

	assert.Empty(t, b.Fields(), "form reset after success")
	assert.False(t, b.Submitting())
}

// projectStore is a tiny fake of the projects endpoints that stores what
// it is sent.
type projectStore struct {
	mu      sync.Mutex
	project model.Project
}

func (s *projectStore) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")

		path := "/projects/" + strconv.FormatInt(s.project.ID, 10)
		if r.URL.Path != path {
			http.NotFound(w, r)
			return
		}

		if r.Method == http.MethodPost {
			if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
				return
			}

			assert.Equal(t, "PUT", r.FormValue("_method"))

			p := s.project
			p.City = r.FormValue("city")
			p.State = r.FormValue("state")
			p.Zip = r.FormValue("zip")
			p.CategoryID, _ = strconv.ParseInt(r.FormValue("category_id"), 10, 64)
			p.Description = r.FormValue("description")
			p.EstimateDueDate, _ = model.ParseDate(r.FormValue("estimate_due_date"))
			p.StartDate, _ = model.ParseDate(r.FormValue("start_date"))
			p.EndDate, _ = model.ParseDate(r.FormValue("end_date"))
			s.project = p
		}

		body, _ := json.Marshal(map[string]any{"success": true, "data": map[string]any{"project": s.project}})
		_, _ = w.Write(body)
	}
}

func TestProjectForm_UnmodifiedSaveIsIdempotent(t *testing.T) {
	store := &projectStore{project: model.Project{
		ID:              9,
		City:            "Round Rock",
		State:           "TX",
		Zip:             "78664-1234",
		CategoryID:      3,
		Description:     "<p>Replace <strong>roof</strong> shingles</p>",
		EstimateDueDate: model.NewDate(2025, time.March, 1),
		StartDate:       model.NewDate(2025, time.March, 10),
		EndDate:         model.NewDate(2025, time.April, 2),
		Status:          model.ProjectActive,
		ContactMethods:  model.ContactMethods{Phone: true},
		Attachments:     []model.Attachment{{ID: 4, File: "projects/9/roof.jpg", Description: "current roof"}},
	}}

	srv := httptest.NewServer(store.handler(t))
	defer srv.Close()

	client := newClient(t, srv.URL)
	ctx := context.Background()

	before, err := client.GetProject(ctx, 9)
	require.NoError(t, err)

	form := ProjectFormFrom(*before, Options{})

	sub, err := ProjectSubmission(form)
	require.NoError(t, err)
	require.Len(t, sub.Existing, 1)
	assert.Empty(t, sub.NewFiles, "persisted attachments are not re-uploaded")

	require.NoError(t, form.SubmitProject(ctx, func(ctx context.Context, sub *api.ProjectSubmission) error {
		_, err := client.UpdateProject(ctx, 9, sub)
		return err
	}))

	after, err := client.GetProject(ctx, 9)
	require.NoError(t, err)

	assert.Equal(t, before.CategoryID, after.CategoryID)
	assert.Equal(t, before.Location(), after.Location())
	assert.Equal(t, before.Zip, after.Zip)
	assert.True(t, before.EstimateDueDate.Equal(after.EstimateDueDate))
	assert.True(t, before.StartDate.Equal(after.StartDate))
	assert.True(t, before.EndDate.Equal(after.EndDate))
	assert.Equal(t, before.Description, after.Description)
}

func TestBeginProject(t *testing.T) {
	b := formWith(validFields(), Options{})

	sub, err := b.BeginProject()
	require.NoError(t, err)
	assert.Equal(t, int64(1), sub.CategoryID)
	assert.True(t, b.Submitting())

	_, err = b.BeginProject()
	assert.ErrorIs(t, err, ErrSubmitInFlight)

	b.End(nil)
	assert.False(t, b.Submitting())
}
