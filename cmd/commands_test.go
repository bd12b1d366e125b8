package cmd

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/inovacc/bidmatch/internal/api"
	"github.com/inovacc/bidmatch/internal/database"
	"github.com/inovacc/bidmatch/internal/notify"
	"github.com/inovacc/bidmatch/internal/session"
	"github.com/inovacc/bidmatch/internal/staging"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorder) add(req *http.Request) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.calls = append(r.calls, req.Method+" "+req.URL.Path)
}

func (r *recorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]string(nil), r.calls...)
}

// useRuntime points the package runtime at a test server and returns what
// the notifier printed.
func useRuntime(t *testing.T, handler http.HandlerFunc) (*recorder, *bytes.Buffer) {
	t.Helper()

	rec := &recorder{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.add(r)
		handler(w, r)
	}))

	store, err := database.NewBolt(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	sess, err := session.New(session.Options{Store: store, Host: "test", FlagToken: "test-token", Logger: logger})
	require.NoError(t, err)

	client, err := api.NewClient(srv.URL, sess, api.ClientOptions{Logger: logger})
	require.NoError(t, err)

	notes := &bytes.Buffer{}

	rt = &runtime{
		logger:   logger,
		store:    store,
		session:  sess,
		client:   client,
		notifier: notify.NewDispatcher(logger, notify.WriterSender{W: notes}),
	}

	t.Cleanup(func() {
		rt = nil
		srv.Close()
		_ = store.Close()
	})

	return rec, notes
}

// command returns a throwaway command whose output is captured.
func command(t *testing.T, in string) (*cobra.Command, *bytes.Buffer) {
	t.Helper()

	out := &bytes.Buffer{}

	c := &cobra.Command{}
	c.SetOut(out)
	c.SetIn(bytes.NewBufferString(in))
	c.SetContext(t.Context())

	return c, out
}

func envelope(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func TestProjectsList(t *testing.T) {
	_, _ = useRuntime(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "2", r.URL.Query().Get("page"))

		envelope(w, http.StatusOK, `{"success":true,"data":{"projects":{
			"data":[{"id":7,"city":"Austin","state":"TX","zip":"78701","status":"active",
				"category":{"id":3,"name":"Roofing"},"start_date":"2025-03-10","end_date":"2025-03-20"}],
			"current_page":2,"last_page":3,"total":21}}}`)
	})

	projectsPage, projectsJSON = 2, false
	t.Cleanup(func() { projectsPage = 1 })

	c, out := command(t, "")
	require.NoError(t, runProjectsList(c, nil))

	assert.Contains(t, out.String(), "Austin, TX 78701")
	assert.Contains(t, out.String(), "Roofing")
	assert.Contains(t, out.String(), "Page 2 of 3 (21 total)")
}

func TestProjectsDelete(t *testing.T) {
	tests := []struct {
		name  string
		input string
		calls int
	}{
		{name: "confirmed", input: "y\n", calls: 1},
		{name: "declined", input: "n\n", calls: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, notes := useRuntime(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodDelete, r.Method)
				envelope(w, http.StatusOK, `{"success":true,"message":"Deleted"}`)
			})

			projectsYes = false

			c, _ := command(t, tt.input)
			require.NoError(t, runProjectsDelete(c, []string{"12"}))

			assert.Len(t, rec.list(), tt.calls)

			if tt.calls > 0 {
				assert.Equal(t, "DELETE /projects/12", rec.list()[0])
				assert.Contains(t, notes.String(), "Project #12 deleted")
			}
		})
	}
}

func TestProjectsDelete_ServerMessage(t *testing.T) {
	_, _ = useRuntime(t, func(w http.ResponseWriter, _ *http.Request) {
		envelope(w, http.StatusForbidden, `{"success":false,"message":"You do not own this project"}`)
	})

	projectsYes = true
	t.Cleanup(func() { projectsYes = false })

	c, _ := command(t, "")
	err := runProjectsDelete(c, []string{"12"})

	require.Error(t, err)
	assert.Equal(t, "You do not own this project", err.Error())
}

func TestUnauthorizedSuggestsLogin(t *testing.T) {
	_, _ = useRuntime(t, func(w http.ResponseWriter, _ *http.Request) {
		envelope(w, http.StatusUnauthorized, `{"success":false,"message":"Unauthenticated."}`)
	})

	c, _ := command(t, "")
	err := runSubscriptionsList(c, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "bidmatch login")
}

func TestProjectFlags_Apply(t *testing.T) {
	dir := t.TempDir()
	plan := filepath.Join(dir, "plan.pdf")
	require.NoError(t, os.WriteFile(plan, []byte("%PDF-1.4\n"), 0o600))

	var f projectFlags

	fs := pflag.NewFlagSet("create", pflag.ContinueOnError)
	f.register(fs, false)

	require.NoError(t, fs.Parse([]string{
		"--city", "Austin", "--state", "tx", "--zip", "78701",
		"--category", "3", "-d", "Tear off\nand replace",
		"--due", "2025-03-01", "--start", "2025-03-10", "--end", "2025-03-20",
		"--contact", "email,text", "--attach", plan,
	}))

	buf := staging.NewProjectForm(staging.Options{})
	t.Cleanup(func() { _ = buf.Close() })

	require.NoError(t, f.apply(fs, buf))

	assert.Equal(t, "Austin", buf.Field(staging.FieldCity))
	assert.Equal(t, "3", buf.Field(staging.FieldCategory))
	assert.Equal(t, "2025-03-10", buf.Field(staging.FieldStartDate))
	assert.Equal(t, "1", buf.Field(staging.FieldContactEmail))
	assert.Empty(t, buf.Field(staging.FieldContactPhone))
	assert.Equal(t, "1", buf.Field(staging.FieldContactText))
	assert.Contains(t, buf.Field(staging.FieldDescription), "<p>")
	require.Len(t, buf.Attachments(), 1)
	assert.Equal(t, "plan.pdf", buf.Attachments()[0].Name)
	assert.Empty(t, staging.ValidateProject(buf.Fields()))
}

func TestProjectFlags_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "bad date", args: []string{"--due", "03/01/2025"}},
		{name: "unknown contact", args: []string{"--contact", "fax"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f projectFlags

			fs := pflag.NewFlagSet("create", pflag.ContinueOnError)
			fs.SetOutput(io.Discard)
			f.register(fs, false)

			buf := staging.NewProjectForm(staging.Options{})
			t.Cleanup(func() { _ = buf.Close() })

			err := fs.Parse(tt.args)
			if err == nil {
				err = f.apply(fs, buf)
			}

			assert.Error(t, err)
		})
	}
}

func TestProjectsCreate_InvalidSendsNothing(t *testing.T) {
	rec, _ := useRuntime(t, func(w http.ResponseWriter, _ *http.Request) {
		envelope(w, http.StatusOK, `{"success":true}`)
	})

	createFlags = projectFlags{}
	t.Cleanup(func() { createFlags = projectFlags{} })

	c, _ := command(t, "")
	createFlags.register(c.Flags(), false)
	require.NoError(t, c.Flags().Parse([]string{"--city", "Austin"}))

	err := runProjectsCreate(c, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "state: State is required")
	assert.Contains(t, err.Error(), "contact_methods: Choose at least one contact method")
	assert.Empty(t, rec.list())
}

func TestRate(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
		calls   int
	}{
		{name: "valid", args: []string{"--score", "4", "--comment", "Tidy work"}, calls: 1},
		{name: "missing score", args: []string{"--comment", "Tidy work"}, wantErr: "score: Score is required"},
		{name: "out of range", args: []string{"--score", "9"}, wantErr: "score: Score must be between 1 and 5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, _ := useRuntime(t, func(w http.ResponseWriter, r *http.Request) {
				envelope(w, http.StatusCreated, `{"success":true,"data":{"rating":{"id":1,"contractor_id":7,"score":4}}}`)
			})

			rateScore, rateComment = 0, ""

			c, _ := command(t, "")
			c.Flags().IntVarP(&rateScore, "score", "s", 0, "")
			c.Flags().StringVarP(&rateComment, "comment", "m", "", "")
			require.NoError(t, c.Flags().Parse(tt.args))

			err := runRate(c, []string{"7"})

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			} else {
				require.NoError(t, err)
			}

			assert.Len(t, rec.list(), tt.calls)
		})
	}
}

func TestTransactionsExport(t *testing.T) {
	rec, notes := useRuntime(t, func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		if page == "" {
			page = "1"
		}

		envelope(w, http.StatusOK, fmt.Sprintf(`{"success":true,"data":{"transactions":{
			"data":[{"id":%s,"amount":49.5,"currency":"usd","status":"paid","created_at":"2025-01-02T10:00:00Z"}],
			"current_page":%s,"last_page":2,"total":2}}}`, page, page))
	})

	transactionsOutput = filepath.Join(t.TempDir(), "tx.xlsx")
	transactionsForce = false

	c, _ := command(t, "")
	require.NoError(t, runTransactionsExport(c, nil))

	info, err := os.Stat(transactionsOutput)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
	assert.Len(t, rec.list(), 2)
	assert.Contains(t, notes.String(), "Exported 2 transactions")

	err = runTransactionsExport(c, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestDateFlag(t *testing.T) {
	var d dateFlag

	assert.Equal(t, "", d.String())
	assert.Equal(t, "date", d.Type())
	require.NoError(t, d.Set("2025-01-31"))
	assert.Equal(t, "2025-01-31", d.String())
	assert.Error(t, d.Set("31/01/2025"))
}
