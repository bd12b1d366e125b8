package staging

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/inovacc/bidmatch/internal/api"
	"github.com/inovacc/bidmatch/internal/model"
	"github.com/inovacc/bidmatch/internal/notify"
	"github.com/inovacc/bidmatch/internal/preview"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()

	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, data, 0o600))

	return p
}

func newRegistry(t *testing.T) *preview.Registry {
	t.Helper()

	r, err := preview.NewRegistry(t.TempDir(), nil)
	require.NoError(t, err)

	t.Cleanup(func() { _ = r.Close() })

	return r
}

type toasts struct{ items []string }

func (t *toasts) Notify(msg string, sev notify.Severity) {
	t.items = append(t.items, string(sev)+":"+msg)
}

func TestBuffer_StagedFilesIndependentPreviews(t *testing.T) {
	dir := t.TempDir()
	reg := newRegistry(t)
	b := NewBuffer(Options{Previews: reg})

	const n = 4

	ids := map[string]bool{}
	atts := make([]Attachment, 0, n)

	for i := 0; i < n; i++ {
		a, err := b.AddFile(writeFile(t, dir, fmt.Sprintf("photo-%d.png", i), pngHeader))
		require.NoError(t, err)

		ids[a.ID] = true
		atts = append(atts, a)
	}

	assert.Len(t, ids, n, "every staged file gets its own id")
	assert.Equal(t, n, reg.Live())

	require.NoError(t, b.Remove(atts[1].ID))

	assert.Equal(t, n-1, reg.Live())
	assert.NoFileExists(t, atts[1].Preview.Path)

	for i, a := range atts {
		if i == 1 {
			continue
		}

		assert.FileExists(t, a.Preview.Path, "other previews untouched")
	}

	assert.Len(t, b.Attachments(), n-1)
	assert.ErrorIs(t, b.Remove(atts[1].ID), ErrUnknownAttachment)

	require.NoError(t, b.Close())
	assert.Zero(t, reg.Live(), "teardown releases the rest")
	assert.NoError(t, b.Close())
}

func TestBuffer_AddFileMIME(t *testing.T) {
	dir := t.TempDir()
	reg := newRegistry(t)
	b := NewBuffer(Options{Previews: reg})

	img, err := b.AddFile(writeFile(t, dir, "site.png", pngHeader))
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.MIME)
	assert.True(t, img.Preview.Valid())
	assert.True(t, img.Staged())

	doc, err := b.AddFile(writeFile(t, dir, "notes.txt", []byte("just text")))
	require.NoError(t, err)
	assert.Equal(t, "application/octet-stream", doc.MIME)
	assert.False(t, doc.Preview.Valid(), "only images get previews")

	assert.Equal(t, 1, reg.Live())
}

func TestBuffer_AddFileRejects(t *testing.T) {
	dir := t.TempDir()
	b := NewBuffer(Options{})

	_, err := b.AddFile(filepath.Join(dir, "missing.pdf"))
	assert.Error(t, err)

	_, err = b.AddFile(dir)
	assert.ErrorIs(t, err, ErrNotAFile)

	big := filepath.Join(dir, "big.bin")
	f, err := os.Create(big)
	require.NoError(t, err)
	require.NoError(t, f.Truncate(MaxFileSize+1))
	require.NoError(t, f.Close())

	_, err = b.AddFile(big)
	assert.ErrorIs(t, err, ErrFileTooLarge)

	assert.Empty(t, b.Attachments())
}

func TestBuffer_AddDropped(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "with space.png", pngHeader)
	c := writeFile(t, dir, "plain.txt", []byte("x"))

	b := NewBuffer(Options{})

	added, err := b.AddDropped("'" + a + "' " + c + " " + filepath.Join(dir, "gone.txt"))
	require.Error(t, err, "missing file is reported")
	assert.Len(t, added, 2, "the others are still staged")
}

func TestBuffer_FieldErrorsClearIndividually(t *testing.T) {
	tt := &toasts{}
	b := NewProjectForm(Options{Notifier: tt})

	err := b.Begin(ValidateProject)

	var valErr *api.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.NotEmpty(t, b.Error(FieldCity))
	assert.NotEmpty(t, b.Error(FieldZip))
	assert.False(t, b.Submitting())

	b.SetField(FieldCity, "Austin")

	assert.Empty(t, b.Error(FieldCity), "edited field cleared")
	assert.NotEmpty(t, b.Error(FieldZip), "other fields keep their errors")
	assert.Equal(t, []string{"error:Please correct the highlighted fields."}, tt.items)
}

func TestBuffer_SubmitGating(t *testing.T) {
	b := NewBuffer(Options{})
	b.SetField("name", "x")

	require.NoError(t, b.Begin(nil))
	assert.True(t, b.Submitting())
	assert.ErrorIs(t, b.Begin(nil), ErrSubmitInFlight)

	b.End(errors.New("server said no"))
	assert.False(t, b.Submitting())
	assert.Equal(t, "x", b.Field("name"), "failed submit keeps the form")

	require.NoError(t, b.Begin(nil))
	b.End(nil)
	assert.Empty(t, b.Fields(), "confirmed submit clears the form")
}

func TestBuffer_ResetReleasesPreviewsOnlyOnSuccess(t *testing.T) {
	reg := newRegistry(t)
	b := NewBuffer(Options{Previews: reg})

	_, err := b.AddFile(writeFile(t, t.TempDir(), "p.png", pngHeader))
	require.NoError(t, err)

	err = b.Submit(context.Background(), nil, func(context.Context) error { return errors.New("boom") })
	require.Error(t, err)
	assert.Equal(t, 1, reg.Live())
	assert.Len(t, b.Attachments(), 1)

	require.NoError(t, b.Submit(context.Background(), nil, func(context.Context) error { return nil }))
	assert.Zero(t, reg.Live())
	assert.Empty(t, b.Attachments())
}

func TestBuffer_EndKeepsServerFieldErrors(t *testing.T) {
	b := NewBuffer(Options{})

	require.NoError(t, b.Begin(nil))
	b.End(&api.ValidationError{Fields: map[string]string{"zip": "Unknown ZIP"}})

	assert.Equal(t, "Unknown ZIP", b.Error("zip"))
}

func TestBuffer_EndKeepsServerFieldMap(t *testing.T) {
	b := NewBuffer(Options{})
	b.SetField(FieldCity, "Austin")

	require.NoError(t, b.Begin(nil))
	b.End(&api.APIError{
		Status:  422,
		Message: "The zip must be 5 digits.",
		Fields:  map[string]string{FieldZip: "The zip must be 5 digits."},
	})

	assert.Equal(t, "The zip must be 5 digits.", b.Error(FieldZip))
	assert.Equal(t, "Austin", b.Field(FieldCity), "a failed submission keeps the input")
	assert.False(t, b.Submitting())
}

func TestBuffer_PersistedAndDescriptions(t *testing.T) {
	b := NewBuffer(Options{})

	b.LoadPersisted([]model.Attachment{
		{ID: 10, File: "projects/10/plan.pdf", Description: "plans"},
	})

	atts := b.Attachments()
	require.Len(t, atts, 1)
	assert.False(t, atts[0].Staged())
	assert.Equal(t, "plan.pdf", atts[0].Name)

	require.NoError(t, b.SetDescription(atts[0].ID, "floor plans"))
	assert.Equal(t, "floor plans", b.Attachments()[0].Description)
	assert.ErrorIs(t, b.SetDescription("nope", "x"), ErrUnknownAttachment)
}

func TestBuffer_Closed(t *testing.T) {
	b := NewBuffer(Options{})
	require.NoError(t, b.Close())

	_, err := b.AddFile(writeFile(t, t.TempDir(), "a.txt", []byte("a")))
	assert.ErrorIs(t, err, ErrBufferClosed)
	assert.ErrorIs(t, b.Begin(nil), ErrBufferClosed)
}
