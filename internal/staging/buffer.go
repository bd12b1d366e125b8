// Package staging holds in-progress edits to a form until they are sent
// as one request: field values, per-field validation errors, and file
// attachments picked or dropped locally.
//
// Staged files are owned by the buffer until a submission succeeds. Image
// files get a preview handle that is released when the file is removed,
// when the buffer is reset after a confirmed submission, or when the
// buffer is closed, whichever comes first.
package staging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"
	"github.com/h2non/filetype"
	"github.com/inovacc/bidmatch/internal/api"
	"github.com/inovacc/bidmatch/internal/model"
	"github.com/inovacc/bidmatch/internal/notify"
	"github.com/inovacc/bidmatch/internal/preview"
)

// MaxFileSize is the largest attachment accepted.
const MaxFileSize = 10 << 20

var (
	ErrSubmitInFlight    = errors.New("a submission is already in progress")
	ErrFileTooLarge      = errors.New("file is larger than 10 MB")
	ErrNotAFile          = errors.New("not a regular file")
	ErrUnknownAttachment = errors.New("unknown attachment")
	ErrBufferClosed      = errors.New("form closed")
)

// Attachment is either staged (a local file awaiting upload) or persisted
// (already on the server, only its description can change).
type Attachment struct {
	ID string

	// Staged fields.
	Path    string
	Name    string
	MIME    string
	Size    int64
	Preview preview.Handle

	// Persisted fields.
	RemoteID int64
	File     string

	Description string
}

// Staged reports whether the attachment still needs uploading.
func (a Attachment) Staged() bool {
	return a.RemoteID == 0
}

// Options configures a Buffer
type Options struct {
	// Previews receives image previews. Nil disables previews.
	Previews *preview.Registry

	// Notifier is told about validation failures.
	Notifier notify.Emitter

	Logger *slog.Logger
}

// Buffer is the staged state of one form.
type Buffer struct {
	previews *preview.Registry
	notify   notify.Emitter
	logger   *slog.Logger

	fields      map[string]string
	errors      map[string]string
	attachments []Attachment
	submitting  bool
	closed      bool
}

// NewBuffer creates an empty buffer.
func NewBuffer(opts Options) *Buffer {
	b := &Buffer{
		previews: opts.Previews,
		notify:   opts.Notifier,
		logger:   opts.Logger,
		fields:   make(map[string]string),
		errors:   make(map[string]string),
	}

	if b.notify == nil {
		b.notify = notify.Discard
	}

	if b.logger == nil {
		b.logger = slog.Default()
	}

	return b
}

// Field returns a field value.
func (b *Buffer) Field(name string) string {
	return b.fields[name]
}

// SetField edits a field and clears only that field's error.
func (b *Buffer) SetField(name, value string) {
	b.fields[name] = value
	delete(b.errors, name)
}

// Fields returns a copy of every field value.
func (b *Buffer) Fields() map[string]string {
	out := make(map[string]string, len(b.fields))
	for k, v := range b.fields {
		out[k] = v
	}

	return out
}

// Error returns the validation error for a field, or "".
func (b *Buffer) Error(name string) string {
	return b.errors[name]
}

// Errors returns a copy of the current field errors.
func (b *Buffer) Errors() map[string]string {
	out := make(map[string]string, len(b.errors))
	for k, v := range b.errors {
		out[k] = v
	}

	return out
}

// SetErrors replaces the field errors, e.g. with ones returned by the
// server.
func (b *Buffer) SetErrors(errs map[string]string) {
	b.errors = make(map[string]string, len(errs))
	for k, v := range errs {
		b.errors[k] = v
	}
}

// AddFile stages a file chosen with a picker.
func (b *Buffer) AddFile(path string) (Attachment, error) {
	if b.closed {
		return Attachment{}, ErrBufferClosed
	}

	info, err := os.Stat(path)
	if err != nil {
		return Attachment{}, fmt.Errorf("stage %s: %w", path, err)
	}

	if !info.Mode().IsRegular() {
		return Attachment{}, fmt.Errorf("stage %s: %w", path, ErrNotAFile)
	}

	if info.Size() > MaxFileSize {
		return Attachment{}, fmt.Errorf("stage %s: %w", filepath.Base(path), ErrFileTooLarge)
	}

	head, err := readHead(path)
	if err != nil {
		return Attachment{}, fmt.Errorf("stage %s: %w", path, err)
	}

	a := Attachment{
		ID:   uuid.NewString(),
		Path: path,
		Name: filepath.Base(path),
		MIME: "application/octet-stream",
		Size: info.Size(),
	}

	if kind, err := filetype.Match(head); err == nil && kind != filetype.Unknown {
		a.MIME = kind.MIME.Value
	}

	if b.previews != nil && filetype.IsImage(head) {
		h, err := b.previews.Acquire(path)
		if err != nil {
			// the file can still be uploaded without a preview
			b.logger.Warn("preview unavailable", slog.String("path", path), slog.Any("error", err))
		} else {
			a.Preview = h
		}
	}

	b.attachments = append(b.attachments, a)

	b.logger.Debug("attachment staged", slog.String("id", a.ID), slog.String("mime", a.MIME))

	return a, nil
}

// AddDropped stages every path in a drag-and-drop paste. Paths that fail
// are reported together; the rest are still staged.
func (b *Buffer) AddDropped(raw string) ([]Attachment, error) {
	var (
		added []Attachment
		errs  []error
	)

	for _, p := range ParseDropped(raw) {
		a, err := b.AddFile(p)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		added = append(added, a)
	}

	return added, errors.Join(errs...)
}

// LoadPersisted replaces the persisted attachments with the server's list.
func (b *Buffer) LoadPersisted(list []model.Attachment) {
	kept := b.attachments[:0]
	for _, a := range b.attachments {
		if a.Staged() {
			kept = append(kept, a)
		}
	}

	b.attachments = kept

	for _, p := range list {
		b.attachments = append(b.attachments, Attachment{
			ID:          "persisted-" + strconv.FormatInt(p.ID, 10),
			RemoteID:    p.ID,
			File:        p.File,
			Name:        filepath.Base(p.File),
			Description: p.Description,
		})
	}
}

// Attachments returns the staged and persisted attachments in order.
func (b *Buffer) Attachments() []Attachment {
	return append([]Attachment(nil), b.attachments...)
}

// SetDescription edits the description of any attachment.
func (b *Buffer) SetDescription(id, text string) error {
	for i := range b.attachments {
		if b.attachments[i].ID == id {
			b.attachments[i].Description = text
			return nil
		}
	}

	return ErrUnknownAttachment
}

// Remove drops one attachment, releasing its preview.
func (b *Buffer) Remove(id string) error {
	for i, a := range b.attachments {
		if a.ID != id {
			continue
		}

		b.attachments = append(b.attachments[:i], b.attachments[i+1:]...)

		return b.release(a)
	}

	return ErrUnknownAttachment
}

func (b *Buffer) release(a Attachment) error {
	if !a.Preview.Valid() || b.previews == nil {
		return nil
	}

	return b.previews.Release(a.Preview)
}

func (b *Buffer) releaseAll() error {
	var errs []error

	for _, a := range b.attachments {
		if err := b.release(a); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// Reset clears everything after a confirmed submission.
func (b *Buffer) Reset() error {
	err := b.releaseAll()

	b.attachments = nil
	b.fields = make(map[string]string)
	b.errors = make(map[string]string)

	return err
}

// Close tears the buffer down, releasing every preview. Safe to call more
// than once.
func (b *Buffer) Close() error {
	if b.closed {
		return nil
	}

	b.closed = true

	err := b.releaseAll()
	b.attachments = nil

	return err
}

// Submitting reports whether a submission is in flight.
func (b *Buffer) Submitting() bool {
	return b.submitting
}

// Validator checks the buffer's fields and returns errors keyed by field.
type Validator func(fields map[string]string) map[string]string

// Begin validates with v and marks a submission in flight. Validation
// failures are stored per field, announced, and returned as
// *api.ValidationError; nothing is marked in flight in that case.
func (b *Buffer) Begin(v Validator) error {
	if b.closed {
		return ErrBufferClosed
	}

	if b.submitting {
		return ErrSubmitInFlight
	}

	if v != nil {
		if errs := v(b.fields); len(errs) > 0 {
			b.SetErrors(errs)

			err := &api.ValidationError{Fields: b.Errors()}
			b.notify.Notify(api.UserMessage(err), notify.SeverityError)

			return err
		}
	}

	b.errors = make(map[string]string)
	b.submitting = true

	return nil
}

// End re-enables submission. The buffer is cleared only when err is nil.
// Field errors reported by the server are kept for display.
func (b *Buffer) End(err error) {
	b.submitting = false

	if err == nil {
		if rerr := b.Reset(); rerr != nil {
			b.logger.Warn("failed to release previews", slog.Any("error", rerr))
		}

		return
	}

	if fields := api.FieldErrors(err); len(fields) > 0 {
		b.SetErrors(fields)
	}
}

// Submit runs one whole submission synchronously: validate, send, then
// clear on success.
func (b *Buffer) Submit(ctx context.Context, v Validator, send func(ctx context.Context) error) error {
	if err := b.Begin(v); err != nil {
		return err
	}

	err := send(ctx)
	b.End(err)

	return err
}

func readHead(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	defer func() {
		_ = f.Close()
	}()

	head := make([]byte, 261)

	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, err
	}

	return head[:n], nil
}
