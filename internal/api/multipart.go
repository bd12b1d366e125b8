package api

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"strconv"

	"github.com/inovacc/bidmatch/internal/model"
)

// NewFile is a locally staged attachment to upload.
type NewFile struct {
	Path        string
	Name        string
	MIME        string
	Description string
}

// ExistingFile updates the description of an attachment the server already
// has. It is never re-uploaded.
type ExistingFile struct {
	ID          int64
	Description string
}

// ProjectSubmission is the outbound form for creating or editing a project.
type ProjectSubmission struct {
	City            string
	State           string
	Zip             string
	CategoryID      int64
	Description     string
	EstimateDueDate model.Date
	StartDate       model.Date
	EndDate         model.Date
	Status          model.ProjectStatus
	ContactMethods  model.ContactMethods
	NewFiles        []NewFile
	Existing        []ExistingFile
}

func boolField(b bool) string {
	if b {
		return "1"
	}

	return "0"
}

// encode renders the submission as multipart/form-data.
func (s *ProjectSubmission) encode(update bool) ([]byte, string, error) {
	var buf bytes.Buffer

	w := multipart.NewWriter(&buf)

	fields := [][2]string{
		{"city", s.City},
		{"state", s.State},
		{"zip", s.Zip},
		{"category_id", strconv.FormatInt(s.CategoryID, 10)},
		{"description", s.Description},
		{"estimate_due_date", s.EstimateDueDate.String()},
		{"start_date", s.StartDate.String()},
		{"end_date", s.EndDate.String()},
		{"contact_methods[email]", boolField(s.ContactMethods.Email)},
		{"contact_methods[phone]", boolField(s.ContactMethods.Phone)},
		{"contact_methods[text]", boolField(s.ContactMethods.Text)},
		{"attachments_count", strconv.Itoa(len(s.NewFiles))},
	}

	if s.Status != "" {
		fields = append(fields, [2]string{"status", string(s.Status)})
	}

	if update {
		fields = append(fields, [2]string{"_method", "PUT"})
	}

	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, "", fmt.Errorf("failed to write field %s: %w", f[0], err)
		}
	}

	for i, nf := range s.NewFiles {
		if err := writeFile(w, fmt.Sprintf("attachments[%d][file]", i), nf); err != nil {
			return nil, "", err
		}

		if err := w.WriteField(fmt.Sprintf("attachments[%d][description]", i), nf.Description); err != nil {
			return nil, "", fmt.Errorf("failed to write attachment description: %w", err)
		}
	}

	for i, ex := range s.Existing {
		if err := w.WriteField(fmt.Sprintf("existing_attachments[%d][id]", i), strconv.FormatInt(ex.ID, 10)); err != nil {
			return nil, "", fmt.Errorf("failed to write existing attachment: %w", err)
		}

		if err := w.WriteField(fmt.Sprintf("existing_attachments[%d][description]", i), ex.Description); err != nil {
			return nil, "", fmt.Errorf("failed to write existing attachment: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finish multipart body: %w", err)
	}

	return buf.Bytes(), w.FormDataContentType(), nil
}

func writeFile(w *multipart.Writer, field string, nf NewFile) error {
	f, err := os.Open(nf.Path)
	if err != nil {
		return fmt.Errorf("failed to open attachment: %w", err)
	}

	defer func() {
		_ = f.Close()
	}()

	name := nf.Name
	if name == "" {
		name = filepath.Base(nf.Path)
	}

	contentType := nf.MIME
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, name))
	h.Set("Content-Type", contentType)

	part, err := w.CreatePart(h)
	if err != nil {
		return fmt.Errorf("failed to create attachment part: %w", err)
	}

	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("failed to copy attachment: %w", err)
	}

	return nil
}
