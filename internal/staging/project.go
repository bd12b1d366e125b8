package staging

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/inovacc/bidmatch/internal/api"
	"github.com/inovacc/bidmatch/internal/model"
	"github.com/inovacc/bidmatch/internal/richtext"
)

// Project form field names. They match the API's wire names so server
// field errors land on the right input.
const (
	FieldCity            = "city"
	FieldState           = "state"
	FieldZip             = "zip"
	FieldCategory        = "category_id"
	FieldDescription     = "description"
	FieldEstimateDueDate = "estimate_due_date"
	FieldStartDate       = "start_date"
	FieldEndDate         = "end_date"
	FieldStatus          = "status"
	FieldContactEmail    = "contact_methods.email"
	FieldContactPhone    = "contact_methods.phone"
	FieldContactText     = "contact_methods.text"

	// FieldContactMethods carries the "pick at least one" error.
	FieldContactMethods = "contact_methods"
)

var (
	stateRe = regexp.MustCompile(`^[A-Za-z]{2}$`)
	zipRe   = regexp.MustCompile(`^\d{5}(-\d{4})?$`)
	idRe    = regexp.MustCompile(`^[1-9]\d*$`)
)

// FormBool encodes a checkbox value.
func FormBool(v bool) string {
	if v {
		return "1"
	}

	return ""
}

// NewProjectForm returns an empty project form.
func NewProjectForm(opts Options) *Buffer {
	return NewBuffer(opts)
}

// ProjectFormFrom loads an existing project for editing.
func ProjectFormFrom(p model.Project, opts Options) *Buffer {
	b := NewBuffer(opts)

	b.fields[FieldCity] = p.City
	b.fields[FieldState] = p.State
	b.fields[FieldZip] = p.Zip
	b.fields[FieldDescription] = p.Description
	b.fields[FieldEstimateDueDate] = p.EstimateDueDate.String()
	b.fields[FieldStartDate] = p.StartDate.String()
	b.fields[FieldEndDate] = p.EndDate.String()
	b.fields[FieldStatus] = string(p.Status)
	b.fields[FieldContactEmail] = FormBool(p.ContactMethods.Email)
	b.fields[FieldContactPhone] = FormBool(p.ContactMethods.Phone)
	b.fields[FieldContactText] = FormBool(p.ContactMethods.Text)

	if p.CategoryID != 0 {
		b.fields[FieldCategory] = strconv.FormatInt(p.CategoryID, 10)
	}

	b.LoadPersisted(p.Attachments)

	return b
}

func dateRules(label string) []validation.Rule {
	return []validation.Rule{
		validation.Required.Error(label + " is required"),
		validation.Date(model.DateLayout).Error(label + " must be a date like 2025-01-31"),
	}
}

func describedHTML(value any) error {
	s, _ := value.(string)
	if richtext.IsBlank(s) {
		return validation.NewError("validation_description_required", "Description is required")
	}

	return nil
}

func statusValues() []any {
	out := make([]any, 0, len(model.ProjectStatuses()))
	for _, s := range model.ProjectStatuses() {
		out = append(out, string(s))
	}

	return out
}

// ValidateProject checks a project form. Errors are keyed by field name.
func ValidateProject(f map[string]string) map[string]string {
	trim := func(k string) string { return strings.TrimSpace(f[k]) }

	errs := validation.Errors{
		FieldCity: validation.Validate(trim(FieldCity),
			validation.Required.Error("City is required"),
			validation.Length(1, 100).Error("City is too long"),
		),
		FieldState: validation.Validate(trim(FieldState),
			validation.Required.Error("State is required"),
			validation.Match(stateRe).Error("State must be a two-letter code"),
		),
		FieldZip: validation.Validate(trim(FieldZip),
			validation.Required.Error("ZIP code is required"),
			validation.Match(zipRe).Error("ZIP code must be 5 digits or ZIP+4"),
		),
		FieldCategory: validation.Validate(trim(FieldCategory),
			validation.Required.Error("Category is required"),
			validation.Match(idRe).Error("Category is required"),
		),
		FieldDescription:     validation.Validate(f[FieldDescription], validation.By(describedHTML)),
		FieldEstimateDueDate: validation.Validate(trim(FieldEstimateDueDate), dateRules("Estimate due date")...),
		FieldStartDate:       validation.Validate(trim(FieldStartDate), dateRules("Start date")...),
		FieldEndDate:         validation.Validate(trim(FieldEndDate), dateRules("End date")...),
		FieldStatus: validation.Validate(trim(FieldStatus),
			validation.In(statusValues()...).Error("Status is not valid"),
		),
	}

	if f[FieldContactEmail] == "" && f[FieldContactPhone] == "" && f[FieldContactText] == "" {
		errs[FieldContactMethods] = validation.NewError("validation_contact_required", "Choose at least one contact method")
	}

	out := make(map[string]string)

	for k, err := range errs {
		if err != nil {
			out[k] = err.Error()
		}
	}

	// ordering checks only when each date parsed
	due, dueErr := model.ParseDate(trim(FieldEstimateDueDate))
	start, startErr := model.ParseDate(trim(FieldStartDate))
	end, endErr := model.ParseDate(trim(FieldEndDate))

	if out[FieldStartDate] == "" && out[FieldEndDate] == "" && startErr == nil && endErr == nil && end.Before(start.Time) {
		out[FieldEndDate] = "End date must be on or after the start date"
	}

	if out[FieldEstimateDueDate] == "" && out[FieldStartDate] == "" && dueErr == nil && startErr == nil && start.Before(due.Time) {
		out[FieldEstimateDueDate] = "Estimate due date must be on or before the start date"
	}

	return out
}

// ProjectSubmission builds the outbound request. Staged files are sent as
// uploads; persisted ones only as id and description.
func ProjectSubmission(b *Buffer) (*api.ProjectSubmission, error) {
	f := b.fields

	category, err := strconv.ParseInt(strings.TrimSpace(f[FieldCategory]), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid category: %w", err)
	}

	sub := &api.ProjectSubmission{
		City:        strings.TrimSpace(f[FieldCity]),
		State:       strings.ToUpper(strings.TrimSpace(f[FieldState])),
		Zip:         strings.TrimSpace(f[FieldZip]),
		CategoryID:  category,
		Description: richtext.Sanitize(f[FieldDescription]),
		Status:      model.ProjectStatus(strings.TrimSpace(f[FieldStatus])),
		ContactMethods: model.ContactMethods{
			Email: f[FieldContactEmail] != "",
			Phone: f[FieldContactPhone] != "",
			Text:  f[FieldContactText] != "",
		},
		NewFiles: []api.NewFile{},
		Existing: []api.ExistingFile{},
	}

	dates := []struct {
		field string
		dst   *model.Date
	}{
		{FieldEstimateDueDate, &sub.EstimateDueDate},
		{FieldStartDate, &sub.StartDate},
		{FieldEndDate, &sub.EndDate},
	}

	for _, d := range dates {
		v, err := model.ParseDate(f[d.field])
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", d.field, err)
		}

		*d.dst = v
	}

	for _, a := range b.attachments {
		if a.Staged() {
			sub.NewFiles = append(sub.NewFiles, api.NewFile{
				Path:        a.Path,
				Name:        a.Name,
				MIME:        a.MIME,
				Description: a.Description,
			})

			continue
		}

		sub.Existing = append(sub.Existing, api.ExistingFile{ID: a.RemoteID, Description: a.Description})
	}

	return sub, nil
}

// SubmitProject validates the form, sends it with send and clears the
// buffer on success. A failed validation issues no request.
func (b *Buffer) SubmitProject(ctx context.Context, send func(ctx context.Context, sub *api.ProjectSubmission) error) error {
	return b.Submit(ctx, ValidateProject, func(ctx context.Context) error {
		sub, err := ProjectSubmission(b)
		if err != nil {
			return err
		}

		return send(ctx, sub)
	})
}

// BeginProject is the first half of an asynchronous submission: it
// validates, marks the buffer in flight and returns the request to send.
// Call End with the outcome.
func (b *Buffer) BeginProject() (*api.ProjectSubmission, error) {
	if err := b.Begin(ValidateProject); err != nil {
		return nil, err
	}

	sub, err := ProjectSubmission(b)
	if err != nil {
		b.End(err)
		return nil, err
	}

	return sub, nil
}
