package model

// ProjectStatus is the lifecycle state of a project.
type ProjectStatus string

const (
	ProjectActive    ProjectStatus = "active"
	ProjectHired     ProjectStatus = "hired"
	ProjectPending   ProjectStatus = "pending"
	ProjectCompleted ProjectStatus = "completed"
	ProjectCancelled ProjectStatus = "cancelled"
)

// ProjectStatuses lists every status in display order.
func ProjectStatuses() []ProjectStatus {
	return []ProjectStatus{ProjectActive, ProjectHired, ProjectPending, ProjectCompleted, ProjectCancelled}
}

// Valid reports whether s is a known status.
func (s ProjectStatus) Valid() bool {
	for _, known := range ProjectStatuses() {
		if s == known {
			return true
		}
	}

	return false
}

// ContactMethods are the ways a project owner accepts to be contacted.
type ContactMethods struct {
	Email bool `json:"email"`
	Phone bool `json:"phone"`
	Text  bool `json:"text"`
}

// Any reports whether at least one method is accepted.
func (c ContactMethods) Any() bool {
	return c.Email || c.Phone || c.Text
}

// Project is a job posted by a general contractor.
type Project struct {
	ID              int64          `json:"id"`
	City            string         `json:"city"`
	State           string         `json:"state"`
	Zip             string         `json:"zip"`
	CategoryID      int64          `json:"category_id"`
	Category        *Category      `json:"category,omitempty"`
	Description     string         `json:"description"`
	EstimateDueDate Date           `json:"estimate_due_date"`
	StartDate       Date           `json:"start_date"`
	EndDate         Date           `json:"end_date"`
	Status          ProjectStatus  `json:"status"`
	Attachments     []Attachment   `json:"attachments"`
	ContactMethods  ContactMethods `json:"contact_methods"`
}

// Location renders "City, ST 00000".
func (p Project) Location() string {
	return p.City + ", " + p.State + " " + p.Zip
}

// CategoryName returns the embedded category name, if the server sent one.
func (p Project) CategoryName() string {
	if p.Category != nil {
		return p.Category.Name
	}

	return ""
}

// Attachment is a file the server stores for a project.
type Attachment struct {
	ID          int64  `json:"id"`
	File        string `json:"file"`
	Description string `json:"description"`
}
