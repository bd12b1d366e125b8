package model

// Role is the kind of account that signed in. Screens are gated on it.
type Role string

const (
	RoleGeneralContractor Role = "general_contractor"
	RoleSubcontractor     Role = "subcontractor"
	RoleAffiliate         Role = "affiliate"
)

// Label returns a human-readable role name.
func (r Role) Label() string {
	switch r {
	case RoleGeneralContractor:
		return "General contractor"
	case RoleSubcontractor:
		return "Subcontractor"
	case RoleAffiliate:
		return "Affiliate"
	default:
		return string(r)
	}
}

// CanPostProjects reports whether the role owns projects.
func (r Role) CanPostProjects() bool {
	return r == RoleGeneralContractor
}

// Profile is the signed-in account.
type Profile struct {
	ID         int64      `json:"id"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	Company    string     `json:"company"`
	Phone      string     `json:"phone"`
	Role       Role       `json:"role"`
	City       string     `json:"city"`
	State      string     `json:"state"`
	Zip        string     `json:"zip"`
	Categories []Category `json:"categories,omitempty"`
}
