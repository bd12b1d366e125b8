package model

import "time"

// Contractor is a search hit. It only exists as the result of a query.
type Contractor struct {
	ID      int64   `json:"id"`
	Name    string  `json:"name"`
	Company string  `json:"company"`
	Rating  float64 `json:"rating"`
	Reviews int     `json:"reviews"`
	City    string  `json:"city"`
	State   string  `json:"state"`
}

// Transaction is an immutable payment record.
type Transaction struct {
	ID          int64     `json:"id"`
	Amount      float64   `json:"amount"`
	Currency    string    `json:"currency"`
	Status      string    `json:"status"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// Rating is one review left on a contractor.
type Rating struct {
	ID           int64     `json:"id"`
	ContractorID int64     `json:"contractor_id"`
	ProjectID    int64     `json:"project_id,omitempty"`
	Score        int       `json:"score"`
	Comment      string    `json:"comment"`
	Author       string    `json:"author,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
