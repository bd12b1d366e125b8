package staging

import (
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/inovacc/bidmatch/internal/api"
)

// Rating form field names.
const (
	FieldScore   = "score"
	FieldComment = "comment"
)

// ValidateRating checks a rating form: a whole score from 1 to 5 and an
// optional comment of at most 1000 characters.
func ValidateRating(f map[string]string) map[string]string {
	out := make(map[string]string)

	score := strings.TrimSpace(f[FieldScore])

	if err := validation.Validate(score, validation.Required.Error("Score is required")); err != nil {
		out[FieldScore] = err.Error()
	} else if n, err := strconv.Atoi(score); err != nil {
		out[FieldScore] = "Score must be a whole number"
	} else if err := validation.Validate(n, validation.Min(1), validation.Max(5)); err != nil {
		out[FieldScore] = "Score must be between 1 and 5"
	}

	if err := validation.Validate(f[FieldComment], validation.RuneLength(0, 1000).Error("Comment is too long")); err != nil {
		out[FieldComment] = err.Error()
	}

	return out
}

// RatingInput converts a validated rating form.
func RatingInput(contractorID int64, f map[string]string) (api.RatingInput, error) {
	if errs := ValidateRating(f); len(errs) > 0 {
		return api.RatingInput{}, &api.ValidationError{Fields: errs}
	}

	score, _ := strconv.Atoi(strings.TrimSpace(f[FieldScore]))

	return api.RatingInput{
		ContractorID: contractorID,
		Score:        score,
		Comment:      strings.TrimSpace(f[FieldComment]),
	}, nil
}
