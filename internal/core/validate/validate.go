// Package validate provides shared validation functions.
package validate

import (
	"fmt"
	"strings"

	"github.com/hay-kot/criterio"
)

// MinScore and MaxScore bound every quality rating.
const (
	MinScore = 1
	MaxScore = 5
)

// Score validates a rating is within MinScore..MaxScore.
func Score(v int) error {
	if v < MinScore || v > MaxScore {
		return fmt.Errorf("must be between %d and %d, got %d", MinScore, MaxScore, v)
	}
	return nil
}

// ScoreField returns a criterio validator for an optional rating. Unset
// ratings are valid.
func ScoreField(field string, v *int) error {
	if v == nil {
		return nil
	}
	return criterio.Run(field, *v, Score)
}

// Required validates a string is non-empty after trimming whitespace.
func Required(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("is required")
	}
	return nil
}

// RequiredField returns a criterio validator for a required string.
func RequiredField(field, s string) error {
	return criterio.Run(field, s, Required)
}

// SentenceID validates a sentence identifier is positive.
func SentenceID(id int64) error {
	if id <= 0 {
		return fmt.Errorf("must be positive, got %d", id)
	}
	return nil
}
