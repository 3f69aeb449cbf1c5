package scoring

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyCategorySet  = errors.New("empty category set")
	ErrDuplicateCategory = errors.New("duplicate category")
	ErrMissingCategory   = errors.New("missing category")
	ErrUnknownCategory   = errors.New("unknown category")
	ErrInvalidWeight     = errors.New("invalid weight")
	ErrInvalidScore      = errors.New("invalid score")
	ErrUnknownRankMode   = errors.New("unknown rank mode")
)

// ValidationError reports which input vector and category failed, and why.
type ValidationError struct {
	Kind     error    `json:"-"`
	Vector   string   `json:"vector,omitempty"`
	Category Category `json:"category,omitempty"`
	Value    float64  `json:"value,omitempty"`
}

func (e *ValidationError) Error() string {
	switch {
	case (e.Kind == ErrInvalidWeight || e.Kind == ErrInvalidScore) && e.Category != "":
		return fmt.Sprintf("%v: %s[%q] = %v", e.Kind, e.Vector, e.Category, e.Value)
	case e.Kind == ErrInvalidWeight || e.Kind == ErrInvalidScore:
		return fmt.Sprintf("%v: %s = %v", e.Kind, e.Vector, e.Value)
	case e.Category != "" && e.Vector != "":
		return fmt.Sprintf("%v %q in %s", e.Kind, e.Category, e.Vector)
	case e.Category != "":
		return fmt.Sprintf("%v %q", e.Kind, e.Category)
	default:
		return e.Kind.Error()
	}
}

func (e *ValidationError) Unwrap() error { return e.Kind }

// Field returns a dotted path naming the offending input, e.g. "weights.Help".
func (e *ValidationError) Field() string {
	switch {
	case e.Vector != "" && e.Category != "":
		return e.Vector + "." + string(e.Category)
	case e.Vector != "":
		return e.Vector
	case e.Category != "":
		return "categories." + string(e.Category)
	default:
		return "categories"
	}
}

// KindName is a stable snake_case label for the error kind, used in metrics
// and API responses.
func KindName(err error) string {
	switch {
	case errors.Is(err, ErrEmptyCategorySet):
		return "empty_category_set"
	case errors.Is(err, ErrDuplicateCategory):
		return "duplicate_category"
	case errors.Is(err, ErrMissingCategory):
		return "missing_category"
	case errors.Is(err, ErrUnknownCategory):
		return "unknown_category"
	case errors.Is(err, ErrInvalidWeight):
		return "invalid_weight"
	case errors.Is(err, ErrInvalidScore):
		return "invalid_score"
	case errors.Is(err, ErrUnknownRankMode):
		return "unknown_rank_mode"
	default:
		return ""
	}
}

// IsValidationError reports whether err came from input validation in this package.
func IsValidationError(err error) bool {
	return KindName(err) != ""
}
