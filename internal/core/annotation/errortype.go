package annotation

import "fmt"

// ErrorType classifies an annotated span by severity and category.
type ErrorType int

const (
	MinorSyntactic ErrorType = iota + 1
	MinorSemantic
	MajorSyntactic
	MajorSemantic
)

// DefaultErrorType is preselected in the comment dialog for new spans.
const DefaultErrorType = MinorSemantic

// ErrorTypes lists every error type in display order.
func ErrorTypes() []ErrorType {
	return []ErrorType{MinorSyntactic, MinorSemantic, MajorSyntactic, MajorSemantic}
}

// Code returns the persisted short code (e.g. "MI_SE").
func (t ErrorType) Code() string {
	switch t {
	case MinorSyntactic:
		return "MI_ST"
	case MinorSemantic:
		return "MI_SE"
	case MajorSyntactic:
		return "MA_ST"
	case MajorSemantic:
		return "MA_SE"
	}
	return ""
}

// Label returns the human readable name.
func (t ErrorType) Label() string {
	switch t {
	case MinorSyntactic:
		return "Minor Syntactic Error"
	case MinorSemantic:
		return "Minor Semantic Error"
	case MajorSyntactic:
		return "Major Syntactic Error"
	case MajorSemantic:
		return "Major Semantic Error"
	}
	return ""
}

// Major reports whether the error is of major severity.
func (t ErrorType) Major() bool {
	return t == MajorSyntactic || t == MajorSemantic
}

// Semantic reports whether the error concerns meaning rather than form.
func (t ErrorType) Semantic() bool {
	return t == MinorSemantic || t == MajorSemantic
}

// Valid reports whether t is one of the four known error types.
func (t ErrorType) Valid() bool {
	return t >= MinorSyntactic && t <= MajorSemantic
}

// String returns the persisted code.
func (t ErrorType) String() string {
	if code := t.Code(); code != "" {
		return code
	}
	return fmt.Sprintf("ErrorType(%d)", int(t))
}

// ParseErrorType accepts a persisted code ("MA_SE") or a camel-cased name
// ("MajorSemantic").
func ParseErrorType(s string) (ErrorType, error) {
	switch s {
	case "MI_ST", "MinorSyntactic":
		return MinorSyntactic, nil
	case "MI_SE", "MinorSemantic":
		return MinorSemantic, nil
	case "MA_ST", "MajorSyntactic":
		return MajorSyntactic, nil
	case "MA_SE", "MajorSemantic":
		return MajorSemantic, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownErrorType, s)
}

// MarshalText implements encoding.TextMarshaler.
func (t ErrorType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownErrorType, int(t))
	}
	return []byte(t.Code()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *ErrorType) UnmarshalText(b []byte) error {
	parsed, err := ParseErrorType(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
