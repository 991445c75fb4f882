package validation

import "errors"

var (
	ErrInvalidStatus         = errors.New("invalid status")
	ErrJustificationRequired = errors.New("justification is required for Completed or Cancelled status")
)

// ValidationError reports the first rule a creation payload violated.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
