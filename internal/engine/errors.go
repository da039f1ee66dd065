package engine

import (
	"errors"
	"fmt"

	"github.com/tartampluch/go-bazi/internal/config"
)

// Error kinds. Every failure of a chart computation matches exactly one of
// them with errors.Is.
var (
	// ErrInvalidInput marks an out-of-range birth input; the caller can fix it.
	ErrInvalidInput = errors.New(config.ErrInvalidInput)

	// ErrCalendarUnavailable marks a calendar that cannot resolve an instant,
	// typically a year outside its coverage.
	ErrCalendarUnavailable = errors.New(config.ErrCalendarUnavail)

	// ErrStructuralInvalidity marks pillars outside the stem or branch sets.
	// It always indicates a defective calendar adapter.
	ErrStructuralInvalidity = errors.New(config.ErrStructural)
)

// InputError names the offending field of a rejected BirthInput.
type InputError struct {
	Field    string
	Value    any
	Expected string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%s: %s = %v, expected %s", config.ErrInvalidInput, e.Field, e.Value, e.Expected)
}

// Unwrap lets errors.Is match ErrInvalidInput.
func (e *InputError) Unwrap() error { return ErrInvalidInput }

// StructuralError names the pillar field that failed validation.
type StructuralError struct {
	Field string
	Value any
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("%s: %s = %v", config.ErrStructural, e.Field, e.Value)
}

// Unwrap lets errors.Is match ErrStructuralInvalidity.
func (e *StructuralError) Unwrap() error { return ErrStructuralInvalidity }

func invalid(field string, value any, expected string) error {
	return &InputError{Field: field, Value: value, Expected: expected}
}

// calendarError wraps an adapter failure so both the adapter's own error and
// ErrCalendarUnavailable match.
func calendarError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrCalendarUnavailable, op, err)
}
