package profile

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound reports a missing profile.
	ErrNotFound = errors.New("profile not found")
	// ErrUnknownCategory reports a category outside video/audio.
	ErrUnknownCategory = errors.New("unknown profile category")
	// ErrUnknownParameter reports a parameter path that does not exist in a profile.
	ErrUnknownParameter = errors.New("unknown profile parameter")
)

// ValidationError describes why a profile was rejected against the schema.
type ValidationError struct {
	Category Category
	Field    string
	Value    string
	Reason   string
}

func (e *ValidationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s profile: %s: %s", e.Category, e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s profile: %s %q: %s", e.Category, e.Field, e.Value, e.Reason)
}

// ErrorKind classifies the error for callers that map failures to statuses.
func (e *ValidationError) ErrorKind() string { return "validation" }

func notFound(category Category, name string) error {
	return fmt.Errorf("%w: %s/%s", ErrNotFound, category, name)
}
