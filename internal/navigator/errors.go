package navigator

import "errors"

var (
	// ErrNotFound is returned when a key is absent from the metadata tree
	ErrNotFound = errors.New("not found")

	// ErrNoGroups is returned when a year or stream yields no groups
	ErrNoGroups = errors.New("no groups found for given parameters")
)

// UsageError reports missing or inconsistent request parameters
type UsageError struct {
	Message string
}

func (e *UsageError) Error() string {
	return e.Message
}

func usageError(msg string) error {
	return &UsageError{Message: msg}
}
