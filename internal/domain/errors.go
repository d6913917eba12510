package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedRange is returned for an end before its start or an empty time window.
	ErrMalformedRange = errors.New("malformed range")

	// ErrDataFetch is returned when an external read failed; evaluations fail closed on it.
	ErrDataFetch = errors.New("data fetch failed")

	// ErrConfigurationMissing marks an absent work schedule or leave balance.
	// Evaluations log it and degrade instead of failing.
	ErrConfigurationMissing = errors.New("configuration missing")

	ErrPersonNotFound = errors.New("person not found")
)

// DataFetchError names the source that could not be read.
type DataFetchError struct {
	Source   string
	PersonID PersonID
	Err      error
}

func (e *DataFetchError) Error() string {
	if e.PersonID == "" {
		return fmt.Sprintf("fetch %s: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("fetch %s for person %s: %v", e.Source, e.PersonID, e.Err)
}

func (e *DataFetchError) Unwrap() []error {
	return []error{ErrDataFetch, e.Err}
}

// IsClientError reports whether err was caused by invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrMalformedRange)
}
