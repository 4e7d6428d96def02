package core

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound    = errors.New("resource not found")
	ErrRunNotFound = fmt.Errorf("%w: audit run", ErrNotFound)

	// Ingestion errors
	ErrDataUnavailable  = errors.New("dataset unavailable")
	ErrInsufficientData = errors.New("insufficient data after cleaning")

	// Configuration errors
	ErrInvalidParameter = errors.New("invalid parameter")

	// Training errors
	ErrTrainingFailed = errors.New("model training failed")
)

// Error constructors with context

// NewDataUnavailableError reports that every attempted source failed. The
// message carries each location so the operator can place the file manually.
func NewDataUnavailableError(locations []string, hint string) error {
	return fmt.Errorf("%w: attempted %s (%s)", ErrDataUnavailable, strings.Join(locations, ", "), hint)
}

func NewInsufficientDataError(rows, minimum int) error {
	return fmt.Errorf("%w: %d usable rows, need at least %d", ErrInsufficientData, rows, minimum)
}

func NewInvalidParameterError(name string, reason string) error {
	return fmt.Errorf("%w: %s %s", ErrInvalidParameter, name, reason)
}

// NewTrainingFailedError names the model family so a partial-failure run can
// report which side of the bank went down.
func NewTrainingFailedError(family string, cause error) error {
	return fmt.Errorf("%w for %s: %v", ErrTrainingFailed, family, cause)
}

func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsDataUnavailableError(err error) bool {
	return errors.Is(err, ErrDataUnavailable)
}

func IsInsufficientDataError(err error) bool {
	return errors.Is(err, ErrInsufficientData)
}

func IsInvalidParameterError(err error) bool {
	return errors.Is(err, ErrInvalidParameter)
}

func IsTrainingFailedError(err error) bool {
	return errors.Is(err, ErrTrainingFailed)
}

// IsConfigError reports whether err should abort the run before any data work.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrInvalidParameter)
}
