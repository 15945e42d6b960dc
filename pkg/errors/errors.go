// Package errors provides common, reusable error values and helpers.
package errors

import (
	"errors"
	"fmt"
)

// Device errors
var (
	ErrDeviceNotFound          = errors.New("device not found")
	ErrDeviceAlreadyRegistered = errors.New("device already registered")
	ErrDeviceAlreadyTaken      = errors.New("device already taken")
	ErrDeviceNotAssigned       = errors.New("device is not assigned to any user")
)

// Request errors
var (
	ErrDuplicateRequest = errors.New("duplicate request in progress")
)

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
