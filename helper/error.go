package helper

import "fmt"

// NewError wraps an error with the operation that failed.
// The operation should be a short lowercase phrase like "load document".
func NewError(operation string, err error) error {
	return fmt.Errorf("error in %v: %w", operation, err)
}
