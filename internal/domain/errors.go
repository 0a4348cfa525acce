// Package domain provides shared domain-level sentinel errors.
package domain

import "errors"

// ErrNotFound indicates the requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrValidation indicates malformed or out-of-range input.
// Wrap it with context: fmt.Errorf("trust_level out of range: %w", domain.ErrValidation).
var ErrValidation = errors.New("validation failed")

// ErrConflict indicates a concurrent modification conflict.
var ErrConflict = errors.New("conflict: resource was modified by another request")

// ErrAccessDenied indicates the caller may not see or touch the resource.
// Surfaced generically; never carries the underlying data.
var ErrAccessDenied = errors.New("access denied")
