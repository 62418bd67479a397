// Package domain holds shared domain types and the error taxonomy used
// across ingestion, scoring and the HTTP layer.
package domain

import (
	"errors"
	"fmt"
)

// ErrInsufficientData marks an asset that lacks the metric history
// required to compute a score. The scoring batch skips the asset and
// reports it; it never fails the batch.
var ErrInsufficientData = errors.New("insufficient metric history")

// ErrAssetNotFound marks a lookup for a symbol that is not registered.
var ErrAssetNotFound = errors.New("asset not found")

// ValidationError rejects a single malformed item at the ingest
// boundary. The item is not ingested; other items in the same batch are
// unaffected.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Reason)
}

// NewValidationError creates a ValidationError for a field
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err is a ValidationError
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// TransientStoreError wraps a read/write failure against the relational
// store. Callers retry a bounded number of times with backoff before
// reporting and moving on to the next asset.
type TransientStoreError struct {
	Op  string
	Err error
}

func (e *TransientStoreError) Error() string {
	return fmt.Sprintf("store operation %s failed: %v", e.Op, e.Err)
}

func (e *TransientStoreError) Unwrap() error { return e.Err }

// NewTransientStoreError wraps err as transient
func NewTransientStoreError(op string, err error) *TransientStoreError {
	return &TransientStoreError{Op: op, Err: err}
}

// IsTransientStore reports whether err is a TransientStoreError
func IsTransientStore(err error) bool {
	var te *TransientStoreError
	return errors.As(err, &te)
}

// ConfigurationError is fatal at startup: missing or inconsistent
// threshold constants, bad asset-class mapping, unparseable config.
type ConfigurationError struct {
	Key    string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error for %s: %s", e.Key, e.Reason)
}

// NewConfigurationError creates a ConfigurationError for a key
func NewConfigurationError(key, reason string) *ConfigurationError {
	return &ConfigurationError{Key: key, Reason: reason}
}
