package errors

import (
	"fmt"
	"time"
)

// Error types for the term matching system
type ErrorType string

// Construction-time errors
const (
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeVocabulary ErrorType = "vocabulary"
)

// ConfigError represents a configuration error
type ConfigError struct {
	Field      string
	Value      string
	Underlying error
	Timestamp  time.Time
}

// NewConfigError creates a new config error
func NewConfigError(field, value string, err error) *ConfigError {
	return &ConfigError{
		Field:      field,
		Value:      value,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error for field %s (value %s): %v", e.Field, e.Value, e.Underlying)
}

// Unwrap returns the underlying error
func (e *ConfigError) Unwrap() error {
	return e.Underlying
}

// VocabularyError represents a failure to load or convert vocabulary data
type VocabularyError struct {
	Type       ErrorType
	Path       string
	Entry      string // offending term or table, empty for file-level failures
	Underlying error
	Timestamp  time.Time
}

// NewVocabularyError creates a new vocabulary error
func NewVocabularyError(path string, err error) *VocabularyError {
	return &VocabularyError{
		Type:       ErrorTypeVocabulary,
		Path:       path,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// WithEntry adds the offending entry to the error
func (e *VocabularyError) WithEntry(entry string) *VocabularyError {
	e.Entry = entry
	return e
}

// Error implements the error interface
func (e *VocabularyError) Error() string {
	source := e.Path
	if source == "" {
		source = "<inline>"
	}
	if e.Entry != "" {
		return fmt.Sprintf("%s load failed for %s (entry %q): %v", e.Type, source, e.Entry, e.Underlying)
	}
	return fmt.Sprintf("%s load failed for %s: %v", e.Type, source, e.Underlying)
}

// Unwrap returns the underlying error
func (e *VocabularyError) Unwrap() error {
	return e.Underlying
}

// MultiError represents multiple errors
type MultiError struct {
	Errors []error
}

// NewMultiError creates a new multi-error
func NewMultiError(errs []error) *MultiError {
	// Filter out nil errors
	filtered := make([]error, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	return &MultiError{Errors: filtered}
}

// ErrorOrNil returns nil when no errors were collected
func (e *MultiError) ErrorOrNil() error {
	if e == nil || len(e.Errors) == 0 {
		return nil
	}
	return e
}

// Error implements the error interface
func (e *MultiError) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d errors: %v", len(e.Errors), e.Errors)
}

// Unwrap returns all errors
func (e *MultiError) Unwrap() []error {
	return e.Errors
}
