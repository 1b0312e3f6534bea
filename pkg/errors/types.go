// Package errors provides typed errors for the dirty project.
//
// This package defines domain-specific error types that provide structured
// error information for the scan pipeline (configuration, the scan root, and
// per-repository probes). All error types implement the standard error
// interface and support errors.Is() and errors.As() from the standard library
// and cockroachdb/errors.
package errors

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// ConfigError represents configuration-related errors.
type ConfigError struct {
	Field   string // Which config field has the issue
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config error in %s: %s", e.Field, e.Message)
	}
	return "config error: " + e.Message
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// NewConfigError creates a new ConfigError.
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{Field: field, Message: message}
}

// NewConfigErrorWithCause creates a new ConfigError with an underlying cause.
func NewConfigErrorWithCause(field, message string, cause error) *ConfigError {
	return &ConfigError{Field: field, Message: message, Cause: cause}
}

// ScanError represents a failure that aborts the whole scan, such as a scan
// root that does not exist or cannot be read.
type ScanError struct {
	Root    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *ScanError) Error() string {
	if e.Root != "" {
		return fmt.Sprintf("dirty: cannot access '%s': %s", e.Root, e.Message)
	}
	return "dirty: " + e.Message
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *ScanError) Unwrap() error {
	return e.Cause
}

// NewScanError creates a new ScanError.
func NewScanError(root, message string) *ScanError {
	return &ScanError{Root: root, Message: message}
}

// NewScanErrorWithCause creates a new ScanError with an underlying cause.
func NewScanErrorWithCause(root, message string, cause error) *ScanError {
	return &ScanError{Root: root, Message: message, Cause: cause}
}

// ProbeKind classifies why a repository could not be inspected.
type ProbeKind string

const (
	ProbeUnreadable ProbeKind = "unreadable"
	ProbePermission ProbeKind = "permission"
	ProbeTimeout    ProbeKind = "timeout"
	ProbeCancelled  ProbeKind = "cancelled"
	ProbeInternal   ProbeKind = "internal"
)

// ProbeError records a per-repository inspection failure. It is carried as
// data on the repository's status rather than aborting the scan.
type ProbeError struct {
	Kind    ProbeKind
	Path    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *ProbeError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("probe %s failed (%s): %s", e.Path, e.Kind, e.Message)
	}
	return fmt.Sprintf("probe failed (%s): %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *ProbeError) Unwrap() error {
	return e.Cause
}

// NewProbeError creates a new ProbeError.
func NewProbeError(kind ProbeKind, path, message string) *ProbeError {
	return &ProbeError{Kind: kind, Path: path, Message: message}
}

// NewProbeErrorWithCause creates a new ProbeError with an underlying cause.
func NewProbeErrorWithCause(kind ProbeKind, path, message string, cause error) *ProbeError {
	return &ProbeError{Kind: kind, Path: path, Message: message, Cause: cause}
}

// IsConfigError checks if an error or any error in its chain is a ConfigError.
func IsConfigError(err error) bool {
	var configErr *ConfigError
	return errors.As(err, &configErr)
}

// IsScanError checks if an error or any error in its chain is a ScanError.
func IsScanError(err error) bool {
	var scanErr *ScanError
	return errors.As(err, &scanErr)
}

// As finds the first error in err's chain that matches target. Re-exported so
// callers that only need the typed errors do not import two packages.
var As = errors.As
