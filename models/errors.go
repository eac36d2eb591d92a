package models

import (
	"fmt"
)

// The three error types below cover every failure this library raises
// on its own. They are always raised locally, before any remote call
// is attempted, and are always preventable by checking the matching
// completeness predicate first. Failures from the remote services
// themselves pass through to the caller unwrapped, so "we never tried"
// is always distinguishable from "we tried and the remote rejected us."

// ConfigError means a required credential or identifier is missing
// from the Config.
type ConfigError struct {
	Message string
}

func (err *ConfigError) Error() string {
	return err.Message
}

// NewConfigError creates a new ConfigError with a formatted message.
func NewConfigError(format string, a ...interface{}) *ConfigError {
	return &ConfigError{Message: fmt.Sprintf(format, a...)}
}

// TransferError means a transfer operation's local precondition was
// violated: an empty file list, or a status query with no task id.
type TransferError struct {
	Message string
}

func (err *TransferError) Error() string {
	return err.Message
}

// NewTransferError creates a new TransferError with a formatted message.
func NewTransferError(format string, a ...interface{}) *TransferError {
	return &TransferError{Message: fmt.Sprintf(format, a...)}
}

// IngestError means an ingest operation was attempted without enough
// information (missing config or bag name).
type IngestError struct {
	Message string
}

func (err *IngestError) Error() string {
	return err.Message
}

// NewIngestError creates a new IngestError with a formatted message.
func NewIngestError(format string, a ...interface{}) *IngestError {
	return &IngestError{Message: fmt.Sprintf(format, a...)}
}
