package errors

import (
	"fmt"
	"time"
)

// DomainError is the base interface for all structured errors in the module
type DomainError interface {
	error

	// Domain returns the domain context (e.g., "key", "conversion", "obfuscation")
	Domain() string

	// Code returns a stable error code
	Code() string

	// Retryable indicates if the operation can be retried
	Retryable() bool

	// Metadata returns additional error context
	Metadata() map[string]any

	// WithMetadata adds metadata to the error
	WithMetadata(key string, value any) DomainError

	// Timestamp returns when the error occurred
	Timestamp() time.Time
}

// BaseError is the foundational implementation of DomainError
type BaseError struct {
	domain    string
	code      string
	message   string
	kind      error
	cause     error
	retryable bool
	metadata  map[string]any
	timestamp time.Time
}

func (e *BaseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.domain, e.code, e.message, e.cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.domain, e.code, e.message)
}

// Unwrap exposes both the sentinel kind and the underlying cause to errors.Is.
func (e *BaseError) Unwrap() []error {
	var errs []error
	if e.kind != nil {
		errs = append(errs, e.kind)
	}
	if e.cause != nil {
		errs = append(errs, e.cause)
	}
	return errs
}

func (e *BaseError) Domain() string           { return e.domain }
func (e *BaseError) Code() string             { return e.code }
func (e *BaseError) Retryable() bool          { return e.retryable }
func (e *BaseError) Metadata() map[string]any { return e.metadata }
func (e *BaseError) Timestamp() time.Time     { return e.timestamp }

// Kind returns the sentinel error this error was classified as, if any.
func (e *BaseError) Kind() error { return e.kind }

// NewBaseError creates a new BaseError. A cause that is one of this package's
// sentinels becomes the error kind and is not repeated in the message.
func NewBaseError(domain, code, message string, retryable bool, cause error, metadata map[string]any) *BaseError {
	if metadata == nil {
		metadata = make(map[string]any)
	}

	var kind error
	if isSentinel(cause) {
		kind, cause = cause, nil
	}

	return &BaseError{
		domain:    domain,
		code:      code,
		message:   message,
		kind:      kind,
		cause:     cause,
		retryable: retryable,
		metadata:  metadata,
		timestamp: time.Now(),
	}
}

// WithMetadata returns a copy of the error with key set in its metadata
func (e *BaseError) WithMetadata(key string, value any) DomainError {
	newMeta := make(map[string]any, len(e.metadata)+1)
	for k, v := range e.metadata {
		newMeta[k] = v
	}
	newMeta[key] = value

	return &BaseError{
		domain:    e.domain,
		code:      e.code,
		message:   e.message,
		kind:      e.kind,
		cause:     e.cause,
		retryable: e.retryable,
		metadata:  newMeta,
		timestamp: e.timestamp,
	}
}

func isSentinel(err error) bool {
	switch err {
	case ErrInvalidPrivateKey, ErrInvalidPublicKey, ErrInvalidPresharedKey,
		ErrNoPrivateKeyProvided, ErrNoAssignedIP, ErrInvalidObfuscationSetting,
		ErrInvalidAddress, ErrInvalidEndpoint:
		return true
	}
	return false
}

// Standardized Error Codes
const (
	// Key Domain Errors
	ErrCodeInvalidPrivateKey   = "invalid_private_key"
	ErrCodeInvalidPublicKey    = "invalid_public_key"
	ErrCodeInvalidPresharedKey = "invalid_preshared_key"

	// Conversion Domain Errors
	ErrCodeNoPrivateKey = "no_private_key_provided"
	ErrCodeNoAssignedIP = "no_assigned_ip"

	// Obfuscation Domain Errors
	ErrCodeInvalidSetting = "invalid_obfuscation_setting"

	// Address Domain Errors
	ErrCodeInvalidCIDR     = "invalid_cidr"
	ErrCodeInvalidEndpoint = "invalid_endpoint"

	// System Errors
	ErrCodeConfiguration = "config_error"
	ErrCodeFileOperation = "file_operation_error"
)

// Domain Constants
const (
	DomainKey         = "key"
	DomainConversion  = "conversion"
	DomainObfuscation = "obfuscation"
	DomainAddress     = "address"
	DomainSystem      = "system"
)

// MetadataField is the metadata key naming the failed obfuscation field.
const MetadataField = "field"

// Helper functions for error checking

// GetErrorCode returns the error code if it's a DomainError, otherwise returns "unknown"
func GetErrorCode(err error) string {
	var domainErr DomainError
	if As(err, &domainErr) {
		return domainErr.Code()
	}
	return "unknown"
}

// GetErrorDomain returns the error domain if it's a DomainError, otherwise returns "unknown"
func GetErrorDomain(err error) string {
	var domainErr DomainError
	if As(err, &domainErr) {
		return domainErr.Domain()
	}
	return "unknown"
}

// HasErrorCode checks if an error has a specific error code
func HasErrorCode(err error, code string) bool {
	return GetErrorCode(err) == code
}

// WrapWithDomain wraps an existing error with domain context
func WrapWithDomain(err error, domain, code, message string, retryable bool) DomainError {
	return NewBaseError(domain, code, message, retryable, err, nil)
}
