package errors

import (
	"errors"
)

// Sentinel errors for the config model. Every DomainError returned by this
// module wraps exactly one of them, so callers can match with errors.Is.
var (
	ErrInvalidPrivateKey         = errors.New("invalid private key")
	ErrInvalidPublicKey          = errors.New("invalid public key")
	ErrInvalidPresharedKey       = errors.New("invalid preshared key")
	ErrNoPrivateKeyProvided      = errors.New("no private key provided")
	ErrNoAssignedIP              = errors.New("no assigned ip")
	ErrInvalidObfuscationSetting = errors.New("invalid obfuscation setting")
	ErrInvalidAddress            = errors.New("invalid address")
	ErrInvalidEndpoint           = errors.New("invalid endpoint")
)

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's tree that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// New returns an error that formats as the given text.
func New(text string) error {
	return errors.New(text)
}

func newClassified(domain, code string, kind, cause error, metadata map[string]any) *BaseError {
	err := NewBaseError(domain, code, kind.Error(), false, kind, metadata)
	err.cause = cause
	return err
}

// NewKeyError creates a key domain error of the given kind. cause may be nil.
func NewKeyError(code string, kind, cause error) DomainError {
	return newClassified(DomainKey, code, kind, cause, nil)
}

// NewConversionError creates a conversion domain error of the given kind.
func NewConversionError(code string, kind error) DomainError {
	return newClassified(DomainConversion, code, kind, nil, nil)
}

// NewAddressError creates an address domain error carrying the offending value.
func NewAddressError(code, value string, cause error) DomainError {
	kind := ErrInvalidAddress
	if code == ErrCodeInvalidEndpoint {
		kind = ErrInvalidEndpoint
	}
	return newClassified(DomainAddress, code, kind, cause, map[string]any{"value": value})
}

// NewObfuscationError reports the first obfuscation field that failed validation.
func NewObfuscationError(field string) DomainError {
	err := newClassified(DomainObfuscation, ErrCodeInvalidSetting, ErrInvalidObfuscationSetting, nil,
		map[string]any{MetadataField: field})
	err.message += ": " + field
	return err
}

// SettingField returns the obfuscation field named by err, if err is an
// invalid obfuscation setting error.
func SettingField(err error) (string, bool) {
	var domainErr DomainError
	if !errors.As(err, &domainErr) || domainErr.Code() != ErrCodeInvalidSetting {
		return "", false
	}
	field, ok := domainErr.Metadata()[MetadataField].(string)
	return field, ok
}
