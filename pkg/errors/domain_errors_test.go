package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestBaseError(t *testing.T) {
	t.Run("creates error with all fields", func(t *testing.T) {
		cause := errors.New("underlying error")
		metadata := map[string]any{"key": "value"}

		err := NewBaseError("test", "test_code", "test message", true, cause, metadata)

		if err.Domain() != "test" {
			t.Errorf("expected domain 'test', got '%s'", err.Domain())
		}
		if err.Code() != "test_code" {
			t.Errorf("expected code 'test_code', got '%s'", err.Code())
		}
		if !err.Retryable() {
			t.Error("expected error to be retryable")
		}
		if !errors.Is(err, cause) {
			t.Error("expected error to wrap cause")
		}
		if err.Metadata()["key"] != "value" {
			t.Error("expected metadata to be preserved")
		}
		if err.Timestamp().IsZero() {
			t.Error("expected timestamp to be set")
		}
	})

	t.Run("formats error message correctly", func(t *testing.T) {
		tests := []struct {
			name     string
			cause    error
			expected string
		}{
			{
				name:     "without cause",
				cause:    nil,
				expected: "[test:test_code] test message",
			},
			{
				name:     "with cause",
				cause:    errors.New("underlying"),
				expected: "[test:test_code] test message: underlying",
			},
			{
				name:     "with sentinel cause",
				cause:    ErrNoAssignedIP,
				expected: "[test:test_code] test message",
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				err := NewBaseError("test", "test_code", "test message", false, tt.cause, nil)
				if err.Error() != tt.expected {
					t.Errorf("expected '%s', got '%s'", tt.expected, err.Error())
				}
			})
		}
	})

	t.Run("adds metadata without mutating the original", func(t *testing.T) {
		base := NewBaseError("test", "test_code", "test message", false, nil, nil)
		err := base.WithMetadata("key1", "value1").WithMetadata("key2", 42)

		metadata := err.Metadata()
		if metadata["key1"] != "value1" {
			t.Errorf("expected key1='value1', got '%v'", metadata["key1"])
		}
		if metadata["key2"] != 42 {
			t.Errorf("expected key2=42, got '%v'", metadata["key2"])
		}
		if len(base.Metadata()) != 0 {
			t.Errorf("expected original metadata to stay empty, got %v", base.Metadata())
		}
	})
}

func TestClassifiedErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    DomainError
		kind   error
		domain string
		code   string
	}{
		{
			name:   "private key",
			err:    NewKeyError(ErrCodeInvalidPrivateKey, ErrInvalidPrivateKey, nil),
			kind:   ErrInvalidPrivateKey,
			domain: DomainKey,
			code:   ErrCodeInvalidPrivateKey,
		},
		{
			name:   "public key with cause",
			err:    NewKeyError(ErrCodeInvalidPublicKey, ErrInvalidPublicKey, errors.New("illegal base64 data")),
			kind:   ErrInvalidPublicKey,
			domain: DomainKey,
			code:   ErrCodeInvalidPublicKey,
		},
		{
			name:   "no private key",
			err:    NewConversionError(ErrCodeNoPrivateKey, ErrNoPrivateKeyProvided),
			kind:   ErrNoPrivateKeyProvided,
			domain: DomainConversion,
			code:   ErrCodeNoPrivateKey,
		},
		{
			name:   "no assigned ip",
			err:    NewConversionError(ErrCodeNoAssignedIP, ErrNoAssignedIP),
			kind:   ErrNoAssignedIP,
			domain: DomainConversion,
			code:   ErrCodeNoAssignedIP,
		},
		{
			name:   "invalid cidr",
			err:    NewAddressError(ErrCodeInvalidCIDR, "10.0.0.1", nil),
			kind:   ErrInvalidAddress,
			domain: DomainAddress,
			code:   ErrCodeInvalidCIDR,
		},
		{
			name:   "invalid endpoint",
			err:    NewAddressError(ErrCodeInvalidEndpoint, "example.com:51820", nil),
			kind:   ErrInvalidEndpoint,
			domain: DomainAddress,
			code:   ErrCodeInvalidEndpoint,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.kind) {
				t.Errorf("expected %v to match %v", tt.err, tt.kind)
			}
			if tt.err.Domain() != tt.domain {
				t.Errorf("expected domain '%s', got '%s'", tt.domain, tt.err.Domain())
			}
			if tt.err.Code() != tt.code {
				t.Errorf("expected code '%s', got '%s'", tt.code, tt.err.Code())
			}
			if tt.err.Retryable() {
				t.Error("expected error not to be retryable")
			}
		})
	}
}

func TestObfuscationError(t *testing.T) {
	err := NewObfuscationError("Jmin")

	if !errors.Is(err, ErrInvalidObfuscationSetting) {
		t.Fatalf("expected ErrInvalidObfuscationSetting, got %v", err)
	}
	if got := err.Error(); got != "[obfuscation:invalid_obfuscation_setting] invalid obfuscation setting: Jmin" {
		t.Errorf("unexpected message: %s", got)
	}

	wrapped := fmt.Errorf("attach settings: %w", err)
	field, ok := SettingField(wrapped)
	if !ok || field != "Jmin" {
		t.Errorf("expected field Jmin, got %q (ok=%v)", field, ok)
	}

	if _, ok := SettingField(NewConversionError(ErrCodeNoAssignedIP, ErrNoAssignedIP)); ok {
		t.Error("expected no field for a conversion error")
	}
}

func TestHelperFunctions(t *testing.T) {
	t.Run("GetErrorCode", func(t *testing.T) {
		err := NewConversionError(ErrCodeNoAssignedIP, ErrNoAssignedIP)
		if GetErrorCode(err) != ErrCodeNoAssignedIP {
			t.Errorf("expected code %s, got %s", ErrCodeNoAssignedIP, GetErrorCode(err))
		}
		if !HasErrorCode(err, ErrCodeNoAssignedIP) {
			t.Error("expected HasErrorCode to match")
		}
		if GetErrorCode(errors.New("plain")) != "unknown" {
			t.Error("expected unknown code for plain error")
		}
		if GetErrorDomain(err) != DomainConversion {
			t.Errorf("expected domain %s, got %s", DomainConversion, GetErrorDomain(err))
		}
	})

	t.Run("WrapWithDomain", func(t *testing.T) {
		cause := errors.New("disk full")
		err := WrapWithDomain(cause, DomainSystem, ErrCodeFileOperation, "write config", false)
		if !errors.Is(err, cause) {
			t.Error("expected wrapped cause")
		}
		if err.Error() != "[system:file_operation_error] write config: disk full" {
			t.Errorf("unexpected message: %s", err.Error())
		}
	})
}
