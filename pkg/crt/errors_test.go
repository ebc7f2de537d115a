package crt

import (
	"errors"
	"strings"
	"testing"
)

func TestErrorStringKnownCode(t *testing.T) {
	got := ErrorString(ErrDeviceNotFound)
	if !strings.HasPrefix(got, "1 ") {
		t.Fatalf("ErrorString(ErrDeviceNotFound) = %q, want prefix \"1 \"", got)
	}
	if !strings.Contains(got, "CRT_DEVICE_NOT_FOUND") {
		t.Fatalf("ErrorString(ErrDeviceNotFound) = %q, missing symbolic name", got)
	}
}

func TestErrorStringUnknownCode(t *testing.T) {
	got := ErrorString(Code(99999))
	if !strings.Contains(got, "Unknown error") {
		t.Fatalf("ErrorString(unknown) = %q, want \"Unknown error\"", got)
	}
}

func TestErrorStringBounded(t *testing.T) {
	if len(ErrorString(ErrDeviceNotFound)) > 128 {
		t.Fatal("ErrorString must be bounded to 128 bytes")
	}
}

func TestErrorUnwrap(t *testing.T) {
	inner := errors.New("driver failure")
	wrapped := wrapError(ErrInvalidContext, inner, "open device %d", 0)
	if !errors.Is(wrapped, inner) {
		t.Fatal("wrapError result must unwrap to the underlying error")
	}
}

func TestErrorAs(t *testing.T) {
	err := error(newError(ErrForeignBuffer, "dot: operands from different contexts"))
	var ce *Error
	if !errors.As(err, &ce) {
		t.Fatal("errors.As must find *Error")
	}
	if ce.Code != ErrForeignBuffer {
		t.Fatalf("Code = %v, want ErrForeignBuffer", ce.Code)
	}
}
