package errors

import (
	"fmt"
	"testing"
)

func TestWardenError(t *testing.T) {
	// Test basic error creation
	err := New(ErrCodeStoreWrite, "write failed")
	if err.Code != ErrCodeStoreWrite {
		t.Errorf("expected code %s, got %s", ErrCodeStoreWrite, err.Code)
	}

	// Test error wrapping
	cause := fmt.Errorf("underlying error")
	wrapped := Wrap(cause, ErrCodeAdapterScan, "scan failed")

	if wrapped.Unwrap() != cause {
		t.Error("Unwrap should return the cause")
	}

	// Test Is function
	if !Is(wrapped, ErrCodeAdapterScan) {
		t.Error("Is should return true for matching code")
	}

	if Is(wrapped, ErrCodeStoreWrite) {
		t.Error("Is should return false for non-matching code")
	}

	// Test WithDetail
	detailed := err.WithDetail("path", "/tmp/sessions.json").WithDetail("attempt", 2)
	if detailed.Details["path"] != "/tmp/sessions.json" {
		t.Error("WithDetail should add details")
	}
}

func TestErrorConstructors(t *testing.T) {
	// Test StoreLocked
	err := StoreLocked("/tmp/sessions.json", 4242)
	if err.Code != ErrCodeStoreLocked {
		t.Errorf("expected code %s, got %s", ErrCodeStoreLocked, err.Code)
	}
	if err.Details["holderPid"] != 4242 {
		t.Error("StoreLocked should include holder pid detail")
	}

	// Test AdapterScanFailed
	err = AdapterScanFailed("claude", fmt.Errorf("boom"))
	if err.Code != ErrCodeAdapterScan {
		t.Errorf("expected code %s, got %s", ErrCodeAdapterScan, err.Code)
	}
	if err.Details["agent"] != "claude" {
		t.Error("AdapterScanFailed should include agent detail")
	}
}
