package errors

import (
	stderrors "errors"
	"testing"

	"fairlens/domain/core"
)

// TestWrapPreservesCode tests that wrapping keeps the original code
func TestWrapPreservesCode(t *testing.T) {
	base := New(CodeDataUnavailable, "no source reachable")
	wrapped := Wrap(base, "loading dataset")

	if GetCode(wrapped) != CodeDataUnavailable {
		t.Errorf("Expected code %s, got %s", CodeDataUnavailable, GetCode(wrapped))
	}
	if !stderrors.Is(wrapped, base) {
		t.Error("Expected wrapped error to unwrap to the base")
	}
}

// TestWrapNil tests nil passthrough
func TestWrapNil(t *testing.T) {
	if Wrap(nil, "context") != nil {
		t.Error("Expected nil wrap to stay nil")
	}
	if Wrapf(nil, "context %d", 1) != nil {
		t.Error("Expected nil wrapf to stay nil")
	}
	if FromDomain(nil) != nil {
		t.Error("Expected nil FromDomain to stay nil")
	}
}

// TestFromDomainClassification tests sentinel-to-code mapping
func TestFromDomainClassification(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
	}{
		{"data unavailable", core.NewDataUnavailableError([]string{"a", "b"}, "hint"), CodeDataUnavailable},
		{"insufficient data", core.NewInsufficientDataError(2, 10), CodeInsufficientData},
		{"invalid parameter", core.NewInvalidParameterError("testFraction", "out of range"), CodeInvalidParameter},
		{"training failed", core.NewTrainingFailedError("random_forest", stderrors.New("boom")), CodeTrainingFailed},
		{"not found", core.ErrRunNotFound, CodeNotFound},
		{"unclassified", stderrors.New("mystery"), CodeInternalError},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			appErr := FromDomain(test.err)
			if appErr.Code != test.code {
				t.Errorf("Expected code %s, got %s", test.code, appErr.Code)
			}
			if !stderrors.Is(appErr, test.err) {
				t.Error("Expected AppError to unwrap to the domain error")
			}
		})
	}
}

// TestFromDomainIdempotent tests that existing AppErrors pass through
func TestFromDomainIdempotent(t *testing.T) {
	orig := ConfigInvalid("bad seed")
	if FromDomain(orig) != orig {
		t.Error("Expected AppError to pass through unchanged")
	}
}

// TestGetCodeUnknown tests the fallback code
func TestGetCodeUnknown(t *testing.T) {
	if GetCode(stderrors.New("plain")) != "UNKNOWN" {
		t.Errorf("Expected UNKNOWN, got %s", GetCode(stderrors.New("plain")))
	}
}
