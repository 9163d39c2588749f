package validation

import (
	"testing"

	"github.com/skillsenselab/whisperd/internal/apperr"
)

type sample struct {
	Audio string `validate:"required"`
	Model string
}

func TestValidateStructOK(t *testing.T) {
	if err := ValidateStruct(sample{Audio: "data"}); err != nil {
		t.Errorf("ValidateStruct() error = %v", err)
	}
}

func TestValidateStructMissingRequired(t *testing.T) {
	err := ValidateStruct(sample{})
	if err == nil {
		t.Fatal("expected error for missing required field")
	}
	appErr, ok := apperr.AsAppError(err)
	if !ok {
		t.Fatalf("error is not an AppError: %v", err)
	}
	if appErr.Code != apperr.ErrCodeInvalidInput {
		t.Errorf("Code = %q, want %q", appErr.Code, apperr.ErrCodeInvalidInput)
	}
	if appErr.Details["fields"] == nil {
		t.Error("fields detail missing")
	}
}
