package apperr

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestInvalidInput(t *testing.T) {
	err := InvalidInput("No audio file provided")
	if err.Code != ErrCodeInvalidInput {
		t.Errorf("expected code %s, got %s", ErrCodeInvalidInput, err.Code)
	}
	if err.HTTPStatus != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", err.HTTPStatus)
	}
	if err.Retryable {
		t.Error("INVALID_INPUT should not be retryable")
	}
	if err.Message != "No audio file provided" {
		t.Errorf("unexpected message %q", err.Message)
	}
}

func TestModelLoad(t *testing.T) {
	cause := fmt.Errorf("weights not found")
	err := ModelLoad("small", cause)
	if err.Code != ErrCodeModelLoad {
		t.Errorf("expected MODEL_LOAD_FAILED, got %s", err.Code)
	}
	if err.HTTPStatus != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", err.HTTPStatus)
	}
	if !err.Retryable {
		t.Error("MODEL_LOAD_FAILED should be retryable")
	}
	if err.Details["model"] != "small" {
		t.Errorf("expected model=small detail, got %v", err.Details["model"])
	}
	if !stderrors.Is(err, cause) {
		t.Error("expected errors.Is to match the cause")
	}
}

func TestInference(t *testing.T) {
	err := Inference(fmt.Errorf("decode failed"))
	if err.Code != ErrCodeInference {
		t.Errorf("expected INFERENCE_FAILED, got %s", err.Code)
	}
	if err.Retryable {
		t.Error("INFERENCE_FAILED should not be retryable")
	}
	if !strings.Contains(err.Error(), "decode failed") {
		t.Errorf("expected cause in error string, got %q", err.Error())
	}
}

func TestAsAppError(t *testing.T) {
	appErr := InvalidInput("no audio")
	wrapped := fmt.Errorf("handler: %w", appErr)

	got, ok := AsAppError(wrapped)
	if !ok {
		t.Fatal("expected AsAppError to unwrap")
	}
	if got.Code != ErrCodeInvalidInput {
		t.Errorf("expected INVALID_INPUT, got %s", got.Code)
	}

	if _, ok := AsAppError(fmt.Errorf("plain")); ok {
		t.Error("plain error should not convert to AppError")
	}
}

func TestToResponse(t *testing.T) {
	err := ModelLoad("tiny", fmt.Errorf("boom")).WithDetail("device", "cpu")
	resp := err.ToResponse()
	if resp.Error.Code != ErrCodeModelLoad {
		t.Errorf("expected MODEL_LOAD_FAILED, got %s", resp.Error.Code)
	}
	if !resp.Error.Retryable {
		t.Error("expected retryable in response body")
	}
	if resp.Error.Details["device"] != "cpu" {
		t.Errorf("expected device detail, got %v", resp.Error.Details)
	}
}
