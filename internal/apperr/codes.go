package apperr

// ErrorCode represents a machine-readable error code.
type ErrorCode string

const (
	// ErrCodeInvalidInput indicates the request input is malformed or absent.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeModelLoad indicates the inference engine could not be constructed
	// for the requested model (missing weights, download failure, device error).
	ErrCodeModelLoad ErrorCode = "MODEL_LOAD_FAILED"
	// ErrCodeInference indicates the engine failed while transcribing.
	ErrCodeInference ErrorCode = "INFERENCE_FAILED"
	// ErrCodeInternal indicates an unexpected internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	// A load failure may be transient (interrupted download, device busy);
	// the cache leaves the identifier absent so a retry can succeed.
	ErrCodeModelLoad: true,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
