// Package whisper manages model identifiers, weight files and the
// in-memory model cache, and defines the inference engine boundary.
package whisper

import (
	"fmt"

	"github.com/skillsenselab/whisperd/internal/device"
)

// supported is the fixed set of model identifiers the service serves.
var supported = []string{
	"tiny", "tiny.en",
	"base", "base.en",
	"small", "small.en",
	"medium", "medium.en",
	"large-v2", "large-v3",
}

var supportedSet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(supported))
	for _, id := range supported {
		m[id] = struct{}{}
	}
	return m
}()

// SupportedModels returns the identifiers in catalog order.
func SupportedModels() []string {
	out := make([]string, len(supported))
	copy(out, supported)
	return out
}

// IsSupported reports whether id is a known model identifier.
func IsSupported(id string) bool {
	_, ok := supportedSet[id]
	return ok
}

// Normalize maps id to a supported identifier, substituting fallback for
// unknown or empty values. The second return reports whether a
// substitution happened.
func Normalize(id, fallback string) (string, bool) {
	if IsSupported(id) {
		return id, false
	}
	return fallback, id != "" && id != fallback
}

const weightURLBase = "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/"

// WeightFile returns the ggml weight filename for an identifier at the
// given precision. Int8 selects the q8_0 quantization; every other
// precision uses the standard f16 file.
func WeightFile(id, precision string) string {
	if precision == device.Int8 {
		return fmt.Sprintf("ggml-%s-q8_0.bin", id)
	}
	return fmt.Sprintf("ggml-%s.bin", id)
}

// WeightURL returns the upstream download URL for a weight file.
func WeightURL(file string) string {
	return weightURLBase + file
}
