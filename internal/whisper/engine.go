package whisper

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// VADParams controls voice-activity filtering ahead of inference.
type VADParams struct {
	// MinSilenceDuration is the shortest gap treated as a region break.
	MinSilenceDuration time.Duration
	// SpeechPad widens each detected speech region on both sides.
	SpeechPad time.Duration
}

// Options selects decoding behavior for a single Transcribe call.
type Options struct {
	// Language is an ISO 639-1 hint; empty means autodetect.
	Language string
	// Task is "transcribe" or "translate".
	Task string
	// VAD configures the voice-activity pre-filter.
	VAD VADParams
}

// Segment is one decoded span of speech.
type Segment struct {
	// Start and End are offsets into the audio, in seconds.
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	// Text is the decoded text, trimmed of surrounding whitespace.
	Text string `json:"text"`
	// Confidence is the mean log token probability for the segment.
	Confidence float64 `json:"confidence"`
}

// Info describes the audio-level outcome of a Transcribe call.
type Info struct {
	// Language is the detected or hinted language code.
	Language string
	// LanguageProbability is the confidence of the language decision.
	LanguageProbability float64
	// Duration is the audio length in seconds.
	Duration float64
}

// Result is the complete outcome of a transcription.
type Result struct {
	Text                string    `json:"text"`
	Language            string    `json:"language"`
	LanguageProbability float64   `json:"language_probability"`
	Duration            float64   `json:"duration"`
	Segments            []Segment `json:"segments,omitempty"`
	// RequestedModel is set when the caller asked for an unknown model
	// and the default was substituted.
	RequestedModel string `json:"requested_model,omitempty"`
}

// Engine transcribes audio files using a loaded model. Implementations
// must serialize concurrent Transcribe calls internally.
type Engine interface {
	// Transcribe decodes the file at path, invoking onSegment for each
	// decoded segment in order. onSegment may be nil.
	Transcribe(ctx context.Context, path string, opts Options, onSegment func(Segment)) (Info, error)
	// Close releases the model.
	Close() error
}

// EngineConfig carries everything a backend needs to load a model.
type EngineConfig struct {
	// ModelPath is the local path to the weight file.
	ModelPath string
	// UseGPU requests GPU inference when the backend supports it.
	UseGPU bool
	// Threads caps decoder threads; 0 lets the backend choose.
	Threads int
}

// EngineFactory constructs an engine with a loaded model.
type EngineFactory func(cfg EngineConfig) (Engine, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]EngineFactory)
)

// RegisterEngine registers a backend factory under name. Backends call
// this from init; duplicate names panic.
func RegisterEngine(name string, factory EngineFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, exists := registry[name]; exists {
		panic(fmt.Sprintf("whisper: engine %q already registered", name))
	}
	registry[name] = factory
}

// NewEngine constructs an engine using the named registered backend.
func NewEngine(name string, cfg EngineConfig) (Engine, error) {
	registryMu.RLock()
	factory, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("whisper: unknown engine %q (registered: %v)", name, EngineNames())
	}
	return factory(cfg)
}

// EngineNames returns the registered backend names, sorted.
func EngineNames() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
