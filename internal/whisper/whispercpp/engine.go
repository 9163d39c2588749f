//go:build whisper_cpp

package whispercpp

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"

	ggml "github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"

	"github.com/skillsenselab/whisperd/internal/whisper"
)

func init() {
	whisper.RegisterEngine(EngineName, func(cfg whisper.EngineConfig) (whisper.Engine, error) {
		return newEngine(cfg)
	})
}

// engine runs inference through whisper.cpp. A whisper context is not
// safe for concurrent use, so Transcribe holds a mutex for its full
// duration.
type engine struct {
	mu      sync.Mutex
	model   ggml.Model
	threads int
}

func newEngine(cfg whisper.EngineConfig) (*engine, error) {
	model, err := ggml.New(cfg.ModelPath)
	if err != nil {
		return nil, fmt.Errorf("loading model from %s: %w", cfg.ModelPath, err)
	}
	return &engine{model: model, threads: cfg.Threads}, nil
}

func (e *engine) Transcribe(ctx context.Context, path string, opts whisper.Options, onSegment func(whisper.Segment)) (whisper.Info, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	samples, err := decodeAudio(ctx, path)
	if err != nil {
		return whisper.Info{}, err
	}

	info := whisper.Info{
		Language:            opts.Language,
		LanguageProbability: 1.0,
		Duration:            float64(len(samples)) / sampleRate,
	}

	regions := speechRegions(samples, opts.VAD.MinSilenceDuration, opts.VAD.SpeechPad)
	if len(regions) == 0 {
		return info, nil
	}

	wctx, err := e.model.NewContext()
	if err != nil {
		return whisper.Info{}, fmt.Errorf("creating whisper context: %w", err)
	}
	lang := opts.Language
	if lang == "" {
		lang = "auto"
	}
	if err := wctx.SetLanguage(lang); err != nil {
		return whisper.Info{}, fmt.Errorf("setting language %q: %w", lang, err)
	}
	wctx.SetTranslate(opts.Task == "translate")
	wctx.SetTokenTimestamps(true)
	if e.threads > 0 {
		wctx.SetThreads(uint(e.threads))
	}

	for _, r := range regions {
		select {
		case <-ctx.Done():
			return whisper.Info{}, ctx.Err()
		default:
		}

		offset := float64(r.start) / sampleRate
		err := wctx.Process(samples[r.start:r.end], nil, func(seg ggml.Segment) {
			if onSegment == nil {
				return
			}
			onSegment(whisper.Segment{
				Start:      offset + seg.Start.Seconds(),
				End:        offset + seg.End.Seconds(),
				Text:       strings.TrimSpace(seg.Text),
				Confidence: meanLogProb(seg.Tokens),
			})
		}, nil)
		if err != nil {
			return whisper.Info{}, fmt.Errorf("processing audio: %w", err)
		}
	}

	if opts.Language == "" {
		info.Language = wctx.DetectedLanguage()
	}
	return info, nil
}

func (e *engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.model.Close()
}

// meanLogProb averages log token probabilities, the per-segment
// confidence measure.
func meanLogProb(tokens []ggml.Token) float64 {
	if len(tokens) == 0 {
		return 0
	}
	var sum float64
	for _, t := range tokens {
		p := float64(t.P)
		if p < 1e-10 {
			p = 1e-10
		}
		sum += math.Log(p)
	}
	return sum / float64(len(tokens))
}
