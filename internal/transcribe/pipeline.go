// Package transcribe orchestrates a transcription request: payload to
// temp file, model acquisition, engine invocation and result assembly.
package transcribe

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/skillsenselab/whisperd/internal/apperr"
	"github.com/skillsenselab/whisperd/internal/audio"
	"github.com/skillsenselab/whisperd/internal/logging"
	"github.com/skillsenselab/whisperd/internal/observability"
	"github.com/skillsenselab/whisperd/internal/whisper"
)

// Fixed voice-activity parameters applied to every request.
var vadParams = whisper.VADParams{
	MinSilenceDuration: 500 * time.Millisecond,
	SpeechPad:          400 * time.Millisecond,
}

// Tasks the engine accepts.
const (
	TaskTranscribe = "transcribe"
	TaskTranslate  = "translate"
)

// Request is one transcription job.
type Request struct {
	// Payload is the audio to transcribe.
	Payload audio.Payload
	// Model is the requested identifier; unknown values fall back to
	// the default model.
	Model string
	// Language is an optional ISO 639-1 hint.
	Language string
	// Task is transcribe or translate; empty means transcribe.
	Task string
	// IncludeSegments controls whether segments appear in the result.
	IncludeSegments bool
}

// ModelSource yields engines by identifier. *whisper.Cache satisfies it.
type ModelSource interface {
	GetOrLoad(ctx context.Context, id string) (*whisper.Handle, error)
	DefaultModel() string
}

// Pipeline runs transcription requests end to end.
type Pipeline struct {
	models  ModelSource
	metrics *observability.Metrics
	log     *logging.Logger
}

// New creates a pipeline. metrics may be nil.
func New(models ModelSource, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		models:  models,
		metrics: metrics,
		log:     logging.Global().WithComponent("pipeline"),
	}
}

// Transcribe validates the request, stages the audio in a temp file,
// loads the model and runs inference.
func (p *Pipeline) Transcribe(ctx context.Context, req Request) (*whisper.Result, error) {
	if len(req.Payload.Data) == 0 {
		return nil, apperr.InvalidInput("no audio data provided")
	}

	task := req.Task
	if task == "" {
		task = TaskTranscribe
	}
	if task != TaskTranscribe && task != TaskTranslate {
		return nil, apperr.InvalidInput(fmt.Sprintf("unknown task %q", task))
	}

	ctx, span := observability.StartSpan(ctx, "transcribe",
		trace.WithAttributes(
			attribute.String("model", req.Model),
			attribute.String("task", task),
		))
	defer span.End()

	if p.metrics != nil {
		p.metrics.RecordTranscriptionStart(ctx)
	}
	start := time.Now()

	result, err := p.run(ctx, req, task)

	if p.metrics != nil {
		p.metrics.RecordTranscription(ctx, req.Model, task, time.Since(start), err)
	}
	if err != nil {
		observability.SetSpanError(ctx, err)
	}
	return result, err
}

func (p *Pipeline) run(ctx context.Context, req Request, task string) (*whisper.Result, error) {
	path, err := p.stage(req.Payload)
	if err != nil {
		return nil, err
	}
	defer func() {
		if rmErr := os.Remove(path); rmErr != nil {
			p.log.Warn("temp file removal failed", logging.Fields(
				"path", path,
				logging.FieldError, rmErr.Error(),
			))
		}
	}()

	modelID, substituted := whisper.Normalize(req.Model, p.models.DefaultModel())
	if substituted {
		p.log.Warn("unknown model requested, using default", logging.Fields(
			"requested", req.Model,
			logging.FieldModel, modelID,
		))
	}
	handle, err := p.models.GetOrLoad(ctx, modelID)
	if err != nil {
		return nil, err
	}

	var segments []whisper.Segment
	info, err := handle.Engine.Transcribe(ctx, path, whisper.Options{
		Language: req.Language,
		Task:     task,
		VAD:      vadParams,
	}, func(seg whisper.Segment) {
		seg.Text = strings.TrimSpace(seg.Text)
		segments = append(segments, seg)
	})
	if err != nil {
		return nil, apperr.Inference(err)
	}

	sort.SliceStable(segments, func(i, j int) bool {
		return segments[i].Start < segments[j].Start
	})

	texts := make([]string, 0, len(segments))
	for _, seg := range segments {
		texts = append(texts, seg.Text)
	}

	result := &whisper.Result{
		Text:                strings.Join(texts, " "),
		Language:            info.Language,
		LanguageProbability: info.LanguageProbability,
		Duration:            info.Duration,
	}
	if req.IncludeSegments {
		result.Segments = segments
	}
	if substituted {
		result.RequestedModel = req.Model
	}

	p.log.Info("transcription complete", logging.Fields(
		logging.FieldModel, handle.Identifier,
		"task", task,
		"segments", len(segments),
		"audio_seconds", info.Duration,
	))
	return result, nil
}

// stage writes the payload to a uniquely named temp file carrying the
// payload's extension so the decoder can sniff the container.
func (p *Pipeline) stage(payload audio.Payload) (string, error) {
	f, err := os.CreateTemp("", "whisperd-*"+payload.Ext)
	if err != nil {
		return "", apperr.Internal(err)
	}
	if _, err := f.Write(payload.Data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", apperr.Internal(err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", apperr.Internal(err)
	}
	return f.Name(), nil
}
