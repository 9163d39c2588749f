// Package handlers implements the HTTP routes of the transcription
// service.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skillsenselab/whisperd/internal/apperr"
	"github.com/skillsenselab/whisperd/internal/audio"
	"github.com/skillsenselab/whisperd/internal/transcribe"
	"github.com/skillsenselab/whisperd/internal/validation"
	"github.com/skillsenselab/whisperd/internal/whisper"
)

// Transcriber runs transcription requests. *transcribe.Pipeline
// satisfies it.
type Transcriber interface {
	Transcribe(ctx context.Context, req transcribe.Request) (*whisper.Result, error)
}

// ModelStatus exposes cache state for the health and models routes.
type ModelStatus interface {
	Loaded() []string
	Current() string
	DefaultModel() string
}

// Handler holds the route dependencies.
type Handler struct {
	pipeline Transcriber
	models   ModelStatus
}

// New creates a handler.
func New(pipeline Transcriber, models ModelStatus) *Handler {
	return &Handler{pipeline: pipeline, models: models}
}

// Register mounts all routes on the engine.
func (h *Handler) Register(e *gin.Engine) {
	e.GET("/health", h.Health)
	e.GET("/models", h.Models)
	e.POST("/transcribe", h.Transcribe)
	e.POST("/transcribe-base64", h.TranscribeBase64)
}

// Health reports service and model status.
func (h *Handler) Health(c *gin.Context) {
	current := h.models.Current()
	c.JSON(http.StatusOK, gin.H{
		"status":           "healthy",
		"model_loaded":     current != "",
		"current_model":    current,
		"available_models": whisper.SupportedModels(),
	})
}

// Models lists the supported model identifiers.
func (h *Handler) Models(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"models":  whisper.SupportedModels(),
		"loaded":  h.models.Loaded(),
		"current": h.models.Current(),
		"default": h.models.DefaultModel(),
	})
}

// Transcribe accepts a multipart upload and returns the transcription
// with segments.
func (h *Handler) Transcribe(c *gin.Context) {
	fileHeader, err := c.FormFile("audio")
	if err != nil {
		writeError(c, apperr.InvalidInput("no audio file provided"))
		return
	}

	payload, err := audio.FromMultipart(fileHeader)
	if err != nil {
		writeError(c, err)
		return
	}

	result, err := h.pipeline.Transcribe(c.Request.Context(), transcribe.Request{
		Payload:         payload,
		Model:           c.PostForm("model"),
		Language:        c.PostForm("language"),
		Task:            c.PostForm("task"),
		IncludeSegments: true,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type base64Request struct {
	Audio    string `json:"audio" validate:"required"`
	Model    string `json:"model"`
	Language string `json:"language"`
	Format   string `json:"format"`
}

// TranscribeBase64 accepts base64 audio in a JSON body and returns the
// transcription without segments. Translation is not offered on this
// route.
func (h *Handler) TranscribeBase64(c *gin.Context) {
	var req base64Request
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperr.InvalidInput("malformed JSON body"))
		return
	}
	if err := validation.ValidateStruct(req); err != nil {
		writeError(c, err)
		return
	}

	payload, err := audio.FromBase64(req.Audio, req.Format)
	if err != nil {
		writeError(c, err)
		return
	}

	result, err := h.pipeline.Transcribe(c.Request.Context(), transcribe.Request{
		Payload:  payload,
		Model:    req.Model,
		Language: req.Language,
		Task:     transcribe.TaskTranscribe,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// writeError maps any error onto the JSON error envelope.
func writeError(c *gin.Context, err error) {
	appErr, ok := apperr.AsAppError(err)
	if !ok {
		appErr = apperr.Internal(err)
	}
	c.JSON(appErr.HTTPStatus, appErr.ToResponse())
}
