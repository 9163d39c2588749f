// Package audio turns transport-level audio payloads (multipart uploads,
// base64 fields) into bytes plus a file extension hint for the decoder.
package audio

import (
	"encoding/base64"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/skillsenselab/whisperd/internal/apperr"
)

const defaultFormat = "webm"

// Payload is decoded audio ready for transcription.
type Payload struct {
	// Data is the raw container bytes.
	Data []byte
	// Ext is the filename extension with leading dot, e.g. ".webm".
	Ext string
}

// FromMultipart reads an uploaded file. The extension comes from the
// uploaded filename, defaulting to .webm when absent.
func FromMultipart(header *multipart.FileHeader) (Payload, error) {
	if header == nil {
		return Payload{}, apperr.InvalidInput("no audio file provided")
	}

	f, err := header.Open()
	if err != nil {
		return Payload{}, apperr.InvalidInput(fmt.Sprintf("cannot open uploaded file: %v", err))
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return Payload{}, apperr.InvalidInput(fmt.Sprintf("cannot read uploaded file: %v", err))
	}
	if len(data) == 0 {
		return Payload{}, apperr.InvalidInput("uploaded audio file is empty")
	}

	ext := filepath.Ext(header.Filename)
	if ext == "" {
		ext = "." + defaultFormat
	}
	return Payload{Data: data, Ext: ext}, nil
}

// FromBase64 decodes a base64 audio field. A data-URL preamble
// ("data:audio/webm;base64,") is stripped through the first comma.
// format names the container; empty means webm.
func FromBase64(field, format string) (Payload, error) {
	if field == "" {
		return Payload{}, apperr.InvalidInput("no audio data provided")
	}

	if i := strings.Index(field, ","); i >= 0 {
		field = field[i+1:]
	}

	data, err := base64.StdEncoding.DecodeString(field)
	if err != nil {
		return Payload{}, apperr.InvalidInput(fmt.Sprintf("invalid base64 audio data: %v", err))
	}
	if len(data) == 0 {
		return Payload{}, apperr.InvalidInput("decoded audio data is empty")
	}

	if format == "" {
		format = defaultFormat
	}
	return Payload{Data: data, Ext: "." + strings.TrimPrefix(format, ".")}, nil
}
