package audio

import (
	"bytes"
	"encoding/base64"
	"mime/multipart"
	"net/http"
	"testing"

	"github.com/skillsenselab/whisperd/internal/apperr"
)

func multipartHeader(t *testing.T, filename string, data []byte) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("audio", filename)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write(data); err != nil {
		t.Fatal(err)
	}
	w.Close()

	req, err := http.NewRequest(http.MethodPost, "/", &buf)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	if err := req.ParseMultipartForm(1 << 20); err != nil {
		t.Fatal(err)
	}
	return req.MultipartForm.File["audio"][0]
}

func TestFromMultipart(t *testing.T) {
	p, err := FromMultipart(multipartHeader(t, "clip.mp3", []byte("bytes")))
	if err != nil {
		t.Fatalf("FromMultipart() error = %v", err)
	}
	if p.Ext != ".mp3" {
		t.Errorf("Ext = %q, want %q", p.Ext, ".mp3")
	}
	if string(p.Data) != "bytes" {
		t.Errorf("Data = %q", p.Data)
	}
}

func TestFromMultipartNoExtension(t *testing.T) {
	p, err := FromMultipart(multipartHeader(t, "clip", []byte("bytes")))
	if err != nil {
		t.Fatalf("FromMultipart() error = %v", err)
	}
	if p.Ext != ".webm" {
		t.Errorf("Ext = %q, want %q", p.Ext, ".webm")
	}
}

func TestFromMultipartEmpty(t *testing.T) {
	_, err := FromMultipart(multipartHeader(t, "clip.wav", nil))
	assertInvalidInput(t, err)
}

func TestFromMultipartNilHeader(t *testing.T) {
	_, err := FromMultipart(nil)
	assertInvalidInput(t, err)
}

func TestFromBase64(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString([]byte("audio-bytes"))

	tests := []struct {
		name   string
		field  string
		format string
		want   string
	}{
		{"plain", encoded, "", ".webm"},
		{"data url preamble", "data:audio/webm;base64," + encoded, "", ".webm"},
		{"explicit format", encoded, "ogg", ".ogg"},
		{"format with dot", encoded, ".wav", ".wav"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := FromBase64(tt.field, tt.format)
			if err != nil {
				t.Fatalf("FromBase64() error = %v", err)
			}
			if string(p.Data) != "audio-bytes" {
				t.Errorf("Data = %q", p.Data)
			}
			if p.Ext != tt.want {
				t.Errorf("Ext = %q, want %q", p.Ext, tt.want)
			}
		})
	}
}

func TestFromBase64Invalid(t *testing.T) {
	for _, field := range []string{"", "%%%not-base64%%%", "data:audio/webm;base64,"} {
		_, err := FromBase64(field, "")
		assertInvalidInput(t, err)
	}
}

func assertInvalidInput(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error")
	}
	appErr, ok := apperr.AsAppError(err)
	if !ok {
		t.Fatalf("error is not an AppError: %v", err)
	}
	if appErr.Code != apperr.ErrCodeInvalidInput {
		t.Errorf("Code = %q, want %q", appErr.Code, apperr.ErrCodeInvalidInput)
	}
}
