package whisper

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

type fakeDownloader struct {
	calls int
	err   error
}

func (d *fakeDownloader) Download(ctx context.Context, url, dest string) error {
	d.calls++
	if d.err != nil {
		return d.err
	}
	return os.WriteFile(dest, []byte("weights"), 0o644)
}

func TestEnsureExistingFile(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "ggml-base.bin")
	if err := os.WriteFile(existing, []byte("weights"), 0o644); err != nil {
		t.Fatal(err)
	}

	d := &fakeDownloader{}
	s := NewWeightStore(dir, d)
	path, err := s.Ensure(context.Background(), "base", "float16")
	if err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}
	if path != existing {
		t.Errorf("path = %q, want %q", path, existing)
	}
	if d.calls != 0 {
		t.Errorf("downloads = %d, want 0", d.calls)
	}
}

func TestEnsureDownloads(t *testing.T) {
	dir := t.TempDir()
	d := &fakeDownloader{}
	s := NewWeightStore(dir, d)

	path, err := s.Ensure(context.Background(), "tiny", "int8")
	if err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}
	if want := filepath.Join(dir, "ggml-tiny-q8_0.bin"); path != want {
		t.Errorf("path = %q, want %q", path, want)
	}
	if d.calls != 1 {
		t.Errorf("downloads = %d, want 1", d.calls)
	}
}

func TestEnsureDownloadFailure(t *testing.T) {
	d := &fakeDownloader{err: errors.New("upstream down")}
	s := NewWeightStore(t.TempDir(), d)

	if _, err := s.Ensure(context.Background(), "base", "float16"); err == nil {
		t.Fatal("Ensure() expected error")
	}
}
