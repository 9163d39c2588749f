package whisper

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/skillsenselab/whisperd/internal/httpx"
	"github.com/skillsenselab/whisperd/internal/logging"
)

// Downloader fetches a URL to a local path. *httpx.Client satisfies it.
type Downloader interface {
	Download(ctx context.Context, url, dest string) error
}

// WeightStore locates model weight files on disk, downloading them from
// upstream on first use.
type WeightStore struct {
	dir        string
	downloader Downloader
	log        *logging.Logger
}

// NewWeightStore creates a store rooted at dir. A nil downloader gets a
// default httpx client.
func NewWeightStore(dir string, downloader Downloader) *WeightStore {
	if downloader == nil {
		downloader = httpx.New(httpx.Config{})
	}
	return &WeightStore{
		dir:        dir,
		downloader: downloader,
		log:        logging.Global().WithComponent("weights"),
	}
}

// Ensure returns the local path of the weight file for id at precision,
// downloading it if the models directory does not already hold it.
func (s *WeightStore) Ensure(ctx context.Context, id, precision string) (string, error) {
	file := WeightFile(id, precision)
	path := filepath.Join(s.dir, file)

	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	url := WeightURL(file)
	s.log.Info("downloading model weights", logging.Fields(
		logging.FieldModel, id,
		"file", file,
		"url", url,
	))
	if err := s.downloader.Download(ctx, url, path); err != nil {
		return "", fmt.Errorf("fetching %s: %w", file, err)
	}
	s.log.Info("model weights ready", logging.Fields(logging.FieldModel, id, "path", path))
	return path, nil
}
