package whispercpp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/skillsenselab/whisperd/internal/process"
)

const decodeTimeout = 10 * time.Minute

// decodeAudio shells out to ffmpeg, resampling the input file to 16kHz
// mono 32-bit float PCM on stdout.
func decodeAudio(ctx context.Context, path string) ([]float32, error) {
	res, err := process.Run(ctx, process.Command{
		Binary: "ffmpeg",
		Args: []string{
			"-hide_banner", "-loglevel", "error",
			"-i", path,
			"-f", "f32le",
			"-ac", "1",
			"-ar", fmt.Sprint(sampleRate),
			"pipe:1",
		},
		Timeout: decodeTimeout,
	})
	if err != nil {
		if res != nil {
			if msg := strings.TrimSpace(string(res.Stderr)); msg != "" {
				return nil, fmt.Errorf("decoding audio: %s", msg)
			}
		}
		return nil, fmt.Errorf("running ffmpeg: %w", err)
	}

	samples := pcmToFloat32(res.Stdout)
	if len(samples) == 0 {
		return nil, fmt.Errorf("decoded audio is empty")
	}
	return samples, nil
}
