//go:build !whisper_cpp

package whispercpp

import (
	"errors"

	"github.com/skillsenselab/whisperd/internal/whisper"
)

func init() {
	whisper.RegisterEngine(EngineName, func(cfg whisper.EngineConfig) (whisper.Engine, error) {
		return nil, errors.New("whispercpp engine unavailable: binary built without the whisper_cpp build tag")
	})
}
