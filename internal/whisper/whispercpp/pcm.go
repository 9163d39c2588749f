package whispercpp

import (
	"encoding/binary"
	"math"
)

// sampleRate is the rate whisper models expect.
const sampleRate = 16000

// pcmToFloat32 reinterprets little-endian 32-bit float PCM bytes as
// samples. Trailing bytes short of a full sample are dropped.
func pcmToFloat32(data []byte) []float32 {
	n := len(data) / 4
	samples := make([]float32, n)
	for i := 0; i < n; i++ {
		bits := binary.LittleEndian.Uint32(data[i*4 : i*4+4])
		samples[i] = math.Float32frombits(bits)
	}
	return samples
}
