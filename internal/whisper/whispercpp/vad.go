package whispercpp

import (
	"math"
	"time"
)

const (
	vadFrameDuration = 30 * time.Millisecond
	// RMS threshold for speech, on the [-1, 1] sample scale.
	vadEnergyThreshold = 0.015
)

// region is a half-open span of speech in sample offsets.
type region struct {
	start int
	end   int
}

// speechRegions finds spans of speech in 16kHz mono samples using
// frame-level RMS energy. Gaps shorter than minSilence join adjacent
// spans into one; each resulting span is widened by pad on both sides.
// Silence-only audio yields no regions.
func speechRegions(samples []float32, minSilence, pad time.Duration) []region {
	frameLen := int(float64(sampleRate) * vadFrameDuration.Seconds())
	if frameLen <= 0 || len(samples) == 0 {
		return nil
	}

	var raw []region
	open := -1
	for off := 0; off < len(samples); off += frameLen {
		end := off + frameLen
		if end > len(samples) {
			end = len(samples)
		}
		if rms(samples[off:end]) >= vadEnergyThreshold {
			if open < 0 {
				open = off
			}
		} else if open >= 0 {
			raw = append(raw, region{start: open, end: off})
			open = -1
		}
	}
	if open >= 0 {
		raw = append(raw, region{start: open, end: len(samples)})
	}
	if len(raw) == 0 {
		return nil
	}

	gapSamples := int(float64(sampleRate) * minSilence.Seconds())
	merged := []region{raw[0]}
	for _, r := range raw[1:] {
		last := &merged[len(merged)-1]
		if r.start-last.end < gapSamples {
			last.end = r.end
		} else {
			merged = append(merged, r)
		}
	}

	padSamples := int(float64(sampleRate) * pad.Seconds())
	for i := range merged {
		merged[i].start -= padSamples
		if merged[i].start < 0 {
			merged[i].start = 0
		}
		merged[i].end += padSamples
		if merged[i].end > len(samples) {
			merged[i].end = len(samples)
		}
	}

	// Padding can make neighbors overlap; collapse them.
	out := merged[:1]
	for _, r := range merged[1:] {
		last := &out[len(out)-1]
		if r.start <= last.end {
			if r.end > last.end {
				last.end = r.end
			}
		} else {
			out = append(out, r)
		}
	}
	return out
}

func rms(samples []float32) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += float64(s) * float64(s)
	}
	return math.Sqrt(sum / float64(len(samples)))
}
