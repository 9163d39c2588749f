// Package device resolves the compute device and numeric precision used
// for inference. Resolution follows the configured values when they are
// explicit and probes the machine when they are "auto".
package device

import (
	"context"
	"strings"
	"time"

	"github.com/skillsenselab/whisperd/internal/logging"
	"github.com/skillsenselab/whisperd/internal/process"
)

// Device names.
const (
	CPU  = "cpu"
	CUDA = "cuda"
)

// Precision names.
const (
	Float16 = "float16"
	Float32 = "float32"
	Int8    = "int8"
)

const probeTimeout = 5 * time.Second

// Selection is the resolved device and precision pair.
type Selection struct {
	Device    string
	Precision string
}

// Prober reports whether a CUDA-capable GPU is present. Probe failures
// mean no GPU; probing never returns an error.
type Prober interface {
	HasGPU(ctx context.Context) bool
}

// NvidiaSMIProber detects GPUs by running nvidia-smi -L.
type NvidiaSMIProber struct{}

// HasGPU returns true when nvidia-smi lists at least one device.
func (NvidiaSMIProber) HasGPU(ctx context.Context) bool {
	res, err := process.Run(ctx, process.Command{
		Binary:  "nvidia-smi",
		Args:    []string{"-L"},
		Timeout: probeTimeout,
	})
	if err != nil || res.ExitCode != 0 {
		return false
	}
	return strings.Contains(string(res.Stdout), "GPU")
}

// Resolver turns configured device and compute type values into a
// concrete Selection.
type Resolver struct {
	prober Prober
	log    *logging.Logger
}

// NewResolver creates a resolver. A nil prober falls back to nvidia-smi.
func NewResolver(prober Prober) *Resolver {
	if prober == nil {
		prober = NvidiaSMIProber{}
	}
	return &Resolver{
		prober: prober,
		log:    logging.Global().WithComponent("device"),
	}
}

// Resolve maps the configured device and computeType to a Selection.
// "auto" device picks cuda when a GPU is present, cpu otherwise. "auto"
// precision picks float16 on cuda and int8 on cpu.
func (r *Resolver) Resolve(ctx context.Context, device, computeType string) Selection {
	dev := strings.ToLower(device)
	switch dev {
	case CPU:
	case CUDA, "gpu":
		dev = CUDA
	default:
		if r.prober.HasGPU(ctx) {
			dev = CUDA
		} else {
			dev = CPU
		}
	}

	precision := strings.ToLower(computeType)
	switch precision {
	case Float16, Float32, Int8:
	default:
		if dev == CUDA {
			precision = Float16
		} else {
			precision = Int8
		}
	}

	sel := Selection{Device: dev, Precision: precision}
	r.log.Info("resolved compute device", logging.Fields(
		logging.FieldDevice, sel.Device,
		"precision", sel.Precision,
	))
	return sel
}
