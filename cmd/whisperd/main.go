// Command whisperd is a local speech-to-text HTTP service backed by
// whisper models. It keeps loaded models cached in memory and exposes
// transcription over a small JSON/multipart API.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/skillsenselab/whisperd/internal/config"
	"github.com/skillsenselab/whisperd/internal/device"
	"github.com/skillsenselab/whisperd/internal/handlers"
	"github.com/skillsenselab/whisperd/internal/logging"
	"github.com/skillsenselab/whisperd/internal/observability"
	"github.com/skillsenselab/whisperd/internal/server"
	"github.com/skillsenselab/whisperd/internal/transcribe"
	"github.com/skillsenselab/whisperd/internal/whisper"

	_ "github.com/skillsenselab/whisperd/internal/whisper/whispercpp"
)

func main() {
	configFile := flag.String("config", "", "path to config file")
	envFile := flag.String("env", "", "path to .env file")
	flag.Parse()

	if err := run(*configFile, *envFile); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configFile, envFile string) error {
	var loaderOpts []config.LoaderOption
	if configFile != "" {
		loaderOpts = append(loaderOpts, config.WithConfigFile(configFile))
	}
	if envFile != "" {
		loaderOpts = append(loaderOpts, config.WithEnvFile(envFile))
	}
	cfg, err := config.Load(loaderOpts...)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logging.Init(cfg.Logging)
	log := logging.Global().WithComponent("main")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownObs, err := observability.Init(ctx, observability.Config{
		ServiceName:    cfg.Name,
		ServiceVersion: cfg.Version,
		Environment:    cfg.Environment,
		Endpoint:       cfg.Observability.Endpoint,
		Insecure:       cfg.Observability.Insecure,
	})
	if err != nil {
		return fmt.Errorf("initializing observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownObs(shutdownCtx); err != nil {
			log.Warn("observability shutdown failed", logging.Fields(logging.FieldError, err.Error()))
		}
	}()

	metrics, err := observability.NewMetrics()
	if err != nil {
		return fmt.Errorf("creating metrics: %w", err)
	}

	sel := device.NewResolver(nil).Resolve(ctx, cfg.Whisper.Device, cfg.Whisper.ComputeType)
	weights := whisper.NewWeightStore(cfg.Whisper.ModelsDir, nil)

	loadEngine := func(ctx context.Context, id string) (whisper.Engine, error) {
		path, err := weights.Ensure(ctx, id, sel.Precision)
		if err != nil {
			return nil, err
		}
		return whisper.NewEngine(cfg.Whisper.Engine, whisper.EngineConfig{
			ModelPath: path,
			UseGPU:    sel.Device == device.CUDA,
			Threads:   cfg.Whisper.Threads,
		})
	}
	cache := whisper.NewCache(cfg.Whisper.DefaultModel, func(ctx context.Context, id string) (whisper.Engine, error) {
		engine, err := loadEngine(ctx, id)
		metrics.RecordModelLoad(ctx, id, err)
		return engine, err
	})
	defer func() {
		if err := cache.Close(); err != nil {
			log.Warn("model cache close failed", logging.Fields(logging.FieldError, err.Error()))
		}
	}()

	cache.Warm(ctx)

	pipeline := transcribe.New(cache, metrics)

	srv := server.New(cfg.Server)
	handlers.New(pipeline, cache).Register(srv.Engine())

	if err := srv.Start(ctx); err != nil {
		return err
	}
	log.Info("whisperd ready", logging.Fields(
		"addr", cfg.Server.Addr(),
		logging.FieldModel, cfg.Whisper.DefaultModel,
		logging.FieldDevice, sel.Device,
	))

	<-ctx.Done()
	log.Info("signal received, shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return srv.Stop(shutdownCtx)
}
