package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// envBindings maps config keys to their environment variables. The WHISPER_*
// names are the contract with the process manager that launches whisperd.
var envBindings = map[string]string{
	"whisper.models_dir":     "WHISPER_MODELS_DIR",
	"whisper.default_model":  "WHISPER_DEFAULT_MODEL",
	"whisper.device":         "WHISPER_DEVICE",
	"whisper.compute_type":   "WHISPER_COMPUTE_TYPE",
	"whisper.engine":         "WHISPER_ENGINE",
	"whisper.threads":        "WHISPER_THREADS",
	"server.host":            "WHISPER_HOST",
	"server.port":            "WHISPER_PORT",
	"server.max_body_bytes":  "WHISPER_MAX_BODY_BYTES",
	"logging.level":          "LOG_LEVEL",
	"logging.format":         "LOG_FORMAT",
	"logging.output":         "LOG_OUTPUT",
	"observability.endpoint": "OTEL_EXPORTER_OTLP_ENDPOINT",
	"observability.insecure": "OTEL_EXPORTER_OTLP_INSECURE",
}

// LoaderOption customizes Load.
type LoaderOption func(*loaderOptions)

type loaderOptions struct {
	configFile string
	envFile    string
}

// WithConfigFile sets an explicit config file path.
func WithConfigFile(path string) LoaderOption {
	return func(o *loaderOptions) { o.configFile = path }
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(path string) LoaderOption {
	return func(o *loaderOptions) { o.envFile = path }
}

// Load reads configuration in precedence order: defaults < config.yml < .env <
// process environment. Missing files are not an error.
func Load(opts ...LoaderOption) (*Config, error) {
	var o loaderOptions
	for _, opt := range opts {
		opt(&o)
	}

	if o.envFile == "" {
		o.envFile = findFirst(".env.whisperd", ".env")
	}
	if o.envFile != "" {
		if err := godotenv.Load(o.envFile); err != nil {
			fmt.Fprintf(os.Stderr, "[config] warning: failed to load env file %s: %v\n", o.envFile, err)
		}
	}

	v := viper.New()

	if o.configFile == "" {
		o.configFile = findFirst("./config.yml", "./config/config.yml", "./cmd/whisperd/config.yml")
	}
	if o.configFile != "" {
		v.SetConfigFile(o.configFile)
		if err := v.ReadInConfig(); err != nil {
			fmt.Fprintf(os.Stderr, "[config] warning: failed to load config file %s: %v\n", o.configFile, err)
		}
	}

	v.AutomaticEnv()
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("binding %s: %w", env, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return &cfg, nil
}

func findFirst(paths ...string) string {
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
