package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

const (
	// EnvPrefix prefixes every environment override of a config key.
	EnvPrefix = "DMDESK"
	// FileName is the config file base name searched for without --config.
	FileName = "dmdesk"
)

// Option customises Load.
type Option func(*loadOptions)

type loadOptions struct {
	viper       *viper.Viper
	configPath  string
	searchPaths []string
	dotEnvPath  string
	environment map[string]string
}

// WithViper loads through v, typically one with cobra flags already bound.
func WithViper(v *viper.Viper) Option {
	return func(o *loadOptions) {
		if v != nil {
			o.viper = v
		}
	}
}

// WithConfigPath forces a specific config file. A missing file is an error.
func WithConfigPath(path string) Option {
	return func(o *loadOptions) {
		o.configPath = strings.TrimSpace(path)
	}
}

// WithSearchPaths replaces the directories searched for dmdesk.yaml.
func WithSearchPaths(paths ...string) Option {
	return func(o *loadOptions) {
		o.searchPaths = paths
	}
}

// WithDotEnv sets the .env file loaded before credentials are parsed. An
// empty path disables it.
func WithDotEnv(path string) Option {
	return func(o *loadOptions) {
		o.dotEnvPath = path
	}
}

// WithEnvironment parses credentials from env instead of the process
// environment. Used in tests.
func WithEnvironment(environment map[string]string) Option {
	return func(o *loadOptions) {
		o.environment = environment
	}
}

// Load resolves the configuration: defaults, then the YAML file, then
// DMDESK_* environment variables, then any flags bound on the viper
// instance. Credentials are read from the environment only.
func Load(opts ...Option) (Config, error) {
	options := loadOptions{
		dotEnvPath: ".env",
	}
	for _, opt := range opts {
		opt(&options)
	}
	v := options.viper
	if v == nil {
		v = viper.New()
	}

	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("server.port", EnvPrefix+"_SERVER_PORT", "PORT"); err != nil {
		return Config{}, fmt.Errorf("bind PORT: %w", err)
	}

	if err := readConfigFile(v, options); err != nil {
		return Config{}, err
	}

	cfg := Config{}
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.ConfigFile = v.ConfigFileUsed()

	creds, err := loadCredentials(options)
	if err != nil {
		return Config{}, err
	}
	cfg.Credentials = creds

	normalize(&cfg)
	return cfg, nil
}

func readConfigFile(v *viper.Viper, options loadOptions) error {
	path := options.configPath
	if path == "" {
		path = findConfigFile(options)
	}
	if path == "" {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	return nil
}

// findConfigFile returns the first dmdesk.yaml or dmdesk.yml found in the
// search paths.
func findConfigFile(options loadOptions) string {
	paths := options.searchPaths
	if paths == nil {
		paths = []string{"."}
		if home, err := os.UserHomeDir(); err == nil && home != "" {
			paths = append(paths, filepath.Join(home, ".dmdesk"))
		}
	}
	for _, dir := range paths {
		for _, ext := range []string{".yaml", ".yml"} {
			candidate := filepath.Join(dir, FileName+ext)
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return candidate
			}
		}
	}
	return ""
}

func loadCredentials(options loadOptions) (Credentials, error) {
	var creds Credentials
	if options.environment != nil {
		if err := env.ParseWithOptions(&creds, env.Options{Environment: options.environment}); err != nil {
			return Credentials{}, fmt.Errorf("parse credentials: %w", err)
		}
		return creds, nil
	}

	if options.dotEnvPath != "" {
		// Existing environment variables win over .env entries.
		if err := gotenv.Load(options.dotEnvPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Credentials{}, fmt.Errorf("load %s: %w", options.dotEnvPath, err)
		}
	}
	if err := env.Parse(&creds); err != nil {
		return Credentials{}, fmt.Errorf("parse credentials: %w", err)
	}
	return creds, nil
}

func setDefaults(v *viper.Viper, cfg Config) {
	v.SetDefault("server.host", cfg.Server.Host)
	v.SetDefault("server.port", cfg.Server.Port)
	v.SetDefault("server.debug", cfg.Server.Debug)
	v.SetDefault("server.enable_cors", cfg.Server.EnableCORS)
	v.SetDefault("server.allowed_origins", cfg.Server.AllowedOrigins)
	v.SetDefault("server.read_timeout", cfg.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", cfg.Server.WriteTimeout)
	v.SetDefault("server.shutdown_timeout", cfg.Server.ShutdownTimeout)

	v.SetDefault("twitter.base_url", cfg.Twitter.BaseURL)
	v.SetDefault("twitter.request_timeout", cfg.Twitter.RequestTimeout)
	v.SetDefault("twitter.probe_timeout", cfg.Twitter.ProbeTimeout)
	v.SetDefault("twitter.max_response_bytes", cfg.Twitter.MaxResponseBytes)

	obs := cfg.Observability
	v.SetDefault("observability.logging.level", obs.Logging.Level)
	v.SetDefault("observability.logging.format", obs.Logging.Format)
	v.SetDefault("observability.metrics.enabled", obs.Metrics.Enabled)
	v.SetDefault("observability.metrics.prometheus_port", obs.Metrics.PrometheusPort)
	v.SetDefault("observability.tracing.enabled", obs.Tracing.Enabled)
	v.SetDefault("observability.tracing.exporter", obs.Tracing.Exporter)
	v.SetDefault("observability.tracing.otlp_endpoint", obs.Tracing.OTLPEndpoint)
	v.SetDefault("observability.tracing.zipkin_endpoint", obs.Tracing.ZipkinEndpoint)
	v.SetDefault("observability.tracing.sample_rate", obs.Tracing.SampleRate)
	v.SetDefault("observability.tracing.service_name", obs.Tracing.ServiceName)
	v.SetDefault("observability.tracing.service_version", obs.Tracing.ServiceVersion)
}

func normalize(cfg *Config) {
	cfg.Server.Host = strings.TrimSpace(cfg.Server.Host)
	cfg.Twitter.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.Twitter.BaseURL), "/")
	cfg.Observability.Logging.Level = strings.ToLower(strings.TrimSpace(cfg.Observability.Logging.Level))
	cfg.Observability.Logging.Format = strings.ToLower(strings.TrimSpace(cfg.Observability.Logging.Format))
	cfg.Observability.Tracing.Exporter = strings.ToLower(strings.TrimSpace(cfg.Observability.Tracing.Exporter))

	creds := &cfg.Credentials
	creds.BearerToken = strings.TrimSpace(creds.BearerToken)
	creds.ConsumerKey = strings.TrimSpace(creds.ConsumerKey)
	creds.ConsumerSecret = strings.TrimSpace(creds.ConsumerSecret)
	creds.AccessToken = strings.TrimSpace(creds.AccessToken)
	creds.AccessTokenSecret = strings.TrimSpace(creds.AccessTokenSecret)
}
