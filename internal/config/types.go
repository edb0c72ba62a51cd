package config

import (
	"net"
	"strconv"
	"time"

	"dmdesk/internal/observability"
	"dmdesk/internal/twitter"
)

// Config is the effective runtime configuration.
type Config struct {
	Server        ServerConfig         `mapstructure:"server" yaml:"server"`
	Twitter       TwitterConfig        `mapstructure:"twitter" yaml:"twitter"`
	Observability observability.Config `mapstructure:"observability" yaml:"observability"`

	// Credentials come from the environment only.
	Credentials Credentials `mapstructure:"-" yaml:"credentials"`
	// ConfigFile is the file that was read, if any.
	ConfigFile string `mapstructure:"-" yaml:"config_file,omitempty"`
}

// ServerConfig configures the web form server.
type ServerConfig struct {
	Host            string        `mapstructure:"host" yaml:"host"`
	Port            int           `mapstructure:"port" yaml:"port"`
	Debug           bool          `mapstructure:"debug" yaml:"debug"`
	EnableCORS      bool          `mapstructure:"enable_cors" yaml:"enable_cors"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins" yaml:"allowed_origins"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// Address returns host:port.
func (s ServerConfig) Address() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// TwitterConfig configures the API client.
type TwitterConfig struct {
	BaseURL          string        `mapstructure:"base_url" yaml:"base_url"`
	RequestTimeout   time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"`
	ProbeTimeout     time.Duration `mapstructure:"probe_timeout" yaml:"probe_timeout"`
	MaxResponseBytes int64         `mapstructure:"max_response_bytes" yaml:"max_response_bytes"`
}

// Credentials are parsed from the process environment (after .env).
type Credentials struct {
	BearerToken       string `env:"BEARER_TOKEN" yaml:"bearer_token"`
	ConsumerKey       string `env:"CONSUMER_KEY" yaml:"consumer_key"`
	ConsumerSecret    string `env:"CONSUMER_SECRET" yaml:"consumer_secret"`
	AccessToken       string `env:"ACCESS_TOKEN" yaml:"access_token"`
	AccessTokenSecret string `env:"ACCESS_TOKEN_SECRET" yaml:"access_token_secret"`
}

// Twitter converts to the API client's credential set.
func (c Credentials) Twitter() twitter.Credentials {
	return twitter.Credentials{
		BearerToken:       c.BearerToken,
		ConsumerKey:       c.ConsumerKey,
		ConsumerSecret:    c.ConsumerSecret,
		AccessToken:       c.AccessToken,
		AccessTokenSecret: c.AccessTokenSecret,
	}
}

// Redacted returns a copy with every secret masked.
func (c Config) Redacted() Config {
	out := c
	out.Credentials = Credentials{
		BearerToken:       observability.SanitizeAPIKey(c.Credentials.BearerToken),
		ConsumerKey:       observability.SanitizeAPIKey(c.Credentials.ConsumerKey),
		ConsumerSecret:    observability.SanitizeAPIKey(c.Credentials.ConsumerSecret),
		AccessToken:       observability.SanitizeAPIKey(c.Credentials.AccessToken),
		AccessTokenSecret: observability.SanitizeAPIKey(c.Credentials.AccessTokenSecret),
	}
	return out
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host:            "127.0.0.1",
			Port:            7860,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Twitter: TwitterConfig{
			BaseURL:          twitter.DefaultBaseURL,
			RequestTimeout:   30 * time.Second,
			ProbeTimeout:     10 * time.Second,
			MaxResponseBytes: twitter.DefaultMaxResponseBytes,
		},
		Observability: observability.DefaultConfig(),
	}
}
