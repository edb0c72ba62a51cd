package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrMissingCredentials reports absent OAuth 1.0a user-context values.
var ErrMissingCredentials = errors.New("missing credentials")

// Validate checks the non-secret settings.
func (c Config) Validate() error {
	var errs []error
	if c.Server.Host == "" {
		errs = append(errs, errors.New("server.host must not be empty"))
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 || c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("server timeouts must be positive"))
	}

	if u, err := url.Parse(c.Twitter.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("twitter.base_url %q is not an absolute URL", c.Twitter.BaseURL))
	}
	if c.Twitter.RequestTimeout <= 0 || c.Twitter.ProbeTimeout <= 0 {
		errs = append(errs, errors.New("twitter timeouts must be positive"))
	}
	if c.Twitter.MaxResponseBytes <= 0 {
		errs = append(errs, errors.New("twitter.max_response_bytes must be positive"))
	}

	switch c.Observability.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("observability.logging.level %q is not one of debug, info, warn, error", c.Observability.Logging.Level))
	}
	switch c.Observability.Logging.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("observability.logging.format %q is not text or json", c.Observability.Logging.Format))
	}
	if c.Observability.Tracing.Enabled {
		switch c.Observability.Tracing.Exporter {
		case "otlp", "zipkin":
		default:
			errs = append(errs, fmt.Errorf("observability.tracing.exporter %q is not otlp or zipkin", c.Observability.Tracing.Exporter))
		}
	}
	return errors.Join(errs...)
}

// RequireUserContext fails unless all four OAuth 1.0a values are set.
func (c Credentials) RequireUserContext() error {
	var missing []string
	if c.ConsumerKey == "" {
		missing = append(missing, "CONSUMER_KEY")
	}
	if c.ConsumerSecret == "" {
		missing = append(missing, "CONSUMER_SECRET")
	}
	if c.AccessToken == "" {
		missing = append(missing, "ACCESS_TOKEN")
	}
	if c.AccessTokenSecret == "" {
		missing = append(missing, "ACCESS_TOKEN_SECRET")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: set %s in the environment or .env", ErrMissingCredentials, strings.Join(missing, ", "))
	}
	return nil
}
