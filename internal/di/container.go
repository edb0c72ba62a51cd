package di

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"dmdesk/internal/app/messaging"
	"dmdesk/internal/config"
	"dmdesk/internal/httpclient"
	"dmdesk/internal/logging"
	"dmdesk/internal/observability"
	"dmdesk/internal/twitter"
)

// Container holds all application dependencies
type Container struct {
	Config        config.Config
	Observability *observability.Observability
	Client        *twitter.Client
	Resolver      *messaging.Resolver
	Engine        *messaging.Engine
	Orchestrator  *messaging.Orchestrator

	// Status is the result of the one startup probe. It never changes.
	Status messaging.ConnectionStatus

	logger logging.Logger
}

// Option customises BuildContainer.
type Option func(*buildOptions)

type buildOptions struct {
	logOutput  io.Writer
	httpClient *http.Client
	skipProbe  bool
}

// WithLogOutput sends structured logs to w instead of stderr.
func WithLogOutput(w io.Writer) Option {
	return func(o *buildOptions) {
		o.logOutput = w
	}
}

// WithHTTPClient replaces the outbound transport client.
func WithHTTPClient(client *http.Client) Option {
	return func(o *buildOptions) {
		o.httpClient = client
	}
}

// WithoutProbe skips the startup connectivity probe.
func WithoutProbe() Option {
	return func(o *buildOptions) {
		o.skipProbe = true
	}
}

// Cleanup gracefully shuts down all resources
func (c *Container) Cleanup(ctx context.Context) error {
	if c.Observability != nil {
		return c.Observability.Shutdown(ctx)
	}
	return nil
}

// BuildContainer wires observability, the API client and the messaging
// workflow, then runs the connectivity probe once.
func BuildContainer(ctx context.Context, cfg config.Config, opts ...Option) (*Container, error) {
	options := buildOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := cfg.Credentials.RequireUserContext(); err != nil {
		return nil, err
	}

	obs := observability.New(cfg.Observability, options.logOutput)
	logging.SetDefault(obs.Logger)
	logger := logging.NewComponentLogger("di")
	logger.Debug("Building container: base_url=%s consumer_key=%s", cfg.Twitter.BaseURL,
		observability.SanitizeAPIKey(cfg.Credentials.ConsumerKey))

	httpClient := options.httpClient
	if httpClient == nil {
		httpClient = httpclient.New(cfg.Twitter.RequestTimeout)
	}

	client, err := twitter.New(cfg.Credentials.Twitter(),
		twitter.WithBaseURL(cfg.Twitter.BaseURL),
		twitter.WithTimeout(cfg.Twitter.RequestTimeout),
		twitter.WithMaxResponseBytes(cfg.Twitter.MaxResponseBytes),
		twitter.WithHTTPClient(httpClient),
		twitter.WithLogger(logging.NewComponentLogger("twitter")),
		twitter.WithMetrics(obs.Metrics),
	)
	if err != nil {
		_ = obs.Shutdown(ctx)
		return nil, fmt.Errorf("create twitter client: %w", err)
	}

	resolver := messaging.NewResolver(client,
		messaging.WithLogger(logging.NewComponentLogger("resolver")),
		messaging.WithMetrics(obs.Metrics))
	engine := messaging.NewEngine(client,
		messaging.WithLogger(logging.NewComponentLogger("delivery")),
		messaging.WithMetrics(obs.Metrics))
	orchestrator := messaging.NewOrchestrator(resolver, engine,
		messaging.WithLogger(logging.NewComponentLogger("orchestrator")),
		messaging.WithMetrics(obs.Metrics))

	c := &Container{
		Config:        cfg,
		Observability: obs,
		Client:        client,
		Resolver:      resolver,
		Engine:        engine,
		Orchestrator:  orchestrator,
		Status:        messaging.ConnectionStatus{Display: messaging.StatusNotConnected},
		logger:        logger,
	}

	if !options.skipProbe {
		probeCtx, cancel := context.WithTimeout(ctx, cfg.Twitter.ProbeTimeout)
		c.Status = messaging.CheckConnection(probeCtx, client, logging.NewComponentLogger("probe"))
		cancel()
	}

	logger.Info("Container ready: status=%s", c.Status.Display)
	return c, nil
}
