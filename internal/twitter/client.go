package twitter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"dmdesk/internal/domain/dm"
	dmerrors "dmdesk/internal/errors"
	"dmdesk/internal/httpclient"
	"dmdesk/internal/logging"
	"dmdesk/internal/observability"
)

const (
	// DefaultBaseURL is the public API origin.
	DefaultBaseURL = "https://api.twitter.com"
	// DefaultMaxResponseBytes bounds every response body the client reads.
	DefaultMaxResponseBytes = 1 << 20

	userAgent = "dmdesk"
)

// ErrMissingUserContext is returned by New when the OAuth 1.0a credentials
// needed to act as the operating account are incomplete.
var ErrMissingUserContext = errors.New("twitter: consumer key/secret and access token/secret are required")

// RemoteMetrics receives one measurement per API call.
type RemoteMetrics interface {
	RecordRemoteCall(ctx context.Context, operation, class string, latency time.Duration)
}

// Client talks to the v2 API. It is safe for concurrent use and holds no
// request-scoped state.
type Client struct {
	baseURL          string
	timeout          time.Duration
	maxResponseBytes int64
	base             *http.Client
	app              *http.Client
	user             *http.Client
	logger           logging.Logger
	metrics          RemoteMetrics
	tracer           trace.Tracer
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at another API origin.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/"); trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// WithTimeout bounds each request.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithMaxResponseBytes bounds response bodies.
func WithMaxResponseBytes(limit int64) Option {
	return func(c *Client) {
		if limit > 0 {
			c.maxResponseBytes = limit
		}
	}
}

// WithHTTPClient replaces the transport client the auth layers wrap.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.base = client
		}
	}
}

// WithLogger overrides the component logger.
func WithLogger(logger logging.Logger) Option {
	return func(c *Client) {
		if !logging.IsNil(logger) {
			c.logger = logger
		}
	}
}

// WithMetrics records per-call metrics.
func WithMetrics(m RemoteMetrics) Option {
	return func(c *Client) {
		if m != nil {
			c.metrics = m
		}
	}
}

// New builds a client from credentials. User-context credentials are
// required; lookups use the bearer token when one is configured.
func New(creds Credentials, opts ...Option) (*Client, error) {
	if !creds.HasUserContext() {
		return nil, ErrMissingUserContext
	}
	c := &Client{
		baseURL:          DefaultBaseURL,
		timeout:          httpclient.DefaultTimeout,
		maxResponseBytes: DefaultMaxResponseBytes,
		logger:           logging.NewComponentLogger("twitter"),
		tracer:           otel.Tracer("dmdesk/twitter"),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if c.base == nil {
		c.base = httpclient.New(c.timeout)
	}

	c.user = userHTTPClient(creds, c.base)
	c.app = c.user
	if creds.HasAppContext() {
		c.app = appHTTPClient(creds, c.base)
	}

	c.logger.Debug("Client ready: base_url=%s consumer_key=%s app_auth=%t",
		c.baseURL, observability.SanitizeAPIKey(creds.ConsumerKey), creds.HasAppContext())
	return c, nil
}

// LookupUserByHandle resolves a username. ErrAccountNotFound (wrapped) means
// the API answered and has no such user.
func (c *Client) LookupUserByHandle(ctx context.Context, handle string) (account dm.Account, err error) {
	ctx, finish := c.observe(ctx, "lookup_user", observability.SpanLookupUser,
		attribute.String(observability.AttrHandle, handle))
	defer func() { finish(err) }()

	var resp userResponse
	status, err := c.do(ctx, c.app, http.MethodGet, "/2/users/by/username/"+url.PathEscape(handle), nil, &resp)
	if err != nil {
		if status == http.StatusNotFound || isNotFoundProblem(err) {
			return dm.Account{}, fmt.Errorf("lookup @%s: %w", handle, dm.ErrAccountNotFound)
		}
		return dm.Account{}, fmt.Errorf("lookup @%s: %w", handle, err)
	}
	return accountFromResponse(status, resp, "lookup @"+handle)
}

// SendDirectMessage posts body into the one-to-one conversation with
// recipientID, creating it when needed.
func (c *Client) SendDirectMessage(ctx context.Context, recipientID dm.AccountID, body string) (err error) {
	ctx, finish := c.observe(ctx, "send_dm", observability.SpanSendDM,
		attribute.String(observability.AttrAccountID, string(recipientID)))
	defer func() { finish(err) }()

	path := "/2/dm_conversations/with/" + url.PathEscape(string(recipientID)) + "/messages"
	var resp sendMessageResponse
	if _, err := c.do(ctx, c.user, http.MethodPost, path, sendMessageRequest{Text: body}, &resp); err != nil {
		return err
	}
	c.logger.Debug("DM event %s created in conversation %s", resp.Data.EventID, resp.Data.ConversationID)
	return nil
}

// AuthenticatedAccount returns the operating account.
func (c *Client) AuthenticatedAccount(ctx context.Context) (account dm.Account, err error) {
	ctx, finish := c.observe(ctx, "get_me", observability.SpanGetMe)
	defer func() { finish(err) }()

	var resp userResponse
	status, err := c.do(ctx, c.user, http.MethodGet, "/2/users/me", nil, &resp)
	if err != nil {
		return dm.Account{}, fmt.Errorf("get authenticated user: %w", err)
	}
	return accountFromResponse(status, resp, "get authenticated user")
}

func accountFromResponse(status int, resp userResponse, op string) (dm.Account, error) {
	if resp.Data != nil && resp.Data.ID != "" {
		return dm.Account{ID: dm.AccountID(resp.Data.ID), Handle: resp.Data.Username}, nil
	}
	for _, p := range resp.Errors {
		if !p.IsResourceNotFound() {
			return dm.Account{}, fmt.Errorf("%s: %w", op, newAPIError(status, errorResponse{Errors: resp.Errors}))
		}
	}
	return dm.Account{}, fmt.Errorf("%s: %w", op, dm.ErrAccountNotFound)
}

func isNotFoundProblem(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && strings.HasSuffix(apiErr.Type, "/resource-not-found")
}

// do performs one request and decodes a JSON body into out. Non-2xx answers
// become an *APIError wrapped as transient or permanent. The status code is returned whenever a response arrived.
func (c *Client) do(ctx context.Context, client *http.Client, method, path string, in, out any) (int, error) {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return 0, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	data, err := httpclient.ReadAllWithLimit(resp.Body, c.maxResponseBytes)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var problem errorResponse
		_ = json.Unmarshal(data, &problem)
		return resp.StatusCode, classify(newAPIError(resp.StatusCode, problem), resp.Header, time.Now())
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode response: %w", err)
		}
	}
	return resp.StatusCode, nil
}

// observe opens a span and returns a function that closes it and records
// the call's metrics.
func (c *Client) observe(ctx context.Context, operation, spanName string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	started := time.Now()
	ctx, span := c.tracer.Start(ctx, spanName, trace.WithSpanKind(trace.SpanKindClient), trace.WithAttributes(attrs...))
	return ctx, func(err error) {
		class := dmerrors.Class(err)
		if errors.Is(err, dm.ErrAccountNotFound) {
			class = "not_found"
		}
		if err != nil && class != "not_found" {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			c.logger.Debug("%s failed (%s): %v", operation, class, err)
		}
		span.SetAttributes(attribute.String(observability.AttrOutcome, class))
		span.End()
		if c.metrics != nil {
			c.metrics.RecordRemoteCall(ctx, operation, class, time.Since(started))
		}
	}
}
