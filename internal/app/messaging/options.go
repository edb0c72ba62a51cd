package messaging

import (
	"context"
	"time"

	"dmdesk/internal/domain/dm"
	"dmdesk/internal/logging"
)

// Option configures optional dependencies shared by the resolver, the
// delivery engine and the orchestrator.
type Option func(*options)

type options struct {
	logger  logging.Logger
	metrics dm.Metrics
	clock   func() time.Time
}

func defaultOptions(component string, opts []Option) options {
	o := options{
		logger:  logging.NewComponentLogger(component),
		metrics: nopMetrics{},
		clock:   time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// WithLogger overrides the default component logger.
func WithLogger(logger logging.Logger) Option {
	return func(o *options) {
		if !logging.IsNil(logger) {
			o.logger = logger
		}
	}
}

// WithMetrics records workflow measurements on m.
func WithMetrics(m dm.Metrics) Option {
	return func(o *options) {
		if m != nil {
			o.metrics = m
		}
	}
}

// WithClock overrides the clock used for latency measurements.
func WithClock(clock func() time.Time) Option {
	return func(o *options) {
		if clock != nil {
			o.clock = clock
		}
	}
}

type nopMetrics struct{}

func (nopMetrics) RecordLookup(context.Context, string, time.Duration)   {}
func (nopMetrics) RecordDelivery(context.Context, string, time.Duration) {}
func (nopMetrics) RecordRequest(context.Context, string)                 {}
