package messaging

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"dmdesk/internal/domain/dm"
	"dmdesk/internal/observability"
)

// IdentityResolver is the resolution stage of a request.
type IdentityResolver interface {
	Resolve(ctx context.Context, handle string) dm.Resolution
}

// Deliverer is the delivery stage of a request.
type Deliverer interface {
	Deliver(ctx context.Context, recipient dm.Recipient, body string) dm.DeliveryOutcome
}

// Orchestrator is the single entry point for an operator's send request:
// validate, resolve, deliver, report. Each call runs the pipeline once.
type Orchestrator struct {
	resolver IdentityResolver
	engine   Deliverer
	tracer   trace.Tracer
	options
}

// NewOrchestrator wires the resolver and delivery stages.
func NewOrchestrator(resolver IdentityResolver, engine Deliverer, opts ...Option) *Orchestrator {
	return &Orchestrator{
		resolver: resolver,
		engine:   engine,
		tracer:   otel.Tracer("dmdesk/messaging"),
		options:  defaultOptions("orchestrator", opts),
	}
}

// Handle runs one request and returns the text shown to the operator.
func (o *Orchestrator) Handle(ctx context.Context, handle, body string) string {
	return o.Process(ctx, handle, body).Text
}

// Process runs one request and returns the structured result.
func (o *Orchestrator) Process(ctx context.Context, handle, body string) dm.Result {
	ctx, span := o.tracer.Start(ctx, observability.SpanSendRequest)
	defer span.End()

	result := o.process(ctx, handle, body)
	span.SetAttributes(
		attribute.String(observability.AttrHandle, result.Handle),
		attribute.String(observability.AttrOutcome, string(result.Kind)),
	)
	o.metrics.RecordRequest(ctx, string(result.Kind))
	return result
}

func (o *Orchestrator) process(ctx context.Context, handle, body string) dm.Result {
	if dm.IsBlank(handle) {
		return dm.Result{Kind: dm.KindInputMissing, Text: MsgUsernameRequired}
	}
	if dm.IsBlank(body) {
		return dm.Result{Kind: dm.KindInputMissing, Text: MsgMessageRequired}
	}

	normalized := dm.Normalize(handle)
	if normalized == "" {
		// "@" alone is not blank but names nobody.
		return dm.Result{Kind: dm.KindInputMissing, Text: MsgUsernameRequired}
	}

	resolution := o.resolver.Resolve(ctx, normalized)
	switch {
	case resolution.Kind == dm.ResolutionNotFound:
		return dm.Result{Kind: dm.KindAccountNotFound, Handle: normalized, Text: accountNotFoundText(normalized)}
	case resolution.Kind != dm.ResolutionFound || resolution.ID == "":
		if resolution.Kind != dm.ResolutionFailed {
			o.logger.Warn("Resolution for @%s is %s with id %q; treating as a failed lookup", normalized, resolution.Kind, resolution.ID)
		}
		return dm.Result{Kind: dm.KindLookupFailed, Handle: normalized, Text: lookupFailedText(normalized)}
	}

	recipient := dm.Recipient{Handle: normalized, ID: resolution.ID}
	outcome := o.engine.Deliver(ctx, recipient, strings.TrimSpace(body))
	if !outcome.Delivered {
		return dm.Result{
			Kind:    dm.KindDeliveryRejected,
			Handle:  normalized,
			Text:    deliveryFailedText(outcome.Reason),
			Outcome: outcome,
		}
	}

	o.logger.Info("Request for @%s completed", normalized)
	return dm.Result{Kind: dm.KindDelivered, Handle: normalized, Text: deliveredText(outcome), Outcome: outcome}
}
