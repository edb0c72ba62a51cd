package messaging

import (
	"context"
	"fmt"
	"strings"

	"dmdesk/internal/domain/dm"
	dmerrors "dmdesk/internal/errors"
)

// Engine sends one direct message per call and reports the outcome. It
// never retries: a lost confirmation must not turn into a duplicate message.
type Engine struct {
	sender dm.MessageSender
	options
}

// NewEngine builds a delivery engine over the given sender.
func NewEngine(sender dm.MessageSender, opts ...Option) *Engine {
	return &Engine{
		sender:  sender,
		options: defaultOptions("delivery", opts),
	}
}

// Deliver sends the trimmed body to recipient. The remote service's
// diagnostic is carried through unmodified on failure.
func (e *Engine) Deliver(ctx context.Context, recipient dm.Recipient, body string) (outcome dm.DeliveryOutcome) {
	text := strings.TrimSpace(body)
	started := e.clock()
	defer func() {
		if rec := recover(); rec != nil {
			outcome = dm.Failed(fmt.Sprintf("send panicked: %v", rec))
			e.logger.Error("Send to @%s panicked: %v", recipient.Handle, rec)
		}
		result := "delivered"
		if !outcome.Delivered {
			result = "rejected"
		}
		e.metrics.RecordDelivery(ctx, result, e.clock().Sub(started))
	}()

	if err := e.sender.SendDirectMessage(ctx, recipient.ID, text); err != nil {
		e.logger.Warn("Send to @%s (%s) rejected: status=%d class=%s retry_after=%ds: %v",
			recipient.Handle, recipient.ID, dmerrors.StatusCode(err), dmerrors.Class(err), dmerrors.RetryAfter(err), err)
		return dm.Failed(err.Error())
	}

	e.logger.Info("Message delivered to @%s (%s)", recipient.Handle, recipient.ID)
	return dm.Delivered(recipient, text)
}
