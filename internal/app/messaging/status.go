package messaging

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"

	"dmdesk/internal/domain/dm"
	"dmdesk/internal/logging"
	"dmdesk/internal/observability"
)

// Probe display strings.
const (
	StatusNotConnected    = "Not Connected"
	StatusConnectionError = "Connection Error"
)

// ConnectionStatus is the immutable result of the startup connectivity probe.
type ConnectionStatus struct {
	Connected bool
	Handle    string
	Display   string
	Err       error
}

// CheckConnection fetches the authenticated account once. It never fails:
// any error downgrades to a disconnected status.
func CheckConnection(ctx context.Context, profile dm.SelfProfile, logger logging.Logger) (status ConnectionStatus) {
	logger = logging.OrNop(logger)
	ctx, span := otel.Tracer("dmdesk/messaging").Start(ctx, observability.SpanStartupProbe)
	defer span.End()

	defer func() {
		if rec := recover(); rec != nil {
			status = ConnectionStatus{Display: StatusConnectionError, Err: fmt.Errorf("probe panicked: %v", rec)}
		}
		if status.Err != nil {
			span.SetAttributes(observability.ErrorAttrs(status.Err)...)
			logger.Warn("Connectivity probe failed: %v", status.Err)
		}
	}()

	if profile == nil {
		return ConnectionStatus{Display: StatusNotConnected}
	}

	account, err := profile.AuthenticatedAccount(ctx)
	switch {
	case errors.Is(err, dm.ErrAccountNotFound):
		return ConnectionStatus{Display: StatusNotConnected}
	case err != nil:
		return ConnectionStatus{Display: StatusConnectionError, Err: err}
	case account.Handle == "":
		return ConnectionStatus{Display: StatusNotConnected}
	}

	logger.Info("Connected as @%s", account.Handle)
	return ConnectionStatus{Connected: true, Handle: account.Handle, Display: "@" + account.Handle}
}
