package dm

import (
	"context"
	"errors"
	"time"
)

// ErrAccountNotFound is returned by an AccountDirectory when the remote
// service answered and reported no account for the handle.
var ErrAccountNotFound = errors.New("account not found")

// AccountDirectory looks up accounts by their public handle.
type AccountDirectory interface {
	LookupUserByHandle(ctx context.Context, handle string) (Account, error)
}

// MessageSender delivers a direct message as the operating account. A non-nil
// error's text is the remote service's diagnostic.
type MessageSender interface {
	SendDirectMessage(ctx context.Context, recipientID AccountID, body string) error
}

// SelfProfile reports the account the remote client is authenticated as.
type SelfProfile interface {
	AuthenticatedAccount(ctx context.Context) (Account, error)
}

// Metrics receives workflow measurements. *observability.MetricsCollector
// satisfies it.
type Metrics interface {
	RecordLookup(ctx context.Context, outcome string, latency time.Duration)
	RecordDelivery(ctx context.Context, outcome string, latency time.Duration)
	RecordRequest(ctx context.Context, outcome string)
}
