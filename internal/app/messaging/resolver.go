package messaging

import (
	"context"
	"errors"
	"fmt"

	"dmdesk/internal/domain/dm"
)

// Resolver maps an operator-typed handle to the remote account identifier.
type Resolver struct {
	directory dm.AccountDirectory
	options
}

// NewResolver builds a resolver over the given account directory.
func NewResolver(directory dm.AccountDirectory, opts ...Option) *Resolver {
	return &Resolver{
		directory: directory,
		options:   defaultOptions("resolver", opts),
	}
}

// Resolve normalizes handle and performs exactly one lookup. Every failure is
// reported in the returned Resolution; Resolve never panics.
func (r *Resolver) Resolve(ctx context.Context, handle string) (res dm.Resolution) {
	normalized := dm.Normalize(handle)
	started := r.clock()
	defer func() {
		if rec := recover(); rec != nil {
			res = dm.Resolution{
				Kind:       dm.ResolutionFailed,
				Handle:     normalized,
				Diagnostic: fmt.Sprintf("lookup panicked: %v", rec),
			}
			r.logger.Error("Lookup for @%s panicked: %v", normalized, rec)
		}
		r.metrics.RecordLookup(ctx, res.Kind.String(), r.clock().Sub(started))
	}()

	account, err := r.directory.LookupUserByHandle(ctx, normalized)
	switch {
	case errors.Is(err, dm.ErrAccountNotFound):
		r.logger.Info("No account for @%s", normalized)
		return dm.Resolution{Kind: dm.ResolutionNotFound, Handle: normalized}
	case err != nil:
		r.logger.Warn("Lookup for @%s failed: %v", normalized, err)
		return dm.Resolution{Kind: dm.ResolutionFailed, Handle: normalized, Diagnostic: err.Error()}
	case account.ID == "":
		return dm.Resolution{Kind: dm.ResolutionNotFound, Handle: normalized}
	}

	r.logger.Debug("Resolved @%s to %s", normalized, account.ID)
	return dm.Resolution{Kind: dm.ResolutionFound, Handle: normalized, ID: account.ID}
}
