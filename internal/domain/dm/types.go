package dm

// AccountID is the remote service's stable, opaque account identifier.
type AccountID string

// Account is a remote account as reported by the service.
type Account struct {
	ID     AccountID
	Handle string
}

// Recipient pairs the handle the operator asked for with the identifier it
// resolved to within the same request.
type Recipient struct {
	Handle string
	ID     AccountID
}

// ResolutionKind discriminates Resolution.
type ResolutionKind int

const (
	// ResolutionUnknown is the zero value and never counts as a success.
	ResolutionUnknown ResolutionKind = iota
	// ResolutionFound means the service reported a matching account.
	ResolutionFound
	// ResolutionNotFound means the service answered and has no such account.
	ResolutionNotFound
	// ResolutionFailed means the lookup call itself failed.
	ResolutionFailed
)

func (k ResolutionKind) String() string {
	switch k {
	case ResolutionFound:
		return "found"
	case ResolutionNotFound:
		return "not_found"
	case ResolutionFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Resolution is the result of resolving a handle.
type Resolution struct {
	Kind       ResolutionKind
	Handle     string // normalized handle that was looked up
	ID         AccountID
	Diagnostic string // set when Kind is ResolutionFailed
}

// DeliveryOutcome is either Delivered or Failed with the remote's reason.
type DeliveryOutcome struct {
	Delivered       bool
	RecipientHandle string
	RecipientID     AccountID
	Body            string
	Reason          string // set when Delivered is false
}

// Delivered builds a successful outcome.
func Delivered(recipient Recipient, body string) DeliveryOutcome {
	return DeliveryOutcome{
		Delivered:       true,
		RecipientHandle: recipient.Handle,
		RecipientID:     recipient.ID,
		Body:            body,
	}
}

// Failed builds a failed outcome carrying reason verbatim.
func Failed(reason string) DeliveryOutcome {
	return DeliveryOutcome{Reason: reason}
}

// Kind names the terminal state a request ended in.
type Kind string

const (
	KindInputMissing     Kind = "input_missing"
	KindAccountNotFound  Kind = "account_not_found"
	KindLookupFailed     Kind = "lookup_failed"
	KindDeliveryRejected Kind = "delivery_rejected"
	KindDelivered        Kind = "delivered"
)

// Result is what the orchestrator produces for one request.
type Result struct {
	Kind    Kind
	Text    string
	Handle  string          // normalized handle, empty when input was missing
	Outcome DeliveryOutcome // zero unless delivery was attempted
}

// OK reports whether the message was delivered.
func (r Result) OK() bool {
	return r.Kind == KindDelivered
}
