package messaging

import (
	"context"
	"fmt"
	"sync"
	"time"

	"dmdesk/internal/domain/dm"
)

type directoryStub struct {
	mu      sync.Mutex
	calls   int
	handles []string
	account dm.Account
	err     error
	panic   any
}

func (d *directoryStub) LookupUserByHandle(_ context.Context, handle string) (dm.Account, error) {
	d.mu.Lock()
	d.calls++
	d.handles = append(d.handles, handle)
	d.mu.Unlock()
	if d.panic != nil {
		panic(d.panic)
	}
	return d.account, d.err
}

type senderStub struct {
	mu     sync.Mutex
	calls  int
	lastID dm.AccountID
	body   string
	err    error
}

func (s *senderStub) SendDirectMessage(_ context.Context, recipientID dm.AccountID, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.lastID = recipientID
	s.body = body
	return s.err
}

type resolverStub struct {
	calls      int
	handles    []string
	resolution dm.Resolution
}

func (r *resolverStub) Resolve(_ context.Context, handle string) dm.Resolution {
	r.calls++
	r.handles = append(r.handles, handle)
	return r.resolution
}

type delivererStub struct {
	calls     int
	recipient dm.Recipient
	body      string
	outcome   dm.DeliveryOutcome
}

func (d *delivererStub) Deliver(_ context.Context, recipient dm.Recipient, body string) dm.DeliveryOutcome {
	d.calls++
	d.recipient = recipient
	d.body = body
	return d.outcome
}

type profileStub struct {
	account dm.Account
	err     error
}

func (p profileStub) AuthenticatedAccount(context.Context) (dm.Account, error) {
	return p.account, p.err
}

type recordedMetric struct {
	kind    string
	outcome string
}

type metricsRecorder struct {
	mu        sync.Mutex
	records   []recordedMetric
	latencies []time.Duration
}

func (m *metricsRecorder) add(kind, outcome string) {
	m.mu.Lock()
	m.records = append(m.records, recordedMetric{kind: kind, outcome: outcome})
	m.mu.Unlock()
}

func (m *metricsRecorder) addTimed(kind, outcome string, latency time.Duration) {
	m.add(kind, outcome)
	m.mu.Lock()
	m.latencies = append(m.latencies, latency)
	m.mu.Unlock()
}

func (m *metricsRecorder) RecordLookup(_ context.Context, outcome string, latency time.Duration) {
	m.addTimed("lookup", outcome, latency)
}

func (m *metricsRecorder) RecordDelivery(_ context.Context, outcome string, latency time.Duration) {
	m.addTimed("delivery", outcome, latency)
}

func (m *metricsRecorder) RecordRequest(_ context.Context, outcome string) {
	m.add("request", outcome)
}

type logRecorder struct {
	mu    sync.Mutex
	lines []string
}

func (l *logRecorder) record(level, format string, args []any) {
	l.mu.Lock()
	l.lines = append(l.lines, level+" "+fmt.Sprintf(format, args...))
	l.mu.Unlock()
}

func (l *logRecorder) Debug(format string, args ...any) { l.record("DEBUG", format, args) }
func (l *logRecorder) Info(format string, args ...any)  { l.record("INFO", format, args) }
func (l *logRecorder) Warn(format string, args ...any)  { l.record("WARN", format, args) }
func (l *logRecorder) Error(format string, args ...any) { l.record("ERROR", format, args) }

// steppingClock advances by step on every reading.
type steppingClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

func (c *steppingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now
	c.now = c.now.Add(c.step)
	return now
}
