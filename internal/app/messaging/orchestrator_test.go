package messaging

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dmdesk/internal/domain/dm"
)

func newTestOrchestrator(res dm.Resolution, outcome dm.DeliveryOutcome) (*Orchestrator, *resolverStub, *delivererStub, *metricsRecorder) {
	resolver := &resolverStub{resolution: res}
	engine := &delivererStub{outcome: outcome}
	metrics := &metricsRecorder{}
	o := NewOrchestrator(resolver, engine, WithLogger(&logRecorder{}), WithMetrics(metrics))
	return o, resolver, engine, metrics
}

func TestOrchestratorRejectsMissingUsername(t *testing.T) {
	for _, username := range []string{"", "   ", "\t\n", "@", " @@ "} {
		o, resolver, engine, _ := newTestOrchestrator(dm.Resolution{}, dm.DeliveryOutcome{})

		result := o.Process(context.Background(), username, "hi")

		assert.Equal(t, dm.KindInputMissing, result.Kind, "username %q", username)
		assert.Equal(t, MsgUsernameRequired, result.Text)
		assert.Zero(t, resolver.calls)
		assert.Zero(t, engine.calls)
	}
}

func TestOrchestratorRejectsMissingMessage(t *testing.T) {
	for _, body := range []string{"", "  ", "\n\t "} {
		o, resolver, engine, _ := newTestOrchestrator(dm.Resolution{}, dm.DeliveryOutcome{})

		text := o.Handle(context.Background(), "alice", body)

		assert.Equal(t, MsgMessageRequired, text, "body %q", body)
		assert.Zero(t, resolver.calls)
		assert.Zero(t, engine.calls)
	}
}

func TestOrchestratorUsernameCheckedFirst(t *testing.T) {
	o, _, _, _ := newTestOrchestrator(dm.Resolution{}, dm.DeliveryOutcome{})

	assert.Equal(t, MsgUsernameRequired, o.Handle(context.Background(), "", ""))
}

func TestOrchestratorAccountNotFound(t *testing.T) {
	o, resolver, engine, metrics := newTestOrchestrator(
		dm.Resolution{Kind: dm.ResolutionNotFound, Handle: "ghost"}, dm.DeliveryOutcome{})

	result := o.Process(context.Background(), "ghost", "hi")

	assert.Equal(t, dm.KindAccountNotFound, result.Kind)
	assert.Contains(t, result.Text, "ghost")
	assert.Equal(t, "❌ User @ghost not found", result.Text)
	assert.Equal(t, 1, resolver.calls)
	assert.Zero(t, engine.calls)
	assert.Equal(t, []recordedMetric{{kind: "request", outcome: "account_not_found"}}, metrics.records)
}

func TestOrchestratorLookupFailedIsDistinctFromNotFound(t *testing.T) {
	o, _, engine, _ := newTestOrchestrator(
		dm.Resolution{Kind: dm.ResolutionFailed, Handle: "alice", Diagnostic: "timeout"}, dm.DeliveryOutcome{})

	result := o.Process(context.Background(), "@alice", "hi")

	assert.Equal(t, dm.KindLookupFailed, result.Kind)
	assert.Contains(t, result.Text, "@alice")
	assert.NotContains(t, result.Text, "not found")
	assert.NotContains(t, result.Text, "timeout")
	assert.Zero(t, engine.calls)
}

func TestOrchestratorNeverDeliversWithoutFoundAccount(t *testing.T) {
	cases := map[string]dm.Resolution{
		"zero value":       {},
		"unknown kind":     {Kind: dm.ResolutionKind(99), ID: "42"},
		"found without id": {Kind: dm.ResolutionFound, Handle: "alice"},
	}
	for name, res := range cases {
		t.Run(name, func(t *testing.T) {
			o, resolver, engine, metrics := newTestOrchestrator(res, dm.Delivered(dm.Recipient{Handle: "alice"}, "hi"))

			result := o.Process(context.Background(), "alice", "hi")

			assert.Equal(t, dm.KindLookupFailed, result.Kind)
			assert.Equal(t, "❌ Could not look up @alice. Check the connection and try again.", result.Text)
			assert.Equal(t, 1, resolver.calls)
			assert.Zero(t, engine.calls)
			assert.Equal(t, []recordedMetric{{kind: "request", outcome: "lookup_failed"}}, metrics.records)
		})
	}
}

func TestOrchestratorDelivered(t *testing.T) {
	o, resolver, engine, metrics := newTestOrchestrator(
		dm.Resolution{Kind: dm.ResolutionFound, Handle: "alice", ID: "42"},
		dm.DeliveryOutcome{Delivered: true, RecipientHandle: "alice", RecipientID: "42", Body: "hello"})

	result := o.Process(context.Background(), " @alice ", " hello ")

	require.True(t, result.OK())
	assert.Contains(t, result.Text, "alice")
	assert.Contains(t, result.Text, "42")
	assert.Contains(t, result.Text, "hello")
	assert.Equal(t, "✅ Message sent successfully\n\nUser: @alice\nUser ID: 42\n\nMessage:\nhello", result.Text)
	assert.Equal(t, []string{"alice"}, resolver.handles)
	assert.Equal(t, dm.Recipient{Handle: "alice", ID: "42"}, engine.recipient)
	assert.Equal(t, "hello", engine.body)
	assert.Equal(t, 1, engine.calls)
	assert.Equal(t, []recordedMetric{{kind: "request", outcome: "delivered"}}, metrics.records)
}

func TestOrchestratorDeliveryRejectedIsNotRetried(t *testing.T) {
	o, _, engine, _ := newTestOrchestrator(
		dm.Resolution{Kind: dm.ResolutionFound, Handle: "alice", ID: "42"},
		dm.Failed("rate limited"))

	result := o.Process(context.Background(), "alice", "hello")

	assert.Equal(t, dm.KindDeliveryRejected, result.Kind)
	assert.Contains(t, result.Text, "rate limited")
	assert.Equal(t, "❌ Failed to send message\n\nrate limited", result.Text)
	assert.Equal(t, 1, engine.calls)
}

func TestOrchestratorEndToEndWithRealStages(t *testing.T) {
	logs := WithLogger(&logRecorder{})
	dir := &directoryStub{account: dm.Account{ID: "42", Handle: "alice"}}
	sender := &senderStub{err: errors.New("rate limited")}
	o := NewOrchestrator(NewResolver(dir, logs), NewEngine(sender, logs), logs)

	text := o.Handle(context.Background(), "@alice", "hello")

	assert.Equal(t, "❌ Failed to send message\n\nrate limited", text)
	assert.Equal(t, 1, dir.calls)
	assert.Equal(t, 1, sender.calls)
	assert.Equal(t, dm.AccountID("42"), sender.lastID)
}

func TestOrchestratorRunsConcurrently(t *testing.T) {
	logs := WithLogger(&logRecorder{})
	dir := &directoryStub{account: dm.Account{ID: "42"}}
	sender := &senderStub{}
	o := NewOrchestrator(NewResolver(dir, logs), NewEngine(sender, logs), logs)

	done := make(chan string, 8)
	for i := 0; i < 8; i++ {
		go func() { done <- o.Handle(context.Background(), "alice", "hi") }()
	}
	for i := 0; i < 8; i++ {
		assert.Contains(t, <-done, "Message sent successfully")
	}
	assert.Equal(t, 8, dir.calls)
	assert.Equal(t, 8, sender.calls)
}
