package cancelfairy

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoCodeAlone/simbus/bus"
	"github.com/GoCodeAlone/simbus/event"
	"github.com/GoCodeAlone/simbus/simtime"
)

const (
	supervisorID event.AgentID = 999
	adapterID    event.AgentID = 0
	recorderID   event.AgentID = 50
)

// driver stands in for the exchange adapter: it publishes lifecycle events
// from the test body through its runtime handle.
type driver struct {
	event.NopHandler
	rt *bus.Runtime
}

func (d *driver) SetupSubscriptions(rt *bus.Runtime) error {
	d.rt = rt
	return nil
}

// firedTrigger is one observed TriggerExpiredLimitOrderEvent.
type firedTrigger struct {
	at simtime.Timestamp
	ev *event.TriggerExpiredLimitOrderEvent
}

// triggerRecorder captures triggers published on the symbol topic.
type triggerRecorder struct {
	event.NopHandler
	symbol   string
	triggers []firedTrigger
}

func (r *triggerRecorder) SetupSubscriptions(rt *bus.Runtime) error {
	return rt.Subscribe(event.KindTriggerExpiredLimitOrder.SymbolTopic(r.symbol))
}

func (r *triggerRecorder) OnTriggerExpiredLimitOrder(_ context.Context, d event.Delivery, e *event.TriggerExpiredLimitOrderEvent) error {
	r.triggers = append(r.triggers, firedTrigger{at: d.Now, ev: e})
	return nil
}

// harness wires a fresh bus with supervisor, driver and trigger recorder.
func harness(t *testing.T) (*bus.Bus, *Supervisor, *driver, *triggerRecorder) {
	t.Helper()
	ctx := context.Background()

	b := bus.New()
	sup := New(nil)
	drv := &driver{}
	rec := &triggerRecorder{symbol: "X"}

	require.NoError(t, b.Register(ctx, supervisorID, sup))
	require.NoError(t, b.Register(ctx, adapterID, drv))
	require.NoError(t, b.Register(ctx, recorderID, rec))
	return b, sup, drv, rec
}

func ack(now simtime.Timestamp, xid uint64, timeout simtime.Duration) *event.LimitOrderAckEvent {
	return &event.LimitOrderAckEvent{
		Meta:            event.NewMeta(now),
		Symbol:          "X",
		CID:             xid + 1000,
		XID:             xid,
		OriginalTimeout: timeout,
	}
}

func TestExpiryFiresDeterministically(t *testing.T) {
	ctx := context.Background()
	b, sup, drv, rec := harness(t)

	require.NoError(t, drv.rt.Publish(event.KindLimitOrderAck.Topic(), ack(0, 7, 100*simtime.Microsecond), "exchange"))
	b.Run(ctx, 0)

	require.Len(t, rec.triggers, 1)
	assert.Equal(t, simtime.FromMicros(100), rec.triggers[0].at)
	assert.Equal(t, uint64(7), rec.triggers[0].ev.XID)
	assert.Equal(t, "X", rec.triggers[0].ev.Symbol)
	assert.Equal(t, 0, sup.TrackedCount())
}

func TestFullFillSuppressesExpiry(t *testing.T) {
	ctx := context.Background()
	b, sup, drv, rec := harness(t)

	require.NoError(t, drv.rt.Publish(event.KindLimitOrderAck.Topic(), ack(0, 7, 100*simtime.Microsecond), "exchange"))
	fill := &event.FullFillLimitOrderEvent{Meta: event.NewMeta(0), Symbol: "X", XID: 7}
	require.NoError(t, drv.rt.ScheduleForSelfAt(40, event.KindFullFillLimitOrder.Topic(), fill, "exchange"))

	b.Run(ctx, 0)

	assert.Empty(t, rec.triggers)
	assert.Equal(t, 0, sup.TrackedCount())
}

func TestTerminalAtProbeTimeStillSuppresses(t *testing.T) {
	ctx := context.Background()
	b, sup, drv, rec := harness(t)

	require.NoError(t, drv.rt.Publish(event.KindLimitOrderAck.Topic(), ack(0, 3, 100*simtime.Microsecond), "exchange"))

	// Terminal lands at exactly ack + timeout. It was published (sequenced)
	// before the probe, so it dispatches first and the probe finds nothing.
	cancel := &event.FullCancelLimitOrderAckEvent{Meta: event.NewMeta(0), Symbol: "X", XID: 3}
	require.NoError(t, drv.rt.ScheduleForSelfAt(100, event.KindFullCancelLimitOrderAck.Topic(), cancel, "exchange"))

	b.Run(ctx, 0)

	assert.Empty(t, rec.triggers)
	assert.Equal(t, 0, sup.TrackedCount())
}

func terminalEvent(kind int, xid uint64) event.Event {
	switch kind % 3 {
	case 0:
		return &event.FullFillLimitOrderEvent{Meta: event.NewMeta(0), Symbol: "X", XID: xid}
	case 1:
		return &event.FullCancelLimitOrderAckEvent{Meta: event.NewMeta(0), Symbol: "X", XID: xid}
	default:
		return &event.LimitOrderExpiredEvent{Meta: event.NewMeta(0), Symbol: "X", XID: xid}
	}
}

func terminalTopic(kind int) string {
	switch kind % 3 {
	case 0:
		return event.KindFullFillLimitOrder.Topic()
	case 1:
		return event.KindFullCancelLimitOrderAck.Topic()
	default:
		return event.KindLimitOrderExpired.Topic()
	}
}

func TestRandomTerminalInterleavingsNeverTrigger(t *testing.T) {
	rng := rand.New(rand.NewSource(23))

	for i := 0; i < 50; i++ {
		ctx := context.Background()
		b, sup, drv, rec := harness(t)

		timeout := simtime.Duration(rng.Int63n(500) + 1)
		xid := uint64(rng.Int63n(1 << 30))
		require.NoError(t, drv.rt.Publish(event.KindLimitOrderAck.Topic(), ack(0, xid, timeout), "exchange"))

		when := simtime.Timestamp(rng.Int63n(timeout.Micros()))
		kind := rng.Intn(3)
		require.NoError(t, drv.rt.ScheduleForSelfAt(when, terminalTopic(kind), terminalEvent(kind, xid), "exchange"))

		b.Run(ctx, 0)

		assert.Empty(t, rec.triggers, "case %d: terminal at %s within timeout %s must suppress", i, when, timeout)
		assert.Equal(t, 0, sup.TrackedCount())
	}
}

func TestExactlyOneTriggerPerUnterminatedOrder(t *testing.T) {
	ctx := context.Background()
	b, sup, drv, rec := harness(t)

	require.NoError(t, drv.rt.Publish(event.KindLimitOrderAck.Topic(), ack(0, 1, 100*simtime.Microsecond), "exchange"))
	require.NoError(t, drv.rt.Publish(event.KindLimitOrderAck.Topic(), ack(0, 2, 250*simtime.Microsecond), "exchange"))
	require.NoError(t, drv.rt.Publish(event.KindLimitOrderAck.Topic(), ack(0, 3, 60*simtime.Microsecond), "exchange"))

	b.Run(ctx, 0)

	require.Len(t, rec.triggers, 3)
	byXID := map[uint64]simtime.Timestamp{}
	for _, tr := range rec.triggers {
		_, dup := byXID[tr.ev.XID]
		require.False(t, dup, "duplicate trigger for xid %d", tr.ev.XID)
		byXID[tr.ev.XID] = tr.at
	}
	assert.Equal(t, simtime.FromMicros(100), byXID[1])
	assert.Equal(t, simtime.FromMicros(250), byXID[2])
	assert.Equal(t, simtime.FromMicros(60), byXID[3])
	assert.Equal(t, 0, sup.TrackedCount())
}

func TestBangClearsTracked(t *testing.T) {
	ctx := context.Background()
	b, sup, drv, rec := harness(t)

	require.NoError(t, drv.rt.Publish(event.KindLimitOrderAck.Topic(), ack(0, 9, 100*simtime.Microsecond), "exchange"))
	require.NoError(t, drv.rt.ScheduleForSelfAt(10, event.KindBang.Topic(), &event.BangEvent{Meta: event.NewMeta(0)}, "ctl"))

	b.Run(ctx, 0)

	assert.Empty(t, rec.triggers, "probe after a reset pulse must be silent")
	assert.Equal(t, 0, sup.TrackedCount())
}

func TestTriggerResponsesAreLogOnly(t *testing.T) {
	ctx := context.Background()
	b, sup, drv, rec := harness(t)

	require.NoError(t, drv.rt.Publish(event.KindLimitOrderAck.Topic(), ack(0, 5, 50*simtime.Microsecond), "exchange"))
	b.Run(ctx, 0)
	require.Len(t, rec.triggers, 1)

	ackTrig := &event.AckTriggerExpiredLimitOrderEvent{Meta: event.NewMeta(b.Now()), Symbol: "X", XID: 5}
	require.NoError(t, drv.rt.Publish(event.KindAckTriggerExpiredLimitOrder.AgentTopic(supervisorID), ackTrig, "exchange"))
	rejTrig := &event.RejectTriggerExpiredLimitOrderEvent{Meta: event.NewMeta(b.Now()), Symbol: "X", XID: 5, Reason: "already terminal"}
	require.NoError(t, drv.rt.Publish(event.KindRejectTriggerExpiredLimitOrder.AgentTopic(supervisorID), rejTrig, "exchange"))

	b.Run(ctx, 0)

	assert.Len(t, rec.triggers, 1, "responses must not re-trigger")
	assert.Equal(t, 0, sup.TrackedCount())
	assert.Equal(t, uint64(0), b.Stats().HandlerFaults)
}

func TestProbeForUntrackedOrderIsNoop(t *testing.T) {
	ctx := context.Background()
	b, sup, drv, rec := harness(t)

	probe := &event.CheckLimitOrderExpirationEvent{Meta: event.NewMeta(0), TargetXID: 77, OriginalTimeout: 10}
	require.NoError(t, drv.rt.Publish(event.KindCheckLimitOrderExpiration.AgentTopic(supervisorID), probe, "exchange"))

	b.Run(ctx, 0)

	assert.Empty(t, rec.triggers)
	assert.Equal(t, 0, sup.TrackedCount())
	assert.False(t, sup.IsTracked(77))
}
