package bus

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoCodeAlone/simbus/event"
	"github.com/GoCodeAlone/simbus/simtime"
)

// rec is one captured delivery.
type rec struct {
	d  event.Delivery
	ev event.Event
}

// testAgent records deliveries for the kinds the tests exercise and exposes
// hooks for re-entrant behavior.
type testAgent struct {
	event.NopHandler
	topics   []string
	setupErr error
	setup    func(rt *Runtime) error

	rt   *Runtime
	recs []rec

	onBang  func(d event.Delivery) error
	onTrade func(d event.Delivery, e *event.TradeEvent) error
}

func (a *testAgent) SetupSubscriptions(rt *Runtime) error {
	a.rt = rt
	for _, topic := range a.topics {
		if err := rt.Subscribe(topic); err != nil {
			return err
		}
	}
	if a.setup != nil {
		if err := a.setup(rt); err != nil {
			return err
		}
	}
	return a.setupErr
}

func (a *testAgent) OnBang(_ context.Context, d event.Delivery, e *event.BangEvent) error {
	a.recs = append(a.recs, rec{d: d, ev: e})
	if a.onBang != nil {
		return a.onBang(d)
	}
	return nil
}

func (a *testAgent) OnTrade(_ context.Context, d event.Delivery, e *event.TradeEvent) error {
	a.recs = append(a.recs, rec{d: d, ev: e})
	if a.onTrade != nil {
		return a.onTrade(d, e)
	}
	return nil
}

func trade(now simtime.Timestamp, cid uint64) *event.TradeEvent {
	return &event.TradeEvent{Meta: event.NewMeta(now), Symbol: "X", MakerCID: cid}
}

func TestStepEmptyQueue(t *testing.T) {
	b := New()
	assert.ErrorIs(t, b.Step(context.Background()), ErrQueueEmpty)
}

func TestSameStreamSameTimePublishOrder(t *testing.T) {
	ctx := context.Background()
	b := New()

	sub := &testAgent{topics: []string{event.KindTrade.Topic()}}
	require.NoError(t, b.Register(ctx, 5, sub))
	driver := &testAgent{}
	require.NoError(t, b.Register(ctx, 6, driver))

	// A then B at the same logical time on the same stream.
	require.NoError(t, driver.rt.Publish(event.KindTrade.Topic(), trade(0, 1), "s"))
	require.NoError(t, driver.rt.Publish(event.KindTrade.Topic(), trade(0, 2), "s"))

	b.Run(ctx, 0)

	require.Len(t, sub.recs, 2)
	assert.Equal(t, uint64(1), sub.recs[0].ev.(*event.TradeEvent).MakerCID)
	assert.Equal(t, uint64(2), sub.recs[1].ev.(*event.TradeEvent).MakerCID)
	assert.Less(t, sub.recs[0].d.Sequence, sub.recs[1].d.Sequence)
}

func TestMultiAgentFanOut(t *testing.T) {
	ctx := context.Background()
	b := New()

	a1 := &testAgent{topics: []string{event.KindBang.Topic()}}
	a2 := &testAgent{topics: []string{event.KindBang.Topic()}}
	require.NoError(t, b.Register(ctx, 1, a1))
	require.NoError(t, b.Register(ctx, 2, a2))

	driver := &testAgent{}
	require.NoError(t, b.Register(ctx, 3, driver))
	require.NoError(t, driver.rt.ScheduleForSelfAt(10, event.KindBang.Topic(), &event.BangEvent{Meta: event.NewMeta(0)}, "ctl"))

	b.Run(ctx, 0)

	assert.Len(t, a1.recs, 1)
	assert.Len(t, a2.recs, 1)
	assert.Equal(t, simtime.Timestamp(10), b.Now())
	assert.Equal(t, simtime.Timestamp(10), a1.recs[0].d.Now)
}

func TestDeregisterDuringRun(t *testing.T) {
	ctx := context.Background()
	b := New()

	victim := &testAgent{topics: []string{event.KindTrade.Topic()}}
	require.NoError(t, b.Register(ctx, 7, victim))

	controller := &testAgent{topics: []string{event.KindBang.Topic()}}
	controller.onBang = func(event.Delivery) error {
		return b.Deregister(ctx, 7)
	}
	require.NoError(t, b.Register(ctx, 8, controller))

	driver := &testAgent{}
	require.NoError(t, b.Register(ctx, 9, driver))

	require.NoError(t, driver.rt.Publish(event.KindTrade.Topic(), trade(0, 1), "md"))
	require.NoError(t, driver.rt.ScheduleForSelfAt(1, event.KindBang.Topic(), &event.BangEvent{Meta: event.NewMeta(0)}, "ctl"))
	require.NoError(t, driver.rt.ScheduleForSelfAt(2, event.KindTrade.Topic(), trade(0, 2), "md"))

	b.Run(ctx, 0)

	require.Len(t, victim.recs, 1, "deregistered agent must only see the first event")
	assert.Equal(t, uint64(1), victim.recs[0].ev.(*event.TradeEvent).MakerCID)
}

func TestScheduleForSelfAtNowDispatchesNextStep(t *testing.T) {
	ctx := context.Background()
	b := New()

	a := &testAgent{topics: []string{event.KindBang.AgentTopic(4)}}
	require.NoError(t, b.Register(ctx, 4, a))

	require.NoError(t, a.rt.ScheduleForSelfAt(b.Now(), event.KindBang.AgentTopic(4), &event.BangEvent{Meta: event.NewMeta(b.Now())}, "ctl"))
	require.NoError(t, b.Step(ctx))

	assert.Len(t, a.recs, 1)
	assert.Equal(t, simtime.Timestamp(0), b.Now())
}

func TestScheduleForSelfAtPastRejected(t *testing.T) {
	ctx := context.Background()
	b := New(WithOrigin(100))

	a := &testAgent{}
	require.NoError(t, b.Register(ctx, 1, a))

	err := a.rt.ScheduleForSelfAt(50, event.KindBang.AgentTopic(1), &event.BangEvent{Meta: event.NewMeta(100)}, "ctl")
	assert.ErrorIs(t, err, ErrBadSchedule)
	assert.Equal(t, 0, b.QueueSize())
}

func TestNilPayloadRejected(t *testing.T) {
	ctx := context.Background()
	b := New()

	a := &testAgent{}
	require.NoError(t, b.Register(ctx, 1, a))

	assert.ErrorIs(t, a.rt.Publish("T", nil, "s"), ErrNilPayload)
	assert.ErrorIs(t, a.rt.ScheduleForSelfAt(10, "T", nil, "s"), ErrNilPayload)
	assert.ErrorIs(t, b.Inject("T", nil, "s"), ErrNilPayload)
}

func TestRegisterErrors(t *testing.T) {
	ctx := context.Background()
	b := New()

	require.ErrorIs(t, b.Register(ctx, 1, nil), ErrNilAgent)

	a := &testAgent{}
	require.NoError(t, b.Register(ctx, 1, a))
	assert.ErrorIs(t, b.Register(ctx, 1, &testAgent{}), ErrAgentExists)

	failing := &testAgent{topics: []string{"T"}, setupErr: errors.New("boom")}
	err := b.Register(ctx, 2, failing)
	require.Error(t, err)

	// Failed registration fully rolls back: the id is free again and the
	// partial subscriptions are gone.
	assert.Equal(t, 1, b.AgentCount())
	require.NoError(t, b.Register(ctx, 2, &testAgent{}))
	assert.NotContains(t, b.Topics(), "T")
}

func TestDeregisterUnknown(t *testing.T) {
	b := New()
	assert.ErrorIs(t, b.Deregister(context.Background(), 42), ErrUnknownAgent)
}

func TestRuntimeInvalidAfterDeregister(t *testing.T) {
	ctx := context.Background()
	b := New()

	a := &testAgent{topics: []string{"T"}}
	require.NoError(t, b.Register(ctx, 1, a))
	require.NoError(t, b.Deregister(ctx, 1))

	assert.ErrorIs(t, a.rt.Subscribe("T"), ErrNotRegistered)
	assert.ErrorIs(t, a.rt.Unsubscribe("T"), ErrNotRegistered)
	assert.ErrorIs(t, a.rt.Publish("T", trade(0, 1), "s"), ErrNotRegistered)
	assert.ErrorIs(t, a.rt.ScheduleForSelfAt(10, "T", trade(0, 1), "s"), ErrNotRegistered)
}

func TestLateSubscriberSeesNothingEarlier(t *testing.T) {
	ctx := context.Background()
	b := New()

	driver := &testAgent{}
	require.NoError(t, b.Register(ctx, 1, driver))
	require.NoError(t, driver.rt.Publish(event.KindTrade.Topic(), trade(0, 1), "md"))

	late := &testAgent{topics: []string{event.KindTrade.Topic()}}
	require.NoError(t, b.Register(ctx, 2, late))

	b.Run(ctx, 0)
	assert.Empty(t, late.recs, "event published before subscription must not be delivered")

	require.NoError(t, driver.rt.Publish(event.KindTrade.Topic(), trade(b.Now(), 2), "md"))
	b.Run(ctx, 0)
	require.Len(t, late.recs, 1)
	assert.Equal(t, uint64(2), late.recs[0].ev.(*event.TradeEvent).MakerCID)
}

func TestHandlerErrorContained(t *testing.T) {
	ctx := context.Background()
	b := New()

	bad := &testAgent{topics: []string{event.KindBang.Topic()}}
	bad.onBang = func(event.Delivery) error { return errors.New("handler broke") }
	good := &testAgent{topics: []string{event.KindBang.Topic()}}
	require.NoError(t, b.Register(ctx, 1, bad))
	require.NoError(t, b.Register(ctx, 2, good))

	driver := &testAgent{}
	require.NoError(t, b.Register(ctx, 3, driver))
	require.NoError(t, driver.rt.Publish(event.KindBang.Topic(), &event.BangEvent{Meta: event.NewMeta(0)}, "ctl"))

	require.NoError(t, b.Step(ctx))

	assert.Len(t, good.recs, 1, "fault in one handler must not starve the next subscriber")
	assert.Equal(t, uint64(1), b.Stats().HandlerFaults)
}

func TestHandlerPanicContained(t *testing.T) {
	ctx := context.Background()
	b := New()

	bad := &testAgent{topics: []string{event.KindBang.Topic()}}
	bad.onBang = func(event.Delivery) error { panic("kaboom") }
	require.NoError(t, b.Register(ctx, 1, bad))

	driver := &testAgent{}
	require.NoError(t, b.Register(ctx, 2, driver))
	require.NoError(t, driver.rt.Publish(event.KindBang.Topic(), &event.BangEvent{Meta: event.NewMeta(0)}, "ctl"))

	require.NoError(t, b.Step(ctx))
	assert.Equal(t, uint64(1), b.Stats().HandlerFaults)
}

func TestStreamFIFOProperty(t *testing.T) {
	ctx := context.Background()
	b := New()

	sub := &testAgent{topics: []string{event.KindTrade.Topic()}}
	require.NoError(t, b.Register(ctx, 1, sub))
	driver := &testAgent{}
	require.NoError(t, b.Register(ctx, 2, driver))

	const n = 200
	for i := uint64(1); i <= n; i++ {
		require.NoError(t, driver.rt.Publish(event.KindTrade.Topic(), trade(0, i), "orders"))
	}

	b.Run(ctx, 0)

	require.Len(t, sub.recs, n)
	for i, r := range sub.recs {
		assert.Equal(t, uint64(i+1), r.ev.(*event.TradeEvent).MakerCID, "delivery %d out of publish order", i)
	}
}

func TestClockMonotonicAndDominatesCreated(t *testing.T) {
	ctx := context.Background()
	b := New()

	var observed []simtime.Timestamp
	sub := &testAgent{topics: []string{event.KindBang.AgentTopic(1)}}
	sub.onBang = func(d event.Delivery) error {
		observed = append(observed, d.Now)
		return nil
	}
	require.NoError(t, b.Register(ctx, 1, sub))

	rng := rand.New(rand.NewSource(19))
	var maxCreated simtime.Timestamp
	for i := 0; i < 100; i++ {
		ts := simtime.Timestamp(rng.Int63n(1000))
		ev := &event.BangEvent{Meta: event.NewMeta(b.Now())}
		if ev.CreatedAt() > maxCreated {
			maxCreated = ev.CreatedAt()
		}
		require.NoError(t, sub.rt.ScheduleForSelfAt(ts, event.KindBang.AgentTopic(1), ev, event.StreamID(fmt.Sprintf("s%d", i%7))))
	}

	b.Run(ctx, 0)

	require.Len(t, observed, 100)
	for i := 1; i < len(observed); i++ {
		assert.GreaterOrEqual(t, observed[i], observed[i-1], "clock went backwards")
	}
	assert.GreaterOrEqual(t, b.Now(), maxCreated)
}

func TestInjectAndOverflow(t *testing.T) {
	ctx := context.Background()
	b := New(WithInjectQueueSize(1))

	sub := &testAgent{topics: []string{event.KindTrade.Topic()}}
	require.NoError(t, b.Register(ctx, 1, sub))

	require.NoError(t, b.Inject(event.KindTrade.Topic(), trade(0, 1), "ext"))
	assert.ErrorIs(t, b.Inject(event.KindTrade.Topic(), trade(0, 2), "ext"), ErrInjectOverflow)

	require.NoError(t, b.Step(ctx))
	require.Len(t, sub.recs, 1)
	assert.Equal(t, event.IDUnassigned, sub.recs[0].d.Publisher)

	s := b.Stats()
	assert.Equal(t, uint64(1), s.Injected)
	assert.Equal(t, uint64(1), s.InjectDrops)
}

func TestObserverEmissions(t *testing.T) {
	ctx := context.Background()

	var types []string
	b := New(WithObserver(func(_ context.Context, ce cloudevents.Event) {
		types = append(types, ce.Type())
	}))

	bad := &testAgent{topics: []string{event.KindBang.Topic()}}
	bad.onBang = func(event.Delivery) error { return errors.New("nope") }
	require.NoError(t, b.Register(ctx, 1, bad))

	driver := &testAgent{}
	require.NoError(t, b.Register(ctx, 2, driver))
	require.NoError(t, driver.rt.Publish(event.KindBang.Topic(), &event.BangEvent{Meta: event.NewMeta(0)}, "ctl"))
	require.NoError(t, b.Step(ctx))
	require.NoError(t, b.Deregister(ctx, 1))

	assert.Equal(t, []string{
		EventTypeAgentRegistered,
		EventTypeAgentRegistered,
		EventTypeHandlerFailed,
		EventTypeAgentDeregistered,
	}, types)
}

func TestRunMaxSteps(t *testing.T) {
	ctx := context.Background()
	b := New()

	driver := &testAgent{}
	require.NoError(t, b.Register(ctx, 1, driver))
	for i := 0; i < 5; i++ {
		require.NoError(t, driver.rt.Publish("T", trade(0, uint64(i)), "s"))
	}

	assert.Equal(t, 3, b.Run(ctx, 3))
	assert.Equal(t, 2, b.QueueSize())
	assert.Equal(t, 2, b.Run(ctx, 0))
	assert.Equal(t, 0, b.QueueSize())
}
