// Package bus implements the discrete-event core of the simulator: a typed,
// topic-based publish/subscribe bus that advances a logical clock.
//
// One dispatch goroutine owns the scheduled event queue and the subscription
// index. Handlers run to completion on that goroutine and may publish,
// schedule, or deregister re-entrantly; new entries are observed in future
// steps. External producers (UI, cron jobs, anything off-thread) serialize
// through a bounded inject queue drained at the top of each step. Everything
// exposed to other goroutines (clock, queue depth, counters) is atomic.
package bus

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync/atomic"

	"github.com/GoCodeAlone/simbus/event"
	"github.com/GoCodeAlone/simbus/simtime"
)

// Agent is a bus participant. Agents implement the full typed handler surface
// (usually by embedding event.NopHandler) and declare their topics in
// SetupSubscriptions, which runs during registration once the runtime handle
// is attached.
type Agent interface {
	event.Handler

	// SetupSubscriptions is called by Register after the runtime handle is
	// bound. The agent keeps rt for publishing during handlers and calls
	// rt.Subscribe for each topic it consumes. The handle becomes invalid at
	// deregistration and must not be retained past it.
	SetupSubscriptions(rt *Runtime) error
}

// injected is one event queued by an external producer.
type injected struct {
	topic  string
	ev     event.Event
	stream event.StreamID
}

// registeredAgent pairs an agent with its runtime handle.
type registeredAgent struct {
	agent Agent
	rt    *Runtime
}

// Stats is a snapshot of the bus delivery counters.
type Stats struct {
	// Published counts entries accepted into the scheduled queue.
	Published uint64 `json:"published"`
	// Dispatched counts entries popped and fanned out.
	Dispatched uint64 `json:"dispatched"`
	// Delivered counts individual handler invocations.
	Delivered uint64 `json:"delivered"`
	// HandlerFaults counts handler errors and panics caught at the dispatch
	// boundary.
	HandlerFaults uint64 `json:"handlerFaults"`
	// Injected counts events accepted from external producers.
	Injected uint64 `json:"injected"`
	// InjectDrops counts external events refused because the inject queue
	// was full.
	InjectDrops uint64 `json:"injectDrops"`
}

// Bus is the event bus and agent runtime.
type Bus struct {
	logger   *slog.Logger
	observer ObserverFunc
	clock    WallClock
	grace    simtime.Duration

	queue  *scheduledQueue
	index  *subscriptionIndex
	agents map[event.AgentID]*registeredAgent

	lastSeq uint64 // global publish sequence, dispatch thread only

	injectCh chan injected

	// Cross-goroutine mirrors.
	now        atomic.Int64
	depth      atomic.Int64
	agentCount atomic.Int64
	speedBits  atomic.Uint64

	published     atomic.Uint64
	dispatched    atomic.Uint64
	delivered     atomic.Uint64
	handlerFaults atomic.Uint64
	injectedN     atomic.Uint64
	injectDrops   atomic.Uint64
}

// Option configures a Bus.
type Option func(*Bus)

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bus) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithObserver sets the lifecycle observer hook.
func WithObserver(fn ObserverFunc) Option {
	return func(b *Bus) { b.observer = fn }
}

// WithWallClock sets the wall clock used by the pacer. Tests inject a fake.
func WithWallClock(clock WallClock) Option {
	return func(b *Bus) {
		if clock != nil {
			b.clock = clock
		}
	}
}

// WithOrigin sets the starting value of the logical clock.
func WithOrigin(origin simtime.Timestamp) Option {
	return func(b *Bus) { b.now.Store(origin.Micros()) }
}

// WithInjectQueueSize sets the capacity of the external inject queue.
func WithInjectQueueSize(n int) Option {
	return func(b *Bus) {
		if n > 0 {
			b.injectCh = make(chan injected, n)
		}
	}
}

// WithGracePeriod sets how long the pacer waits for external producers when
// the queue drains before giving up. Zero disables the wait.
func WithGracePeriod(d simtime.Duration) Option {
	return func(b *Bus) { b.grace = d }
}

const defaultInjectQueueSize = 1024

// New creates a bus with the logical clock at the origin (default zero).
func New(opts ...Option) *Bus {
	b := &Bus{
		logger:   slog.Default(),
		clock:    RealClock{},
		grace:    50 * simtime.Millisecond,
		queue:    newScheduledQueue(),
		index:    newSubscriptionIndex(),
		agents:   make(map[event.AgentID]*registeredAgent),
		injectCh: make(chan injected, defaultInjectQueueSize),
	}
	b.speedBits.Store(math.Float64bits(0))
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Now returns the logical clock. Safe from any goroutine.
func (b *Bus) Now() simtime.Timestamp {
	return simtime.FromMicros(b.now.Load())
}

// QueueSize returns the number of scheduled entries waiting for dispatch.
// Safe from any goroutine.
func (b *Bus) QueueSize() int { return int(b.depth.Load()) }

// AgentCount returns the number of registered agents. Safe from any
// goroutine.
func (b *Bus) AgentCount() int { return int(b.agentCount.Load()) }

// Stats returns a snapshot of the delivery counters. Safe from any
// goroutine.
func (b *Bus) Stats() Stats {
	return Stats{
		Published:     b.published.Load(),
		Dispatched:    b.dispatched.Load(),
		Delivered:     b.delivered.Load(),
		HandlerFaults: b.handlerFaults.Load(),
		Injected:      b.injectedN.Load(),
		InjectDrops:   b.injectDrops.Load(),
	}
}

// Topics returns all topics with at least one subscriber. Dispatch thread
// only.
func (b *Bus) Topics() []string { return b.index.topics() }

// Register binds an agent to the bus under the given id and runs its
// subscription setup. The exchange adapter conventionally registers as id 0.
func (b *Bus) Register(ctx context.Context, id event.AgentID, agent Agent) error {
	if agent == nil {
		return ErrNilAgent
	}
	if id < 0 {
		return fmt.Errorf("%w: negative id %d", ErrUnknownAgent, id)
	}
	if _, ok := b.agents[id]; ok {
		return fmt.Errorf("%w: id %d", ErrAgentExists, id)
	}

	rt := &Runtime{bus: b, id: id}
	b.agents[id] = &registeredAgent{agent: agent, rt: rt}
	b.agentCount.Add(1)

	if err := agent.SetupSubscriptions(rt); err != nil {
		b.index.removeAll(id)
		rt.detached = true
		delete(b.agents, id)
		b.agentCount.Add(-1)
		return fmt.Errorf("subscription setup for agent %d failed: %w", id, err)
	}

	b.emit(ctx, EventTypeAgentRegistered, map[string]any{"agent_id": int64(id)})
	return nil
}

// Deregister removes the agent and all of its subscriptions atomically with
// respect to dispatch: once this returns, no further events reach the agent,
// including later entries of the event currently being fanned out.
func (b *Bus) Deregister(ctx context.Context, id event.AgentID) error {
	reg, ok := b.agents[id]
	if !ok {
		return fmt.Errorf("%w: id %d", ErrUnknownAgent, id)
	}

	b.index.removeAll(id)
	reg.rt.detached = true
	delete(b.agents, id)
	b.agentCount.Add(-1)

	b.emit(ctx, EventTypeAgentDeregistered, map[string]any{"agent_id": int64(id)})
	return nil
}

// Inject queues an event from an external producer. It is the only
// thread-safe way to publish: the event is enqueued at the logical "now"
// during the next step. Fails with ErrInjectOverflow when the bounded queue
// is full.
func (b *Bus) Inject(topic string, ev event.Event, stream event.StreamID) error {
	if ev == nil {
		return ErrNilPayload
	}
	select {
	case b.injectCh <- injected{topic: topic, ev: ev, stream: stream}:
		b.injectedN.Add(1)
		return nil
	default:
		b.injectDrops.Add(1)
		return ErrInjectOverflow
	}
}

// drainInjects moves externally produced events into the scheduled queue.
// Dispatch thread only.
func (b *Bus) drainInjects() {
	for {
		select {
		case in := <-b.injectCh:
			b.enqueue(b.Now(), in.topic, in.ev, in.stream, event.IDUnassigned)
		default:
			return
		}
	}
}

// enqueue assigns the next global sequence number and inserts the entry.
// Dispatch thread only.
func (b *Bus) enqueue(ts simtime.Timestamp, topic string, ev event.Event, stream event.StreamID, publisher event.AgentID) {
	b.lastSeq++
	b.queue.push(&entry{
		ts:        ts,
		seq:       b.lastSeq,
		stream:    stream,
		topic:     topic,
		payload:   ev,
		publisher: publisher,
	})
	b.depth.Add(1)
	b.published.Add(1)
}

// Step dispatches the next scheduled event: drain external injects, pop the
// minimal entry, advance the clock, and fan out to subscribers in stable
// order. Handler errors and panics are caught, logged, and counted; the only
// error Step surfaces is ErrQueueEmpty.
func (b *Bus) Step(ctx context.Context) error {
	b.drainInjects()

	e, err := b.queue.popMin()
	if err != nil {
		return err
	}
	b.depth.Add(-1)

	// The clock never goes backwards; entries scheduled in the past of a
	// later-advanced clock dispatch at the current time.
	now := simtime.FromMicros(b.now.Load()).Max(e.ts)
	b.now.Store(now.Micros())

	d := event.Delivery{
		Topic:     e.topic,
		Publisher: e.publisher,
		Now:       now,
		Stream:    e.stream,
		Sequence:  e.seq,
	}

	for _, sub := range b.index.subscribersOf(e.topic) {
		if sub.cancelled {
			continue
		}
		// Entries published before the subscription existed are invisible
		// to it.
		if e.seq <= sub.afterSeq {
			continue
		}
		reg, ok := b.agents[sub.agent]
		if !ok {
			continue
		}
		b.deliver(ctx, reg.agent, d, e.payload, sub.agent)
	}

	b.dispatched.Add(1)
	return nil
}

// deliver invokes the typed dispatch for one subscriber, containing faults.
func (b *Bus) deliver(ctx context.Context, agent Agent, d event.Delivery, ev event.Event, id event.AgentID) {
	defer func() {
		if r := recover(); r != nil {
			b.handlerFault(ctx, fmt.Errorf("handler panic: %v", r), d, ev, id)
		}
	}()

	b.delivered.Add(1)
	if err := event.Dispatch(ctx, agent, d, ev); err != nil {
		b.handlerFault(ctx, err, d, ev, id)
	}
}

func (b *Bus) handlerFault(ctx context.Context, err error, d event.Delivery, ev event.Event, id event.AgentID) {
	b.handlerFaults.Add(1)
	b.logger.Error("event handler failed",
		"error", err,
		"topic", d.Topic,
		"agent_id", int64(id),
		"event_id", ev.EventID(),
		"kind", ev.Kind().String(),
	)
	b.emit(ctx, EventTypeHandlerFailed, map[string]any{
		"agent_id": int64(id),
		"topic":    d.Topic,
		"event_id": ev.EventID(),
		"kind":     ev.Kind().String(),
		"error":    err.Error(),
	})
}

// Run repeats Step until the queue is quiescent or maxSteps is exceeded.
// maxSteps <= 0 means unbounded. Returns the number of steps executed.
func (b *Bus) Run(ctx context.Context, maxSteps int) int {
	steps := 0
	for maxSteps <= 0 || steps < maxSteps {
		if err := b.Step(ctx); err != nil {
			return steps
		}
		steps++
	}
	return steps
}
