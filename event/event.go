// Package event defines the closed set of event types carried by the
// simulation bus, the envelope metadata every event shares, and the typed
// handler interface agents implement.
//
// The taxonomy is closed at compile time: every concrete event implements an
// unexported accept method against Handler, so a new kind cannot be added
// without extending Handler, and dispatch never falls back to string
// comparison. Only topic lookup is string-keyed.
package event

import (
	"context"
	"sync/atomic"

	"github.com/GoCodeAlone/simbus/simtime"
)

// AgentID identifies a registered agent. Id 0 is the exchange adapter's
// conventional id and doubles as IDUnassigned.
type AgentID int64

// IDUnassigned is the zero agent id. The bus reports it as the publisher of
// events injected by external producers, which no agent published.
const IDUnassigned AgentID = 0

// StreamID tags a logical ordering channel. Events sharing a stream are
// dispatched in publish order regardless of scheduling jitter.
type StreamID string

// eventIDCounter is the process-wide event id source. Ids start at 1 and are
// never reused within a run.
var eventIDCounter atomic.Uint64

// Meta is the envelope every event carries. Embed it as the first field of a
// concrete event and initialize it with NewMeta.
type Meta struct {
	// ID is the globally monotonic event id assigned at construction.
	ID uint64 `json:"eventId"`

	// Created is the logical timestamp at which the event was constructed.
	Created simtime.Timestamp `json:"createdTs"`
}

// NewMeta assigns the next global event id and stamps the creation time.
func NewMeta(now simtime.Timestamp) Meta {
	return Meta{ID: eventIDCounter.Add(1), Created: now}
}

// EventID returns the globally monotonic id assigned at construction.
func (m Meta) EventID() uint64 { return m.ID }

// CreatedAt returns the logical timestamp the event was constructed at.
func (m Meta) CreatedAt() simtime.Timestamp { return m.Created }

// Event is the interface all bus payloads implement. Events are immutable
// once published; the bus never mutates them and handlers must not either.
//
// The unexported accept method closes the set: only types in this package can
// ride the bus.
type Event interface {
	EventID() uint64
	CreatedAt() simtime.Timestamp
	Kind() Kind

	accept(ctx context.Context, h Handler, d Delivery) error
}

// Delivery carries the per-dispatch context handed to handlers alongside the
// payload: where the event came from and where the clock stands.
type Delivery struct {
	// Topic the event was published on.
	Topic string

	// Publisher is the agent that published the event.
	Publisher AgentID

	// Now is the logical clock at dispatch time.
	Now simtime.Timestamp

	// Stream is the ordering channel the event was published on.
	Stream StreamID

	// Sequence is the global publish-order sequence number.
	Sequence uint64
}

// Dispatch routes ev to the handler method matching its concrete type.
func Dispatch(ctx context.Context, h Handler, d Delivery, ev Event) error {
	return ev.accept(ctx, h, d)
}
