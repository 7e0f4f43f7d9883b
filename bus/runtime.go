package bus

import (
	"fmt"

	"github.com/GoCodeAlone/simbus/event"
	"github.com/GoCodeAlone/simbus/simtime"
)

// Runtime is the non-owning handle an agent uses to talk to the bus for the
// duration of its registration. It is bound during Register, invalidated at
// Deregister, and must only be used from the dispatch goroutine (inside
// SetupSubscriptions or a handler).
type Runtime struct {
	bus      *Bus
	id       event.AgentID
	detached bool
}

// AgentID returns the id the agent registered under.
func (r *Runtime) AgentID() event.AgentID { return r.id }

// Now returns the bus's logical clock.
func (r *Runtime) Now() simtime.Timestamp { return r.bus.Now() }

// Subscribe registers the agent for the exact topic string. Idempotent.
func (r *Runtime) Subscribe(topic string) error {
	if r.detached {
		return fmt.Errorf("%w: agent %d", ErrNotRegistered, r.id)
	}
	r.bus.index.subscribe(r.id, topic, r.bus.lastSeq)
	return nil
}

// Unsubscribe removes the agent's subscription to topic. No-op if absent.
func (r *Runtime) Unsubscribe(topic string) error {
	if r.detached {
		return fmt.Errorf("%w: agent %d", ErrNotRegistered, r.id)
	}
	r.bus.index.unsubscribe(r.id, topic)
	return nil
}

// Publish schedules ev on topic at the current logical time. Events sharing
// a stream id are delivered in publish order.
func (r *Runtime) Publish(topic string, ev event.Event, stream event.StreamID) error {
	if r.detached {
		return fmt.Errorf("%w: agent %d", ErrNotRegistered, r.id)
	}
	if ev == nil {
		return ErrNilPayload
	}
	r.bus.enqueue(r.bus.Now(), topic, ev, stream, r.id)
	return nil
}

// ScheduleForSelfAt schedules ev at a future logical time. The topic is
// typically the agent's own unicast topic so only the agent receives it.
// A target before the current clock is rejected with ErrBadSchedule and
// nothing is published.
func (r *Runtime) ScheduleForSelfAt(target simtime.Timestamp, topic string, ev event.Event, stream event.StreamID) error {
	if r.detached {
		return fmt.Errorf("%w: agent %d", ErrNotRegistered, r.id)
	}
	if ev == nil {
		return ErrNilPayload
	}
	now := r.bus.Now()
	if target.Before(now) {
		r.bus.logger.Warn("rejected schedule in the past",
			"agent_id", int64(r.id), "target", target.String(), "now", now.String())
		return fmt.Errorf("%w: target %s before now %s", ErrBadSchedule, target, now)
	}
	r.bus.enqueue(target, topic, ev, stream, r.id)
	return nil
}
