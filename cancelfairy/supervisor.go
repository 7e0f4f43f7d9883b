// Package cancelfairy implements the cancellation supervisor: for every
// accepted limit order it guarantees a cancellation attempt fires exactly
// once at ack time + original timeout, unless the order already terminated
// through a direct path (full fill, full cancel, venue-side expiry).
//
// The supervisor leans entirely on the bus's ordering guarantees: a terminal
// event published before its expiration probe fires always reaches the
// supervisor first, so the probe finds the order untracked and stays silent.
package cancelfairy

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/GoCodeAlone/simbus/bus"
	"github.com/GoCodeAlone/simbus/event"
	"github.com/GoCodeAlone/simbus/simtime"
)

// trackedOrder is the metadata kept per live exchange order id.
type trackedOrder struct {
	symbol  string
	timeout simtime.Duration
}

// Supervisor is the cancellation supervisor agent.
type Supervisor struct {
	event.NopHandler

	logger  *slog.Logger
	rt      *bus.Runtime
	tracked map[uint64]trackedOrder
}

// New creates a supervisor. A nil logger falls back to slog.Default().
func New(logger *slog.Logger) *Supervisor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Supervisor{
		logger:  logger,
		tracked: make(map[uint64]trackedOrder),
	}
}

// SetupSubscriptions registers for the global order lifecycle topics and the
// supervisor's own unicast probe and trigger-response topics.
func (s *Supervisor) SetupSubscriptions(rt *bus.Runtime) error {
	s.rt = rt
	id := rt.AgentID()

	topics := []string{
		event.KindLimitOrderAck.Topic(),
		event.KindFullFillLimitOrder.Topic(),
		event.KindFullCancelLimitOrderAck.Topic(),
		event.KindLimitOrderExpired.Topic(),
		event.KindBang.Topic(),
		event.KindCheckLimitOrderExpiration.AgentTopic(id),
		event.KindAckTriggerExpiredLimitOrder.AgentTopic(id),
		event.KindRejectTriggerExpiredLimitOrder.AgentTopic(id),
	}
	for _, topic := range topics {
		if err := rt.Subscribe(topic); err != nil {
			return fmt.Errorf("subscribing %q: %w", topic, err)
		}
	}
	return nil
}

// TrackedCount returns how many orders are currently awaiting expiry.
func (s *Supervisor) TrackedCount() int { return len(s.tracked) }

// IsTracked reports whether the exchange order id is still live.
func (s *Supervisor) IsTracked(xid uint64) bool {
	_, ok := s.tracked[xid]
	return ok
}

// expireStream gives every order its own ordering channel for the probe.
func expireStream(xid uint64) event.StreamID {
	return event.StreamID(fmt.Sprintf("expire_check_%d", xid))
}

// OnLimitOrderAck starts tracking the order and schedules the self-addressed
// expiration probe at now + original timeout.
func (s *Supervisor) OnLimitOrderAck(_ context.Context, d event.Delivery, e *event.LimitOrderAckEvent) error {
	s.tracked[e.XID] = trackedOrder{symbol: e.Symbol, timeout: e.OriginalTimeout}

	probe := &event.CheckLimitOrderExpirationEvent{
		Meta:            event.NewMeta(d.Now),
		TargetXID:       e.XID,
		OriginalTimeout: e.OriginalTimeout,
	}
	topic := event.KindCheckLimitOrderExpiration.AgentTopic(s.rt.AgentID())
	if err := s.rt.ScheduleForSelfAt(d.Now.Add(e.OriginalTimeout), topic, probe, expireStream(e.XID)); err != nil {
		return fmt.Errorf("scheduling expiration probe for xid %d: %w", e.XID, err)
	}

	s.logger.Debug("tracking limit order",
		"xid", e.XID, "symbol", e.Symbol, "timeout", e.OriginalTimeout.String())
	return nil
}

// OnCheckLimitOrderExpiration fires the trigger if the order survived its
// whole timeout; a probe for an already-terminated order is a no-op.
func (s *Supervisor) OnCheckLimitOrderExpiration(_ context.Context, d event.Delivery, e *event.CheckLimitOrderExpirationEvent) error {
	order, ok := s.tracked[e.TargetXID]
	if !ok {
		return nil
	}
	delete(s.tracked, e.TargetXID)

	trigger := &event.TriggerExpiredLimitOrderEvent{
		Meta:   event.NewMeta(d.Now),
		Symbol: order.symbol,
		XID:    e.TargetXID,
	}
	topic := event.KindTriggerExpiredLimitOrder.SymbolTopic(order.symbol)
	if err := s.rt.Publish(topic, trigger, expireStream(e.TargetXID)); err != nil {
		return fmt.Errorf("publishing expiration trigger for xid %d: %w", e.TargetXID, err)
	}

	s.logger.Info("limit order timed out, requesting expiry",
		"xid", e.TargetXID, "symbol", order.symbol, "now", d.Now.String())
	return nil
}

// OnFullFillLimitOrder stops tracking a filled order.
func (s *Supervisor) OnFullFillLimitOrder(_ context.Context, _ event.Delivery, e *event.FullFillLimitOrderEvent) error {
	s.untrack(e.XID, "full fill")
	return nil
}

// OnFullCancelLimitOrderAck stops tracking a cancelled order.
func (s *Supervisor) OnFullCancelLimitOrderAck(_ context.Context, _ event.Delivery, e *event.FullCancelLimitOrderAckEvent) error {
	s.untrack(e.XID, "full cancel")
	return nil
}

// OnLimitOrderExpired stops tracking an order the venue expired directly.
func (s *Supervisor) OnLimitOrderExpired(_ context.Context, _ event.Delivery, e *event.LimitOrderExpiredEvent) error {
	s.untrack(e.XID, "expired")
	return nil
}

func (s *Supervisor) untrack(xid uint64, reason string) {
	if _, ok := s.tracked[xid]; ok {
		delete(s.tracked, xid)
		s.logger.Debug("untracked limit order", "xid", xid, "reason", reason)
	}
}

// OnAckTriggerExpiredLimitOrder is terminal from the supervisor's
// perspective; the order was already untracked when the trigger fired.
func (s *Supervisor) OnAckTriggerExpiredLimitOrder(_ context.Context, _ event.Delivery, e *event.AckTriggerExpiredLimitOrderEvent) error {
	s.logger.Debug("expiry trigger acknowledged", "xid", e.XID, "symbol", e.Symbol)
	return nil
}

// OnRejectTriggerExpiredLimitOrder is log-only: the adapter saw the order
// terminate between probe and trigger.
func (s *Supervisor) OnRejectTriggerExpiredLimitOrder(_ context.Context, _ event.Delivery, e *event.RejectTriggerExpiredLimitOrderEvent) error {
	s.logger.Warn("expiry trigger rejected", "xid", e.XID, "symbol", e.Symbol, "reason", e.Reason)
	return nil
}

// OnBang clears all tracked state.
func (s *Supervisor) OnBang(_ context.Context, _ event.Delivery, _ *event.BangEvent) error {
	if len(s.tracked) > 0 {
		s.logger.Info("reset pulse, clearing tracked orders", "count", len(s.tracked))
	}
	s.tracked = make(map[uint64]trackedOrder)
	return nil
}
