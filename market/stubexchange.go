package market

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/GoCodeAlone/simbus/bus"
	"github.com/GoCodeAlone/simbus/event"
	"github.com/GoCodeAlone/simbus/fixed"
	"github.com/GoCodeAlone/simbus/simtime"
)

// restingOrder is what the stub remembers about an acked limit order.
type restingOrder struct {
	cid      uint64
	side     fixed.Side
	price    fixed.Price
	quantity fixed.Quantity
}

// StubExchange is a minimal exchange adapter honoring the bus-facing
// contract without any book mechanics: limit orders are acked and rest until
// cancelled or expired, market orders are rejected (the stub simulates no
// liquidity), and expiry triggers are answered with an ack plus the expiry
// itself. It backs the supervisor's end-to-end tests and the demo binary.
type StubExchange struct {
	event.NopHandler

	logger  *slog.Logger
	symbol  string
	rt      *bus.Runtime
	nextXID uint64
	resting map[uint64]restingOrder
}

var _ ExchangeAdapter = (*StubExchange)(nil)

// NewStubExchange creates a stub adapter for one symbol. A nil logger falls
// back to slog.Default().
func NewStubExchange(symbol string, logger *slog.Logger) *StubExchange {
	if logger == nil {
		logger = slog.Default()
	}
	return &StubExchange{
		logger:  logger,
		symbol:  symbol,
		resting: make(map[uint64]restingOrder),
	}
}

// Symbol returns the instrument the stub serves.
func (x *StubExchange) Symbol() string { return x.symbol }

// RestingCount returns how many acked limit orders are live.
func (x *StubExchange) RestingCount() int { return len(x.resting) }

// SetupSubscriptions registers for the symbol's request topics and the reset
// pulse.
func (x *StubExchange) SetupSubscriptions(rt *bus.Runtime) error {
	x.rt = rt
	topics := []string{
		event.KindLimitOrder.SymbolTopic(x.symbol),
		event.KindMarketOrder.SymbolTopic(x.symbol),
		event.KindFullCancelLimitOrder.SymbolTopic(x.symbol),
		event.KindTriggerExpiredLimitOrder.SymbolTopic(x.symbol),
		event.KindBang.Topic(),
	}
	for _, topic := range topics {
		if err := rt.Subscribe(topic); err != nil {
			return fmt.Errorf("subscribing %q: %w", topic, err)
		}
	}
	return nil
}

// stream is the adapter's single response ordering channel. Everything the
// venue says about one symbol is totally ordered.
func (x *StubExchange) stream() event.StreamID {
	return event.StreamID("exchange_" + x.symbol)
}

// OnLimitOrder acks the order and lets it rest.
func (x *StubExchange) OnLimitOrder(_ context.Context, d event.Delivery, e *event.LimitOrderEvent) error {
	x.nextXID++
	xid := x.nextXID
	x.resting[xid] = restingOrder{cid: e.CID, side: e.Side, price: e.Price, quantity: e.Quantity}

	ackEv := &event.LimitOrderAckEvent{
		Meta:            event.NewMeta(d.Now),
		Symbol:          x.symbol,
		CID:             e.CID,
		XID:             xid,
		Price:           e.Price,
		Quantity:        e.Quantity,
		OriginalTimeout: e.Timeout,
	}
	return x.rt.Publish(event.KindLimitOrderAck.Topic(), ackEv, x.stream())
}

// OnMarketOrder rejects: the stub has no liquidity model.
func (x *StubExchange) OnMarketOrder(_ context.Context, d event.Delivery, e *event.MarketOrderEvent) error {
	rej := &event.MarketOrderRejectEvent{
		Meta:   event.NewMeta(d.Now),
		Symbol: x.symbol,
		CID:    e.CID,
		Reason: "stub venue has no liquidity",
	}
	return x.rt.Publish(event.KindMarketOrderReject.Topic(), rej, x.stream())
}

// OnFullCancelLimitOrder acks the cancel if the order rests, rejects
// otherwise.
func (x *StubExchange) OnFullCancelLimitOrder(_ context.Context, d event.Delivery, e *event.FullCancelLimitOrderEvent) error {
	if _, ok := x.resting[e.XID]; !ok {
		rej := &event.FullCancelLimitOrderRejectEvent{
			Meta:   event.NewMeta(d.Now),
			Symbol: x.symbol,
			XID:    e.XID,
			Reason: "unknown or terminated order",
		}
		return x.rt.Publish(event.KindFullCancelLimitOrderReject.Topic(), rej, x.stream())
	}

	delete(x.resting, e.XID)
	ackEv := &event.FullCancelLimitOrderAckEvent{Meta: event.NewMeta(d.Now), Symbol: x.symbol, XID: e.XID}
	return x.rt.Publish(event.KindFullCancelLimitOrderAck.Topic(), ackEv, x.stream())
}

// OnTriggerExpiredLimitOrder answers the supervisor: ack plus the expiry for
// a resting order, reject for anything already gone. Responses go to the
// trigger publisher's unicast topics.
func (x *StubExchange) OnTriggerExpiredLimitOrder(_ context.Context, d event.Delivery, e *event.TriggerExpiredLimitOrderEvent) error {
	if _, ok := x.resting[e.XID]; !ok {
		rej := &event.RejectTriggerExpiredLimitOrderEvent{
			Meta:   event.NewMeta(d.Now),
			Symbol: x.symbol,
			XID:    e.XID,
			Reason: "order already terminated",
		}
		return x.rt.Publish(event.KindRejectTriggerExpiredLimitOrder.AgentTopic(d.Publisher), rej, x.stream())
	}

	order := x.resting[e.XID]
	delete(x.resting, e.XID)

	ackEv := &event.AckTriggerExpiredLimitOrderEvent{Meta: event.NewMeta(d.Now), Symbol: x.symbol, XID: e.XID}
	if err := x.rt.Publish(event.KindAckTriggerExpiredLimitOrder.AgentTopic(d.Publisher), ackEv, x.stream()); err != nil {
		return err
	}

	expired := &event.LimitOrderExpiredEvent{Meta: event.NewMeta(d.Now), Symbol: x.symbol, CID: order.cid, XID: e.XID}
	return x.rt.Publish(event.KindLimitOrderExpired.Topic(), expired, x.stream())
}

// OnBang drops all resting orders.
func (x *StubExchange) OnBang(_ context.Context, _ event.Delivery, _ *event.BangEvent) error {
	if len(x.resting) > 0 {
		x.logger.Info("reset pulse, dropping resting orders", "symbol", x.symbol, "count", len(x.resting))
	}
	x.resting = make(map[uint64]restingOrder)
	return nil
}

// PublishSnapshot injects a book snapshot on the symbol topic. Demo helper;
// must run on the dispatch goroutine like any other publish.
func (x *StubExchange) PublishSnapshot(now simtime.Timestamp, bids, asks []fixed.Level) error {
	snap := &event.LTwoOrderBookEvent{
		Meta:      event.NewMeta(now),
		Symbol:    x.symbol,
		IngressTS: now,
		Bids:      bids,
		Asks:      asks,
	}
	return x.rt.Publish(event.KindLTwoOrderBook.SymbolTopic(x.symbol), snap, x.stream())
}
