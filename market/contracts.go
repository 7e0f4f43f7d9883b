// Package market holds the bus-facing contracts of the external
// collaborators (exchange adapter, trading algorithm, L2 collector) plus
// the lightweight implementations the simulator ships: a snapshot collector
// and a stub adapter for tests and demos.
//
// The matching engine's book mechanics, fill generation, and the strategy
// logic itself live outside this module; only their event contracts are
// fixed here.
package market

import "github.com/GoCodeAlone/simbus/bus"

// ExchangeAdapter is the venue-side agent, conventionally registered as
// agent id 0. It consumes the order-request topics for its symbol
// (LimitOrderEvent.<symbol>, MarketOrderEvent.<symbol>, the cancel request
// topics) and the expiry trigger topic TriggerExpiredLimitOrderEvent.<symbol>;
// it produces ack/reject/fill/expired/trade events on the global topics and
// answers triggers on the publisher's unicast ack/reject topics.
type ExchangeAdapter interface {
	bus.Agent

	// Symbol returns the instrument this adapter makes a market in.
	Symbol() string
}

// Algorithm is a strategy agent (any id >= 1). It consumes
// LTwoOrderBookEvent.<symbol>, TradeEvent, and its own ack/fill/reject and
// cancel-ack topics, and produces order-request events addressed to the
// adapter's symbol topics.
type Algorithm interface {
	bus.Agent

	// Symbols returns the instruments the algorithm trades.
	Symbols() []string
}
