package event

import "fmt"

// Kind is the runtime type tag of an event. It exists for logging, metrics
// labels, and topic construction; dispatch itself is driven by the concrete
// type, not the tag.
type Kind int

const (
	// Control
	KindBang Kind = iota

	// Scheduling
	KindCheckLimitOrderExpiration

	// Market data
	KindLTwoOrderBook
	KindTrade

	// Order requests
	KindLimitOrder
	KindMarketOrder
	KindPartialCancelLimitOrder
	KindFullCancelLimitOrder
	KindPartialCancelMarketOrder
	KindFullCancelMarketOrder

	// Order responses
	KindLimitOrderAck
	KindMarketOrderAck
	KindLimitOrderReject
	KindMarketOrderReject
	KindPartialFillLimitOrder
	KindFullFillLimitOrder
	KindPartialFillMarketOrder
	KindFullFillMarketOrder
	KindLimitOrderExpired
	KindMarketOrderExpired
	KindPartialCancelLimitOrderAck
	KindPartialCancelLimitOrderReject
	KindFullCancelLimitOrderAck
	KindFullCancelLimitOrderReject
	KindPartialCancelMarketOrderAck
	KindPartialCancelMarketOrderReject
	KindFullCancelMarketOrderAck
	KindFullCancelMarketOrderReject

	// Expiry workflow
	KindTriggerExpiredLimitOrder
	KindAckTriggerExpiredLimitOrder
	KindRejectTriggerExpiredLimitOrder

	kindCount
)

var kindNames = [kindCount]string{
	KindBang:                           "Bang",
	KindCheckLimitOrderExpiration:      "CheckLimitOrderExpirationEvent",
	KindLTwoOrderBook:                  "LTwoOrderBookEvent",
	KindTrade:                          "TradeEvent",
	KindLimitOrder:                     "LimitOrderEvent",
	KindMarketOrder:                    "MarketOrderEvent",
	KindPartialCancelLimitOrder:        "PartialCancelLimitOrderEvent",
	KindFullCancelLimitOrder:           "FullCancelLimitOrderEvent",
	KindPartialCancelMarketOrder:       "PartialCancelMarketOrderEvent",
	KindFullCancelMarketOrder:          "FullCancelMarketOrderEvent",
	KindLimitOrderAck:                  "LimitOrderAckEvent",
	KindMarketOrderAck:                 "MarketOrderAckEvent",
	KindLimitOrderReject:               "LimitOrderRejectEvent",
	KindMarketOrderReject:              "MarketOrderRejectEvent",
	KindPartialFillLimitOrder:          "PartialFillLimitOrderEvent",
	KindFullFillLimitOrder:             "FullFillLimitOrderEvent",
	KindPartialFillMarketOrder:         "PartialFillMarketOrderEvent",
	KindFullFillMarketOrder:            "FullFillMarketOrderEvent",
	KindLimitOrderExpired:              "LimitOrderExpiredEvent",
	KindMarketOrderExpired:             "MarketOrderExpiredEvent",
	KindPartialCancelLimitOrderAck:     "PartialCancelLimitOrderAckEvent",
	KindPartialCancelLimitOrderReject:  "PartialCancelLimitOrderRejectEvent",
	KindFullCancelLimitOrderAck:        "FullCancelLimitOrderAckEvent",
	KindFullCancelLimitOrderReject:     "FullCancelLimitOrderRejectEvent",
	KindPartialCancelMarketOrderAck:    "PartialCancelMarketOrderAckEvent",
	KindPartialCancelMarketOrderReject: "PartialCancelMarketOrderRejectEvent",
	KindFullCancelMarketOrderAck:       "FullCancelMarketOrderAckEvent",
	KindFullCancelMarketOrderReject:    "FullCancelMarketOrderRejectEvent",
	KindTriggerExpiredLimitOrder:       "TriggerExpiredLimitOrderEvent",
	KindAckTriggerExpiredLimitOrder:    "AckTriggerExpiredLimitOrderEvent",
	KindRejectTriggerExpiredLimitOrder: "RejectTriggerExpiredLimitOrderEvent",
}

func (k Kind) String() string {
	if k < 0 || k >= kindCount {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Topic returns the global broadcast topic for this kind: the event class
// name alone, e.g. "TradeEvent" or "Bang".
func (k Kind) Topic() string { return k.String() }

// AgentTopic returns the per-agent unicast topic "EventClass.<agent_id>".
func (k Kind) AgentTopic(id AgentID) string {
	return fmt.Sprintf("%s.%d", k.String(), int64(id))
}

// SymbolTopic returns the per-symbol multicast topic "EventClass.<symbol>".
func (k Kind) SymbolTopic(symbol string) string {
	return k.String() + "." + symbol
}
