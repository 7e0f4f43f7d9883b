package event

import "context"

// Handler is the typed dispatch target an agent exposes: one method per
// concrete event kind in the taxonomy. Adding a kind to the closed set forces
// every agent to grow a handler, which is the build-time exhaustiveness
// guarantee the bus relies on.
//
// Agents that only care about a few kinds embed NopHandler and override what
// they need. Errors returned from handlers are caught at the dispatch
// boundary, logged, and never propagate to other subscribers.
type Handler interface {
	// Control
	OnBang(ctx context.Context, d Delivery, e *BangEvent) error

	// Scheduling
	OnCheckLimitOrderExpiration(ctx context.Context, d Delivery, e *CheckLimitOrderExpirationEvent) error

	// Market data
	OnLTwoOrderBook(ctx context.Context, d Delivery, e *LTwoOrderBookEvent) error
	OnTrade(ctx context.Context, d Delivery, e *TradeEvent) error

	// Order requests
	OnLimitOrder(ctx context.Context, d Delivery, e *LimitOrderEvent) error
	OnMarketOrder(ctx context.Context, d Delivery, e *MarketOrderEvent) error
	OnPartialCancelLimitOrder(ctx context.Context, d Delivery, e *PartialCancelLimitOrderEvent) error
	OnFullCancelLimitOrder(ctx context.Context, d Delivery, e *FullCancelLimitOrderEvent) error
	OnPartialCancelMarketOrder(ctx context.Context, d Delivery, e *PartialCancelMarketOrderEvent) error
	OnFullCancelMarketOrder(ctx context.Context, d Delivery, e *FullCancelMarketOrderEvent) error

	// Order responses
	OnLimitOrderAck(ctx context.Context, d Delivery, e *LimitOrderAckEvent) error
	OnMarketOrderAck(ctx context.Context, d Delivery, e *MarketOrderAckEvent) error
	OnLimitOrderReject(ctx context.Context, d Delivery, e *LimitOrderRejectEvent) error
	OnMarketOrderReject(ctx context.Context, d Delivery, e *MarketOrderRejectEvent) error
	OnPartialFillLimitOrder(ctx context.Context, d Delivery, e *PartialFillLimitOrderEvent) error
	OnFullFillLimitOrder(ctx context.Context, d Delivery, e *FullFillLimitOrderEvent) error
	OnPartialFillMarketOrder(ctx context.Context, d Delivery, e *PartialFillMarketOrderEvent) error
	OnFullFillMarketOrder(ctx context.Context, d Delivery, e *FullFillMarketOrderEvent) error
	OnLimitOrderExpired(ctx context.Context, d Delivery, e *LimitOrderExpiredEvent) error
	OnMarketOrderExpired(ctx context.Context, d Delivery, e *MarketOrderExpiredEvent) error
	OnPartialCancelLimitOrderAck(ctx context.Context, d Delivery, e *PartialCancelLimitOrderAckEvent) error
	OnPartialCancelLimitOrderReject(ctx context.Context, d Delivery, e *PartialCancelLimitOrderRejectEvent) error
	OnFullCancelLimitOrderAck(ctx context.Context, d Delivery, e *FullCancelLimitOrderAckEvent) error
	OnFullCancelLimitOrderReject(ctx context.Context, d Delivery, e *FullCancelLimitOrderRejectEvent) error
	OnPartialCancelMarketOrderAck(ctx context.Context, d Delivery, e *PartialCancelMarketOrderAckEvent) error
	OnPartialCancelMarketOrderReject(ctx context.Context, d Delivery, e *PartialCancelMarketOrderRejectEvent) error
	OnFullCancelMarketOrderAck(ctx context.Context, d Delivery, e *FullCancelMarketOrderAckEvent) error
	OnFullCancelMarketOrderReject(ctx context.Context, d Delivery, e *FullCancelMarketOrderRejectEvent) error

	// Expiry workflow
	OnTriggerExpiredLimitOrder(ctx context.Context, d Delivery, e *TriggerExpiredLimitOrderEvent) error
	OnAckTriggerExpiredLimitOrder(ctx context.Context, d Delivery, e *AckTriggerExpiredLimitOrderEvent) error
	OnRejectTriggerExpiredLimitOrder(ctx context.Context, d Delivery, e *RejectTriggerExpiredLimitOrderEvent) error
}

// NopHandler implements Handler with no-ops for every kind. Agents embed it
// and override the handlers for the topics they subscribe to.
type NopHandler struct{}

var _ Handler = NopHandler{}

func (NopHandler) OnBang(context.Context, Delivery, *BangEvent) error { return nil }
func (NopHandler) OnCheckLimitOrderExpiration(context.Context, Delivery, *CheckLimitOrderExpirationEvent) error {
	return nil
}
func (NopHandler) OnLTwoOrderBook(context.Context, Delivery, *LTwoOrderBookEvent) error { return nil }
func (NopHandler) OnTrade(context.Context, Delivery, *TradeEvent) error                 { return nil }
func (NopHandler) OnLimitOrder(context.Context, Delivery, *LimitOrderEvent) error       { return nil }
func (NopHandler) OnMarketOrder(context.Context, Delivery, *MarketOrderEvent) error     { return nil }
func (NopHandler) OnPartialCancelLimitOrder(context.Context, Delivery, *PartialCancelLimitOrderEvent) error {
	return nil
}
func (NopHandler) OnFullCancelLimitOrder(context.Context, Delivery, *FullCancelLimitOrderEvent) error {
	return nil
}
func (NopHandler) OnPartialCancelMarketOrder(context.Context, Delivery, *PartialCancelMarketOrderEvent) error {
	return nil
}
func (NopHandler) OnFullCancelMarketOrder(context.Context, Delivery, *FullCancelMarketOrderEvent) error {
	return nil
}
func (NopHandler) OnLimitOrderAck(context.Context, Delivery, *LimitOrderAckEvent) error   { return nil }
func (NopHandler) OnMarketOrderAck(context.Context, Delivery, *MarketOrderAckEvent) error { return nil }
func (NopHandler) OnLimitOrderReject(context.Context, Delivery, *LimitOrderRejectEvent) error {
	return nil
}
func (NopHandler) OnMarketOrderReject(context.Context, Delivery, *MarketOrderRejectEvent) error {
	return nil
}
func (NopHandler) OnPartialFillLimitOrder(context.Context, Delivery, *PartialFillLimitOrderEvent) error {
	return nil
}
func (NopHandler) OnFullFillLimitOrder(context.Context, Delivery, *FullFillLimitOrderEvent) error {
	return nil
}
func (NopHandler) OnPartialFillMarketOrder(context.Context, Delivery, *PartialFillMarketOrderEvent) error {
	return nil
}
func (NopHandler) OnFullFillMarketOrder(context.Context, Delivery, *FullFillMarketOrderEvent) error {
	return nil
}
func (NopHandler) OnLimitOrderExpired(context.Context, Delivery, *LimitOrderExpiredEvent) error {
	return nil
}
func (NopHandler) OnMarketOrderExpired(context.Context, Delivery, *MarketOrderExpiredEvent) error {
	return nil
}
func (NopHandler) OnPartialCancelLimitOrderAck(context.Context, Delivery, *PartialCancelLimitOrderAckEvent) error {
	return nil
}
func (NopHandler) OnPartialCancelLimitOrderReject(context.Context, Delivery, *PartialCancelLimitOrderRejectEvent) error {
	return nil
}
func (NopHandler) OnFullCancelLimitOrderAck(context.Context, Delivery, *FullCancelLimitOrderAckEvent) error {
	return nil
}
func (NopHandler) OnFullCancelLimitOrderReject(context.Context, Delivery, *FullCancelLimitOrderRejectEvent) error {
	return nil
}
func (NopHandler) OnPartialCancelMarketOrderAck(context.Context, Delivery, *PartialCancelMarketOrderAckEvent) error {
	return nil
}
func (NopHandler) OnPartialCancelMarketOrderReject(context.Context, Delivery, *PartialCancelMarketOrderRejectEvent) error {
	return nil
}
func (NopHandler) OnFullCancelMarketOrderAck(context.Context, Delivery, *FullCancelMarketOrderAckEvent) error {
	return nil
}
func (NopHandler) OnFullCancelMarketOrderReject(context.Context, Delivery, *FullCancelMarketOrderRejectEvent) error {
	return nil
}
func (NopHandler) OnTriggerExpiredLimitOrder(context.Context, Delivery, *TriggerExpiredLimitOrderEvent) error {
	return nil
}
func (NopHandler) OnAckTriggerExpiredLimitOrder(context.Context, Delivery, *AckTriggerExpiredLimitOrderEvent) error {
	return nil
}
func (NopHandler) OnRejectTriggerExpiredLimitOrder(context.Context, Delivery, *RejectTriggerExpiredLimitOrderEvent) error {
	return nil
}
