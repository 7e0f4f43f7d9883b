package event

import "context"

// Expiry workflow events. The cancellation supervisor publishes the trigger
// on the symbol topic when a tracked order outlives its timeout; the exchange
// adapter answers on the supervisor's unicast topics.

// TriggerExpiredLimitOrderEvent asks the exchange adapter to expire a limit
// order whose timeout elapsed without a terminal event.
type TriggerExpiredLimitOrderEvent struct {
	Meta
	Symbol string `json:"symbol"`
	XID    uint64 `json:"xid"`
}

func (e *TriggerExpiredLimitOrderEvent) Kind() Kind { return KindTriggerExpiredLimitOrder }
func (e *TriggerExpiredLimitOrderEvent) accept(ctx context.Context, h Handler, d Delivery) error {
	return h.OnTriggerExpiredLimitOrder(ctx, d, e)
}

// AckTriggerExpiredLimitOrderEvent confirms the adapter accepted an
// expiration trigger and will emit the expiry.
type AckTriggerExpiredLimitOrderEvent struct {
	Meta
	Symbol string `json:"symbol"`
	XID    uint64 `json:"xid"`
}

func (e *AckTriggerExpiredLimitOrderEvent) Kind() Kind { return KindAckTriggerExpiredLimitOrder }
func (e *AckTriggerExpiredLimitOrderEvent) accept(ctx context.Context, h Handler, d Delivery) error {
	return h.OnAckTriggerExpiredLimitOrder(ctx, d, e)
}

// RejectTriggerExpiredLimitOrderEvent refuses an expiration trigger, usually
// because the order terminated between the probe firing and the trigger
// reaching the adapter.
type RejectTriggerExpiredLimitOrderEvent struct {
	Meta
	Symbol string `json:"symbol"`
	XID    uint64 `json:"xid"`
	Reason string `json:"reason"`
}

func (e *RejectTriggerExpiredLimitOrderEvent) Kind() Kind { return KindRejectTriggerExpiredLimitOrder }
func (e *RejectTriggerExpiredLimitOrderEvent) accept(ctx context.Context, h Handler, d Delivery) error {
	return h.OnRejectTriggerExpiredLimitOrder(ctx, d, e)
}
