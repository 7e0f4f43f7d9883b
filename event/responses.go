package event

import (
	"context"

	"github.com/GoCodeAlone/simbus/fixed"
	"github.com/GoCodeAlone/simbus/simtime"
)

// Exchange response events. The adapter publishes these globally (broadcast
// topic) and agents filter on cid/xid.

// LimitOrderAckEvent acknowledges acceptance of a limit order and assigns its
// exchange order id. OriginalTimeout echoes the requested lifetime so the
// cancellation supervisor can schedule its expiration probe.
type LimitOrderAckEvent struct {
	Meta
	Symbol          string           `json:"symbol"`
	CID             uint64           `json:"cid"`
	XID             uint64           `json:"xid"`
	Price           fixed.Price      `json:"price"`
	Quantity        fixed.Quantity   `json:"quantity"`
	OriginalTimeout simtime.Duration `json:"originalTimeout"`
}

func (e *LimitOrderAckEvent) Kind() Kind { return KindLimitOrderAck }
func (e *LimitOrderAckEvent) accept(ctx context.Context, h Handler, d Delivery) error {
	return h.OnLimitOrderAck(ctx, d, e)
}

// MarketOrderAckEvent acknowledges acceptance of a market order.
type MarketOrderAckEvent struct {
	Meta
	Symbol string `json:"symbol"`
	CID    uint64 `json:"cid"`
	XID    uint64 `json:"xid"`
}

func (e *MarketOrderAckEvent) Kind() Kind { return KindMarketOrderAck }
func (e *MarketOrderAckEvent) accept(ctx context.Context, h Handler, d Delivery) error {
	return h.OnMarketOrderAck(ctx, d, e)
}

// LimitOrderRejectEvent refuses a limit order request.
type LimitOrderRejectEvent struct {
	Meta
	Symbol string `json:"symbol"`
	CID    uint64 `json:"cid"`
	Reason string `json:"reason"`
}

func (e *LimitOrderRejectEvent) Kind() Kind { return KindLimitOrderReject }
func (e *LimitOrderRejectEvent) accept(ctx context.Context, h Handler, d Delivery) error {
	return h.OnLimitOrderReject(ctx, d, e)
}

// MarketOrderRejectEvent refuses a market order request.
type MarketOrderRejectEvent struct {
	Meta
	Symbol string `json:"symbol"`
	CID    uint64 `json:"cid"`
	Reason string `json:"reason"`
}

func (e *MarketOrderRejectEvent) Kind() Kind { return KindMarketOrderReject }
func (e *MarketOrderRejectEvent) accept(ctx context.Context, h Handler, d Delivery) error {
	return h.OnMarketOrderReject(ctx, d, e)
}

// PartialFillLimitOrderEvent reports a partial execution of a resting limit
// order; Remaining is the quantity still on the book.
type PartialFillLimitOrderEvent struct {
	Meta
	Symbol    string         `json:"symbol"`
	CID       uint64         `json:"cid"`
	XID       uint64         `json:"xid"`
	Price     fixed.Price    `json:"price"`
	Quantity  fixed.Quantity `json:"quantity"`
	Remaining fixed.Quantity `json:"remaining"`
}

func (e *PartialFillLimitOrderEvent) Kind() Kind { return KindPartialFillLimitOrder }
func (e *PartialFillLimitOrderEvent) accept(ctx context.Context, h Handler, d Delivery) error {
	return h.OnPartialFillLimitOrder(ctx, d, e)
}

// FullFillLimitOrderEvent reports the final execution of a limit order. This
// is a terminal event for the order.
type FullFillLimitOrderEvent struct {
	Meta
	Symbol   string         `json:"symbol"`
	CID      uint64         `json:"cid"`
	XID      uint64         `json:"xid"`
	Price    fixed.Price    `json:"price"`
	Quantity fixed.Quantity `json:"quantity"`
}

func (e *FullFillLimitOrderEvent) Kind() Kind { return KindFullFillLimitOrder }
func (e *FullFillLimitOrderEvent) accept(ctx context.Context, h Handler, d Delivery) error {
	return h.OnFullFillLimitOrder(ctx, d, e)
}

// PartialFillMarketOrderEvent reports a partial execution of a market order.
type PartialFillMarketOrderEvent struct {
	Meta
	Symbol    string         `json:"symbol"`
	CID       uint64         `json:"cid"`
	XID       uint64         `json:"xid"`
	Price     fixed.Price    `json:"price"`
	Quantity  fixed.Quantity `json:"quantity"`
	Remaining fixed.Quantity `json:"remaining"`
}

func (e *PartialFillMarketOrderEvent) Kind() Kind { return KindPartialFillMarketOrder }
func (e *PartialFillMarketOrderEvent) accept(ctx context.Context, h Handler, d Delivery) error {
	return h.OnPartialFillMarketOrder(ctx, d, e)
}

// FullFillMarketOrderEvent reports the final execution of a market order.
type FullFillMarketOrderEvent struct {
	Meta
	Symbol   string         `json:"symbol"`
	CID      uint64         `json:"cid"`
	XID      uint64         `json:"xid"`
	Price    fixed.Price    `json:"price"`
	Quantity fixed.Quantity `json:"quantity"`
}

func (e *FullFillMarketOrderEvent) Kind() Kind { return KindFullFillMarketOrder }
func (e *FullFillMarketOrderEvent) accept(ctx context.Context, h Handler, d Delivery) error {
	return h.OnFullFillMarketOrder(ctx, d, e)
}

// LimitOrderExpiredEvent reports that the venue expired a resting limit
// order. Terminal for the order.
type LimitOrderExpiredEvent struct {
	Meta
	Symbol string `json:"symbol"`
	CID    uint64 `json:"cid"`
	XID    uint64 `json:"xid"`
}

func (e *LimitOrderExpiredEvent) Kind() Kind { return KindLimitOrderExpired }
func (e *LimitOrderExpiredEvent) accept(ctx context.Context, h Handler, d Delivery) error {
	return h.OnLimitOrderExpired(ctx, d, e)
}

// MarketOrderExpiredEvent reports that the venue expired a market order.
type MarketOrderExpiredEvent struct {
	Meta
	Symbol string `json:"symbol"`
	CID    uint64 `json:"cid"`
	XID    uint64 `json:"xid"`
}

func (e *MarketOrderExpiredEvent) Kind() Kind { return KindMarketOrderExpired }
func (e *MarketOrderExpiredEvent) accept(ctx context.Context, h Handler, d Delivery) error {
	return h.OnMarketOrderExpired(ctx, d, e)
}

// PartialCancelLimitOrderAckEvent confirms a quantity reduction; Remaining is
// what is left on the book.
type PartialCancelLimitOrderAckEvent struct {
	Meta
	Symbol    string         `json:"symbol"`
	XID       uint64         `json:"xid"`
	Remaining fixed.Quantity `json:"remaining"`
}

func (e *PartialCancelLimitOrderAckEvent) Kind() Kind { return KindPartialCancelLimitOrderAck }
func (e *PartialCancelLimitOrderAckEvent) accept(ctx context.Context, h Handler, d Delivery) error {
	return h.OnPartialCancelLimitOrderAck(ctx, d, e)
}

// PartialCancelLimitOrderRejectEvent refuses a partial cancel request.
type PartialCancelLimitOrderRejectEvent struct {
	Meta
	Symbol string `json:"symbol"`
	XID    uint64 `json:"xid"`
	Reason string `json:"reason"`
}

func (e *PartialCancelLimitOrderRejectEvent) Kind() Kind { return KindPartialCancelLimitOrderReject }
func (e *PartialCancelLimitOrderRejectEvent) accept(ctx context.Context, h Handler, d Delivery) error {
	return h.OnPartialCancelLimitOrderReject(ctx, d, e)
}

// FullCancelLimitOrderAckEvent confirms removal of a resting limit order.
// Terminal for the order.
type FullCancelLimitOrderAckEvent struct {
	Meta
	Symbol string `json:"symbol"`
	XID    uint64 `json:"xid"`
}

func (e *FullCancelLimitOrderAckEvent) Kind() Kind { return KindFullCancelLimitOrderAck }
func (e *FullCancelLimitOrderAckEvent) accept(ctx context.Context, h Handler, d Delivery) error {
	return h.OnFullCancelLimitOrderAck(ctx, d, e)
}

// FullCancelLimitOrderRejectEvent refuses a full cancel request, typically
// because the order already terminated.
type FullCancelLimitOrderRejectEvent struct {
	Meta
	Symbol string `json:"symbol"`
	XID    uint64 `json:"xid"`
	Reason string `json:"reason"`
}

func (e *FullCancelLimitOrderRejectEvent) Kind() Kind { return KindFullCancelLimitOrderReject }
func (e *FullCancelLimitOrderRejectEvent) accept(ctx context.Context, h Handler, d Delivery) error {
	return h.OnFullCancelLimitOrderReject(ctx, d, e)
}

// PartialCancelMarketOrderAckEvent confirms a market order quantity
// reduction.
type PartialCancelMarketOrderAckEvent struct {
	Meta
	Symbol    string         `json:"symbol"`
	XID       uint64         `json:"xid"`
	Remaining fixed.Quantity `json:"remaining"`
}

func (e *PartialCancelMarketOrderAckEvent) Kind() Kind { return KindPartialCancelMarketOrderAck }
func (e *PartialCancelMarketOrderAckEvent) accept(ctx context.Context, h Handler, d Delivery) error {
	return h.OnPartialCancelMarketOrderAck(ctx, d, e)
}

// PartialCancelMarketOrderRejectEvent refuses a market order partial cancel.
type PartialCancelMarketOrderRejectEvent struct {
	Meta
	Symbol string `json:"symbol"`
	XID    uint64 `json:"xid"`
	Reason string `json:"reason"`
}

func (e *PartialCancelMarketOrderRejectEvent) Kind() Kind { return KindPartialCancelMarketOrderReject }
func (e *PartialCancelMarketOrderRejectEvent) accept(ctx context.Context, h Handler, d Delivery) error {
	return h.OnPartialCancelMarketOrderReject(ctx, d, e)
}

// FullCancelMarketOrderAckEvent confirms removal of a market order.
type FullCancelMarketOrderAckEvent struct {
	Meta
	Symbol string `json:"symbol"`
	XID    uint64 `json:"xid"`
}

func (e *FullCancelMarketOrderAckEvent) Kind() Kind { return KindFullCancelMarketOrderAck }
func (e *FullCancelMarketOrderAckEvent) accept(ctx context.Context, h Handler, d Delivery) error {
	return h.OnFullCancelMarketOrderAck(ctx, d, e)
}

// FullCancelMarketOrderRejectEvent refuses a market order full cancel.
type FullCancelMarketOrderRejectEvent struct {
	Meta
	Symbol string `json:"symbol"`
	XID    uint64 `json:"xid"`
	Reason string `json:"reason"`
}

func (e *FullCancelMarketOrderRejectEvent) Kind() Kind { return KindFullCancelMarketOrderReject }
func (e *FullCancelMarketOrderRejectEvent) accept(ctx context.Context, h Handler, d Delivery) error {
	return h.OnFullCancelMarketOrderReject(ctx, d, e)
}
