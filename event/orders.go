package event

import (
	"context"

	"github.com/GoCodeAlone/simbus/fixed"
	"github.com/GoCodeAlone/simbus/simtime"
)

// Order request events. Agents publish these on the exchange adapter's
// per-symbol topics; cid is the client-assigned order id, xid the
// exchange-assigned one (known only after the ack).

// LimitOrderEvent requests a new resting limit order.
type LimitOrderEvent struct {
	Meta
	Symbol   string           `json:"symbol"`
	CID      uint64           `json:"cid"`
	Side     fixed.Side       `json:"side"`
	Price    fixed.Price      `json:"price"`
	Quantity fixed.Quantity   `json:"quantity"`
	Timeout  simtime.Duration `json:"timeout"`
}

func (e *LimitOrderEvent) Kind() Kind { return KindLimitOrder }
func (e *LimitOrderEvent) accept(ctx context.Context, h Handler, d Delivery) error {
	return h.OnLimitOrder(ctx, d, e)
}

// MarketOrderEvent requests an immediate-execution market order.
type MarketOrderEvent struct {
	Meta
	Symbol   string         `json:"symbol"`
	CID      uint64         `json:"cid"`
	Side     fixed.Side     `json:"side"`
	Quantity fixed.Quantity `json:"quantity"`
}

func (e *MarketOrderEvent) Kind() Kind { return KindMarketOrder }
func (e *MarketOrderEvent) accept(ctx context.Context, h Handler, d Delivery) error {
	return h.OnMarketOrder(ctx, d, e)
}

// PartialCancelLimitOrderEvent requests a quantity reduction of a resting
// limit order.
type PartialCancelLimitOrderEvent struct {
	Meta
	Symbol   string         `json:"symbol"`
	XID      uint64         `json:"xid"`
	Quantity fixed.Quantity `json:"quantity"`
}

func (e *PartialCancelLimitOrderEvent) Kind() Kind { return KindPartialCancelLimitOrder }
func (e *PartialCancelLimitOrderEvent) accept(ctx context.Context, h Handler, d Delivery) error {
	return h.OnPartialCancelLimitOrder(ctx, d, e)
}

// FullCancelLimitOrderEvent requests removal of a resting limit order.
type FullCancelLimitOrderEvent struct {
	Meta
	Symbol string `json:"symbol"`
	XID    uint64 `json:"xid"`
}

func (e *FullCancelLimitOrderEvent) Kind() Kind { return KindFullCancelLimitOrder }
func (e *FullCancelLimitOrderEvent) accept(ctx context.Context, h Handler, d Delivery) error {
	return h.OnFullCancelLimitOrder(ctx, d, e)
}

// PartialCancelMarketOrderEvent requests a quantity reduction of a pending
// market order.
type PartialCancelMarketOrderEvent struct {
	Meta
	Symbol   string         `json:"symbol"`
	XID      uint64         `json:"xid"`
	Quantity fixed.Quantity `json:"quantity"`
}

func (e *PartialCancelMarketOrderEvent) Kind() Kind { return KindPartialCancelMarketOrder }
func (e *PartialCancelMarketOrderEvent) accept(ctx context.Context, h Handler, d Delivery) error {
	return h.OnPartialCancelMarketOrder(ctx, d, e)
}

// FullCancelMarketOrderEvent requests removal of a pending market order.
type FullCancelMarketOrderEvent struct {
	Meta
	Symbol string `json:"symbol"`
	XID    uint64 `json:"xid"`
}

func (e *FullCancelMarketOrderEvent) Kind() Kind { return KindFullCancelMarketOrder }
func (e *FullCancelMarketOrderEvent) accept(ctx context.Context, h Handler, d Delivery) error {
	return h.OnFullCancelMarketOrder(ctx, d, e)
}
