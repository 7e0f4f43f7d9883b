package event

import (
	"context"

	"github.com/GoCodeAlone/simbus/fixed"
	"github.com/GoCodeAlone/simbus/simtime"
)

// LTwoOrderBookEvent is a level-2 order book snapshot for one symbol.
type LTwoOrderBookEvent struct {
	Meta
	Symbol string `json:"symbol"`

	// ExchangeTS is the venue's own timestamp for the snapshot, when known.
	ExchangeTS *simtime.Timestamp `json:"exchangeTs,omitempty"`

	// IngressTS is when the snapshot entered the simulation.
	IngressTS simtime.Timestamp `json:"ingressTs"`

	Bids []fixed.Level `json:"bids"`
	Asks []fixed.Level `json:"asks"`
}

func (e *LTwoOrderBookEvent) Kind() Kind { return KindLTwoOrderBook }
func (e *LTwoOrderBookEvent) accept(ctx context.Context, h Handler, d Delivery) error {
	return h.OnLTwoOrderBook(ctx, d, e)
}

// TradeEvent reports a match between a resting maker order and an aggressing
// taker order.
type TradeEvent struct {
	Meta
	Symbol         string         `json:"symbol"`
	MakerCID       uint64         `json:"makerCid"`
	TakerCID       uint64         `json:"takerCid"`
	MakerXID       uint64         `json:"makerXid"`
	TakerXID       uint64         `json:"takerXid"`
	Price          fixed.Price    `json:"price"`
	Qty            fixed.Quantity `json:"qty"`
	MakerSide      fixed.Side     `json:"makerSide"`
	MakerExhausted bool           `json:"makerExhausted"`
}

func (e *TradeEvent) Kind() Kind { return KindTrade }
func (e *TradeEvent) accept(ctx context.Context, h Handler, d Delivery) error {
	return h.OnTrade(ctx, d, e)
}
