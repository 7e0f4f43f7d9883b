package market

import (
	"context"

	"github.com/GoCodeAlone/simbus/bus"
	"github.com/GoCodeAlone/simbus/event"
)

// L2Callback receives every book snapshot the collector observes.
type L2Callback func(d event.Delivery, book *event.LTwoOrderBookEvent)

// L2Collector subscribes to one symbol's book snapshots and hands them to a
// user callback. It never publishes.
type L2Collector struct {
	event.NopHandler

	symbol   string
	callback L2Callback
}

// NewL2Collector creates a collector for the given symbol.
func NewL2Collector(symbol string, cb L2Callback) *L2Collector {
	return &L2Collector{symbol: symbol, callback: cb}
}

// SetupSubscriptions registers for the symbol's snapshot topic.
func (c *L2Collector) SetupSubscriptions(rt *bus.Runtime) error {
	return rt.Subscribe(event.KindLTwoOrderBook.SymbolTopic(c.symbol))
}

// OnLTwoOrderBook forwards the snapshot to the callback.
func (c *L2Collector) OnLTwoOrderBook(_ context.Context, d event.Delivery, e *event.LTwoOrderBookEvent) error {
	if c.callback != nil {
		c.callback(d, e)
	}
	return nil
}
