// Package fixed provides the fixed-point price and quantity representation
// shared by all market events. Prices and quantities travel on the bus as
// scaled integers; floats appear only at the edges (strategy parameters,
// display, config).
package fixed

import "math"

// Scale factors for the integer wire representation.
const (
	PriceScaleFactor    int64 = 10000
	QuantityScaleFactor int64 = 10000

	// BasisPointDivisor converts basis points to a fraction.
	BasisPointDivisor int64 = 10000
)

// Price is a fixed-point price scaled by PriceScaleFactor.
type Price int64

// Quantity is a fixed-point quantity scaled by QuantityScaleFactor.
type Quantity int64

// PriceFromFloat converts a float price to its fixed-point representation,
// rounding to the nearest representable tick.
func PriceFromFloat(f float64) Price {
	return Price(math.Round(f * float64(PriceScaleFactor)))
}

// Float returns the floating-point value of p.
func (p Price) Float() float64 { return float64(p) / float64(PriceScaleFactor) }

// QuantityFromFloat converts a float quantity to its fixed-point
// representation, rounding to the nearest representable unit.
func QuantityFromFloat(f float64) Quantity {
	return Quantity(math.Round(f * float64(QuantityScaleFactor)))
}

// Float returns the floating-point value of q.
func (q Quantity) Float() float64 { return float64(q) / float64(QuantityScaleFactor) }

// ApplyBasisPoints returns p shifted by the given signed basis points,
// rounded to the nearest tick. A positive bps moves the price up.
func (p Price) ApplyBasisPoints(bps int64) Price {
	shifted := float64(p) * (1 + float64(bps)/float64(BasisPointDivisor))
	return Price(math.Round(shifted))
}

// Side identifies which side of the book an order or fill belongs to.
type Side int8

const (
	Buy Side = iota
	Sell
)

func (s Side) String() string {
	if s == Buy {
		return "buy"
	}
	return "sell"
}

// Level is one price level of an order book snapshot.
type Level struct {
	Price    Price    `json:"price"`
	Quantity Quantity `json:"quantity"`
}
