package service

import (
	"github.com/shopspring/decimal"

	"etfmon/internal/domain"
)

// Position is the derived view of one instrument: what the display layer shows.
type Position struct {
	Name          string          `json:"name"`
	ISIN          string          `json:"isin"`
	Price         decimal.Decimal `json:"price"`
	HasQuote      bool            `json:"has_quote"`
	Shares        float64         `json:"shares"`
	Lots          int             `json:"lots"`
	PurchaseValue decimal.Decimal `json:"purchase_value"`
	CurrentValue  decimal.Decimal `json:"current_value"`
	Gain          decimal.Decimal `json:"gain"`
}

// Valuate computes positions for every instrument still in the portfolio.
// Prices come from snap when it has the instrument, otherwise from the
// instrument's cached price.
func Valuate(p *domain.Portfolio, snap domain.Snapshot) []Position {
	instruments := p.Instruments()
	out := make([]Position, 0, len(instruments))
	for _, inst := range instruments {
		out = append(out, ValuateInstrument(inst, snap))
	}
	return out
}

// ValuateInstrument computes the position of a single instrument.
func ValuateInstrument(inst *domain.Instrument, snap domain.Snapshot) Position {
	price, ok := snap.Price(inst.Name)
	if !ok {
		price = inst.CurrentPrice()
	}
	shares := inst.SharesHeld()
	return Position{
		Name:          inst.Name,
		ISIN:          inst.ISIN,
		Price:         cents(price),
		HasQuote:      ok,
		Shares:        shares,
		Lots:          len(inst.Transactions()),
		PurchaseValue: cents(inst.CostBasis()),
		CurrentValue:  cents(shares * price),
		Gain:          cents(inst.UnrealizedGainAt(price)),
	}
}

// Totals sums purchase value, current value and gain over positions.
func Totals(positions []Position) (purchase, current, gain decimal.Decimal) {
	for _, pos := range positions {
		purchase = purchase.Add(pos.PurchaseValue)
		current = current.Add(pos.CurrentValue)
		gain = gain.Add(pos.Gain)
	}
	return purchase, current, gain
}

func cents(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}
