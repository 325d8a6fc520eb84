package domain

import (
	"context"
	"fmt"
	"sync"
)

// PriceSource fetches the latest market price of an instrument by ISIN.
// Implementations may block; Instrument.FetchCurrentPrice runs them off the caller's goroutine.
type PriceSource interface {
	Name() string
	LatestPrice(ctx context.Context, isin string) (float64, error)
}

// Instrument is one tracked ETF with its purchase lots and the last fetched price.
type Instrument struct {
	Name string
	ISIN string

	mu           sync.RWMutex
	transactions []Transaction
	currentPrice float64
}

// NewInstrument creates an instrument holding a copy of txs.
func NewInstrument(name, isin string, txs []Transaction) *Instrument {
	cp := make([]Transaction, len(txs))
	copy(cp, txs)
	return &Instrument{Name: name, ISIN: isin, transactions: cp}
}

// InstrumentFromConfig parses one entry of the etfs list.
func InstrumentFromConfig(path string, data map[string]any) (*Instrument, error) {
	name, err := stringField(path, data, keyName)
	if err != nil {
		return nil, err
	}
	isin, err := stringField(path, data, keyISIN)
	if err != nil {
		return nil, err
	}

	raw, ok := data[keyTransactions]
	if !ok || raw == nil {
		return NewInstrument(name, isin, nil), nil
	}
	entries, ok := raw.([]any)
	if !ok {
		return nil, &ParseError{Path: path + "." + keyTransactions, Reason: fmt.Sprintf("expected list, got %T", raw)}
	}

	txs := make([]Transaction, 0, len(entries))
	for i, e := range entries {
		txPath := fmt.Sprintf("%s.%s[%d]", path, keyTransactions, i)
		m, ok := e.(map[string]any)
		if !ok {
			return nil, &ParseError{Path: txPath, Reason: fmt.Sprintf("expected mapping, got %T", e)}
		}
		tx, err := TransactionFromConfig(txPath, m)
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	return NewInstrument(name, isin, txs), nil
}

// Transactions returns a copy of the purchase lots.
func (i *Instrument) Transactions() []Transaction {
	i.mu.RLock()
	defer i.mu.RUnlock()
	out := make([]Transaction, len(i.transactions))
	copy(out, i.transactions)
	return out
}

// AddTransaction appends a purchase lot.
func (i *Instrument) AddTransaction(tx Transaction) {
	i.mu.Lock()
	i.transactions = append(i.transactions, tx)
	i.mu.Unlock()
}

// CurrentPrice is the price of the last successful fetch, 0 before any.
func (i *Instrument) CurrentPrice() float64 {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.currentPrice
}

// SetCurrentPrice overwrites the cached price.
func (i *Instrument) SetCurrentPrice(price float64) {
	i.mu.Lock()
	i.currentPrice = price
	i.mu.Unlock()
}

// CostBasis is the total purchase value of all lots.
func (i *Instrument) CostBasis() float64 {
	i.mu.RLock()
	defer i.mu.RUnlock()
	var total float64
	for _, tx := range i.transactions {
		total += tx.PurchasePrice * tx.Amount
	}
	return total
}

// UnrealizedGain is the gain of all lots against the cached price.
func (i *Instrument) UnrealizedGain() float64 {
	return i.UnrealizedGainAt(i.CurrentPrice())
}

// UnrealizedGainAt is the gain of all lots against price. A zero price is taken literally.
func (i *Instrument) UnrealizedGainAt(price float64) float64 {
	i.mu.RLock()
	defer i.mu.RUnlock()
	var gain float64
	for _, tx := range i.transactions {
		gain += (price - tx.PurchasePrice) * tx.Amount
	}
	return gain
}

// SharesHeld sums the lot amounts.
func (i *Instrument) SharesHeld() float64 {
	i.mu.RLock()
	defer i.mu.RUnlock()
	var shares float64
	for _, tx := range i.transactions {
		shares += tx.Amount
	}
	return shares
}

// PositionValue values all held shares at the cached price.
func (i *Instrument) PositionValue() float64 {
	return i.PositionValueOf(i.SharesHeld())
}

// PositionValueOf values the given share count at the cached price.
func (i *Instrument) PositionValueOf(shares float64) float64 {
	return shares * i.CurrentPrice()
}

type fetchResult struct {
	price float64
	err   error
}

// FetchCurrentPrice asks src for the latest price on a worker goroutine and waits
// for it or for ctx. The cached price is only overwritten by a fetch that
// succeeds before ctx ends.
func (i *Instrument) FetchCurrentPrice(ctx context.Context, src PriceSource) (float64, error) {
	done := make(chan fetchResult, 1)
	go func() {
		p, err := src.LatestPrice(ctx, i.ISIN)
		done <- fetchResult{price: p, err: err}
	}()

	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%w: %s: %v", ErrFetchFailed, i.ISIN, ctx.Err())
	case r := <-done:
		if r.err != nil {
			return 0, r.err
		}
		if ctx.Err() != nil {
			return 0, fmt.Errorf("%w: %s: %v", ErrFetchFailed, i.ISIN, ctx.Err())
		}
		i.SetCurrentPrice(r.price)
		return r.price, nil
	}
}
