package domain

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	price float64
	err   error
	delay time.Duration
}

func (s *stubSource) Name() string { return "stub" }

func (s *stubSource) LatestPrice(ctx context.Context, isin string) (float64, error) {
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	return s.price, s.err
}

func TestInstrumentEmptyCalculations(t *testing.T) {
	inst := NewInstrument("A", "X1", nil)
	inst.SetCurrentPrice(42)

	assert.Zero(t, inst.CostBasis())
	assert.Zero(t, inst.SharesHeld())
	for _, p := range []float64{0, 1, 99.5, 1e6} {
		assert.Zero(t, inst.UnrealizedGainAt(p))
	}
	assert.Zero(t, inst.UnrealizedGain())
	assert.Zero(t, inst.PositionValue())
}

func TestInstrumentSingleLot(t *testing.T) {
	inst := NewInstrument("A", "X1", []Transaction{{Amount: 10, PurchasePrice: 100, PurchaseDate: "2023-01-01"}})

	assert.Equal(t, 1000.0, inst.CostBasis())
	assert.Equal(t, 10.0, inst.SharesHeld())

	inst.SetCurrentPrice(120)
	assert.Equal(t, 200.0, inst.UnrealizedGain())
	assert.Equal(t, 1200.0, inst.PositionValue())
	assert.Equal(t, 600.0, inst.PositionValueOf(5))
}

func TestInstrumentGainAtZeroIsLiteral(t *testing.T) {
	inst := NewInstrument("A", "X1", []Transaction{{Amount: 2, PurchasePrice: 50}})
	inst.SetCurrentPrice(60)

	assert.Equal(t, -100.0, inst.UnrealizedGainAt(0))
	assert.Equal(t, 20.0, inst.UnrealizedGain())
}

func TestInstrumentMultipleLots(t *testing.T) {
	inst := NewInstrument("A", "X1", []Transaction{
		{Amount: 1.5, PurchasePrice: 80},
		{Amount: 2.5, PurchasePrice: 120},
	})
	inst.SetCurrentPrice(100)

	assert.InDelta(t, 420.0, inst.CostBasis(), 1e-9)
	assert.InDelta(t, 4.0, inst.SharesHeld(), 1e-9)
	assert.InDelta(t, -20.0, inst.UnrealizedGain(), 1e-9)
	assert.InDelta(t, inst.SharesHeld()*inst.CurrentPrice(), inst.PositionValue(), 1e-9)
}

func TestFetchCurrentPriceStoresOnSuccess(t *testing.T) {
	inst := NewInstrument("A", "X1", nil)
	p, err := inst.FetchCurrentPrice(context.Background(), &stubSource{price: 101.25})
	require.NoError(t, err)
	assert.Equal(t, 101.25, p)
	assert.Equal(t, 101.25, inst.CurrentPrice())
}

func TestFetchCurrentPriceKeepsPriceOnFailure(t *testing.T) {
	inst := NewInstrument("A", "X1", nil)
	inst.SetCurrentPrice(50)

	_, err := inst.FetchCurrentPrice(context.Background(), &stubSource{err: ErrBadIdentifier})
	require.ErrorIs(t, err, ErrBadIdentifier)
	assert.Equal(t, 50.0, inst.CurrentPrice())
}

func TestFetchCurrentPriceTimeout(t *testing.T) {
	inst := NewInstrument("A", "X1", nil)
	inst.SetCurrentPrice(50)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := inst.FetchCurrentPrice(ctx, &stubSource{price: 99, delay: 200 * time.Millisecond})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFetchFailed))

	// the late result must not leak into the cache
	time.Sleep(250 * time.Millisecond)
	assert.Equal(t, 50.0, inst.CurrentPrice())
}

func TestTransactionsReturnsCopy(t *testing.T) {
	inst := NewInstrument("A", "X1", []Transaction{{Amount: 1, PurchasePrice: 1}})
	txs := inst.Transactions()
	txs[0].Amount = 99
	assert.Equal(t, 1.0, inst.Transactions()[0].Amount)
}

func TestNewTransactionValidation(t *testing.T) {
	_, err := NewTransaction(0, 10, "")
	assert.ErrorIs(t, err, ErrInvalidCommand)

	_, err = NewTransaction(1, -1, "")
	assert.ErrorIs(t, err, ErrInvalidCommand)

	tx, err := NewTransaction(3, 0, " 2024-02-01 ")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-01", tx.PurchaseDate)
}
