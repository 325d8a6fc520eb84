package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromConfigSingleETF(t *testing.T) {
	doc := map[string]any{
		"etfs": []any{
			map[string]any{
				"name": "A",
				"isin": "X1",
				"transactions": []any{
					map[string]any{"amount": 5, "purchase_price": 10, "purchase_date": "2023-01-01"},
				},
			},
		},
	}

	p, err := FromConfig(doc, DefaultMarketHours())
	require.NoError(t, err)

	list := p.Instruments()
	require.Len(t, list, 1)
	assert.Equal(t, "A", list[0].Name)
	assert.Equal(t, "X1", list[0].ISIN)

	txs := list[0].Transactions()
	require.Len(t, txs, 1)
	assert.Equal(t, 5.0, txs[0].Amount)
	assert.Equal(t, 10.0, txs[0].PurchasePrice)
	assert.Equal(t, "2023-01-01", txs[0].PurchaseDate)
}

func TestFromConfigMissingKeys(t *testing.T) {
	p, err := FromConfig(map[string]any{}, DefaultMarketHours())
	require.NoError(t, err)
	assert.Zero(t, p.Len())

	p, err = FromConfig(map[string]any{
		"etfs": []any{map[string]any{"name": "A", "isin": "X1"}},
	}, DefaultMarketHours())
	require.NoError(t, err)
	require.Equal(t, 1, p.Len())
	assert.Empty(t, p.Instruments()[0].Transactions())
}

func TestFromConfigYAMLTimestamp(t *testing.T) {
	doc := map[string]any{
		"etfs": []any{map[string]any{
			"name": "A", "isin": "X1",
			"transactions": []any{map[string]any{
				"amount": 1.5, "purchase_price": 99.9,
				"purchase_date": time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
			}},
		}},
	}
	p, err := FromConfig(doc, DefaultMarketHours())
	require.NoError(t, err)
	assert.Equal(t, "2024-03-04", p.Instruments()[0].Transactions()[0].PurchaseDate)
}

func TestFromConfigRejectsMalformed(t *testing.T) {
	tests := []struct {
		name string
		doc  map[string]any
		path string
	}{
		{
			name: "etfs not a list",
			doc:  map[string]any{"etfs": "nope"},
			path: "etfs",
		},
		{
			name: "missing isin",
			doc:  map[string]any{"etfs": []any{map[string]any{"name": "A"}}},
			path: "etfs[0].isin",
		},
		{
			name: "amount not a number",
			doc: map[string]any{"etfs": []any{map[string]any{
				"name": "A", "isin": "X1",
				"transactions": []any{map[string]any{"amount": "five", "purchase_price": 1, "purchase_date": "d"}},
			}}},
			path: "etfs[0].transactions[0].amount",
		},
		{
			name: "negative price",
			doc: map[string]any{"etfs": []any{map[string]any{
				"name": "A", "isin": "X1",
				"transactions": []any{map[string]any{"amount": 1, "purchase_price": -1, "purchase_date": "d"}},
			}}},
			path: "etfs[0].transactions[0].purchase_price",
		},
		{
			name: "missing date",
			doc: map[string]any{"etfs": []any{map[string]any{
				"name": "A", "isin": "X1",
				"transactions": []any{map[string]any{"amount": 1, "purchase_price": 1}},
			}}},
			path: "etfs[0].transactions[0].purchase_date",
		},
		{
			name: "duplicate name",
			doc: map[string]any{"etfs": []any{
				map[string]any{"name": "A", "isin": "X1"},
				map[string]any{"name": "A", "isin": "X2"},
			}},
			path: "etfs[1].name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromConfig(tt.doc, DefaultMarketHours())
			var pe *ParseError
			require.True(t, errors.As(err, &pe), "expected ParseError, got %v", err)
			assert.Equal(t, tt.path, pe.Path)
		})
	}
}

func TestMarketHoursIsOpen(t *testing.T) {
	h := MarketHours{OpenHour: 8, CloseHour: 22, Workdays: 5, Location: time.UTC}

	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"monday morning", time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC), true},
		{"monday before open", time.Date(2024, 1, 1, 7, 59, 0, 0, time.UTC), false},
		{"friday evening", time.Date(2024, 1, 5, 21, 59, 0, 0, time.UTC), true},
		{"friday close", time.Date(2024, 1, 5, 22, 0, 0, 0, time.UTC), false},
		{"saturday noon", time.Date(2024, 1, 6, 12, 0, 0, 0, time.UTC), false},
		{"sunday noon", time.Date(2024, 1, 7, 12, 0, 0, 0, time.UTC), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, h.IsOpen(tt.at))
		})
	}

	six := h
	six.Workdays = 6
	assert.True(t, six.IsOpen(time.Date(2024, 1, 6, 12, 0, 0, 0, time.UTC)))
}

func TestPortfolioFindAndRemove(t *testing.T) {
	a := NewInstrument("Alpha", "X1", nil)
	b := NewInstrument("Beta", "X2", nil)
	p := NewPortfolio(DefaultMarketHours(), a, b)

	got, ok := p.Find("X2")
	require.True(t, ok)
	assert.Same(t, b, got)

	got, ok = p.Find("Alpha")
	require.True(t, ok)
	assert.Same(t, a, got)

	_, ok = p.Find("nope")
	assert.False(t, ok)

	assert.True(t, p.Remove("X1"))
	assert.False(t, p.Remove("X1"))
	assert.Equal(t, 1, p.Len())
}

func TestPortfolioAddTransactionUnknown(t *testing.T) {
	a := NewInstrument("Alpha", "X1", []Transaction{{Amount: 1, PurchasePrice: 1}})
	p := NewPortfolio(DefaultMarketHours(), a)

	_, err := p.AddTransaction("missing", Transaction{Amount: 1})
	require.ErrorIs(t, err, ErrInstrumentNotFound)
	assert.Len(t, a.Transactions(), 1)

	_, err = p.AddTransaction("Alpha", Transaction{Amount: 2, PurchasePrice: 3})
	require.NoError(t, err)
	assert.Len(t, a.Transactions(), 2)
}

func TestSnapshotMissingKey(t *testing.T) {
	s := Snapshot{Prices: map[string]float64{"A": 1}}
	_, ok := s.Price("B")
	assert.False(t, ok)

	c := s.Clone()
	c.Prices["B"] = 2
	_, ok = s.Price("B")
	assert.False(t, ok)
}
