package poller

import "etfmon/internal/application/port"

type PriceSource = port.PriceSource

type Repository = port.Repository

type Publisher = port.Publisher

// TransactionCommand appends a purchase lot to the instrument matching EntityID (ISIN or name).
// An empty Date means today.
type TransactionCommand struct {
	EntityID string  `json:"entity_id"`
	Amount   float64 `json:"amount"`
	Price    float64 `json:"price"`
	Date     string  `json:"date,omitempty"`
}
