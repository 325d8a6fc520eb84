package port

import "etfmon/internal/domain"

const (
	EventSnapshot    = "snapshot"
	EventTransaction = "transaction"
)

// Event is the envelope pushed to stream consumers (websocket clients, redis subscribers).
type Event struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// TransactionEvent tells consumers an instrument gained a lot and must be recalculated.
type TransactionEvent struct {
	Name        string             `json:"name"`
	ISIN        string             `json:"isin"`
	Transaction domain.Transaction `json:"transaction"`
	Shares      float64            `json:"shares"`
	CostBasis   float64            `json:"cost_basis"`
}

// NewTransactionEvent captures the instrument state right after tx was appended.
func NewTransactionEvent(inst *domain.Instrument, tx domain.Transaction) Event {
	return Event{
		Event: EventTransaction,
		Data: TransactionEvent{
			Name:        inst.Name,
			ISIN:        inst.ISIN,
			Transaction: tx,
			Shares:      inst.SharesHeld(),
			CostBasis:   inst.CostBasis(),
		},
	}
}

func NewSnapshotEvent(snap domain.Snapshot) Event {
	return Event{Event: EventSnapshot, Data: snap}
}
