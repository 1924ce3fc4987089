package planner

import "github.com/google/uuid"

type FixedObligation struct {
	ID     uuid.UUID
	Name   string
	Amount float64
	DueDay int
	Active bool
}

// PendingFixed суммирует неоплаченные в этом месяце постоянные расходы и находит самый крупный.
func PendingFixed(expenses []FixedObligation, paid map[uuid.UUID]bool) (total, largest float64) {
	for _, e := range expenses {
		if !e.Active || paid[e.ID] {
			continue
		}
		total += e.Amount
		if e.Amount > largest {
			largest = e.Amount
		}
	}
	return total, largest
}
