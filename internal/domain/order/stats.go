package order

import "github.com/shopspring/decimal"

// Stats aggregates the admin dashboard figures.
type Stats struct {
	Revenue   decimal.Decimal
	Pending   int
	Completed int
}

// Summarize computes dashboard figures over orders. Revenue counts every
// order regardless of status.
func Summarize(orders []Order) Stats {
	s := Stats{Revenue: decimal.Zero}
	for _, o := range orders {
		s.Revenue = s.Revenue.Add(o.Total)
		switch o.Status {
		case StatusPending:
			s.Pending++
		case StatusCompleted:
			s.Completed++
		}
	}
	return s
}
