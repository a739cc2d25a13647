package billing

import (
	"context"
	"sort"

	"github.com/Homesapp/HomesappNew-sub000/internal/models"
	"github.com/Homesapp/HomesappNew-sub000/internal/store"

	"github.com/shopspring/decimal"
)

// CategoryTotal is the net total of one (direction, category) pair.
type CategoryTotal struct {
	Direction models.Direction      `json:"direction"`
	Category  models.LedgerCategory `json:"category"`
	Total     decimal.Decimal       `json:"total"`
	Count     int                   `json:"count"`
}

// AccountingSummary is the agency dashboard rollup over net amounts.
type AccountingSummary struct {
	AgencyID          string          `json:"agencyId"`
	TotalInflow       decimal.Decimal `json:"totalInflow"`
	TotalOutflow      decimal.Decimal `json:"totalOutflow"`
	NetBalance        decimal.Decimal `json:"netBalance"`
	PendingInflow     decimal.Decimal `json:"pendingInflow"`
	PendingOutflow    decimal.Decimal `json:"pendingOutflow"`
	ReconciledInflow  decimal.Decimal `json:"reconciledInflow"`
	ReconciledOutflow decimal.Decimal `json:"reconciledOutflow"`
	EntryCount        int             `json:"entryCount"`
	ByCategory        []CategoryTotal `json:"byCategory"`
}

// Aggregator recomputes summaries from the ledger on every call.
type Aggregator struct {
	stores *store.Stores
}

func NewAggregator(stores *store.Stores) *Aggregator {
	return &Aggregator{stores: stores}
}

// Summary walks every ledger entry of the agency once.
func (a *Aggregator) Summary(ctx context.Context, agencyID string) (*AccountingSummary, error) {
	acc := newAccumulator(agencyID)
	if err := a.stores.Ledger.Each(ctx, agencyID, store.LedgerFilter{}, func(e *models.FinancialTransaction) error {
		acc.add(e)
		return nil
	}); err != nil {
		return nil, err
	}
	return acc.result(), nil
}

type categoryKey struct {
	direction models.Direction
	category  models.LedgerCategory
}

type accumulator struct {
	sum        AccountingSummary
	categories map[categoryKey]*CategoryTotal
}

func newAccumulator(agencyID string) *accumulator {
	return &accumulator{
		sum: AccountingSummary{
			AgencyID:          agencyID,
			TotalInflow:       decimal.Zero,
			TotalOutflow:      decimal.Zero,
			PendingInflow:     decimal.Zero,
			PendingOutflow:    decimal.Zero,
			ReconciledInflow:  decimal.Zero,
			ReconciledOutflow: decimal.Zero,
		},
		categories: make(map[categoryKey]*CategoryTotal),
	}
}

func (a *accumulator) add(e *models.FinancialTransaction) {
	s := &a.sum
	s.EntryCount++
	amount := e.NetAmount

	switch e.Direction {
	case models.Inflow:
		s.TotalInflow = s.TotalInflow.Add(amount)
		switch e.Status {
		case models.LedgerPending:
			s.PendingInflow = s.PendingInflow.Add(amount)
		case models.LedgerReconciled:
			s.ReconciledInflow = s.ReconciledInflow.Add(amount)
		}
	case models.Outflow:
		s.TotalOutflow = s.TotalOutflow.Add(amount)
		switch e.Status {
		case models.LedgerPending:
			s.PendingOutflow = s.PendingOutflow.Add(amount)
		case models.LedgerReconciled:
			s.ReconciledOutflow = s.ReconciledOutflow.Add(amount)
		}
	}

	key := categoryKey{direction: e.Direction, category: e.Category}
	ct, ok := a.categories[key]
	if !ok {
		ct = &CategoryTotal{Direction: e.Direction, Category: e.Category, Total: decimal.Zero}
		a.categories[key] = ct
	}
	ct.Total = ct.Total.Add(amount)
	ct.Count++
}

func (a *accumulator) result() *AccountingSummary {
	s := a.sum
	s.NetBalance = s.TotalInflow.Sub(s.TotalOutflow)
	s.ByCategory = make([]CategoryTotal, 0, len(a.categories))
	for _, ct := range a.categories {
		s.ByCategory = append(s.ByCategory, *ct)
	}
	sort.Slice(s.ByCategory, func(i, j int) bool {
		if s.ByCategory[i].Direction != s.ByCategory[j].Direction {
			return s.ByCategory[i].Direction < s.ByCategory[j].Direction
		}
		return s.ByCategory[i].Category < s.ByCategory[j].Category
	})
	return &s
}
