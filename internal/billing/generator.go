// Package billing turns schedules into payments, confirms payments into
// the ledger and summarizes the ledger.
package billing

import (
	"context"
	"errors"
	"time"

	"github.com/Homesapp/HomesappNew-sub000/internal/apperr"
	"github.com/Homesapp/HomesappNew-sub000/internal/models"
	"github.com/Homesapp/HomesappNew-sub000/internal/store"

	"go.uber.org/zap"
)

// Generator derives the next payment of a schedule. Both entry points
// return (nil, nil) when there is nothing to generate.
type Generator struct {
	stores *store.Stores
	logger *zap.Logger
}

func NewGenerator(stores *store.Stores, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{stores: stores, logger: logger}
}

// GenerateNext creates the payment following paymentID in its schedule.
// It is a no-op when the payment is ad hoc, the schedule is gone or
// inactive, the contract is not active, the next due date is past the
// contract end, or the next payment already exists. Concurrent callers
// race on the obligation unique index; the loser gets (nil, nil).
func (g *Generator) GenerateNext(ctx context.Context, agencyID, paymentID string) (*models.Payment, error) {
	current, err := g.stores.Payments.Get(ctx, agencyID, paymentID)
	if err != nil {
		return nil, err
	}
	if current.ScheduleID == nil {
		return nil, nil
	}

	sched, contract, err := g.activeSeries(ctx, agencyID, *current.ScheduleID)
	if sched == nil || err != nil {
		return nil, err
	}

	due := NextDueDate(current.DueDate, sched.DayOfMonth)
	return g.emit(ctx, agencyID, sched, contract, due)
}

// GenerateFirst creates the first payment of a schedule: the first anchor
// date on or after the contract start (or today, for contracts that are
// already running).
func (g *Generator) GenerateFirst(ctx context.Context, agencyID, scheduleID string, today time.Time) (*models.Payment, error) {
	sched, contract, err := g.activeSeries(ctx, agencyID, scheduleID)
	if sched == nil || err != nil {
		return nil, err
	}
	from := contract.StartDate
	if t := models.DateOnly(today); t.After(from) {
		from = t
	}
	return g.emit(ctx, agencyID, sched, contract, FirstDueDate(from, sched.DayOfMonth))
}

// activeSeries loads the schedule and its contract. A nil schedule means
// the series is stopped.
func (g *Generator) activeSeries(ctx context.Context, agencyID, scheduleID string) (*models.PaymentSchedule, *models.Contract, error) {
	sched, err := g.stores.Schedules.Get(ctx, agencyID, scheduleID)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	if !sched.IsActive {
		return nil, nil, nil
	}

	contract, err := g.stores.Directory.Contract(ctx, agencyID, sched.ContractID)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	if contract.Status != models.ContractActive {
		return nil, nil, nil
	}
	return sched, contract, nil
}

func (g *Generator) emit(ctx context.Context, agencyID string, sched *models.PaymentSchedule, contract *models.Contract, due time.Time) (*models.Payment, error) {
	if afterHorizon(due, contract.EndDate) {
		return nil, nil
	}

	_, err := g.stores.Payments.FindByObligation(ctx, agencyID, contract.ID, sched.ID, due)
	if err == nil {
		return nil, nil
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}

	scheduleID := sched.ID
	next := &models.Payment{
		ContractID:  contract.ID,
		ScheduleID:  &scheduleID,
		ServiceType: sched.ServiceType,
		Amount:      sched.Amount,
		Currency:    sched.Currency,
		DueDate:     due,
		Status:      models.PaymentPending,
	}
	created, err := g.stores.Payments.InsertIfAbsent(ctx, agencyID, next)
	if err != nil {
		return nil, err
	}
	if !created {
		g.logger.Debug("payment already generated",
			zap.String("agency_id", agencyID),
			zap.String("schedule_id", sched.ID),
			zap.Time("due_date", due))
		return nil, nil
	}

	g.logger.Info("payment generated",
		zap.String("agency_id", agencyID),
		zap.String("schedule_id", sched.ID),
		zap.String("payment_id", next.ID),
		zap.Time("due_date", due))
	return next, nil
}
