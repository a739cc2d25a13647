package billing_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Homesapp/HomesappNew-sub000/internal/apperr"
	"github.com/Homesapp/HomesappNew-sub000/internal/billing"
	"github.com/Homesapp/HomesappNew-sub000/internal/models"
	"github.com/Homesapp/HomesappNew-sub000/internal/store"
	"github.com/Homesapp/HomesappNew-sub000/internal/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

func (e *env) coordinator(t *testing.T) *billing.Coordinator {
	return billing.NewCoordinator(e.stores, e.gen, zaptest.NewLogger(t))
}

func (e *env) ledgerEntries(t *testing.T, paymentID string) []models.FinancialTransaction {
	t.Helper()
	var list []models.FinancialTransaction
	require.NoError(t, e.db.Where("payment_id = ?", paymentID).Find(&list).Error)
	return list
}

func confirmation(ref string) billing.Confirmation {
	return billing.Confirmation{
		PaidBy:           "Tomas Tenant",
		PaidDate:         time.Date(2025, time.March, 4, 16, 20, 0, 0, time.UTC),
		ConfirmedBy:      "agent-7",
		PaymentMethod:    "transfer",
		PaymentReference: ref,
	}
}

func TestConfirmCreatesLedgerEntry(t *testing.T) {
	e := newEnv(t, 0, testutil.ContractOpts{})
	ctx := context.Background()
	sched := e.schedule(t, models.ServiceRent, 5)
	p := e.payment(t, sched, testutil.Date(2025, time.March, 5))

	paid, entry, err := e.coordinator(t).Confirm(ctx, e.f.AgencyID, p.ID, confirmation("SPEI-001"))
	require.NoError(t, err)

	assert.Equal(t, models.PaymentPaid, paid.Status)
	require.NotNil(t, paid.PaidDate)
	require.NotNil(t, paid.ConfirmedAt)
	assert.Equal(t, "agent-7", paid.ConfirmedBy)

	assert.Equal(t, models.Inflow, entry.Direction)
	assert.Equal(t, models.CategoryRentIncome, entry.Category)
	assert.Equal(t, models.LedgerPosted, entry.Status)
	assert.True(t, entry.GrossAmount.Equal(p.Amount))
	assert.True(t, entry.Fees.IsZero())
	assert.True(t, entry.NetAmount.Equal(p.Amount))
	assert.Equal(t, "MXN", entry.Currency)
	assert.Equal(t, models.RoleTenant, entry.PayerRole)
	assert.Equal(t, models.RoleOwner, entry.PayeeRole)
	assert.Equal(t, "Tomas Tenant", entry.PayerName)
	assert.Equal(t, "SPEI-001", entry.PaymentReference)
	assert.Equal(t, p.ID, *entry.PaymentID)
	assert.Equal(t, sched.ID, *entry.ScheduleID)
	assert.Equal(t, e.f.Contract.ID, *entry.ContractID)
	assert.Equal(t, e.f.Unit.ID, *entry.UnitID)
	assert.Equal(t, e.f.Owner.ID, *entry.OwnerID)
	assert.Equal(t, *e.f.Unit.CondominiumID, *entry.CondominiumID)
	require.NotNil(t, entry.DueDate)
	assert.True(t, entry.DueDate.Equal(testutil.Date(2025, time.March, 5)))

	stored, err := e.stores.Payments.Get(ctx, e.f.AgencyID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, stored.Status)
	assert.Len(t, e.ledgerEntries(t, p.ID), 1)
}

func TestConfirmTwiceUpdatesSingleEntry(t *testing.T) {
	e := newEnv(t, 0, testutil.ContractOpts{})
	ctx := context.Background()
	c := e.coordinator(t)
	p := e.payment(t, e.schedule(t, models.ServiceRent, 5), testutil.Date(2025, time.March, 5))

	_, first, err := c.Confirm(ctx, e.f.AgencyID, p.ID, confirmation("SPEI-001"))
	require.NoError(t, err)
	_, second, err := c.Confirm(ctx, e.f.AgencyID, p.ID, confirmation("SPEI-002"))
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	entries := e.ledgerEntries(t, p.ID)
	require.Len(t, entries, 1)
	assert.Equal(t, "SPEI-002", entries[0].PaymentReference)
	assert.Equal(t, models.LedgerPosted, entries[0].Status)
}

func TestConfirmKeepsReconciledEntry(t *testing.T) {
	e := newEnv(t, 0, testutil.ContractOpts{})
	ctx := context.Background()
	c := e.coordinator(t)
	p := e.payment(t, e.schedule(t, models.ServiceRent, 5), testutil.Date(2025, time.March, 5))

	_, entry, err := c.Confirm(ctx, e.f.AgencyID, p.ID, confirmation("SPEI-001"))
	require.NoError(t, err)
	_, err = e.stores.Ledger.Reconcile(ctx, e.f.AgencyID, entry.ID, time.Now())
	require.NoError(t, err)

	_, again, err := c.Confirm(ctx, e.f.AgencyID, p.ID, confirmation("SPEI-003"))
	require.NoError(t, err)
	assert.Equal(t, models.LedgerReconciled, again.Status)
	assert.Equal(t, "SPEI-003", again.PaymentReference)
}

func TestConfirmRollsBackWhenLedgerWriteFails(t *testing.T) {
	e := newEnv(t, 0, testutil.ContractOpts{})
	ctx := context.Background()
	p := e.payment(t, e.schedule(t, models.ServiceRent, 5), testutil.Date(2025, time.March, 5))

	require.NoError(t, e.db.Callback().Create().Before("gorm:create").Register("test:fail_ledger", func(tx *gorm.DB) {
		if tx.Statement.Table == "financial_transactions" {
			_ = tx.AddError(errors.New("disk full"))
		}
	}))

	_, _, err := e.coordinator(t).Confirm(ctx, e.f.AgencyID, p.ID, confirmation("SPEI-001"))
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrTransactionFailure)
	assert.True(t, apperr.Retryable(err))

	stored, err := e.stores.Payments.Get(ctx, e.f.AgencyID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPending, stored.Status)
	assert.Nil(t, stored.PaidDate)
	assert.Empty(t, e.ledgerEntries(t, p.ID))
}

func TestConfirmWithoutOwnerOrUnit(t *testing.T) {
	ctx := context.Background()

	t.Run("no owner", func(t *testing.T) {
		e := newEnv(t, 0, testutil.ContractOpts{NoOwner: true})
		p := e.payment(t, e.schedule(t, models.ServiceRent, 5), testutil.Date(2025, time.March, 5))

		_, entry, err := e.coordinator(t).Confirm(ctx, e.f.AgencyID, p.ID, confirmation("R1"))
		require.NoError(t, err)
		assert.Nil(t, entry.OwnerID)
		assert.NotNil(t, entry.UnitID)
		assert.Equal(t, models.RoleAgency, entry.PayeeRole)
	})

	t.Run("no unit", func(t *testing.T) {
		e := newEnv(t, 0, testutil.ContractOpts{NoUnit: true})
		p := e.payment(t, e.schedule(t, models.ServiceWater, 5), testutil.Date(2025, time.March, 5))

		_, entry, err := e.coordinator(t).Confirm(ctx, e.f.AgencyID, p.ID, confirmation("R1"))
		require.NoError(t, err)
		assert.Nil(t, entry.UnitID)
		assert.Nil(t, entry.CondominiumID)
		assert.Equal(t, models.CategoryServiceWater, entry.Category)
	})
}

func TestConfirmRejects(t *testing.T) {
	e := newEnv(t, 0, testutil.ContractOpts{})
	ctx := context.Background()
	c := e.coordinator(t)

	_, _, err := c.Confirm(ctx, e.f.AgencyID, "missing", confirmation("R1"))
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	p := e.payment(t, nil, testutil.Date(2025, time.March, 5))
	in := confirmation("R1")
	in.PaidBy = " "
	_, _, err = c.Confirm(ctx, e.f.AgencyID, p.ID, in)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	in = confirmation("R1")
	in.PaidDate = time.Time{}
	_, _, err = c.Confirm(ctx, e.f.AgencyID, p.ID, in)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = e.stores.Payments.Update(ctx, e.f.AgencyID, p.ID, storeStatus(models.PaymentCancelled))
	require.NoError(t, err)
	_, _, err = c.Confirm(ctx, e.f.AgencyID, p.ID, confirmation("R1"))
	assert.ErrorIs(t, err, apperr.ErrInvalidStateTransition)
	assert.Empty(t, e.ledgerEntries(t, p.ID))
}

func TestConfirmAndAdvance(t *testing.T) {
	e := newEnv(t, 0, testutil.ContractOpts{})
	ctx := context.Background()
	p := e.payment(t, e.schedule(t, models.ServiceRent, 31), testutil.Date(2025, time.January, 31))

	res, err := e.coordinator(t).ConfirmAndAdvance(ctx, e.f.AgencyID, p.ID, confirmation("R1"))
	require.NoError(t, err)
	require.NotNil(t, res.Transaction)
	require.NotNil(t, res.Next)
	assert.Equal(t, testutil.Date(2025, time.February, 28), res.Next.DueDate)

	// confirming again is safe and does not duplicate the next payment
	res, err = e.coordinator(t).ConfirmAndAdvance(ctx, e.f.AgencyID, p.ID, confirmation("R1"))
	require.NoError(t, err)
	assert.Nil(t, res.Next)
	assert.EqualValues(t, 2, e.countPayments(t))
}

func storeStatus(s models.PaymentStatus) store.PaymentUpdate {
	return store.PaymentUpdate{Status: &s}
}

func TestConfirmedPaymentStaysInStepWithLedger(t *testing.T) {
	e := newEnv(t, 0, testutil.ContractOpts{})
	ctx := context.Background()
	c := e.coordinator(t)
	p := e.payment(t, e.schedule(t, models.ServiceRent, 5), testutil.Date(2025, time.March, 5))

	_, entry, err := c.Confirm(ctx, e.f.AgencyID, p.ID, confirmation("SPEI-001"))
	require.NoError(t, err)

	amount := decimal.NewFromInt(9999)
	water := models.ServiceWater
	_, err = e.stores.Payments.Update(ctx, e.f.AgencyID, p.ID, store.PaymentUpdate{Amount: &amount, ServiceType: &water})
	assert.ErrorIs(t, err, apperr.ErrInvalidStateTransition)

	_, err = e.stores.Ledger.Update(ctx, e.f.AgencyID, entry.ID, store.LedgerUpdate{GrossAmount: &amount})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	adjustment := models.CategoryAdjustment
	_, err = e.stores.Ledger.Update(ctx, e.f.AgencyID, entry.ID, store.LedgerUpdate{Category: &adjustment})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	note := "checked against bank statement"
	_, err = e.stores.Ledger.Update(ctx, e.f.AgencyID, entry.ID, store.LedgerUpdate{Notes: &note})
	require.NoError(t, err)

	paid, again, err := c.Confirm(ctx, e.f.AgencyID, p.ID, confirmation("SPEI-002"))
	require.NoError(t, err)
	assert.Equal(t, models.ServiceRent, paid.ServiceType)
	assert.True(t, paid.Amount.Equal(decimal.RequireFromString("1200.50")))
	assert.True(t, again.GrossAmount.Equal(paid.Amount))
	assert.True(t, again.NetAmount.Equal(paid.Amount))
	assert.Equal(t, models.CategoryRentIncome, again.Category)
	assert.Equal(t, "SPEI-002", again.PaymentReference)
}

func TestConfirmConcurrentCallersShareOneEntry(t *testing.T) {
	e := newEnv(t, 4, testutil.ContractOpts{})
	ctx := context.Background()
	c := e.coordinator(t)
	p := e.payment(t, e.schedule(t, models.ServiceRent, 5), testutil.Date(2025, time.March, 5))

	const workers = 6
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		failed    []error
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := c.Confirm(ctx, e.f.AgencyID, p.ID, confirmation("SPEI-001"))
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed = append(failed, err)
				return
			}
			succeeded++
		}()
	}
	wg.Wait()

	for _, err := range failed {
		assert.True(t, apperr.Retryable(err), "unexpected error: %v", err)
	}
	assert.Equal(t, workers, succeeded+len(failed))
	assert.Len(t, e.ledgerEntries(t, p.ID), 1)

	paid, entry, err := c.Confirm(ctx, e.f.AgencyID, p.ID, confirmation("SPEI-001"))
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, paid.Status)
	assert.Equal(t, p.ID, *entry.PaymentID)
	assert.Len(t, e.ledgerEntries(t, p.ID), 1)
}
