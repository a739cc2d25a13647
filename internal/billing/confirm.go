package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Homesapp/HomesappNew-sub000/internal/apperr"
	"github.com/Homesapp/HomesappNew-sub000/internal/models"
	"github.com/Homesapp/HomesappNew-sub000/internal/store"
	"github.com/Homesapp/HomesappNew-sub000/internal/util"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Confirmation is what the caller knows about a received payment.
// Empty optional strings keep the values already stored on the payment.
type Confirmation struct {
	PaidBy           string
	PaidDate         time.Time
	ConfirmedBy      string
	ConfirmedAt      *time.Time
	PaymentMethod    string
	PaymentReference string
	PaymentProofURL  string
	Notes            string
}

func (c Confirmation) validate() error {
	if err := util.ValidateRequired("paidBy", c.PaidBy); err != nil {
		return err
	}
	if c.PaidDate.IsZero() {
		return apperr.Validation("paidDate", "is required")
	}
	return nil
}

// ConfirmResult is the outcome of ConfirmAndAdvance. Next is nil when no
// follow-up payment was generated.
type ConfirmResult struct {
	Payment     *models.Payment              `json:"payment"`
	Transaction *models.FinancialTransaction `json:"transaction"`
	Next        *models.Payment              `json:"nextPayment,omitempty"`
}

// Coordinator records payments as paid together with their ledger entry.
type Coordinator struct {
	stores    *store.Stores
	generator *Generator
	logger    *zap.Logger
	now       func() time.Time
}

func NewCoordinator(stores *store.Stores, generator *Generator, logger *zap.Logger) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{
		stores:    stores,
		generator: generator,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Confirm marks the payment paid and creates or updates its ledger entry in
// one transaction. Either both rows change or neither does. Failures other
// than not-found, validation and state errors are ErrTransactionFailure and
// the whole call may be retried: the ledger write is an upsert.
func (c *Coordinator) Confirm(ctx context.Context, agencyID, paymentID string, in Confirmation) (*models.Payment, *models.FinancialTransaction, error) {
	if err := in.validate(); err != nil {
		return nil, nil, err
	}

	var (
		payment *models.Payment
		entry   *models.FinancialTransaction
	)
	err := c.stores.Transaction(ctx, func(tx *store.Stores) error {
		var err error
		payment, err = tx.Payments.GetForUpdate(ctx, agencyID, paymentID)
		if err != nil {
			return err
		}
		if payment.Status == models.PaymentCancelled {
			return apperr.Transition("payment", payment.Status, models.PaymentPaid)
		}

		parties, err := c.loadParties(ctx, tx, agencyID, payment.ContractID)
		if err != nil {
			return err
		}

		c.applyConfirmation(payment, in)
		if err := tx.Payments.Save(ctx, agencyID, payment); err != nil {
			return err
		}

		entry, err = c.upsertEntry(ctx, tx, agencyID, payment, parties)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return payment, entry, nil
}

// ConfirmAndAdvance confirms the payment and then tries to generate the
// next one of its schedule. A generation failure is logged and does not
// undo the confirmation.
func (c *Coordinator) ConfirmAndAdvance(ctx context.Context, agencyID, paymentID string, in Confirmation) (*ConfirmResult, error) {
	payment, entry, err := c.Confirm(ctx, agencyID, paymentID, in)
	if err != nil {
		return nil, err
	}
	res := &ConfirmResult{Payment: payment, Transaction: entry}
	if c.generator == nil || payment.ScheduleID == nil {
		return res, nil
	}

	next, err := c.generator.GenerateNext(ctx, agencyID, payment.ID)
	if err != nil {
		c.logger.Warn("generate next payment failed",
			zap.String("agency_id", agencyID),
			zap.String("payment_id", payment.ID),
			zap.Error(err))
		return res, nil
	}
	res.Next = next
	return res, nil
}

// parties is the contract context stamped on a ledger entry.
type parties struct {
	contract *models.Contract
	unit     *models.Unit
	owner    *models.UnitOwner
}

func (c *Coordinator) loadParties(ctx context.Context, tx *store.Stores, agencyID, contractID string) (*parties, error) {
	contract, err := tx.Directory.Contract(ctx, agencyID, contractID)
	if err != nil {
		return nil, err
	}
	p := &parties{contract: contract}
	if contract.UnitID == "" {
		return p, nil
	}

	unit, err := tx.Directory.Unit(ctx, agencyID, contract.UnitID)
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		c.logger.Warn("contract unit not found",
			zap.String("agency_id", agencyID),
			zap.String("contract_id", contractID),
			zap.String("unit_id", contract.UnitID))
		return p, nil
	case err != nil:
		return nil, err
	}
	p.unit = unit

	owner, err := tx.Directory.ActiveOwner(ctx, agencyID, unit.ID)
	if err != nil {
		return nil, err
	}
	p.owner = owner
	return p, nil
}

func (c *Coordinator) applyConfirmation(p *models.Payment, in Confirmation) {
	paid := in.PaidDate.UTC()
	p.Status = models.PaymentPaid
	p.PaidDate = &paid
	p.PaidBy = in.PaidBy
	if in.ConfirmedBy != "" {
		at := c.now()
		if in.ConfirmedAt != nil {
			at = in.ConfirmedAt.UTC()
		}
		p.ConfirmedBy = in.ConfirmedBy
		p.ConfirmedAt = &at
	}
	if in.PaymentMethod != "" {
		p.PaymentMethod = in.PaymentMethod
	}
	if in.PaymentReference != "" {
		p.PaymentReference = in.PaymentReference
	}
	if in.PaymentProofURL != "" {
		p.PaymentProofURL = in.PaymentProofURL
	}
	if in.Notes != "" {
		p.Notes = in.Notes
	}
}

func (c *Coordinator) upsertEntry(ctx context.Context, tx *store.Stores, agencyID string, p *models.Payment, pt *parties) (*models.FinancialTransaction, error) {
	existing, err := tx.Ledger.FindByPayment(ctx, agencyID, p.ID)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		if existing.Status != models.LedgerReconciled {
			existing.Status = models.LedgerPosted
		}
		existing.PerformedDate = p.PaidDate
		existing.PaymentMethod = p.PaymentMethod
		existing.PaymentReference = p.PaymentReference
		existing.ProofURL = p.PaymentProofURL
		existing.Notes = p.Notes
		if err := tx.Ledger.Save(ctx, agencyID, existing); err != nil {
			return nil, err
		}
		return existing, nil
	}

	due := p.DueDate
	paymentID := p.ID
	contractID := pt.contract.ID
	entry := &models.FinancialTransaction{
		Direction:        models.Inflow,
		Category:         LedgerCategoryFor(p.ServiceType),
		Status:           models.LedgerPosted,
		Description:      fmt.Sprintf("%s %s", p.ServiceType, due.Format("2006-01")),
		GrossAmount:      p.Amount,
		Fees:             decimal.Zero,
		Currency:         p.Currency,
		DueDate:          &due,
		PerformedDate:    p.PaidDate,
		PayerRole:        models.RoleTenant,
		PayeeRole:        payeeRoleFor(p.ServiceType, pt.owner != nil),
		PayerName:        firstNonEmpty(pt.contract.TenantName, p.PaidBy),
		ContractID:       &contractID,
		PaymentID:        &paymentID,
		ScheduleID:       p.ScheduleID,
		PaymentMethod:    p.PaymentMethod,
		PaymentReference: p.PaymentReference,
		ProofURL:         p.PaymentProofURL,
		Notes:            p.Notes,
		CreatedBy:        firstNonEmpty(p.ConfirmedBy, p.PaidBy),
	}
	if pt.unit != nil {
		unitID := pt.unit.ID
		entry.UnitID = &unitID
		entry.CondominiumID = pt.unit.CondominiumID
	}
	if pt.owner != nil {
		ownerID := pt.owner.ID
		entry.OwnerID = &ownerID
	}

	if err := tx.Ledger.Insert(ctx, agencyID, entry); err != nil {
		if errors.Is(err, apperr.ErrDuplicateObligation) {
			// a concurrent confirmation inserted first; a retry takes the update path
			return nil, fmt.Errorf("%w: %v", apperr.ErrTransactionFailure, err)
		}
		return nil, err
	}
	return entry, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
