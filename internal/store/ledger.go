package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Homesapp/HomesappNew-sub000/internal/apperr"
	"github.com/Homesapp/HomesappNew-sub000/internal/models"
	"github.com/Homesapp/HomesappNew-sub000/internal/util"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LedgerFilter narrows List. Zero values are ignored.
type LedgerFilter struct {
	Direction     models.Direction
	Category      models.LedgerCategory
	Status        models.LedgerStatus
	OwnerID       string
	ContractID    string
	UnitID        string
	CondominiumID string
	From          *time.Time // due date, inclusive
	To            *time.Time // due date, inclusive
	Search        string     // payer name or payment reference
	Sort          string     // due_date | performed_date | gross_amount | created_at
	Order         string     // asc | desc
	Page          int
	PageSize      int
}

// LedgerUpdate lists the mutable ledger fields; nil means unchanged.
type LedgerUpdate struct {
	Category         *models.LedgerCategory
	Status           *models.LedgerStatus
	Description      *string
	GrossAmount      *decimal.Decimal
	Fees             *decimal.Decimal
	DueDate          *time.Time
	PerformedDate    *time.Time
	PaymentMethod    *string
	PaymentReference *string
	ProofURL         *string
	Notes            *string
}

var ledgerSortColumns = map[string]string{
	"due_date":       "due_date",
	"performed_date": "performed_date",
	"gross_amount":   "gross_amount",
	"created_at":     "created_at",
}

type LedgerStore struct {
	db *gorm.DB
}

func validateEntry(e *models.FinancialTransaction) error {
	if !e.Direction.Valid() {
		return apperr.Validation("direction", "must be inflow or outflow, got %q", e.Direction)
	}
	if e.Category == "" {
		return apperr.Validation("category", "is required")
	}
	if !e.Status.Valid() {
		return apperr.Validation("status", "unknown status %q", e.Status)
	}
	if err := util.ValidateAmount("grossAmount", e.GrossAmount); err != nil {
		return err
	}
	if err := util.ValidateAmount("fees", e.Fees); err != nil {
		return err
	}
	if e.Fees.GreaterThan(e.GrossAmount) {
		return apperr.Validation("fees", "exceed gross amount")
	}
	return util.ValidateCurrency(e.Currency)
}

// Create records a manual entry (one not derived from a payment).
// NetAmount is always GrossAmount - Fees.
func (s *LedgerStore) Create(ctx context.Context, agencyID string, e *models.FinancialTransaction) error {
	if e.PaymentID != nil {
		return apperr.Validation("paymentId", "entries for payments are created by confirmation")
	}
	if e.Status == "" {
		e.Status = models.LedgerPending
	}
	return s.Insert(ctx, agencyID, e)
}

// Insert validates and writes e as is.
func (s *LedgerStore) Insert(ctx context.Context, agencyID string, e *models.FinancialTransaction) error {
	e.AgencyID = agencyID
	e.NetAmount = e.GrossAmount.Sub(e.Fees)
	if e.DueDate != nil {
		d := models.DateOnly(*e.DueDate)
		e.DueDate = &d
	}
	if err := validateEntry(e); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Create(e).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("ledger entry for payment exists: %w", apperr.ErrDuplicateObligation)
		}
		return fmt.Errorf("create ledger entry: %w", err)
	}
	return nil
}

func (s *LedgerStore) Get(ctx context.Context, agencyID, id string) (*models.FinancialTransaction, error) {
	var e models.FinancialTransaction
	if err := s.db.WithContext(ctx).
		Where("id = ? AND agency_id = ?", id, agencyID).
		First(&e).Error; err != nil {
		return nil, notFound(err, "ledger entry", id)
	}
	return &e, nil
}

// FindByPayment returns the entry of a payment, or nil when there is none yet.
func (s *LedgerStore) FindByPayment(ctx context.Context, agencyID, paymentID string) (*models.FinancialTransaction, error) {
	var e models.FinancialTransaction
	err := lockForUpdate(s.db.WithContext(ctx)).
		Where("agency_id = ? AND payment_id = ?", agencyID, paymentID).
		First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load ledger entry of payment %s: %w", paymentID, err)
	}
	return &e, nil
}

func (s *LedgerStore) filtered(ctx context.Context, agencyID string, f LedgerFilter) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&models.FinancialTransaction{}).Where("agency_id = ?", agencyID)
	if f.Direction != "" {
		q = q.Where("direction = ?", f.Direction)
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.OwnerID != "" {
		q = q.Where("owner_id = ?", f.OwnerID)
	}
	if f.ContractID != "" {
		q = q.Where("contract_id = ?", f.ContractID)
	}
	if f.UnitID != "" {
		q = q.Where("unit_id = ?", f.UnitID)
	}
	if f.CondominiumID != "" {
		q = q.Where("condominium_id = ?", f.CondominiumID)
	}
	if f.From != nil {
		q = q.Where("due_date >= ?", models.DateOnly(*f.From))
	}
	if f.To != nil {
		q = q.Where("due_date < ?", models.DateOnly(*f.To).AddDate(0, 0, 1))
	}
	if search := strings.TrimSpace(f.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		q = q.Where("(LOWER(payer_name) LIKE ? OR LOWER(payment_reference) LIKE ?)", pattern, pattern)
	}
	return q
}

func ledgerOrder(f LedgerFilter) string {
	col, ok := ledgerSortColumns[f.Sort]
	if !ok {
		col = "due_date"
	}
	dir := "DESC"
	if strings.EqualFold(f.Order, "asc") {
		dir = "ASC"
	}
	return col + " " + dir + ", id " + dir
}

// List returns one page of entries matching f and the total match count.
func (s *LedgerStore) List(ctx context.Context, agencyID string, f LedgerFilter) ([]models.FinancialTransaction, int64, error) {
	base := s.filtered(ctx, agencyID, f)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count ledger entries: %w", err)
	}

	var items []models.FinancialTransaction
	if err := base.Session(&gorm.Session{}).
		Order(ledgerOrder(f)).
		Scopes(Paginate(f.Page, f.PageSize)).
		Find(&items).Error; err != nil {
		return nil, 0, fmt.Errorf("list ledger entries: %w", err)
	}
	return items, total, nil
}

// ListAll returns every entry matching f in list order, ignoring paging.
func (s *LedgerStore) ListAll(ctx context.Context, agencyID string, f LedgerFilter) ([]models.FinancialTransaction, error) {
	var items []models.FinancialTransaction
	if err := s.filtered(ctx, agencyID, f).
		Order(ledgerOrder(f)).
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}
	return items, nil
}

// Each streams every entry matching f to fn in primary-key batches.
// Sort and paging fields of f are ignored.
func (s *LedgerStore) Each(ctx context.Context, agencyID string, f LedgerFilter, fn func(*models.FinancialTransaction) error) error {
	var batch []models.FinancialTransaction
	res := s.filtered(ctx, agencyID, f).
		FindInBatches(&batch, 500, func(tx *gorm.DB, _ int) error {
			for i := range batch {
				if err := fn(&batch[i]); err != nil {
					return err
				}
			}
			return nil
		})
	if res.Error != nil {
		return fmt.Errorf("scan ledger: %w", res.Error)
	}
	return nil
}

// Update applies in. Status may only stay or move one step forward, and
// entries of a payment keep the payment's amount, category and due date.
func (s *LedgerStore) Update(ctx context.Context, agencyID, id string, in LedgerUpdate) (*models.FinancialTransaction, error) {
	e, err := s.Get(ctx, agencyID, id)
	if err != nil {
		return nil, err
	}
	if err := applyLedgerUpdate(e, in); err != nil {
		return nil, err
	}
	if err := s.Save(ctx, agencyID, e); err != nil {
		return nil, err
	}
	return e, nil
}

// lockedByPayment names the first amount field in that would make an entry
// disagree with its payment, or "".
func lockedByPayment(e *models.FinancialTransaction, in LedgerUpdate) string {
	switch {
	case in.Category != nil && *in.Category != e.Category:
		return "category"
	case in.GrossAmount != nil && !in.GrossAmount.Equal(e.GrossAmount):
		return "grossAmount"
	case in.Fees != nil && !in.Fees.Equal(e.Fees):
		return "fees"
	case in.DueDate != nil && (e.DueDate == nil || !models.DateOnly(*in.DueDate).Equal(*e.DueDate)):
		return "dueDate"
	}
	return ""
}

func applyLedgerUpdate(e *models.FinancialTransaction, in LedgerUpdate) error {
	if e.PaymentID != nil {
		if field := lockedByPayment(e, in); field != "" {
			return apperr.Validation(field, "is taken from payment %s and cannot be edited on the entry", *e.PaymentID)
		}
	}
	if in.Status != nil {
		if !e.Status.CanMoveTo(*in.Status) {
			return apperr.Transition("ledger entry", e.Status, *in.Status)
		}
		if *in.Status == models.LedgerReconciled && e.Status != models.LedgerReconciled {
			now := time.Now().UTC()
			e.ReconciledAt = &now
		}
		e.Status = *in.Status
	}
	if in.Category != nil {
		e.Category = *in.Category
	}
	if in.Description != nil {
		e.Description = *in.Description
	}
	if in.GrossAmount != nil {
		e.GrossAmount = *in.GrossAmount
	}
	if in.Fees != nil {
		e.Fees = *in.Fees
	}
	if in.DueDate != nil {
		d := models.DateOnly(*in.DueDate)
		e.DueDate = &d
	}
	if in.PerformedDate != nil {
		d := in.PerformedDate.UTC()
		e.PerformedDate = &d
	}
	if in.PaymentMethod != nil {
		e.PaymentMethod = *in.PaymentMethod
	}
	if in.PaymentReference != nil {
		e.PaymentReference = *in.PaymentReference
	}
	if in.ProofURL != nil {
		e.ProofURL = *in.ProofURL
	}
	if in.Notes != nil {
		e.Notes = *in.Notes
	}
	return nil
}

// Save validates and writes every column of e, keeping NetAmount in step.
// The stored status is re-read so a concurrent move forward is not undone.
func (s *LedgerStore) Save(ctx context.Context, agencyID string, e *models.FinancialTransaction) error {
	if e.AgencyID != agencyID {
		return apperr.NotFound("ledger entry", e.ID)
	}
	e.NetAmount = e.GrossAmount.Sub(e.Fees)
	if err := validateEntry(e); err != nil {
		return err
	}
	var stored models.FinancialTransaction
	if err := s.db.WithContext(ctx).Select("status").
		Where("id = ? AND agency_id = ?", e.ID, agencyID).
		First(&stored).Error; err != nil {
		return notFound(err, "ledger entry", e.ID)
	}
	if !stored.Status.CanMoveTo(e.Status) {
		return apperr.Transition("ledger entry", stored.Status, e.Status)
	}
	if err := s.db.WithContext(ctx).Save(e).Error; err != nil {
		return fmt.Errorf("save ledger entry: %w", err)
	}
	return nil
}

// Reconcile marks a posted entry as matched against external records.
func (s *LedgerStore) Reconcile(ctx context.Context, agencyID, id string, at time.Time) (*models.FinancialTransaction, error) {
	e, err := s.Get(ctx, agencyID, id)
	if err != nil {
		return nil, err
	}
	if e.Status != models.LedgerPosted {
		return nil, apperr.Transition("ledger entry", e.Status, models.LedgerReconciled)
	}
	at = at.UTC()
	e.Status = models.LedgerReconciled
	e.ReconciledAt = &at
	if err := s.Save(ctx, agencyID, e); err != nil {
		return nil, err
	}
	return e, nil
}

// Delete removes a pending entry. Posted and reconciled entries stay.
func (s *LedgerStore) Delete(ctx context.Context, agencyID, id string) error {
	e, err := s.Get(ctx, agencyID, id)
	if err != nil {
		return err
	}
	if e.Status != models.LedgerPending {
		return apperr.Transition("ledger entry", e.Status, "deleted")
	}
	if err := s.db.WithContext(ctx).Delete(e).Error; err != nil {
		return fmt.Errorf("delete ledger entry: %w", err)
	}
	return nil
}
