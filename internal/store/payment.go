package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Homesapp/HomesappNew-sub000/internal/apperr"
	"github.com/Homesapp/HomesappNew-sub000/internal/models"
	"github.com/Homesapp/HomesappNew-sub000/internal/util"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PaymentFilter narrows ListByAgency; nil fields are ignored.
type PaymentFilter struct {
	Status      *models.PaymentStatus
	ServiceType *models.ServiceType
}

// PaymentUpdate lists the fields editable outside of confirmation.
type PaymentUpdate struct {
	ServiceType      *models.ServiceType
	Amount           *decimal.Decimal
	Currency         *string
	DueDate          *time.Time
	Status           *models.PaymentStatus
	PaymentMethod    *string
	PaymentReference *string
	PaymentProofURL  *string
	Notes            *string
}

type PaymentStore struct {
	db  *gorm.DB
	dir *Directory
}

func validatePayment(p *models.Payment) error {
	if err := util.ValidateRequired("contractId", p.ContractID); err != nil {
		return err
	}
	if !p.ServiceType.Valid() {
		return apperr.Validation("serviceType", "unknown service type %q", p.ServiceType)
	}
	if err := util.ValidateAmount("amount", p.Amount); err != nil {
		return err
	}
	if err := util.ValidateCurrency(p.Currency); err != nil {
		return err
	}
	if p.DueDate.IsZero() {
		return apperr.Validation("dueDate", "is required")
	}
	if !p.Status.Valid() {
		return apperr.Validation("status", "unknown status %q", p.Status)
	}
	return nil
}

// translateWrite maps a unique-index violation to ErrDuplicateObligation.
func translateWrite(err error, op string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%s: %w", op, apperr.ErrDuplicateObligation)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// Create inserts a payment. A payment whose (contract, schedule, due date)
// already exists fails with ErrDuplicateObligation.
func (s *PaymentStore) Create(ctx context.Context, agencyID string, p *models.Payment) error {
	p.AgencyID = agencyID
	p.DueDate = models.DateOnly(p.DueDate)
	if p.Status == "" {
		p.Status = models.PaymentPending
	}
	if p.Status == models.PaymentPaid {
		return apperr.Validation("status", "payments are marked paid through confirmation")
	}
	if err := validatePayment(p); err != nil {
		return err
	}
	if _, err := s.dir.Contract(ctx, agencyID, p.ContractID); err != nil {
		return err
	}
	if p.ScheduleID != nil {
		var n int64
		if err := s.db.WithContext(ctx).Model(&models.PaymentSchedule{}).
			Where("id = ? AND agency_id = ? AND contract_id = ?", *p.ScheduleID, agencyID, p.ContractID).
			Count(&n).Error; err != nil {
			return fmt.Errorf("check schedule: %w", err)
		}
		if n == 0 {
			return apperr.NotFound("schedule", *p.ScheduleID)
		}
	}
	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		return translateWrite(err, "create payment")
	}
	return nil
}

// InsertIfAbsent inserts p unless its obligation key is already taken.
// It reports whether a row was written; a conflict is not an error.
func (s *PaymentStore) InsertIfAbsent(ctx context.Context, agencyID string, p *models.Payment) (bool, error) {
	p.AgencyID = agencyID
	p.DueDate = models.DateOnly(p.DueDate)
	if err := validatePayment(p); err != nil {
		return false, err
	}
	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(p)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return false, nil
		}
		return false, fmt.Errorf("insert payment: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *PaymentStore) Get(ctx context.Context, agencyID, id string) (*models.Payment, error) {
	var p models.Payment
	if err := s.db.WithContext(ctx).
		Where("id = ? AND agency_id = ?", id, agencyID).
		First(&p).Error; err != nil {
		return nil, notFound(err, "payment", id)
	}
	return &p, nil
}

// GetForUpdate loads a payment and, on Postgres, locks its row until the
// surrounding transaction ends.
func (s *PaymentStore) GetForUpdate(ctx context.Context, agencyID, id string) (*models.Payment, error) {
	var p models.Payment
	if err := lockForUpdate(s.db.WithContext(ctx)).
		Where("id = ? AND agency_id = ?", id, agencyID).
		First(&p).Error; err != nil {
		return nil, notFound(err, "payment", id)
	}
	return &p, nil
}

// FindByObligation returns the payment holding the given key, or ErrNotFound.
func (s *PaymentStore) FindByObligation(ctx context.Context, agencyID, contractID, scheduleID string, dueDate time.Time) (*models.Payment, error) {
	var p models.Payment
	err := s.db.WithContext(ctx).
		Where("agency_id = ? AND contract_id = ? AND schedule_id = ? AND due_date = ?",
			agencyID, contractID, scheduleID, models.DateOnly(dueDate)).
		First(&p).Error
	if err != nil {
		return nil, notFound(err, "payment", contractID+"/"+scheduleID+"/"+dueDate.Format("2006-01-02"))
	}
	return &p, nil
}

// ListByContract lists a contract's payments by due date, optionally by status.
func (s *PaymentStore) ListByContract(ctx context.Context, agencyID, contractID string, status *models.PaymentStatus) ([]models.Payment, error) {
	q := s.db.WithContext(ctx).Where("agency_id = ? AND contract_id = ?", agencyID, contractID)
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	var list []models.Payment
	if err := q.Order("due_date ASC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return list, nil
}

func (s *PaymentStore) ListByAgency(ctx context.Context, agencyID string, f PaymentFilter) ([]models.Payment, error) {
	q := s.db.WithContext(ctx).Where("agency_id = ?", agencyID)
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}
	if f.ServiceType != nil {
		q = q.Where("service_type = ?", *f.ServiceType)
	}
	var list []models.Payment
	if err := q.Order("due_date DESC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return list, nil
}

// ListUpcoming returns pending payments due within [today, today+days].
func (s *PaymentStore) ListUpcoming(ctx context.Context, agencyID string, days int, today time.Time) ([]models.Payment, error) {
	if days < 0 {
		return nil, apperr.Validation("days", "must not be negative, got %d", days)
	}
	from := models.DateOnly(today)
	to := from.AddDate(0, 0, days)
	var list []models.Payment
	if err := s.db.WithContext(ctx).
		Where("agency_id = ? AND status = ? AND due_date >= ? AND due_date <= ?",
			agencyID, models.PaymentPending, from, to).
		Order("due_date ASC").
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list upcoming payments: %w", err)
	}
	return list, nil
}

// Update applies in to the payment. Status can never be set to paid here.
// A paid payment is mirrored by its ledger entry, so none of its fields may
// change outside of confirmation; re-confirming updates both rows.
func (s *PaymentStore) Update(ctx context.Context, agencyID, id string, in PaymentUpdate) (*models.Payment, error) {
	p, err := s.Get(ctx, agencyID, id)
	if err != nil {
		return nil, err
	}
	if p.Status == models.PaymentPaid {
		if field := changedOnPaid(p, in); field != "" {
			return nil, apperr.Transition("paid payment", field, "edited")
		}
	}
	if in.Status != nil && *in.Status != p.Status {
		if *in.Status == models.PaymentPaid || p.Status == models.PaymentPaid {
			return nil, apperr.Transition("payment", p.Status, *in.Status)
		}
		p.Status = *in.Status
	}
	if in.ServiceType != nil {
		p.ServiceType = *in.ServiceType
	}
	if in.Amount != nil {
		p.Amount = *in.Amount
	}
	if in.Currency != nil {
		p.Currency = *in.Currency
	}
	if in.DueDate != nil {
		p.DueDate = models.DateOnly(*in.DueDate)
	}
	if in.PaymentMethod != nil {
		p.PaymentMethod = *in.PaymentMethod
	}
	if in.PaymentReference != nil {
		p.PaymentReference = *in.PaymentReference
	}
	if in.PaymentProofURL != nil {
		p.PaymentProofURL = *in.PaymentProofURL
	}
	if in.Notes != nil {
		p.Notes = *in.Notes
	}
	if err := validatePayment(p); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Save(p).Error; err != nil {
		return nil, translateWrite(err, "update payment")
	}
	return p, nil
}

// changedOnPaid names the first field in that differs from p, or "".
func changedOnPaid(p *models.Payment, in PaymentUpdate) string {
	differs := func(ptr *string, cur string) bool { return ptr != nil && *ptr != cur }
	switch {
	case in.Status != nil && *in.Status != p.Status:
		return "status"
	case in.Amount != nil && !in.Amount.Equal(p.Amount):
		return "amount"
	case in.ServiceType != nil && *in.ServiceType != p.ServiceType:
		return "serviceType"
	case differs(in.Currency, p.Currency):
		return "currency"
	case in.DueDate != nil && !models.DateOnly(*in.DueDate).Equal(p.DueDate):
		return "dueDate"
	case differs(in.PaymentMethod, p.PaymentMethod):
		return "paymentMethod"
	case differs(in.PaymentReference, p.PaymentReference):
		return "paymentReference"
	case differs(in.PaymentProofURL, p.PaymentProofURL):
		return "paymentProofUrl"
	case differs(in.Notes, p.Notes):
		return "notes"
	}
	return ""
}

// Save writes every column of p. Used by the confirmation coordinator
// inside its transaction.
func (s *PaymentStore) Save(ctx context.Context, agencyID string, p *models.Payment) error {
	if p.AgencyID != agencyID {
		return apperr.NotFound("payment", p.ID)
	}
	if err := s.db.WithContext(ctx).Save(p).Error; err != nil {
		return translateWrite(err, "save payment")
	}
	return nil
}

// Delete removes a pending or cancelled payment.
func (s *PaymentStore) Delete(ctx context.Context, agencyID, id string) error {
	p, err := s.Get(ctx, agencyID, id)
	if err != nil {
		return err
	}
	if !p.Status.Deletable() {
		return apperr.Transition("payment", p.Status, "deleted")
	}
	if err := s.db.WithContext(ctx).Delete(p).Error; err != nil {
		return fmt.Errorf("delete payment: %w", err)
	}
	return nil
}

// MarkReminderSent records that the notification sender reminded the payer.
func (s *PaymentStore) MarkReminderSent(ctx context.Context, agencyID, id string, at time.Time) (*models.Payment, error) {
	p, err := s.Get(ctx, agencyID, id)
	if err != nil {
		return nil, err
	}
	at = at.UTC()
	if err := s.db.WithContext(ctx).Model(p).Update("reminder_sent_at", at).Error; err != nil {
		return nil, fmt.Errorf("mark reminder sent: %w", err)
	}
	p.ReminderSentAt = &at
	return p, nil
}

// MarkOverdue moves pending payments due before asOf to overdue and
// returns how many rows changed.
func (s *PaymentStore) MarkOverdue(ctx context.Context, agencyID string, asOf time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Model(&models.Payment{}).
		Where("agency_id = ? AND status = ? AND due_date < ?",
			agencyID, models.PaymentPending, models.DateOnly(asOf)).
		Update("status", models.PaymentOverdue)
	if res.Error != nil {
		return 0, fmt.Errorf("mark overdue: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// AgencyIDs lists agencies that have payments; used by batch commands.
func (s *PaymentStore) AgencyIDs(ctx context.Context) ([]string, error) {
	var ids []string
	if err := s.db.WithContext(ctx).Model(&models.Payment{}).
		Distinct("agency_id").
		Pluck("agency_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("list agencies: %w", err)
	}
	return ids, nil
}
