package store

import (
	"context"
	"fmt"

	"github.com/Homesapp/HomesappNew-sub000/internal/apperr"
	"github.com/Homesapp/HomesappNew-sub000/internal/models"
	"github.com/Homesapp/HomesappNew-sub000/internal/util"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ScheduleUpdate lists the mutable schedule fields; nil means unchanged.
type ScheduleUpdate struct {
	ServiceType *models.ServiceType
	Amount      *decimal.Decimal
	Currency    *string
	DayOfMonth  *int
	IsActive    *bool
	Description *string
}

type ScheduleStore struct {
	db  *gorm.DB
	dir *Directory
}

func validateSchedule(s *models.PaymentSchedule) error {
	if err := util.ValidateRequired("contractId", s.ContractID); err != nil {
		return err
	}
	if !s.ServiceType.Valid() {
		return apperr.Validation("serviceType", "unknown service type %q", s.ServiceType)
	}
	if err := util.ValidateAmount("amount", s.Amount); err != nil {
		return err
	}
	if err := util.ValidateCurrency(s.Currency); err != nil {
		return err
	}
	return util.ValidateDayOfMonth(s.DayOfMonth)
}

// Create validates and inserts a schedule. The contract must belong to the agency.
func (s *ScheduleStore) Create(ctx context.Context, agencyID string, sched *models.PaymentSchedule) error {
	sched.AgencyID = agencyID
	if err := validateSchedule(sched); err != nil {
		return err
	}
	if _, err := s.dir.Contract(ctx, agencyID, sched.ContractID); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Create(sched).Error; err != nil {
		return fmt.Errorf("create schedule: %w", err)
	}
	return nil
}

func (s *ScheduleStore) Get(ctx context.Context, agencyID, id string) (*models.PaymentSchedule, error) {
	var sched models.PaymentSchedule
	if err := s.db.WithContext(ctx).
		Where("id = ? AND agency_id = ?", id, agencyID).
		First(&sched).Error; err != nil {
		return nil, notFound(err, "schedule", id)
	}
	return &sched, nil
}

func (s *ScheduleStore) ListByContract(ctx context.Context, agencyID, contractID string) ([]models.PaymentSchedule, error) {
	var list []models.PaymentSchedule
	if err := s.db.WithContext(ctx).
		Where("agency_id = ? AND contract_id = ?", agencyID, contractID).
		Order("created_at ASC").
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	return list, nil
}

// ListByAgency lists the agency's schedules, optionally only active or inactive ones.
func (s *ScheduleStore) ListByAgency(ctx context.Context, agencyID string, active *bool) ([]models.PaymentSchedule, error) {
	q := s.db.WithContext(ctx).Where("agency_id = ?", agencyID)
	if active != nil {
		q = q.Where("is_active = ?", *active)
	}
	var list []models.PaymentSchedule
	if err := q.Order("created_at ASC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	return list, nil
}

func (s *ScheduleStore) Update(ctx context.Context, agencyID, id string, in ScheduleUpdate) (*models.PaymentSchedule, error) {
	sched, err := s.Get(ctx, agencyID, id)
	if err != nil {
		return nil, err
	}
	if in.ServiceType != nil {
		sched.ServiceType = *in.ServiceType
	}
	if in.Amount != nil {
		sched.Amount = *in.Amount
	}
	if in.Currency != nil {
		sched.Currency = *in.Currency
	}
	if in.DayOfMonth != nil {
		sched.DayOfMonth = *in.DayOfMonth
	}
	if in.IsActive != nil {
		sched.IsActive = *in.IsActive
	}
	if in.Description != nil {
		sched.Description = *in.Description
	}
	if err := validateSchedule(sched); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Save(sched).Error; err != nil {
		return nil, fmt.Errorf("update schedule: %w", err)
	}
	return sched, nil
}

// ToggleActive flips the active flag and returns the updated schedule.
func (s *ScheduleStore) ToggleActive(ctx context.Context, agencyID, id string) (*models.PaymentSchedule, error) {
	sched, err := s.Get(ctx, agencyID, id)
	if err != nil {
		return nil, err
	}
	sched.IsActive = !sched.IsActive
	if err := s.db.WithContext(ctx).
		Model(sched).
		Update("is_active", sched.IsActive).Error; err != nil {
		return nil, fmt.Errorf("toggle schedule: %w", err)
	}
	return sched, nil
}

// Delete removes the schedule row. Payments already generated keep their
// schedule id; generation stops because the schedule no longer resolves.
func (s *ScheduleStore) Delete(ctx context.Context, agencyID, id string) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND agency_id = ?", id, agencyID).
		Delete(&models.PaymentSchedule{})
	if res.Error != nil {
		return fmt.Errorf("delete schedule: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("schedule", id)
	}
	return nil
}
