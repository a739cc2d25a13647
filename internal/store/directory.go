package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/Homesapp/HomesappNew-sub000/internal/models"

	"gorm.io/gorm"
)

// Directory is the read-only view of the contract lifecycle service and the
// unit/owner directory.
type Directory struct {
	db *gorm.DB
}

func (d *Directory) Contract(ctx context.Context, agencyID, id string) (*models.Contract, error) {
	var c models.Contract
	if err := d.db.WithContext(ctx).
		Where("id = ? AND agency_id = ?", id, agencyID).
		First(&c).Error; err != nil {
		return nil, notFound(err, "contract", id)
	}
	return &c, nil
}

func (d *Directory) Unit(ctx context.Context, agencyID, id string) (*models.Unit, error) {
	var u models.Unit
	if err := d.db.WithContext(ctx).
		Where("id = ? AND agency_id = ?", id, agencyID).
		First(&u).Error; err != nil {
		return nil, notFound(err, "unit", id)
	}
	return &u, nil
}

// ActiveOwner returns the unit's current owner, or nil when it has none.
func (d *Directory) ActiveOwner(ctx context.Context, agencyID, unitID string) (*models.UnitOwner, error) {
	var o models.UnitOwner
	err := d.db.WithContext(ctx).
		Where("agency_id = ? AND unit_id = ? AND is_active = ?", agencyID, unitID, true).
		Order("created_at DESC").
		First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load owner of unit %s: %w", unitID, err)
	}
	return &o, nil
}
