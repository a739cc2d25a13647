// Package testutil opens throwaway databases and seeds the collaborator
// tables (contracts, units, owners) for package tests.
package testutil

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/Homesapp/HomesappNew-sub000/internal/config"
	"github.com/Homesapp/HomesappNew-sub000/internal/database"
	"github.com/Homesapp/HomesappNew-sub000/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// NewDB opens a migrated SQLite database in a temp dir. maxOpen limits the
// pool; pass 0 for the default.
func NewDB(t *testing.T, maxOpen int) *gorm.DB {
	t.Helper()
	db, err := database.Init(config.DatabaseConfig{
		Driver:       "sqlite",
		Path:         filepath.Join(t.TempDir(), "billing.db"),
		MaxOpenConns: maxOpen,
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// Date builds a UTC midnight date.
func Date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Fixture is one agency with an active contract on a unit that has an owner.
type Fixture struct {
	AgencyID string
	Contract *models.Contract
	Unit     *models.Unit
	Owner    *models.UnitOwner
}

// ContractOpts tweaks the seeded contract.
type ContractOpts struct {
	Status  string
	Start   time.Time
	End     *time.Time
	NoOwner bool
	NoUnit  bool
}

// Seed inserts a unit, its owner and a contract for a fresh agency.
func Seed(t *testing.T, db *gorm.DB, opts ContractOpts) *Fixture {
	t.Helper()
	return SeedFor(t, db, uuid.NewString(), opts)
}

// SeedFor is Seed for a given agency.
func SeedFor(t *testing.T, db *gorm.DB, agencyID string, opts ContractOpts) *Fixture {
	t.Helper()
	f := &Fixture{AgencyID: agencyID}

	condo := uuid.NewString()
	unit := &models.Unit{ID: uuid.NewString(), AgencyID: agencyID, CondominiumID: &condo, Name: "Unit 4B"}
	if !opts.NoUnit {
		require.NoError(t, db.Create(unit).Error)
		f.Unit = unit
	}

	if !opts.NoOwner && !opts.NoUnit {
		owner := &models.UnitOwner{
			ID:        uuid.NewString(),
			AgencyID:  agencyID,
			UnitID:    unit.ID,
			OwnerName: "Laura Owner",
			IsActive:  true,
		}
		require.NoError(t, db.Create(owner).Error)
		f.Owner = owner
	}

	status := opts.Status
	if status == "" {
		status = models.ContractActive
	}
	start := opts.Start
	if start.IsZero() {
		start = Date(2025, time.January, 1)
	}
	contract := &models.Contract{
		ID:         uuid.NewString(),
		AgencyID:   agencyID,
		UnitID:     unit.ID,
		TenantName: "Tomas Tenant",
		Status:     status,
		StartDate:  start,
		EndDate:    opts.End,
	}
	require.NoError(t, db.Create(contract).Error)
	f.Contract = contract
	return f
}

// TimePtr returns a pointer to t.
func TimePtr(t time.Time) *time.Time { return &t }
