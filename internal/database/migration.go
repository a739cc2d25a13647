package database

import (
	"fmt"

	"github.com/Homesapp/HomesappNew-sub000/internal/models"

	"gorm.io/gorm"
)

// AutoMigrate runs database schema migrations for all models.
// The collaborator tables are migrated too so a standalone deployment and
// the tests have somewhere to read contracts from.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Contract{},
		&models.Unit{},
		&models.UnitOwner{},
		&models.PaymentSchedule{},
		&models.Payment{},
		&models.FinancialTransaction{},
		&models.AuditLog{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
