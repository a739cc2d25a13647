package billing

import (
	"testing"

	"github.com/Homesapp/HomesappNew-sub000/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestLedgerCategoryFor(t *testing.T) {
	cases := map[models.ServiceType]models.LedgerCategory{
		models.ServiceRent:        models.CategoryRentIncome,
		models.ServiceElectricity: models.CategoryServiceElectricity,
		models.ServiceWater:       models.CategoryServiceWater,
		models.ServiceInternet:    models.CategoryServiceInternet,
		models.ServiceGas:         models.CategoryServiceGas,
		models.ServiceHOA:         models.CategoryHOAFee,
		models.ServiceMaintenance: models.CategoryMaintenanceCharge,
		models.ServiceSpecial:     models.CategoryServiceOther,
		models.ServiceOther:       models.CategoryServiceOther,
		"unknown":                 models.CategoryServiceOther,
	}
	for svc, want := range cases {
		assert.Equal(t, want, LedgerCategoryFor(svc), string(svc))
	}
}

func TestPayeeRoleFor(t *testing.T) {
	assert.Equal(t, models.RoleOwner, payeeRoleFor(models.ServiceRent, true))
	assert.Equal(t, models.RoleAgency, payeeRoleFor(models.ServiceRent, false))
	assert.Equal(t, models.RoleAgency, payeeRoleFor(models.ServiceWater, true))
}
