package billing

import "github.com/Homesapp/HomesappNew-sub000/internal/models"

// ledgerCategories maps a payment's service type to its ledger category.
// special and other both land on service_other.
var ledgerCategories = map[models.ServiceType]models.LedgerCategory{
	models.ServiceRent:        models.CategoryRentIncome,
	models.ServiceElectricity: models.CategoryServiceElectricity,
	models.ServiceWater:       models.CategoryServiceWater,
	models.ServiceInternet:    models.CategoryServiceInternet,
	models.ServiceGas:         models.CategoryServiceGas,
	models.ServiceHOA:         models.CategoryHOAFee,
	models.ServiceMaintenance: models.CategoryMaintenanceCharge,
	models.ServiceSpecial:     models.CategoryServiceOther,
	models.ServiceOther:       models.CategoryServiceOther,
}

// LedgerCategoryFor returns the ledger category for a service type.
func LedgerCategoryFor(s models.ServiceType) models.LedgerCategory {
	if c, ok := ledgerCategories[s]; ok {
		return c
	}
	return models.CategoryServiceOther
}

// payeeRoleFor: rent is collected on behalf of the owner; every other
// charge is collected by the agency.
func payeeRoleFor(s models.ServiceType, hasOwner bool) string {
	if s == models.ServiceRent && hasOwner {
		return models.RoleOwner
	}
	return models.RoleAgency
}
