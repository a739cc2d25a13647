package models

import "github.com/shopspring/decimal"

// ServiceType is the kind of recurring charge a schedule or payment covers.
type ServiceType string

const (
	ServiceRent        ServiceType = "rent"
	ServiceElectricity ServiceType = "electricity"
	ServiceWater       ServiceType = "water"
	ServiceInternet    ServiceType = "internet"
	ServiceGas         ServiceType = "gas"
	ServiceHOA         ServiceType = "hoa"
	ServiceMaintenance ServiceType = "maintenance"
	ServiceSpecial     ServiceType = "special"
	ServiceOther       ServiceType = "other"
)

// Valid reports whether s belongs to the service taxonomy.
func (s ServiceType) Valid() bool {
	switch s {
	case ServiceRent, ServiceElectricity, ServiceWater, ServiceInternet, ServiceGas,
		ServiceHOA, ServiceMaintenance, ServiceSpecial, ServiceOther:
		return true
	}
	return false
}

// PaymentSchedule is a recurring obligation attached to a contract.
// It is never required to be deleted: IsActive=false stops generation.
type PaymentSchedule struct {
	Base
	AgencyID    string          `gorm:"size:36;index;not null" json:"agencyId"`
	ContractID  string          `gorm:"size:36;index;not null" json:"contractId"`
	ServiceType ServiceType     `gorm:"size:16;not null" json:"serviceType"`
	Amount      decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"amount"`
	Currency    string          `gorm:"size:3;not null" json:"currency"`
	DayOfMonth  int             `gorm:"not null" json:"dayOfMonth"` // 1..31
	IsActive    bool            `gorm:"index;not null" json:"isActive"`
	Description string          `gorm:"size:255" json:"description"`
	CreatedBy   string          `gorm:"size:64" json:"createdBy"`
}

func (PaymentSchedule) TableName() string { return "payment_schedules" }
