package models

import "time"

// The rows below are owned by the contract lifecycle and unit directory
// services. The billing engine only reads them.

const ContractActive = "active"

type Contract struct {
	ID         string     `gorm:"primaryKey;size:36" json:"id"`
	AgencyID   string     `gorm:"size:36;index;not null" json:"agencyId"`
	UnitID     string     `gorm:"size:36;index" json:"unitId"`
	TenantName string     `gorm:"size:128" json:"tenantName"`
	Status     string     `gorm:"size:16;index;not null" json:"status"`
	StartDate  time.Time  `json:"startDate"`
	EndDate    *time.Time `json:"endDate,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

func (Contract) TableName() string { return "contracts" }

type Unit struct {
	ID            string    `gorm:"primaryKey;size:36" json:"id"`
	AgencyID      string    `gorm:"size:36;index;not null" json:"agencyId"`
	CondominiumID *string   `gorm:"size:36;index" json:"condominiumId,omitempty"`
	Name          string    `gorm:"size:128" json:"name"`
	CreatedAt     time.Time `json:"createdAt"`
}

func (Unit) TableName() string { return "units" }

// UnitOwner links an owner to a unit; at most one link per unit is active.
type UnitOwner struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	AgencyID  string    `gorm:"size:36;index;not null" json:"agencyId"`
	UnitID    string    `gorm:"size:36;index;not null" json:"unitId"`
	OwnerName string    `gorm:"size:128" json:"ownerName"`
	IsActive  bool      `gorm:"index;not null" json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

func (UnitOwner) TableName() string { return "unit_owners" }
