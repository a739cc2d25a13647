package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Direction of a ledger entry, seen from the agency.
type Direction string

const (
	Inflow  Direction = "inflow"
	Outflow Direction = "outflow"
)

func (d Direction) Valid() bool { return d == Inflow || d == Outflow }

// LedgerStatus only ever moves forward: pending -> posted -> reconciled.
type LedgerStatus string

const (
	LedgerPending    LedgerStatus = "pending"
	LedgerPosted     LedgerStatus = "posted"
	LedgerReconciled LedgerStatus = "reconciled"
)

func (s LedgerStatus) rank() int {
	switch s {
	case LedgerPending:
		return 0
	case LedgerPosted:
		return 1
	case LedgerReconciled:
		return 2
	}
	return -1
}

func (s LedgerStatus) Valid() bool { return s.rank() >= 0 }

// CanMoveTo reports whether next is s itself or the status right after it.
// An entry is posted before it can be reconciled.
func (s LedgerStatus) CanMoveTo(next LedgerStatus) bool {
	if !s.Valid() || !next.Valid() {
		return false
	}
	step := next.rank() - s.rank()
	return step == 0 || step == 1
}

// LedgerCategory is the accounting category of an entry.
type LedgerCategory string

const (
	CategoryRentIncome         LedgerCategory = "rent_income"
	CategoryServiceElectricity LedgerCategory = "service_electricity"
	CategoryServiceWater       LedgerCategory = "service_water"
	CategoryServiceInternet    LedgerCategory = "service_internet"
	CategoryServiceGas         LedgerCategory = "service_gas"
	CategoryHOAFee             LedgerCategory = "hoa_fee"
	CategoryMaintenanceCharge  LedgerCategory = "maintenance_charge"
	CategoryServiceOther       LedgerCategory = "service_other"
	CategoryOwnerPayout        LedgerCategory = "owner_payout"
	CategoryAgencyCommission   LedgerCategory = "agency_commission"
	CategoryAdjustment         LedgerCategory = "adjustment"
)

// Party role tags stamped on ledger entries.
const (
	RoleTenant = "tenant"
	RoleOwner  = "owner"
	RoleAgency = "agency"
)

// FinancialTransaction is one ledger entry. Entries created from a payment
// carry its id; PaymentID is unique so a payment has at most one entry.
type FinancialTransaction struct {
	Base
	AgencyID    string          `gorm:"size:36;not null;index" json:"agencyId"`
	Direction   Direction       `gorm:"size:8;not null;index" json:"direction"`
	Category    LedgerCategory  `gorm:"size:32;not null;index" json:"category"`
	Status      LedgerStatus    `gorm:"size:16;not null;index" json:"status"`
	Description string          `gorm:"size:255" json:"description,omitempty"`
	GrossAmount decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"grossAmount"`
	Fees        decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"fees"`
	NetAmount   decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"netAmount"`
	Currency    string          `gorm:"size:3;not null" json:"currency"`

	DueDate       *time.Time `gorm:"index" json:"dueDate,omitempty"`
	PerformedDate *time.Time `gorm:"index" json:"performedDate,omitempty"`
	ReconciledAt  *time.Time `json:"reconciledAt,omitempty"`

	PayerRole string `gorm:"size:16" json:"payerRole,omitempty"`
	PayeeRole string `gorm:"size:16" json:"payeeRole,omitempty"`
	PayerName string `gorm:"size:128" json:"payerName,omitempty"`

	ContractID    *string `gorm:"size:36;index" json:"contractId,omitempty"`
	UnitID        *string `gorm:"size:36;index" json:"unitId,omitempty"`
	OwnerID       *string `gorm:"size:36;index" json:"ownerId,omitempty"`
	CondominiumID *string `gorm:"size:36;index" json:"condominiumId,omitempty"`
	PaymentID     *string `gorm:"size:36;uniqueIndex" json:"paymentId,omitempty"`
	ScheduleID    *string `gorm:"size:36;index" json:"scheduleId,omitempty"`

	PaymentMethod    string `gorm:"size:32" json:"paymentMethod,omitempty"`
	PaymentReference string `gorm:"size:128;index" json:"paymentReference,omitempty"`
	ProofURL         string `gorm:"size:512" json:"proofUrl,omitempty"`
	Notes            string `gorm:"type:text" json:"notes,omitempty"`
	CreatedBy        string `gorm:"size:64" json:"createdBy,omitempty"`
}

func (FinancialTransaction) TableName() string { return "financial_transactions" }
