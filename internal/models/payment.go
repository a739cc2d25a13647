package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus is the lifecycle state of a Payment.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentPaid      PaymentStatus = "paid"
	PaymentOverdue   PaymentStatus = "overdue"
	PaymentCancelled PaymentStatus = "cancelled"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentOverdue, PaymentCancelled:
		return true
	}
	return false
}

// Deletable reports whether a payment in this status may be removed.
func (s PaymentStatus) Deletable() bool {
	return s == PaymentPending || s == PaymentCancelled
}

// Payment is a single dated obligation, generated from a schedule or entered by hand.
// (AgencyID, ContractID, ScheduleID, DueDate) is unique; rows with a NULL
// ScheduleID never collide with each other.
type Payment struct {
	Base
	AgencyID    string          `gorm:"size:36;not null;index;uniqueIndex:idx_payment_obligation,priority:1" json:"agencyId"`
	ContractID  string          `gorm:"size:36;not null;index;uniqueIndex:idx_payment_obligation,priority:2" json:"contractId"`
	ScheduleID  *string         `gorm:"size:36;index;uniqueIndex:idx_payment_obligation,priority:3" json:"scheduleId,omitempty"`
	DueDate     time.Time       `gorm:"not null;index;uniqueIndex:idx_payment_obligation,priority:4" json:"dueDate"`
	ServiceType ServiceType     `gorm:"size:16;not null;index" json:"serviceType"`
	Amount      decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"amount"`
	Currency    string          `gorm:"size:3;not null" json:"currency"`
	Status      PaymentStatus   `gorm:"size:16;not null;index" json:"status"`

	PaidDate         *time.Time `json:"paidDate,omitempty"`
	PaidBy           string     `gorm:"size:64" json:"paidBy,omitempty"`
	ConfirmedBy      string     `gorm:"size:64" json:"confirmedBy,omitempty"`
	ConfirmedAt      *time.Time `json:"confirmedAt,omitempty"`
	PaymentMethod    string     `gorm:"size:32" json:"paymentMethod,omitempty"`
	PaymentReference string     `gorm:"size:128;index" json:"paymentReference,omitempty"`
	PaymentProofURL  string     `gorm:"size:512" json:"paymentProofUrl,omitempty"`
	Notes            string     `gorm:"type:text" json:"notes,omitempty"`
	ReminderSentAt   *time.Time `json:"reminderSentAt,omitempty"`
}

func (Payment) TableName() string { return "payments" }
