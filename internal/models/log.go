package models

import "time"

// AuditLog records mutating API calls per agency.
// Path and request body are stored encrypted only.
type AuditLog struct {
	ID        uint   `gorm:"primaryKey"`
	AgencyID  string `gorm:"size:36;index;not null"`
	ActorID   string `gorm:"size:64;index"`
	RequestID string `gorm:"size:36;index"`
	Method    string `gorm:"size:16"`
	PathEnc   string `gorm:"size:1024"`
	ActionEnc string `gorm:"size:4096"` // method + path + body summary
	Status    int
	IP        string `gorm:"size:64"`
	UserAgent string `gorm:"size:255"`
	CreatedAt time.Time
}
