package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
	PaymentStatusFailed  = "failed"
)

type Plan struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Code         string    `gorm:"size:50;uniqueIndex;not null" json:"code"`
	Name         string    `gorm:"size:100;not null" json:"name"`
	PriceCents   int       `gorm:"not null" json:"price_cents"`
	Currency     string    `gorm:"size:3;not null;default:'USD'" json:"currency"`
	DurationDays int       `gorm:"not null" json:"duration_days"`
	IsActive     bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

type Subscription struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	UserID        uint       `gorm:"not null;index" json:"user_id"`
	PlanID        uint       `gorm:"not null" json:"plan_id"`
	Plan          Plan       `gorm:"foreignKey:PlanID" json:"plan,omitempty"`
	PaymentRef    string     `gorm:"size:64;uniqueIndex;not null" json:"payment_ref"`
	PaymentStatus string     `gorm:"size:20;not null;default:'pending'" json:"payment_status"`
	StartDate     *time.Time `json:"start_date,omitempty"`
	ExpiryDate    *time.Time `gorm:"index" json:"expiry_date,omitempty"`
	IsActive      bool       `gorm:"not null;default:false;index" json:"is_active"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// PaymentEvent is the webhook idempotency ledger: one row per gateway event
// reference, inserted before the event is applied. A duplicate delivery hits
// the unique index and is dropped.
type PaymentEvent struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Reference   string         `gorm:"size:64;uniqueIndex;not null" json:"reference"`
	PaymentRef  string         `gorm:"size:64;not null;index" json:"payment_ref"`
	Status      string         `gorm:"size:20;not null" json:"status"`
	RawPayload  datatypes.JSON `json:"raw_payload,omitempty"`
	ProcessedAt time.Time      `json:"processed_at"`
}
