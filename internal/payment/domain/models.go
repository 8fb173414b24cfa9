// Package domain contains persistence models for payments and their
// allocations onto accruals.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// PaymentSource distinguishes manual office entry from bank-registry import.
type PaymentSource string

const (
	PaymentSourceManual PaymentSource = "manual"
	PaymentSourceImport PaymentSource = "import"
)

// Payment is a receipt of money, possibly not yet linked to a plot.
// Immutable after creation except for allocation linkage.
type Payment struct {
	ID         snowflake.ID      `gorm:"primaryKey" json:"id"`
	PlotID     *snowflake.ID     `gorm:"index" json:"plot_id,omitempty"`
	PaidAt     time.Time         `gorm:"not null" json:"paid_at"`
	Amount     int64             `gorm:"not null" json:"amount"`
	Source     PaymentSource     `gorm:"type:text;not null;default:'manual'" json:"source"`
	ExternalID string            `gorm:"type:text" json:"external_id,omitempty"`
	RawRowHash string            `gorm:"type:text;index" json:"raw_row_hash,omitempty"`
	Comment    string            `gorm:"type:text" json:"comment,omitempty"`
	Metadata   datatypes.JSONMap `gorm:"type:jsonb" json:"metadata"`
	CreatedAt  time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Payment) TableName() string { return "payments" }

// PaymentAllocation applies part of a payment's amount to one accrual.
// Append-only except for correction flows.
type PaymentAllocation struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	PaymentID snowflake.ID `gorm:"not null;index" json:"payment_id"`
	AccrualID snowflake.ID `gorm:"not null;index" json:"accrual_id"`
	Amount    int64        `gorm:"not null" json:"amount"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (PaymentAllocation) TableName() string { return "payment_allocations" }
