// Package domain contains persistence models for accruals, the individual
// charges of a tariff against a plot within a billing period.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// AccrualStatus is derived from the sum of allocations against the accrual
// and stored denormalized for cheap listing.
type AccrualStatus string

const (
	AccrualStatusPending AccrualStatus = "pending"
	AccrualStatusPartial AccrualStatus = "partial"
	AccrualStatusPaid    AccrualStatus = "paid"
)

// Accrual is one charge. The (period, plot, tariff) triple is unique.
type Accrual struct {
	ID        snowflake.ID  `gorm:"primaryKey" json:"id"`
	PeriodID  snowflake.ID  `gorm:"not null;index;uniqueIndex:ux_accruals_period_plot_tariff,priority:1" json:"period_id"`
	PlotID    snowflake.ID  `gorm:"not null;index;uniqueIndex:ux_accruals_period_plot_tariff,priority:2" json:"plot_id"`
	TariffID  snowflake.ID  `gorm:"not null;index;uniqueIndex:ux_accruals_period_plot_tariff,priority:3" json:"tariff_id"`
	Amount    int64         `gorm:"not null" json:"amount"`
	Status    AccrualStatus `gorm:"type:text;not null;default:'pending'" json:"status"`
	CreatedAt time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Accrual) TableName() string { return "accruals" }

// StatusFor derives the stored status from the allocated total:
// paid when fully covered, partial when partly, pending when untouched.
func StatusFor(allocated, amount int64) AccrualStatus {
	switch {
	case allocated <= 0:
		return AccrualStatusPending
	case allocated >= amount:
		return AccrualStatusPaid
	default:
		return AccrualStatusPartial
	}
}
