// Package domain contains persistence models for fee tariffs.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// TariffStatus marks whether a tariff participates in accrual generation.
type TariffStatus string

const (
	TariffStatusActive   TariffStatus = "active"
	TariffStatusInactive TariffStatus = "inactive"
)

// TariffAppliesTo selects how a tariff charge is computed per plot.
type TariffAppliesTo string

const (
	// AppliesToPlot charges the flat amount per plot.
	AppliesToPlot TariffAppliesTo = "plot"
	// AppliesToArea charges amount per square meter of plot area.
	AppliesToArea TariffAppliesTo = "area"
)

// Tariff is a fee definition. Amount is in kopecks and immutable after
// creation; changing a fee means creating a new tariff version under a
// new code.
type Tariff struct {
	ID         snowflake.ID    `gorm:"primaryKey" json:"id"`
	Code       string          `gorm:"type:text;not null;uniqueIndex:ux_tariffs_code" json:"code"`
	Type       string          `gorm:"type:text;not null" json:"type"`
	Title      string          `gorm:"type:text;not null" json:"title"`
	Amount     int64           `gorm:"not null" json:"amount"`
	AppliesTo  TariffAppliesTo `gorm:"type:text;not null;default:'plot'" json:"applies_to"`
	Status     TariffStatus    `gorm:"type:text;not null;default:'active'" json:"status"`
	ActiveFrom time.Time       `gorm:"not null" json:"active_from"`
	ActiveTo   *time.Time      `gorm:"" json:"active_to,omitempty"`
	CreatedAt  time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt  time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Tariff) TableName() string { return "tariffs" }

// ActiveAt reports whether the tariff applies at the given instant.
func (t Tariff) ActiveAt(at time.Time) bool {
	if t.Status != TariffStatusActive {
		return false
	}
	if at.Before(t.ActiveFrom) {
		return false
	}
	if t.ActiveTo != nil && at.After(*t.ActiveTo) {
		return false
	}
	return true
}
