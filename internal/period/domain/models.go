// Package domain contains persistence models for billing periods.
package domain

import (
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
)

// PeriodStatus represents the period lifecycle.
type PeriodStatus string

const (
	PeriodStatusOpen   PeriodStatus = "open"
	PeriodStatusClosed PeriodStatus = "closed"
)

// Period is one billing cycle (calendar year + month). Closing it is a
// terminal transition: closed periods reject new accruals.
type Period struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Year      int          `gorm:"not null;uniqueIndex:ux_periods_year_month,priority:1" json:"year"`
	Month     int          `gorm:"not null;uniqueIndex:ux_periods_year_month,priority:2" json:"month"`
	Status    PeriodStatus `gorm:"type:text;not null;default:'open'" json:"status"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Period) TableName() string { return "periods" }

// Label renders the period as YYYY-MM for reports and notifications.
func (p Period) Label() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}
