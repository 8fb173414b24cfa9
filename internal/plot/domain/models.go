// Package domain contains persistence models for the plot registry.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Plot represents a parcel within the partnership, the unit of billing.
type Plot struct {
	ID              snowflake.ID      `gorm:"primaryKey" json:"id"`
	Number          string            `gorm:"type:text;not null;uniqueIndex:ux_plots_number" json:"number"`
	OwnerName       string            `gorm:"type:text;not null" json:"owner_name"`
	Phone           string            `gorm:"type:text" json:"phone"`
	PhoneNormalized string            `gorm:"type:text;index" json:"-"`
	AreaSqm         int64             `gorm:"not null;default:0" json:"area_sqm"`
	Metadata        datatypes.JSONMap `gorm:"type:jsonb" json:"metadata"`
	CreatedAt       time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt       time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Plot) TableName() string { return "plots" }
