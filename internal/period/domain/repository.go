package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ListPeriodFilter struct {
	Year   int
	Status PeriodStatus
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, period *Period) error
	Update(ctx context.Context, db *gorm.DB, period *Period) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Period, error)
	FindByYearMonth(ctx context.Context, db *gorm.DB, year, month int) (*Period, error)
	List(ctx context.Context, db *gorm.DB, filter ListPeriodFilter) ([]*Period, error)
}
