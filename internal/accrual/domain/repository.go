package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ListAccrualFilter struct {
	PeriodID snowflake.ID
	PlotID   snowflake.ID
	TariffID snowflake.ID
	Status   AccrualStatus
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, accrual *Accrual) error
	UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status AccrualStatus) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Accrual, error)
	// List returns accruals newest-first by creation time.
	List(ctx context.Context, db *gorm.DB, filter ListAccrualFilter) ([]*Accrual, error)
	// ListByPlotOldestFirst returns every accrual for a plot ordered by
	// creation time ascending, the order payments are applied in.
	ListByPlotOldestFirst(ctx context.Context, db *gorm.DB, plotID snowflake.ID) ([]*Accrual, error)
	Exists(ctx context.Context, db *gorm.DB, periodID, plotID, tariffID snowflake.ID) (bool, error)
}
