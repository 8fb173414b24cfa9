package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/sadovo/vznos/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListPlotFilter struct {
	Number    string
	OwnerName string
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, plot *Plot) error
	Update(ctx context.Context, db *gorm.DB, plot *Plot) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Plot, error)
	FindByNumber(ctx context.Context, db *gorm.DB, number string) (*Plot, error)
	FindByPhone(ctx context.Context, db *gorm.DB, phoneNormalized string) (*Plot, error)
	FindByOwnerName(ctx context.Context, db *gorm.DB, ownerName string) (*Plot, error)
	List(ctx context.Context, db *gorm.DB, filter ListPlotFilter, page pagination.Pagination) ([]*Plot, error)
	ListAll(ctx context.Context, db *gorm.DB) ([]*Plot, error)
}
