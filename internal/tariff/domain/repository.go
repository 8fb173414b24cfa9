package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ListTariffFilter struct {
	Type   string
	Status TariffStatus
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, tariff *Tariff) error
	Update(ctx context.Context, db *gorm.DB, tariff *Tariff) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Tariff, error)
	FindByCode(ctx context.Context, db *gorm.DB, code string) (*Tariff, error)
	List(ctx context.Context, db *gorm.DB, filter ListTariffFilter) ([]*Tariff, error)
}
