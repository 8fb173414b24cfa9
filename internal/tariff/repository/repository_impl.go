package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/sadovo/vznos/internal/tariff/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, tariff *domain.Tariff) error {
	return db.WithContext(ctx).Create(tariff).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, tariff *domain.Tariff) error {
	return db.WithContext(ctx).Save(tariff).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Delete(&domain.Tariff{}, "id = ?", id).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Tariff, error) {
	return r.findOne(ctx, db, "id = ?", id)
}

func (r *repo) FindByCode(ctx context.Context, db *gorm.DB, code string) (*domain.Tariff, error) {
	return r.findOne(ctx, db, "code = ?", code)
}

func (r *repo) findOne(ctx context.Context, db *gorm.DB, query string, args ...any) (*domain.Tariff, error) {
	var tariff domain.Tariff
	err := db.WithContext(ctx).Where(query, args...).Limit(1).Find(&tariff).Error
	if err != nil {
		return nil, err
	}
	if tariff.ID == 0 {
		return nil, nil
	}
	return &tariff, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListTariffFilter) ([]*domain.Tariff, error) {
	var tariffs []*domain.Tariff
	stmt := db.WithContext(ctx).Model(&domain.Tariff{})
	if filter.Type != "" {
		stmt = stmt.Where("type = ?", filter.Type)
	}
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	// Domain sort: active tariffs first, then by code.
	err := stmt.
		Order("CASE status WHEN 'active' THEN 0 ELSE 1 END").
		Order("code asc").
		Find(&tariffs).Error
	if err != nil {
		return nil, err
	}
	return tariffs, nil
}
