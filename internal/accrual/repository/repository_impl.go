package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/sadovo/vznos/internal/accrual/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, accrual *domain.Accrual) error {
	return db.WithContext(ctx).Create(accrual).Error
}

func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status domain.AccrualStatus) error {
	return db.WithContext(ctx).
		Model(&domain.Accrual{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     status,
			"updated_at": time.Now().UTC(),
		}).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Delete(&domain.Accrual{}, "id = ?", id).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Accrual, error) {
	var accrual domain.Accrual
	err := db.WithContext(ctx).Where("id = ?", id).Limit(1).Find(&accrual).Error
	if err != nil {
		return nil, err
	}
	if accrual.ID == 0 {
		return nil, nil
	}
	return &accrual, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListAccrualFilter) ([]*domain.Accrual, error) {
	var accruals []*domain.Accrual
	stmt := db.WithContext(ctx).Model(&domain.Accrual{})
	if filter.PeriodID != 0 {
		stmt = stmt.Where("period_id = ?", filter.PeriodID)
	}
	if filter.PlotID != 0 {
		stmt = stmt.Where("plot_id = ?", filter.PlotID)
	}
	if filter.TariffID != 0 {
		stmt = stmt.Where("tariff_id = ?", filter.TariffID)
	}
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	err := stmt.Order("created_at desc, id desc").Find(&accruals).Error
	if err != nil {
		return nil, err
	}
	return accruals, nil
}

func (r *repo) ListByPlotOldestFirst(ctx context.Context, db *gorm.DB, plotID snowflake.ID) ([]*domain.Accrual, error) {
	var accruals []*domain.Accrual
	err := db.WithContext(ctx).
		Where("plot_id = ?", plotID).
		Order("created_at asc, id asc").
		Find(&accruals).Error
	if err != nil {
		return nil, err
	}
	return accruals, nil
}

func (r *repo) Exists(ctx context.Context, db *gorm.DB, periodID, plotID, tariffID snowflake.ID) (bool, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.Accrual{}).
		Where("period_id = ? AND plot_id = ? AND tariff_id = ?", periodID, plotID, tariffID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
