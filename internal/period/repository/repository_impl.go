package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/sadovo/vznos/internal/period/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, period *domain.Period) error {
	return db.WithContext(ctx).Create(period).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, period *domain.Period) error {
	return db.WithContext(ctx).Save(period).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Delete(&domain.Period{}, "id = ?", id).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Period, error) {
	var period domain.Period
	err := db.WithContext(ctx).Where("id = ?", id).Limit(1).Find(&period).Error
	if err != nil {
		return nil, err
	}
	if period.ID == 0 {
		return nil, nil
	}
	return &period, nil
}

func (r *repo) FindByYearMonth(ctx context.Context, db *gorm.DB, year, month int) (*domain.Period, error) {
	var period domain.Period
	err := db.WithContext(ctx).Where("year = ? AND month = ?", year, month).Limit(1).Find(&period).Error
	if err != nil {
		return nil, err
	}
	if period.ID == 0 {
		return nil, nil
	}
	return &period, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListPeriodFilter) ([]*domain.Period, error) {
	var periods []*domain.Period
	stmt := db.WithContext(ctx).Model(&domain.Period{})
	if filter.Year != 0 {
		stmt = stmt.Where("year = ?", filter.Year)
	}
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	err := stmt.Order("year desc, month desc").Find(&periods).Error
	if err != nil {
		return nil, err
	}
	return periods, nil
}
