package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/sadovo/vznos/internal/plot/domain"
	"github.com/sadovo/vznos/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, plot *domain.Plot) error {
	return db.WithContext(ctx).Create(plot).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, plot *domain.Plot) error {
	return db.WithContext(ctx).Save(plot).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Plot, error) {
	return r.findOne(ctx, db, "id = ?", id)
}

func (r *repo) FindByNumber(ctx context.Context, db *gorm.DB, number string) (*domain.Plot, error) {
	return r.findOne(ctx, db, "number = ?", number)
}

func (r *repo) FindByPhone(ctx context.Context, db *gorm.DB, phoneNormalized string) (*domain.Plot, error) {
	return r.findOne(ctx, db, "phone_normalized = ? AND phone_normalized <> ''", phoneNormalized)
}

func (r *repo) FindByOwnerName(ctx context.Context, db *gorm.DB, ownerName string) (*domain.Plot, error) {
	return r.findOne(ctx, db, "LOWER(owner_name) = LOWER(?)", ownerName)
}

func (r *repo) findOne(ctx context.Context, db *gorm.DB, query string, args ...any) (*domain.Plot, error) {
	var plot domain.Plot
	err := db.WithContext(ctx).Where(query, args...).Limit(1).Find(&plot).Error
	if err != nil {
		return nil, err
	}
	if plot.ID == 0 {
		return nil, nil
	}
	return &plot, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListPlotFilter, page pagination.Pagination) ([]*domain.Plot, error) {
	var plots []*domain.Plot
	stmt := db.WithContext(ctx).Model(&domain.Plot{})
	if filter.Number != "" {
		stmt = stmt.Where("number = ?", filter.Number)
	}
	if filter.OwnerName != "" {
		stmt = stmt.Where("LOWER(owner_name) LIKE LOWER(?)", "%"+filter.OwnerName+"%")
	}
	if page.PageToken != "" {
		cursor, err := pagination.DecodeCursor(page.PageToken)
		if err != nil {
			return nil, err
		}
		stmt = stmt.Where("id > ?", cursor.ID)
	}
	if page.PageSize > 0 {
		stmt = stmt.Limit(page.PageSize + 1)
	}
	err := stmt.Order("number asc, id asc").Find(&plots).Error
	if err != nil {
		return nil, err
	}
	return plots, nil
}

func (r *repo) ListAll(ctx context.Context, db *gorm.DB) ([]*domain.Plot, error) {
	var plots []*domain.Plot
	err := db.WithContext(ctx).Order("number asc").Find(&plots).Error
	if err != nil {
		return nil, err
	}
	return plots, nil
}
