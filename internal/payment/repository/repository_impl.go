package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/sadovo/vznos/internal/payment/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, payment *domain.Payment) error {
	return db.WithContext(ctx).Create(payment).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Delete(&domain.Payment{}, "id = ?", id).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Payment, error) {
	return r.findOne(ctx, db, "id = ?", id)
}

func (r *repo) FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Payment, error) {
	stmt := db.WithContext(ctx)
	// sqlite has no SELECT ... FOR UPDATE; its writer lock already
	// serializes concurrent transactions.
	switch db.Dialector.Name() {
	case "postgres", "mysql":
		stmt = stmt.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var payment domain.Payment
	err := stmt.
		Where("id = ?", id).
		Limit(1).
		Find(&payment).Error
	if err != nil {
		return nil, err
	}
	if payment.ID == 0 {
		return nil, nil
	}
	return &payment, nil
}

func (r *repo) FindByRawRowHash(ctx context.Context, db *gorm.DB, hash string) (*domain.Payment, error) {
	if hash == "" {
		return nil, nil
	}
	return r.findOne(ctx, db, "raw_row_hash = ?", hash)
}

func (r *repo) findOne(ctx context.Context, db *gorm.DB, query string, args ...any) (*domain.Payment, error) {
	var payment domain.Payment
	err := db.WithContext(ctx).Where(query, args...).Limit(1).Find(&payment).Error
	if err != nil {
		return nil, err
	}
	if payment.ID == 0 {
		return nil, nil
	}
	return &payment, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListPaymentFilter) ([]*domain.Payment, error) {
	var payments []*domain.Payment
	stmt := db.WithContext(ctx).Model(&domain.Payment{})
	if filter.PlotID != 0 {
		stmt = stmt.Where("plot_id = ?", filter.PlotID)
	}
	if filter.Source != "" {
		stmt = stmt.Where("source = ?", filter.Source)
	}
	if filter.PaidFrom != nil {
		stmt = stmt.Where("paid_at >= ?", *filter.PaidFrom)
	}
	if filter.PaidTo != nil {
		stmt = stmt.Where("paid_at <= ?", *filter.PaidTo)
	}
	err := stmt.Order("created_at desc, id desc").Find(&payments).Error
	if err != nil {
		return nil, err
	}
	return payments, nil
}

func (r *repo) InsertAllocation(ctx context.Context, db *gorm.DB, allocation *domain.PaymentAllocation) error {
	return db.WithContext(ctx).Create(allocation).Error
}

func (r *repo) DeleteAllocation(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Delete(&domain.PaymentAllocation{}, "id = ?", id).Error
}

func (r *repo) FindAllocationByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.PaymentAllocation, error) {
	var allocation domain.PaymentAllocation
	err := db.WithContext(ctx).Where("id = ?", id).Limit(1).Find(&allocation).Error
	if err != nil {
		return nil, err
	}
	if allocation.ID == 0 {
		return nil, nil
	}
	return &allocation, nil
}

func (r *repo) ListAllocationsByPayment(ctx context.Context, db *gorm.DB, paymentID snowflake.ID) ([]*domain.PaymentAllocation, error) {
	return r.listAllocations(ctx, db, "payment_id = ?", paymentID)
}

func (r *repo) ListAllocationsByAccrual(ctx context.Context, db *gorm.DB, accrualID snowflake.ID) ([]*domain.PaymentAllocation, error) {
	return r.listAllocations(ctx, db, "accrual_id = ?", accrualID)
}

func (r *repo) listAllocations(ctx context.Context, db *gorm.DB, query string, arg any) ([]*domain.PaymentAllocation, error) {
	var allocations []*domain.PaymentAllocation
	err := db.WithContext(ctx).
		Where(query, arg).
		Order("created_at asc, id asc").
		Find(&allocations).Error
	if err != nil {
		return nil, err
	}
	return allocations, nil
}

func (r *repo) SumAllocationsByPayment(ctx context.Context, db *gorm.DB, paymentID snowflake.ID) (int64, error) {
	return r.sumAllocations(ctx, db, "payment_id = ?", paymentID)
}

func (r *repo) SumAllocationsByAccrual(ctx context.Context, db *gorm.DB, accrualID snowflake.ID) (int64, error) {
	return r.sumAllocations(ctx, db, "accrual_id = ?", accrualID)
}

func (r *repo) sumAllocations(ctx context.Context, db *gorm.DB, query string, arg any) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.PaymentAllocation{}).
		Where(query, arg).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}
