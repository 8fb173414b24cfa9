package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ListPaymentFilter struct {
	PlotID   snowflake.ID
	Source   PaymentSource
	PaidFrom *time.Time
	PaidTo   *time.Time
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, payment *Payment) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Payment, error)
	// FindByIDForUpdate locks the payment row for the duration of the
	// surrounding transaction on dialects that support it.
	FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Payment, error)
	FindByRawRowHash(ctx context.Context, db *gorm.DB, hash string) (*Payment, error)
	List(ctx context.Context, db *gorm.DB, filter ListPaymentFilter) ([]*Payment, error)

	InsertAllocation(ctx context.Context, db *gorm.DB, allocation *PaymentAllocation) error
	DeleteAllocation(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	FindAllocationByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*PaymentAllocation, error)
	ListAllocationsByPayment(ctx context.Context, db *gorm.DB, paymentID snowflake.ID) ([]*PaymentAllocation, error)
	ListAllocationsByAccrual(ctx context.Context, db *gorm.DB, accrualID snowflake.ID) ([]*PaymentAllocation, error)
	SumAllocationsByPayment(ctx context.Context, db *gorm.DB, paymentID snowflake.ID) (int64, error)
	SumAllocationsByAccrual(ctx context.Context, db *gorm.DB, accrualID snowflake.ID) (int64, error)
}
