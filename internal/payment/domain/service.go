package domain

import (
	"context"
	"errors"
	"time"
)

type CreatePaymentRequest struct {
	PlotID     string
	PaidAt     time.Time
	Amount     int64
	Source     string
	ExternalID string
	RawRowHash string
	Comment    string
}

type ListPaymentRequest struct {
	PlotID   string
	Source   string
	PaidFrom *time.Time
	PaidTo   *time.Time
}

type ListPaymentResponse struct {
	Payments []Payment `json:"payments"`
}

type PaymentWithAllocations struct {
	Payment     Payment             `json:"payment"`
	Allocations []PaymentAllocation `json:"allocations"`
	Allocated   int64               `json:"allocated"`
	Unallocated int64               `json:"unallocated"`
}

type Service interface {
	Create(ctx context.Context, req CreatePaymentRequest) (Payment, error)
	GetByID(ctx context.Context, id string) (PaymentWithAllocations, error)
	List(ctx context.Context, req ListPaymentRequest) (ListPaymentResponse, error)
	Delete(ctx context.Context, id string) error
	// DeleteAllocation removes one allocation (correction flow) and
	// recomputes the affected accrual's status.
	DeleteAllocation(ctx context.Context, allocationID string) error
}

var (
	ErrNotFound           = errors.New("payment_not_found")
	ErrAllocationNotFound = errors.New("allocation_not_found")
	ErrInvalidID          = errors.New("invalid_payment_id")
	ErrInvalidPlotID      = errors.New("invalid_plot_id")
	ErrInvalidAmount      = errors.New("invalid_payment_amount")
	ErrInvalidSource      = errors.New("invalid_payment_source")
	ErrInvalidPaidAt      = errors.New("invalid_paid_at")
	ErrDuplicateRowHash   = errors.New("duplicate_row_hash")
	ErrHasAllocations     = errors.New("payment_has_allocations")
)
