package domain

import (
	"context"
	"errors"
)

type CreateAccrualRequest struct {
	PeriodID string
	PlotID   string
	TariffID string
	Amount   int64
}

type ListAccrualRequest struct {
	PeriodID string
	PlotID   string
	TariffID string
	Status   string
}

type ListAccrualResponse struct {
	Accruals []Accrual `json:"accruals"`
}

type GenerateResult struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}

type Service interface {
	Create(ctx context.Context, req CreateAccrualRequest) (Accrual, error)
	GetByID(ctx context.Context, id string) (Accrual, error)
	List(ctx context.Context, req ListAccrualRequest) (ListAccrualResponse, error)
	Delete(ctx context.Context, id string) error
	// GenerateForPeriod bulk-creates accruals for every plot and active
	// tariff in the period, skipping combinations that already exist.
	GenerateForPeriod(ctx context.Context, periodID string) (GenerateResult, error)
}

var (
	ErrNotFound         = errors.New("accrual_not_found")
	ErrInvalidID        = errors.New("invalid_accrual_id")
	ErrInvalidPeriodID  = errors.New("invalid_period_id")
	ErrInvalidPlotID    = errors.New("invalid_plot_id")
	ErrInvalidTariffID  = errors.New("invalid_tariff_id")
	ErrInvalidAmount    = errors.New("invalid_accrual_amount")
	ErrInvalidStatus    = errors.New("invalid_accrual_status")
	ErrDuplicateAccrual = errors.New("duplicate_accrual")
	ErrPeriodNotFound   = errors.New("period_not_found")
	ErrPeriodClosed     = errors.New("period_closed")
)
