package domain

import (
	"context"
	"errors"
)

type CreatePeriodRequest struct {
	Year  int
	Month int
}

type ListPeriodRequest struct {
	Year   int
	Status string
}

type ListPeriodResponse struct {
	Periods []Period `json:"periods"`
}

type Service interface {
	Create(ctx context.Context, req CreatePeriodRequest) (Period, error)
	GetByID(ctx context.Context, id string) (Period, error)
	List(ctx context.Context, req ListPeriodRequest) (ListPeriodResponse, error)
	Close(ctx context.Context, id string) (Period, error)
	Delete(ctx context.Context, id string) error
}

var (
	ErrNotFound        = errors.New("period_not_found")
	ErrInvalidID       = errors.New("invalid_period_id")
	ErrInvalidYear     = errors.New("invalid_year")
	ErrInvalidMonth    = errors.New("invalid_month")
	ErrInvalidStatus   = errors.New("invalid_period_status")
	ErrDuplicatePeriod = errors.New("duplicate_period")
	ErrAlreadyClosed   = errors.New("period_already_closed")
)
