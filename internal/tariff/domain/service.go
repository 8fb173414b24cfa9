package domain

import (
	"context"
	"errors"
	"time"
)

type CreateTariffRequest struct {
	Code       string
	Type       string
	Title      string
	Amount     int64
	AppliesTo  string
	ActiveFrom time.Time
	ActiveTo   *time.Time
}

type UpdateTariffRequest struct {
	ID       string
	Title    *string
	Status   *string
	ActiveTo *time.Time
}

type ListTariffRequest struct {
	Type   string
	Status string
}

type ListTariffResponse struct {
	Tariffs []Tariff `json:"tariffs"`
}

type Service interface {
	Create(ctx context.Context, req CreateTariffRequest) (Tariff, error)
	Update(ctx context.Context, req UpdateTariffRequest) (Tariff, error)
	GetByID(ctx context.Context, id string) (Tariff, error)
	List(ctx context.Context, req ListTariffRequest) (ListTariffResponse, error)
	Delete(ctx context.Context, id string) error
}

var (
	ErrNotFound         = errors.New("tariff_not_found")
	ErrInvalidID        = errors.New("invalid_tariff_id")
	ErrInvalidCode      = errors.New("invalid_tariff_code")
	ErrInvalidTitle     = errors.New("invalid_tariff_title")
	ErrInvalidAmount    = errors.New("invalid_tariff_amount")
	ErrInvalidAppliesTo = errors.New("invalid_applies_to")
	ErrInvalidStatus    = errors.New("invalid_tariff_status")
	ErrDuplicateCode    = errors.New("duplicate_tariff_code")
)
