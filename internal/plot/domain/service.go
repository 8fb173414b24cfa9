package domain

import (
	"context"
	"errors"

	"github.com/sadovo/vznos/pkg/db/pagination"
)

type CreatePlotRequest struct {
	Number    string
	OwnerName string
	Phone     string
	AreaSqm   int64
}

type UpdatePlotRequest struct {
	ID        string
	OwnerName *string
	Phone     *string
	AreaSqm   *int64
}

type ListPlotRequest struct {
	pagination.Pagination
	Number    string
	OwnerName string
}

type ListPlotResponse struct {
	pagination.PageInfo
	Plots []Plot `json:"plots"`
}

type Service interface {
	Create(ctx context.Context, req CreatePlotRequest) (Plot, error)
	Update(ctx context.Context, req UpdatePlotRequest) (Plot, error)
	GetByID(ctx context.Context, id string) (Plot, error)
	List(ctx context.Context, req ListPlotRequest) (ListPlotResponse, error)
}

var (
	ErrNotFound        = errors.New("plot_not_found")
	ErrInvalidID       = errors.New("invalid_plot_id")
	ErrInvalidNumber   = errors.New("invalid_plot_number")
	ErrInvalidOwner    = errors.New("invalid_owner_name")
	ErrInvalidArea     = errors.New("invalid_area")
	ErrDuplicateNumber = errors.New("duplicate_plot_number")
)
