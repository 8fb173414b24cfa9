// Package domain defines read-side balance aggregation over accruals and
// payment allocations.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	accrualdomain "github.com/sadovo/vznos/internal/accrual/domain"
)

// PlotDebt is one row of the debtors report.
type PlotDebt struct {
	PlotID         snowflake.ID `json:"plot_id"`
	PlotNumber     string       `json:"plot_number,omitempty"`
	OwnerName      string       `json:"owner_name,omitempty"`
	TotalAccrued   int64        `json:"total_accrued"`
	TotalAllocated int64        `json:"total_allocated"`
	TotalDebt      int64        `json:"total_debt"`
}

type DebtsRequest struct {
	PeriodID string
	MinDebt  int64
}

type DebtsResponse struct {
	Debts []PlotDebt `json:"debts"`
}

// PeriodSummary aggregates one period across all plots.
type PeriodSummary struct {
	PeriodID     snowflake.ID `json:"period_id"`
	PeriodLabel  string       `json:"period_label"`
	TotalAccrued int64        `json:"total_accrued"`
	TotalPaid    int64        `json:"total_paid"`
	TotalDebt    int64        `json:"total_debt"`
}

// AccrualBalance is the per-charge breakdown inside a plot balance.
type AccrualBalance struct {
	Accrual   accrualdomain.Accrual       `json:"accrual"`
	Allocated int64                       `json:"allocated"`
	Remaining int64                       `json:"remaining"`
	Status    accrualdomain.AccrualStatus `json:"status"`
	CreatedAt time.Time                   `json:"created_at"`
}

// PlotBalance reports a plot's standing, optionally narrowed to a period.
type PlotBalance struct {
	PlotID       snowflake.ID     `json:"plot_id"`
	TotalAccrued int64            `json:"total_accrued"`
	TotalPaid    int64            `json:"total_paid"`
	TotalDebt    int64            `json:"total_debt"`
	Accruals     []AccrualBalance `json:"accruals"`
}

type Service interface {
	// ComputeDebtsByPlot sums accrued and allocated amounts per plot,
	// clamps overpayment to zero and sorts descending by debt.
	ComputeDebtsByPlot(ctx context.Context, req DebtsRequest) (DebtsResponse, error)
	GetPeriodSummary(ctx context.Context, periodID string) (PeriodSummary, error)
	GetPlotBalance(ctx context.Context, plotID, periodID string) (PlotBalance, error)
}

var (
	ErrInvalidPeriodID = errors.New("invalid_period_id")
	ErrInvalidPlotID   = errors.New("invalid_plot_id")
	ErrPeriodNotFound  = errors.New("period_not_found")
)
