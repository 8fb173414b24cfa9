package service

import (
	"context"
	"sort"
	"strings"

	"github.com/bwmarrin/snowflake"
	accrualdomain "github.com/sadovo/vznos/internal/accrual/domain"
	"github.com/sadovo/vznos/internal/debt/domain"
	paymentdomain "github.com/sadovo/vznos/internal/payment/domain"
	perioddomain "github.com/sadovo/vznos/internal/period/domain"
	plotdomain "github.com/sadovo/vznos/internal/plot/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	AccrualRepo accrualdomain.Repository
	PaymentRepo paymentdomain.Repository
	PeriodRepo  perioddomain.Repository
	PlotRepo    plotdomain.Repository
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	accrualRepo accrualdomain.Repository
	paymentRepo paymentdomain.Repository
	periodRepo  perioddomain.Repository
	plotRepo    plotdomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("debt.service"),
		accrualRepo: p.AccrualRepo,
		paymentRepo: p.PaymentRepo,
		periodRepo:  p.PeriodRepo,
		plotRepo:    p.PlotRepo,
	}
}

type plotTotalsRow struct {
	PlotID         snowflake.ID
	TotalAccrued   int64
	TotalAllocated int64
}

func (s *Service) ComputeDebtsByPlot(ctx context.Context, req domain.DebtsRequest) (domain.DebtsResponse, error) {
	var periodID snowflake.ID
	if strings.TrimSpace(req.PeriodID) != "" {
		parsed, err := snowflake.ParseString(strings.TrimSpace(req.PeriodID))
		if err != nil || parsed == 0 {
			return domain.DebtsResponse{}, domain.ErrInvalidPeriodID
		}
		periodID = parsed
	}

	rows, err := s.listPlotTotals(ctx, periodID)
	if err != nil {
		return domain.DebtsResponse{}, err
	}

	debts := make([]domain.PlotDebt, 0, len(rows))
	for _, row := range rows {
		debt := row.TotalAccrued - row.TotalAllocated
		if debt < 0 {
			// Overpayment shows as zero in the debtors report.
			debt = 0
		}
		if req.MinDebt > 0 && debt < req.MinDebt {
			continue
		}

		entry := domain.PlotDebt{
			PlotID:         row.PlotID,
			TotalAccrued:   row.TotalAccrued,
			TotalAllocated: row.TotalAllocated,
			TotalDebt:      debt,
		}
		if plot, err := s.plotRepo.FindByID(ctx, s.db, row.PlotID); err == nil && plot != nil {
			entry.PlotNumber = plot.Number
			entry.OwnerName = plot.OwnerName
		}
		debts = append(debts, entry)
	}

	sort.SliceStable(debts, func(i, j int) bool {
		return debts[i].TotalDebt > debts[j].TotalDebt
	})

	return domain.DebtsResponse{Debts: debts}, nil
}

func (s *Service) GetPeriodSummary(ctx context.Context, periodID string) (domain.PeriodSummary, error) {
	parsed, err := snowflake.ParseString(strings.TrimSpace(periodID))
	if err != nil || parsed == 0 {
		return domain.PeriodSummary{}, domain.ErrInvalidPeriodID
	}

	period, err := s.periodRepo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return domain.PeriodSummary{}, err
	}
	if period == nil {
		return domain.PeriodSummary{}, domain.ErrPeriodNotFound
	}

	var totals struct {
		TotalAccrued int64
		TotalPaid    int64
	}
	err = s.db.WithContext(ctx).Raw(
		`SELECT
			COALESCE(SUM(a.amount), 0) AS total_accrued,
			COALESCE((
				SELECT SUM(pa.amount)
				FROM payment_allocations pa
				JOIN accruals a2 ON a2.id = pa.accrual_id
				WHERE a2.period_id = ?
			), 0) AS total_paid
		 FROM accruals a
		 WHERE a.period_id = ?`,
		parsed,
		parsed,
	).Scan(&totals).Error
	if err != nil {
		return domain.PeriodSummary{}, err
	}

	return domain.PeriodSummary{
		PeriodID:     period.ID,
		PeriodLabel:  period.Label(),
		TotalAccrued: totals.TotalAccrued,
		TotalPaid:    totals.TotalPaid,
		TotalDebt:    totals.TotalAccrued - totals.TotalPaid,
	}, nil
}

func (s *Service) GetPlotBalance(ctx context.Context, plotID, periodID string) (domain.PlotBalance, error) {
	parsedPlot, err := snowflake.ParseString(strings.TrimSpace(plotID))
	if err != nil || parsedPlot == 0 {
		return domain.PlotBalance{}, domain.ErrInvalidPlotID
	}

	filter := accrualdomain.ListAccrualFilter{PlotID: parsedPlot}
	if strings.TrimSpace(periodID) != "" {
		parsedPeriod, err := snowflake.ParseString(strings.TrimSpace(periodID))
		if err != nil || parsedPeriod == 0 {
			return domain.PlotBalance{}, domain.ErrInvalidPeriodID
		}
		filter.PeriodID = parsedPeriod
	}

	accruals, err := s.accrualRepo.List(ctx, s.db, filter)
	if err != nil {
		return domain.PlotBalance{}, err
	}

	balance := domain.PlotBalance{PlotID: parsedPlot}
	balance.Accruals = make([]domain.AccrualBalance, 0, len(accruals))
	for _, accrual := range accruals {
		if accrual == nil {
			continue
		}

		allocated, err := s.paymentRepo.SumAllocationsByAccrual(ctx, s.db, accrual.ID)
		if err != nil {
			return domain.PlotBalance{}, err
		}

		balance.TotalAccrued += accrual.Amount
		balance.TotalPaid += allocated
		balance.Accruals = append(balance.Accruals, domain.AccrualBalance{
			Accrual:   *accrual,
			Allocated: allocated,
			Remaining: accrual.Amount - allocated,
			Status:    accrualdomain.StatusFor(allocated, accrual.Amount),
			CreatedAt: accrual.CreatedAt,
		})
	}
	// Raw signed balance here: staff need to see overpayment.
	balance.TotalDebt = balance.TotalAccrued - balance.TotalPaid

	return balance, nil
}

func (s *Service) listPlotTotals(ctx context.Context, periodID snowflake.ID) ([]plotTotalsRow, error) {
	var rows []plotTotalsRow
	query := `SELECT
			a.plot_id AS plot_id,
			COALESCE(SUM(a.amount), 0) AS total_accrued,
			COALESCE((
				SELECT SUM(pa.amount)
				FROM payment_allocations pa
				JOIN accruals a2 ON a2.id = pa.accrual_id
				WHERE a2.plot_id = a.plot_id`
	args := []any{}
	if periodID != 0 {
		query += ` AND a2.period_id = ?`
		args = append(args, periodID)
	}
	query += `), 0) AS total_allocated
		 FROM accruals a`
	if periodID != 0 {
		query += ` WHERE a.period_id = ?`
		args = append(args, periodID)
	}
	query += ` GROUP BY a.plot_id`

	err := s.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
