package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/sadovo/vznos/internal/accrual/domain"
	"github.com/sadovo/vznos/internal/clock"
	obsmetrics "github.com/sadovo/vznos/internal/observability/metrics"
	perioddomain "github.com/sadovo/vznos/internal/period/domain"
	plotdomain "github.com/sadovo/vznos/internal/plot/domain"
	tariffdomain "github.com/sadovo/vznos/internal/tariff/domain"
	"github.com/sadovo/vznos/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Repo       domain.Repository
	PeriodRepo perioddomain.Repository
	TariffRepo tariffdomain.Repository
	PlotRepo   plotdomain.Repository
	Metrics    *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	repo       domain.Repository
	periodRepo perioddomain.Repository
	tariffRepo tariffdomain.Repository
	plotRepo   plotdomain.Repository
	metrics    *obsmetrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("accrual.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		repo:       p.Repo,
		periodRepo: p.PeriodRepo,
		tariffRepo: p.TariffRepo,
		plotRepo:   p.PlotRepo,
		metrics:    p.Metrics,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateAccrualRequest) (domain.Accrual, error) {
	periodID, err := parseID(req.PeriodID, domain.ErrInvalidPeriodID)
	if err != nil {
		return domain.Accrual{}, err
	}
	plotID, err := parseID(req.PlotID, domain.ErrInvalidPlotID)
	if err != nil {
		return domain.Accrual{}, err
	}
	tariffID, err := parseID(req.TariffID, domain.ErrInvalidTariffID)
	if err != nil {
		return domain.Accrual{}, err
	}
	if req.Amount <= 0 {
		return domain.Accrual{}, domain.ErrInvalidAmount
	}

	// Plot and tariff references stay unchecked (opaque ids), but a
	// closed period must not accept new charges.
	if err := s.ensurePeriodOpen(ctx, periodID); err != nil {
		return domain.Accrual{}, err
	}

	now := s.clock.Now()
	accrual := domain.Accrual{
		ID:        s.genID.Generate(),
		PeriodID:  periodID,
		PlotID:    plotID,
		TariffID:  tariffID,
		Amount:    req.Amount,
		Status:    domain.AccrualStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Insert(ctx, s.db, &accrual); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Accrual{}, domain.ErrDuplicateAccrual
		}
		return domain.Accrual{}, err
	}

	return accrual, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Accrual, error) {
	parsed, err := parseID(id, domain.ErrInvalidID)
	if err != nil {
		return domain.Accrual{}, err
	}

	accrual, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return domain.Accrual{}, err
	}
	if accrual == nil {
		return domain.Accrual{}, domain.ErrNotFound
	}
	return *accrual, nil
}

func (s *Service) List(ctx context.Context, req domain.ListAccrualRequest) (domain.ListAccrualResponse, error) {
	filter := domain.ListAccrualFilter{}

	var err error
	if strings.TrimSpace(req.PeriodID) != "" {
		if filter.PeriodID, err = parseID(req.PeriodID, domain.ErrInvalidPeriodID); err != nil {
			return domain.ListAccrualResponse{}, err
		}
	}
	if strings.TrimSpace(req.PlotID) != "" {
		if filter.PlotID, err = parseID(req.PlotID, domain.ErrInvalidPlotID); err != nil {
			return domain.ListAccrualResponse{}, err
		}
	}
	if strings.TrimSpace(req.TariffID) != "" {
		if filter.TariffID, err = parseID(req.TariffID, domain.ErrInvalidTariffID); err != nil {
			return domain.ListAccrualResponse{}, err
		}
	}
	status := domain.AccrualStatus(strings.ToLower(strings.TrimSpace(req.Status)))
	switch status {
	case "", domain.AccrualStatusPending, domain.AccrualStatusPartial, domain.AccrualStatusPaid:
		filter.Status = status
	default:
		return domain.ListAccrualResponse{}, domain.ErrInvalidStatus
	}

	items, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return domain.ListAccrualResponse{}, err
	}

	accruals := make([]domain.Accrual, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		accruals = append(accruals, *item)
	}
	return domain.ListAccrualResponse{Accruals: accruals}, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	parsed, err := parseID(id, domain.ErrInvalidID)
	if err != nil {
		return err
	}

	accrual, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return err
	}
	if accrual == nil {
		return domain.ErrNotFound
	}
	return s.repo.Delete(ctx, s.db, parsed)
}

func (s *Service) GenerateForPeriod(ctx context.Context, periodID string) (domain.GenerateResult, error) {
	parsed, err := parseID(periodID, domain.ErrInvalidPeriodID)
	if err != nil {
		return domain.GenerateResult{}, err
	}

	period, err := s.periodRepo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return domain.GenerateResult{}, err
	}
	if period == nil {
		return domain.GenerateResult{}, domain.ErrPeriodNotFound
	}
	if period.Status == perioddomain.PeriodStatusClosed {
		return domain.GenerateResult{}, domain.ErrPeriodClosed
	}

	tariffs, err := s.tariffRepo.List(ctx, s.db, tariffdomain.ListTariffFilter{
		Status: tariffdomain.TariffStatusActive,
	})
	if err != nil {
		return domain.GenerateResult{}, err
	}

	plots, err := s.plotRepo.ListAll(ctx, s.db)
	if err != nil {
		return domain.GenerateResult{}, err
	}

	// Charge as of the first day of the period so tariff active windows
	// are evaluated against the billed month, not the generation moment.
	chargedAt := time.Date(period.Year, time.Month(period.Month), 1, 0, 0, 0, 0, time.UTC)

	result := domain.GenerateResult{}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, plot := range plots {
			for _, tariff := range tariffs {
				if !tariff.ActiveAt(chargedAt) {
					continue
				}

				amount := tariff.Amount
				if tariff.AppliesTo == tariffdomain.AppliesToArea {
					amount = tariff.Amount * plot.AreaSqm
				}
				if amount <= 0 {
					continue
				}

				exists, err := s.repo.Exists(ctx, tx, period.ID, plot.ID, tariff.ID)
				if err != nil {
					return err
				}
				if exists {
					result.Skipped++
					continue
				}

				now := s.clock.Now()
				accrual := domain.Accrual{
					ID:        s.genID.Generate(),
					PeriodID:  period.ID,
					PlotID:    plot.ID,
					TariffID:  tariff.ID,
					Amount:    amount,
					Status:    domain.AccrualStatusPending,
					CreatedAt: now,
					UpdatedAt: now,
				}
				if err := s.repo.Insert(ctx, tx, &accrual); err != nil {
					return err
				}
				result.Created++
			}
		}
		return nil
	})
	if err != nil {
		return domain.GenerateResult{}, err
	}

	s.metrics.RecordAccrualsGenerated(result.Created)
	s.log.Info("accruals generated",
		zap.String("period", period.Label()),
		zap.Int("created", result.Created),
		zap.Int("skipped", result.Skipped),
	)
	return result, nil
}

func (s *Service) ensurePeriodOpen(ctx context.Context, periodID snowflake.ID) error {
	period, err := s.periodRepo.FindByID(ctx, s.db, periodID)
	if err != nil {
		return err
	}
	if period != nil && period.Status == perioddomain.PeriodStatusClosed {
		return domain.ErrPeriodClosed
	}
	return nil
}

func parseID(value string, invalid error) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, invalid
	}
	return id, nil
}
