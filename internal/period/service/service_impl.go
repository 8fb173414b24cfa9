package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/sadovo/vznos/internal/period/domain"
	"github.com/sadovo/vznos/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("period.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreatePeriodRequest) (domain.Period, error) {
	if req.Year < 2000 || req.Year > 2100 {
		return domain.Period{}, domain.ErrInvalidYear
	}
	if req.Month < 1 || req.Month > 12 {
		return domain.Period{}, domain.ErrInvalidMonth
	}

	now := time.Now().UTC()
	period := domain.Period{
		ID:        s.genID.Generate(),
		Year:      req.Year,
		Month:     req.Month,
		Status:    domain.PeriodStatusOpen,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Insert(ctx, s.db, &period); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Period{}, domain.ErrDuplicatePeriod
		}
		return domain.Period{}, err
	}

	s.log.Info("period created",
		zap.Int("year", period.Year),
		zap.Int("month", period.Month),
	)
	return period, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Period, error) {
	parsed, err := s.parseID(id)
	if err != nil {
		return domain.Period{}, err
	}

	period, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return domain.Period{}, err
	}
	if period == nil {
		return domain.Period{}, domain.ErrNotFound
	}
	return *period, nil
}

func (s *Service) List(ctx context.Context, req domain.ListPeriodRequest) (domain.ListPeriodResponse, error) {
	status := domain.PeriodStatus(strings.ToLower(strings.TrimSpace(req.Status)))
	switch status {
	case "", domain.PeriodStatusOpen, domain.PeriodStatusClosed:
	default:
		return domain.ListPeriodResponse{}, domain.ErrInvalidStatus
	}

	items, err := s.repo.List(ctx, s.db, domain.ListPeriodFilter{
		Year:   req.Year,
		Status: status,
	})
	if err != nil {
		return domain.ListPeriodResponse{}, err
	}

	periods := make([]domain.Period, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		periods = append(periods, *item)
	}
	return domain.ListPeriodResponse{Periods: periods}, nil
}

func (s *Service) Close(ctx context.Context, id string) (domain.Period, error) {
	parsed, err := s.parseID(id)
	if err != nil {
		return domain.Period{}, err
	}

	period, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return domain.Period{}, err
	}
	if period == nil {
		return domain.Period{}, domain.ErrNotFound
	}
	if period.Status == domain.PeriodStatusClosed {
		return domain.Period{}, domain.ErrAlreadyClosed
	}

	period.Status = domain.PeriodStatusClosed
	period.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, s.db, period); err != nil {
		return domain.Period{}, err
	}

	s.log.Info("period closed", zap.String("period", period.Label()))
	return *period, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	parsed, err := s.parseID(id)
	if err != nil {
		return err
	}

	period, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return err
	}
	if period == nil {
		return domain.ErrNotFound
	}

	// No cascade: accruals referencing the period are left in place,
	// mirroring the absence of referential integrity in the registry.
	return s.repo.Delete(ctx, s.db, parsed)
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
