package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/sadovo/vznos/internal/tariff/domain"
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
		log:   p.Log.Named("tariff.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateTariffRequest) (domain.Tariff, error) {
	code := strings.TrimSpace(req.Code)
	if code == "" {
		return domain.Tariff{}, domain.ErrInvalidCode
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return domain.Tariff{}, domain.ErrInvalidTitle
	}
	if req.Amount <= 0 {
		return domain.Tariff{}, domain.ErrInvalidAmount
	}

	appliesTo := domain.TariffAppliesTo(strings.ToLower(strings.TrimSpace(req.AppliesTo)))
	if appliesTo == "" {
		appliesTo = domain.AppliesToPlot
	}
	switch appliesTo {
	case domain.AppliesToPlot, domain.AppliesToArea:
	default:
		return domain.Tariff{}, domain.ErrInvalidAppliesTo
	}

	activeFrom := req.ActiveFrom
	if activeFrom.IsZero() {
		activeFrom = time.Now().UTC()
	}

	now := time.Now().UTC()
	tariff := domain.Tariff{
		ID:         s.genID.Generate(),
		Code:       code,
		Type:       strings.TrimSpace(req.Type),
		Title:      title,
		Amount:     req.Amount,
		AppliesTo:  appliesTo,
		Status:     domain.TariffStatusActive,
		ActiveFrom: activeFrom.UTC(),
		ActiveTo:   req.ActiveTo,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.repo.Insert(ctx, s.db, &tariff); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Tariff{}, domain.ErrDuplicateCode
		}
		return domain.Tariff{}, err
	}

	s.log.Info("tariff created", zap.String("code", tariff.Code), zap.Int64("amount", tariff.Amount))
	return tariff, nil
}

// Update changes presentation and lifecycle fields only. Amount is
// immutable: a price change is a new tariff.
func (s *Service) Update(ctx context.Context, req domain.UpdateTariffRequest) (domain.Tariff, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Tariff{}, err
	}

	tariff, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Tariff{}, err
	}
	if tariff == nil {
		return domain.Tariff{}, domain.ErrNotFound
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return domain.Tariff{}, domain.ErrInvalidTitle
		}
		tariff.Title = title
	}
	if req.Status != nil {
		status := domain.TariffStatus(strings.ToLower(strings.TrimSpace(*req.Status)))
		switch status {
		case domain.TariffStatusActive, domain.TariffStatusInactive:
			tariff.Status = status
		default:
			return domain.Tariff{}, domain.ErrInvalidStatus
		}
	}
	if req.ActiveTo != nil {
		activeTo := req.ActiveTo.UTC()
		tariff.ActiveTo = &activeTo
	}
	tariff.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, tariff); err != nil {
		return domain.Tariff{}, err
	}
	return *tariff, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Tariff, error) {
	parsed, err := s.parseID(id)
	if err != nil {
		return domain.Tariff{}, err
	}

	tariff, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return domain.Tariff{}, err
	}
	if tariff == nil {
		return domain.Tariff{}, domain.ErrNotFound
	}
	return *tariff, nil
}

func (s *Service) List(ctx context.Context, req domain.ListTariffRequest) (domain.ListTariffResponse, error) {
	status := domain.TariffStatus(strings.ToLower(strings.TrimSpace(req.Status)))
	switch status {
	case "", domain.TariffStatusActive, domain.TariffStatusInactive:
	default:
		return domain.ListTariffResponse{}, domain.ErrInvalidStatus
	}

	items, err := s.repo.List(ctx, s.db, domain.ListTariffFilter{
		Type:   strings.TrimSpace(req.Type),
		Status: status,
	})
	if err != nil {
		return domain.ListTariffResponse{}, err
	}

	tariffs := make([]domain.Tariff, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		tariffs = append(tariffs, *item)
	}
	return domain.ListTariffResponse{Tariffs: tariffs}, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	parsed, err := s.parseID(id)
	if err != nil {
		return err
	}

	tariff, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return err
	}
	if tariff == nil {
		return domain.ErrNotFound
	}
	return s.repo.Delete(ctx, s.db, parsed)
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
