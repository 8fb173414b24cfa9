package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	accrualdomain "github.com/sadovo/vznos/internal/accrual/domain"
	"github.com/sadovo/vznos/internal/clock"
	obsmetrics "github.com/sadovo/vznos/internal/observability/metrics"
	"github.com/sadovo/vznos/internal/payment/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	Repo        domain.Repository
	AccrualRepo accrualdomain.Repository
	Metrics     *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	repo        domain.Repository
	accrualRepo accrualdomain.Repository
	metrics     *obsmetrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("payment.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		repo:        p.Repo,
		accrualRepo: p.AccrualRepo,
		metrics:     p.Metrics,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreatePaymentRequest) (domain.Payment, error) {
	if req.Amount <= 0 {
		return domain.Payment{}, domain.ErrInvalidAmount
	}
	if req.PaidAt.IsZero() {
		return domain.Payment{}, domain.ErrInvalidPaidAt
	}

	source := domain.PaymentSource(strings.ToLower(strings.TrimSpace(req.Source)))
	if source == "" {
		source = domain.PaymentSourceManual
	}
	switch source {
	case domain.PaymentSourceManual, domain.PaymentSourceImport:
	default:
		return domain.Payment{}, domain.ErrInvalidSource
	}

	var plotID *snowflake.ID
	if strings.TrimSpace(req.PlotID) != "" {
		parsed, err := snowflake.ParseString(strings.TrimSpace(req.PlotID))
		if err != nil || parsed == 0 {
			return domain.Payment{}, domain.ErrInvalidPlotID
		}
		plotID = &parsed
	}

	rawRowHash := strings.TrimSpace(req.RawRowHash)
	if rawRowHash != "" {
		existing, err := s.repo.FindByRawRowHash(ctx, s.db, rawRowHash)
		if err != nil {
			return domain.Payment{}, err
		}
		if existing != nil {
			return domain.Payment{}, domain.ErrDuplicateRowHash
		}
	}

	payment := domain.Payment{
		ID:         s.genID.Generate(),
		PlotID:     plotID,
		PaidAt:     req.PaidAt.UTC(),
		Amount:     req.Amount,
		Source:     source,
		ExternalID: strings.TrimSpace(req.ExternalID),
		RawRowHash: rawRowHash,
		Comment:    strings.TrimSpace(req.Comment),
		Metadata:   datatypes.JSONMap{},
		CreatedAt:  s.clock.Now(),
	}

	if err := s.repo.Insert(ctx, s.db, &payment); err != nil {
		return domain.Payment{}, err
	}

	s.metrics.RecordPaymentCreated(string(source))
	s.log.Info("payment created",
		zap.String("payment_id", payment.ID.String()),
		zap.Int64("amount", payment.Amount),
		zap.String("source", string(source)),
	)
	return payment, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.PaymentWithAllocations, error) {
	parsed, err := parseID(id, domain.ErrInvalidID)
	if err != nil {
		return domain.PaymentWithAllocations{}, err
	}

	payment, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return domain.PaymentWithAllocations{}, err
	}
	if payment == nil {
		return domain.PaymentWithAllocations{}, domain.ErrNotFound
	}

	items, err := s.repo.ListAllocationsByPayment(ctx, s.db, parsed)
	if err != nil {
		return domain.PaymentWithAllocations{}, err
	}

	allocations := make([]domain.PaymentAllocation, 0, len(items))
	var allocated int64
	for _, item := range items {
		if item == nil {
			continue
		}
		allocations = append(allocations, *item)
		allocated += item.Amount
	}

	return domain.PaymentWithAllocations{
		Payment:     *payment,
		Allocations: allocations,
		Allocated:   allocated,
		Unallocated: payment.Amount - allocated,
	}, nil
}

func (s *Service) List(ctx context.Context, req domain.ListPaymentRequest) (domain.ListPaymentResponse, error) {
	filter := domain.ListPaymentFilter{
		PaidFrom: req.PaidFrom,
		PaidTo:   req.PaidTo,
	}

	if strings.TrimSpace(req.PlotID) != "" {
		parsed, err := parseID(req.PlotID, domain.ErrInvalidPlotID)
		if err != nil {
			return domain.ListPaymentResponse{}, err
		}
		filter.PlotID = parsed
	}
	source := domain.PaymentSource(strings.ToLower(strings.TrimSpace(req.Source)))
	switch source {
	case "", domain.PaymentSourceManual, domain.PaymentSourceImport:
		filter.Source = source
	default:
		return domain.ListPaymentResponse{}, domain.ErrInvalidSource
	}

	items, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return domain.ListPaymentResponse{}, err
	}

	payments := make([]domain.Payment, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		payments = append(payments, *item)
	}
	return domain.ListPaymentResponse{Payments: payments}, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	parsed, err := parseID(id, domain.ErrInvalidID)
	if err != nil {
		return err
	}

	payment, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return err
	}
	if payment == nil {
		return domain.ErrNotFound
	}

	allocated, err := s.repo.SumAllocationsByPayment(ctx, s.db, parsed)
	if err != nil {
		return err
	}
	if allocated > 0 {
		return domain.ErrHasAllocations
	}

	return s.repo.Delete(ctx, s.db, parsed)
}

func (s *Service) DeleteAllocation(ctx context.Context, allocationID string) error {
	parsed, err := parseID(allocationID, domain.ErrAllocationNotFound)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		allocation, err := s.repo.FindAllocationByID(ctx, tx, parsed)
		if err != nil {
			return err
		}
		if allocation == nil {
			return domain.ErrAllocationNotFound
		}

		if err := s.repo.DeleteAllocation(ctx, tx, parsed); err != nil {
			return err
		}

		accrual, err := s.accrualRepo.FindByID(ctx, tx, allocation.AccrualID)
		if err != nil {
			return err
		}
		if accrual == nil {
			return nil
		}

		allocated, err := s.repo.SumAllocationsByAccrual(ctx, tx, accrual.ID)
		if err != nil {
			return err
		}
		return s.accrualRepo.UpdateStatus(ctx, tx, accrual.ID, accrualdomain.StatusFor(allocated, accrual.Amount))
	})
}

func parseID(value string, invalid error) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, invalid
	}
	return id, nil
}
