package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	accrualdomain "github.com/sadovo/vznos/internal/accrual/domain"
	"github.com/sadovo/vznos/internal/allocation/domain"
	"github.com/sadovo/vznos/internal/clock"
	obsmetrics "github.com/sadovo/vznos/internal/observability/metrics"
	paymentdomain "github.com/sadovo/vznos/internal/payment/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	PaymentRepo paymentdomain.Repository
	AccrualRepo accrualdomain.Repository
	Metrics     *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	paymentRepo paymentdomain.Repository
	accrualRepo accrualdomain.Repository
	metrics     *obsmetrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("allocation.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		paymentRepo: p.PaymentRepo,
		accrualRepo: p.AccrualRepo,
		metrics:     p.Metrics,
	}
}

func (s *Service) AllocatePayment(ctx context.Context, paymentID string) (domain.Result, error) {
	parsed, err := snowflake.ParseString(strings.TrimSpace(paymentID))
	if err != nil || parsed == 0 {
		return domain.Result{}, domain.ErrInvalidPaymentID
	}

	var result domain.Result
	// One transaction per run; the payment row is locked so two
	// concurrent runs against the same payment serialize instead of
	// double-allocating past an accrual's remainder.
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		payment, err := s.paymentRepo.FindByIDForUpdate(ctx, tx, parsed)
		if err != nil {
			return err
		}
		if payment == nil {
			return domain.ErrPaymentNotFound
		}
		if payment.PlotID == nil || *payment.PlotID == 0 {
			return domain.ErrPaymentNotLinked
		}

		alreadyAllocated, err := s.paymentRepo.SumAllocationsByPayment(ctx, tx, payment.ID)
		if err != nil {
			return err
		}
		remainingToAllocate := payment.Amount - alreadyAllocated

		created := 0
		if remainingToAllocate > 0 {
			accruals, err := s.accrualRepo.ListByPlotOldestFirst(ctx, tx, *payment.PlotID)
			if err != nil {
				return err
			}

			for _, accrual := range accruals {
				if remainingToAllocate <= 0 {
					break
				}

				allocated, err := s.paymentRepo.SumAllocationsByAccrual(ctx, tx, accrual.ID)
				if err != nil {
					return err
				}
				accrualRemaining := accrual.Amount - allocated
				if accrualRemaining <= 0 {
					continue
				}

				portion := min(remainingToAllocate, accrualRemaining)
				allocation := paymentdomain.PaymentAllocation{
					ID:        s.genID.Generate(),
					PaymentID: payment.ID,
					AccrualID: accrual.ID,
					Amount:    portion,
					CreatedAt: s.clock.Now(),
				}
				if err := s.paymentRepo.InsertAllocation(ctx, tx, &allocation); err != nil {
					return err
				}

				status := accrualdomain.StatusFor(allocated+portion, accrual.Amount)
				if err := s.accrualRepo.UpdateStatus(ctx, tx, accrual.ID, status); err != nil {
					return err
				}

				remainingToAllocate -= portion
				created++
			}
		}

		items, err := s.paymentRepo.ListAllocationsByPayment(ctx, tx, payment.ID)
		if err != nil {
			return err
		}

		allocations := make([]paymentdomain.PaymentAllocation, 0, len(items))
		var total int64
		for _, item := range items {
			if item == nil {
				continue
			}
			allocations = append(allocations, *item)
			total += item.Amount
		}

		result = domain.Result{
			PaymentID:   payment.ID.String(),
			Allocations: allocations,
			Allocated:   total,
			Unallocated: payment.Amount - total,
			Created:     created,
		}
		return nil
	})
	if err != nil {
		return domain.Result{}, err
	}

	s.metrics.RecordAllocation(result.Created)
	if result.Unallocated > 0 {
		// Surplus is not carried forward as credit; surface it so staff
		// can decide what to do with the remainder.
		s.metrics.RecordAllocationSurplus()
		s.log.Warn("payment has unallocated surplus",
			zap.String("payment_id", result.PaymentID),
			zap.Int64("unallocated", result.Unallocated),
		)
	}

	return result, nil
}
