package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	accrualdomain "github.com/sadovo/vznos/internal/accrual/domain"
	accrualrepository "github.com/sadovo/vznos/internal/accrual/repository"
	"github.com/sadovo/vznos/internal/clock"
	"github.com/sadovo/vznos/internal/payment/domain"
	"github.com/sadovo/vznos/internal/payment/repository"
	perioddomain "github.com/sadovo/vznos/internal/period/domain"
	plotdomain "github.com/sadovo/vznos/internal/plot/domain"
	tariffdomain "github.com/sadovo/vznos/internal/tariff/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupPaymentService(t *testing.T) (domain.Service, *gorm.DB, *snowflake.Node) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_loc=auto", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	require.NoError(t, db.AutoMigrate(
		&plotdomain.Plot{},
		&perioddomain.Period{},
		&tariffdomain.Tariff{},
		&accrualdomain.Accrual{},
		&domain.Payment{},
		&domain.PaymentAllocation{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:          db,
		Log:         zap.NewNop(),
		GenID:       node,
		Clock:       clock.NewSystem(),
		Repo:        repository.Provide(),
		AccrualRepo: accrualrepository.Provide(),
	})

	return svc, db, node
}

func TestCreatePayment(t *testing.T) {
	svc, _, node := setupPaymentService(t)

	plotID := node.Generate()
	payment, err := svc.Create(context.Background(), domain.CreatePaymentRequest{
		PlotID: plotID.String(),
		PaidAt: time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
		Amount: 150000,
	})
	require.NoError(t, err)
	require.NotNil(t, payment.PlotID)
	assert.Equal(t, plotID, *payment.PlotID)
	assert.Equal(t, domain.PaymentSourceManual, payment.Source)
}

func TestCreatePaymentUnlinked(t *testing.T) {
	svc, _, _ := setupPaymentService(t)

	payment, err := svc.Create(context.Background(), domain.CreatePaymentRequest{
		PaidAt: time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
		Amount: 5000,
		Source: "import",
	})
	require.NoError(t, err)
	assert.Nil(t, payment.PlotID)
	assert.Equal(t, domain.PaymentSourceImport, payment.Source)
}

func TestCreatePaymentValidation(t *testing.T) {
	svc, _, _ := setupPaymentService(t)
	ctx := context.Background()
	paidAt := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)

	_, err := svc.Create(ctx, domain.CreatePaymentRequest{PaidAt: paidAt, Amount: 0})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = svc.Create(ctx, domain.CreatePaymentRequest{Amount: 100})
	assert.ErrorIs(t, err, domain.ErrInvalidPaidAt)

	_, err = svc.Create(ctx, domain.CreatePaymentRequest{PaidAt: paidAt, Amount: 100, Source: "cash"})
	assert.ErrorIs(t, err, domain.ErrInvalidSource)

	_, err = svc.Create(ctx, domain.CreatePaymentRequest{PaidAt: paidAt, Amount: 100, PlotID: "bogus"})
	assert.ErrorIs(t, err, domain.ErrInvalidPlotID)
}

func TestCreatePaymentDuplicateRowHash(t *testing.T) {
	svc, _, _ := setupPaymentService(t)
	ctx := context.Background()
	paidAt := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)

	_, err := svc.Create(ctx, domain.CreatePaymentRequest{
		PaidAt:     paidAt,
		Amount:     100,
		Source:     "import",
		RawRowHash: "abc123",
	})
	require.NoError(t, err)

	_, err = svc.Create(ctx, domain.CreatePaymentRequest{
		PaidAt:     paidAt,
		Amount:     100,
		Source:     "import",
		RawRowHash: "abc123",
	})
	assert.ErrorIs(t, err, domain.ErrDuplicateRowHash)
}

func TestGetPaymentWithAllocations(t *testing.T) {
	svc, db, node := setupPaymentService(t)
	ctx := context.Background()

	payment, err := svc.Create(ctx, domain.CreatePaymentRequest{
		PlotID: node.Generate().String(),
		PaidAt: time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
		Amount: 300,
	})
	require.NoError(t, err)

	allocation := domain.PaymentAllocation{
		ID:        node.Generate(),
		PaymentID: payment.ID,
		AccrualID: node.Generate(),
		Amount:    120,
	}
	require.NoError(t, db.Create(&allocation).Error)

	got, err := svc.GetByID(ctx, payment.ID.String())
	require.NoError(t, err)
	assert.Equal(t, int64(120), got.Allocated)
	assert.Equal(t, int64(180), got.Unallocated)
	require.Len(t, got.Allocations, 1)
}

func TestDeletePaymentWithAllocations(t *testing.T) {
	svc, db, node := setupPaymentService(t)
	ctx := context.Background()

	payment, err := svc.Create(ctx, domain.CreatePaymentRequest{
		PlotID: node.Generate().String(),
		PaidAt: time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
		Amount: 300,
	})
	require.NoError(t, err)

	allocation := domain.PaymentAllocation{
		ID:        node.Generate(),
		PaymentID: payment.ID,
		AccrualID: node.Generate(),
		Amount:    300,
	}
	require.NoError(t, db.Create(&allocation).Error)

	err = svc.Delete(ctx, payment.ID.String())
	assert.ErrorIs(t, err, domain.ErrHasAllocations)
}

func TestDeleteUnallocatedPayment(t *testing.T) {
	svc, db, node := setupPaymentService(t)
	ctx := context.Background()

	payment, err := svc.Create(ctx, domain.CreatePaymentRequest{
		PlotID: node.Generate().String(),
		PaidAt: time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
		Amount: 300,
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, payment.ID.String()))

	var count int64
	require.NoError(t, db.Model(&domain.Payment{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestDeleteAllocationRestoresAccrualStatus(t *testing.T) {
	svc, db, node := setupPaymentService(t)
	ctx := context.Background()

	accrual := accrualdomain.Accrual{
		ID:       node.Generate(),
		PeriodID: node.Generate(),
		PlotID:   node.Generate(),
		TariffID: node.Generate(),
		Amount:   200,
		Status:   accrualdomain.AccrualStatusPaid,
	}
	require.NoError(t, db.Create(&accrual).Error)

	payment, err := svc.Create(ctx, domain.CreatePaymentRequest{
		PlotID: accrual.PlotID.String(),
		PaidAt: time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
		Amount: 200,
	})
	require.NoError(t, err)

	allocation := domain.PaymentAllocation{
		ID:        node.Generate(),
		PaymentID: payment.ID,
		AccrualID: accrual.ID,
		Amount:    200,
	}
	require.NoError(t, db.Create(&allocation).Error)

	require.NoError(t, svc.DeleteAllocation(ctx, allocation.ID.String()))

	var got accrualdomain.Accrual
	require.NoError(t, db.First(&got, "id = ?", accrual.ID).Error)
	assert.Equal(t, accrualdomain.AccrualStatusPending, got.Status)

	var count int64
	require.NoError(t, db.Model(&domain.PaymentAllocation{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestDeleteAllocationNotFound(t *testing.T) {
	svc, _, node := setupPaymentService(t)

	err := svc.DeleteAllocation(context.Background(), node.Generate().String())
	assert.ErrorIs(t, err, domain.ErrAllocationNotFound)
}
