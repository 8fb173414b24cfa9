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
	"github.com/sadovo/vznos/internal/allocation/domain"
	"github.com/sadovo/vznos/internal/clock"
	paymentdomain "github.com/sadovo/vznos/internal/payment/domain"
	paymentrepository "github.com/sadovo/vznos/internal/payment/repository"
	perioddomain "github.com/sadovo/vznos/internal/period/domain"
	plotdomain "github.com/sadovo/vznos/internal/plot/domain"
	tariffdomain "github.com/sadovo/vznos/internal/tariff/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupAllocationService(t *testing.T, node *snowflake.Node) (domain.Service, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_loc=auto", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
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
		&paymentdomain.Payment{},
		&paymentdomain.PaymentAllocation{},
	))

	svc := New(Params{
		DB:          db,
		Log:         zap.NewNop(),
		GenID:       node,
		Clock:       clock.NewSystem(),
		PaymentRepo: paymentrepository.Provide(),
		AccrualRepo: accrualrepository.Provide(),
	})

	return svc, db
}

func mustNode(t *testing.T) *snowflake.Node {
	t.Helper()
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	return node
}

func seedAccrual(t *testing.T, db *gorm.DB, node *snowflake.Node, plotID snowflake.ID, amount int64, createdAt time.Time) accrualdomain.Accrual {
	t.Helper()
	accrual := accrualdomain.Accrual{
		ID:        node.Generate(),
		PeriodID:  node.Generate(),
		PlotID:    plotID,
		TariffID:  node.Generate(),
		Amount:    amount,
		Status:    accrualdomain.AccrualStatusPending,
		CreatedAt: createdAt,
	}
	require.NoError(t, db.Create(&accrual).Error)
	return accrual
}

func seedPayment(t *testing.T, db *gorm.DB, node *snowflake.Node, plotID *snowflake.ID, amount int64) paymentdomain.Payment {
	t.Helper()
	payment := paymentdomain.Payment{
		ID:     node.Generate(),
		PlotID: plotID,
		PaidAt: time.Now().UTC(),
		Amount: amount,
		Source: paymentdomain.PaymentSourceManual,
	}
	require.NoError(t, db.Create(&payment).Error)
	return payment
}

func TestAllocatePaymentFIFO(t *testing.T) {
	node := mustNode(t)
	svc, db := setupAllocationService(t, node)

	plotID := node.Generate()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	first := seedAccrual(t, db, node, plotID, 100, base)
	second := seedAccrual(t, db, node, plotID, 200, base.Add(time.Hour))
	third := seedAccrual(t, db, node, plotID, 50, base.Add(2*time.Hour))

	payment := seedPayment(t, db, node, &plotID, 250)

	result, err := svc.AllocatePayment(context.Background(), payment.ID.String())
	require.NoError(t, err)

	require.Len(t, result.Allocations, 2)
	assert.Equal(t, first.ID, result.Allocations[0].AccrualID)
	assert.Equal(t, int64(100), result.Allocations[0].Amount)
	assert.Equal(t, second.ID, result.Allocations[1].AccrualID)
	assert.Equal(t, int64(150), result.Allocations[1].Amount)
	assert.Equal(t, int64(250), result.Allocated)
	assert.Equal(t, int64(0), result.Unallocated)
	assert.Equal(t, 2, result.Created)

	var got accrualdomain.Accrual
	require.NoError(t, db.First(&got, "id = ?", first.ID).Error)
	assert.Equal(t, accrualdomain.AccrualStatusPaid, got.Status)

	require.NoError(t, db.First(&got, "id = ?", second.ID).Error)
	assert.Equal(t, accrualdomain.AccrualStatusPartial, got.Status)

	require.NoError(t, db.First(&got, "id = ?", third.ID).Error)
	assert.Equal(t, accrualdomain.AccrualStatusPending, got.Status)
}

func TestAllocatePaymentIdempotent(t *testing.T) {
	node := mustNode(t)
	svc, db := setupAllocationService(t, node)

	plotID := node.Generate()
	seedAccrual(t, db, node, plotID, 300, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
	payment := seedPayment(t, db, node, &plotID, 300)

	first, err := svc.AllocatePayment(context.Background(), payment.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 1, first.Created)

	second, err := svc.AllocatePayment(context.Background(), payment.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 0, second.Created)
	assert.Equal(t, first.Allocated, second.Allocated)
	require.Len(t, second.Allocations, 1)

	var count int64
	require.NoError(t, db.Model(&paymentdomain.PaymentAllocation{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestAllocatePaymentSurplus(t *testing.T) {
	node := mustNode(t)
	svc, db := setupAllocationService(t, node)

	plotID := node.Generate()
	seedAccrual(t, db, node, plotID, 100, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
	payment := seedPayment(t, db, node, &plotID, 400)

	result, err := svc.AllocatePayment(context.Background(), payment.ID.String())
	require.NoError(t, err)
	assert.Equal(t, int64(100), result.Allocated)
	assert.Equal(t, int64(300), result.Unallocated)
}

func TestAllocatePaymentSkipsCoveredAccruals(t *testing.T) {
	node := mustNode(t)
	svc, db := setupAllocationService(t, node)

	plotID := node.Generate()
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	seedAccrual(t, db, node, plotID, 100, base)
	second := seedAccrual(t, db, node, plotID, 200, base.Add(time.Hour))

	firstPayment := seedPayment(t, db, node, &plotID, 100)
	_, err := svc.AllocatePayment(context.Background(), firstPayment.ID.String())
	require.NoError(t, err)

	secondPayment := seedPayment(t, db, node, &plotID, 150)
	result, err := svc.AllocatePayment(context.Background(), secondPayment.ID.String())
	require.NoError(t, err)

	require.Len(t, result.Allocations, 1)
	assert.Equal(t, second.ID, result.Allocations[0].AccrualID)
	assert.Equal(t, int64(150), result.Allocations[0].Amount)
}

func TestAllocatePaymentNotLinked(t *testing.T) {
	node := mustNode(t)
	svc, db := setupAllocationService(t, node)

	payment := seedPayment(t, db, node, nil, 100)

	_, err := svc.AllocatePayment(context.Background(), payment.ID.String())
	assert.ErrorIs(t, err, domain.ErrPaymentNotLinked)
}

func TestAllocatePaymentNotFound(t *testing.T) {
	node := mustNode(t)
	svc, _ := setupAllocationService(t, node)

	_, err := svc.AllocatePayment(context.Background(), node.Generate().String())
	assert.ErrorIs(t, err, domain.ErrPaymentNotFound)
}

func TestAllocatePaymentInvalidID(t *testing.T) {
	node := mustNode(t)
	svc, _ := setupAllocationService(t, node)

	_, err := svc.AllocatePayment(context.Background(), "not-an-id")
	assert.ErrorIs(t, err, domain.ErrInvalidPaymentID)
}
