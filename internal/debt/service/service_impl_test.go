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
	"github.com/sadovo/vznos/internal/debt/domain"
	paymentdomain "github.com/sadovo/vznos/internal/payment/domain"
	paymentrepository "github.com/sadovo/vznos/internal/payment/repository"
	perioddomain "github.com/sadovo/vznos/internal/period/domain"
	periodrepository "github.com/sadovo/vznos/internal/period/repository"
	plotdomain "github.com/sadovo/vznos/internal/plot/domain"
	plotrepository "github.com/sadovo/vznos/internal/plot/repository"
	tariffdomain "github.com/sadovo/vznos/internal/tariff/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupDebtService(t *testing.T) (domain.Service, *gorm.DB, *snowflake.Node) {
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

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:          db,
		Log:         zap.NewNop(),
		AccrualRepo: accrualrepository.Provide(),
		PaymentRepo: paymentrepository.Provide(),
		PeriodRepo:  periodrepository.Provide(),
		PlotRepo:    plotrepository.Provide(),
	})

	return svc, db, node
}

type debtFixture struct {
	period perioddomain.Period
	plot   plotdomain.Plot
}

func seedDebtFixture(t *testing.T, db *gorm.DB, node *snowflake.Node, number string) debtFixture {
	t.Helper()

	period := perioddomain.Period{
		ID:     node.Generate(),
		Year:   2025,
		Month:  6,
		Status: perioddomain.PeriodStatusOpen,
	}
	if err := db.Create(&period).Error; err != nil {
		// Reuse the period when a fixture for it already exists. Clear the
		// generated ID so GORM does not add it to the lookup's WHERE clause.
		period = perioddomain.Period{}
		require.NoError(t, db.First(&period, "year = ? AND month = ?", 2025, 6).Error)
	}

	plot := plotdomain.Plot{
		ID:        node.Generate(),
		Number:    number,
		OwnerName: "Owner " + number,
		AreaSqm:   600,
	}
	require.NoError(t, db.Create(&plot).Error)

	return debtFixture{period: period, plot: plot}
}

func seedChargeWithPayment(t *testing.T, db *gorm.DB, node *snowflake.Node, fx debtFixture, accrued, paid int64) accrualdomain.Accrual {
	t.Helper()

	accrual := accrualdomain.Accrual{
		ID:       node.Generate(),
		PeriodID: fx.period.ID,
		PlotID:   fx.plot.ID,
		TariffID: node.Generate(),
		Amount:   accrued,
		Status:   accrualdomain.StatusFor(paid, accrued),
	}
	require.NoError(t, db.Create(&accrual).Error)

	if paid > 0 {
		plotID := fx.plot.ID
		payment := paymentdomain.Payment{
			ID:     node.Generate(),
			PlotID: &plotID,
			PaidAt: time.Now().UTC(),
			Amount: paid,
			Source: paymentdomain.PaymentSourceManual,
		}
		require.NoError(t, db.Create(&payment).Error)

		allocation := paymentdomain.PaymentAllocation{
			ID:        node.Generate(),
			PaymentID: payment.ID,
			AccrualID: accrual.ID,
			Amount:    paid,
		}
		require.NoError(t, db.Create(&allocation).Error)
	}

	return accrual
}

func TestComputeDebtsByPlot(t *testing.T) {
	svc, db, node := setupDebtService(t)

	debtor := seedDebtFixture(t, db, node, "12")
	seedChargeWithPayment(t, db, node, debtor, 5000, 3000)

	settled := seedDebtFixture(t, db, node, "13")
	seedChargeWithPayment(t, db, node, settled, 1000, 1000)

	resp, err := svc.ComputeDebtsByPlot(context.Background(), domain.DebtsRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Debts, 2)

	// Sorted by debt descending, debtor first.
	assert.Equal(t, debtor.plot.ID, resp.Debts[0].PlotID)
	assert.Equal(t, int64(5000), resp.Debts[0].TotalAccrued)
	assert.Equal(t, int64(3000), resp.Debts[0].TotalAllocated)
	assert.Equal(t, int64(2000), resp.Debts[0].TotalDebt)
	assert.Equal(t, "12", resp.Debts[0].PlotNumber)

	assert.Equal(t, settled.plot.ID, resp.Debts[1].PlotID)
	assert.Equal(t, int64(0), resp.Debts[1].TotalDebt)
}

func TestComputeDebtsMinDebtFilter(t *testing.T) {
	svc, db, node := setupDebtService(t)

	big := seedDebtFixture(t, db, node, "12")
	seedChargeWithPayment(t, db, node, big, 5000, 0)

	small := seedDebtFixture(t, db, node, "13")
	seedChargeWithPayment(t, db, node, small, 500, 0)

	resp, err := svc.ComputeDebtsByPlot(context.Background(), domain.DebtsRequest{MinDebt: 1000})
	require.NoError(t, err)
	require.Len(t, resp.Debts, 1)
	assert.Equal(t, big.plot.ID, resp.Debts[0].PlotID)
}

func TestComputeDebtsClampsOverpayment(t *testing.T) {
	svc, db, node := setupDebtService(t)

	fx := seedDebtFixture(t, db, node, "12")
	seedChargeWithPayment(t, db, node, fx, 1000, 1000)

	// A second allocation pushes the plot past its accrued total.
	accrual := seedChargeWithPayment(t, db, node, fx, 500, 900)
	_ = accrual

	resp, err := svc.ComputeDebtsByPlot(context.Background(), domain.DebtsRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Debts, 1)
	assert.Equal(t, int64(0), resp.Debts[0].TotalDebt)
	assert.Equal(t, int64(1900), resp.Debts[0].TotalAllocated)
}

func TestGetPeriodSummary(t *testing.T) {
	svc, db, node := setupDebtService(t)

	fx := seedDebtFixture(t, db, node, "12")
	seedChargeWithPayment(t, db, node, fx, 5000, 3000)

	summary, err := svc.GetPeriodSummary(context.Background(), fx.period.ID.String())
	require.NoError(t, err)
	assert.Equal(t, fx.period.ID, summary.PeriodID)
	assert.Equal(t, "2025-06", summary.PeriodLabel)
	assert.Equal(t, int64(5000), summary.TotalAccrued)
	assert.Equal(t, int64(3000), summary.TotalPaid)
	assert.Equal(t, int64(2000), summary.TotalDebt)
}

func TestGetPeriodSummaryNotFound(t *testing.T) {
	svc, _, node := setupDebtService(t)

	_, err := svc.GetPeriodSummary(context.Background(), node.Generate().String())
	assert.ErrorIs(t, err, domain.ErrPeriodNotFound)
}

func TestGetPlotBalance(t *testing.T) {
	svc, db, node := setupDebtService(t)

	fx := seedDebtFixture(t, db, node, "12")
	seedChargeWithPayment(t, db, node, fx, 3000, 3000)
	seedChargeWithPayment(t, db, node, fx, 2000, 500)

	balance, err := svc.GetPlotBalance(context.Background(), fx.plot.ID.String(), "")
	require.NoError(t, err)
	assert.Equal(t, int64(5000), balance.TotalAccrued)
	assert.Equal(t, int64(3500), balance.TotalPaid)
	assert.Equal(t, int64(1500), balance.TotalDebt)
	require.Len(t, balance.Accruals, 2)
}

func TestGetPlotBalanceInvalidID(t *testing.T) {
	svc, _, _ := setupDebtService(t)

	_, err := svc.GetPlotBalance(context.Background(), "bogus", "")
	assert.ErrorIs(t, err, domain.ErrInvalidPlotID)
}
