package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/sadovo/vznos/internal/period/domain"
	"github.com/sadovo/vznos/internal/period/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupPeriodService(t *testing.T) domain.Service {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_loc=auto", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	require.NoError(t, db.AutoMigrate(&domain.Period{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
	})
}

func TestCreatePeriod(t *testing.T) {
	svc := setupPeriodService(t)

	period, err := svc.Create(context.Background(), domain.CreatePeriodRequest{Year: 2025, Month: 6})
	require.NoError(t, err)
	assert.Equal(t, 2025, period.Year)
	assert.Equal(t, 6, period.Month)
	assert.Equal(t, domain.PeriodStatusOpen, period.Status)
	assert.Equal(t, "2025-06", period.Label())
}

func TestCreatePeriodValidation(t *testing.T) {
	svc := setupPeriodService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreatePeriodRequest{Year: 1999, Month: 6})
	assert.ErrorIs(t, err, domain.ErrInvalidYear)

	_, err = svc.Create(ctx, domain.CreatePeriodRequest{Year: 2025, Month: 0})
	assert.ErrorIs(t, err, domain.ErrInvalidMonth)

	_, err = svc.Create(ctx, domain.CreatePeriodRequest{Year: 2025, Month: 13})
	assert.ErrorIs(t, err, domain.ErrInvalidMonth)
}

func TestCreatePeriodDuplicate(t *testing.T) {
	svc := setupPeriodService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreatePeriodRequest{Year: 2025, Month: 6})
	require.NoError(t, err)

	_, err = svc.Create(ctx, domain.CreatePeriodRequest{Year: 2025, Month: 6})
	assert.ErrorIs(t, err, domain.ErrDuplicatePeriod)
}

func TestClosePeriodTerminal(t *testing.T) {
	svc := setupPeriodService(t)
	ctx := context.Background()

	period, err := svc.Create(ctx, domain.CreatePeriodRequest{Year: 2025, Month: 6})
	require.NoError(t, err)

	closed, err := svc.Close(ctx, period.ID.String())
	require.NoError(t, err)
	assert.Equal(t, domain.PeriodStatusClosed, closed.Status)

	_, err = svc.Close(ctx, period.ID.String())
	assert.ErrorIs(t, err, domain.ErrAlreadyClosed)
}

func TestClosePeriodNotFound(t *testing.T) {
	svc := setupPeriodService(t)

	node, err := snowflake.NewNode(2)
	require.NoError(t, err)

	_, err = svc.Close(context.Background(), node.Generate().String())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListPeriodsNewestFirst(t *testing.T) {
	svc := setupPeriodService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreatePeriodRequest{Year: 2025, Month: 5})
	require.NoError(t, err)
	_, err = svc.Create(ctx, domain.CreatePeriodRequest{Year: 2025, Month: 7})
	require.NoError(t, err)
	_, err = svc.Create(ctx, domain.CreatePeriodRequest{Year: 2024, Month: 12})
	require.NoError(t, err)

	resp, err := svc.List(ctx, domain.ListPeriodRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Periods, 3)
	assert.Equal(t, "2025-07", resp.Periods[0].Label())
	assert.Equal(t, "2025-05", resp.Periods[1].Label())
	assert.Equal(t, "2024-12", resp.Periods[2].Label())
}

func TestListPeriodsFilterByYear(t *testing.T) {
	svc := setupPeriodService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreatePeriodRequest{Year: 2025, Month: 5})
	require.NoError(t, err)
	_, err = svc.Create(ctx, domain.CreatePeriodRequest{Year: 2024, Month: 5})
	require.NoError(t, err)

	resp, err := svc.List(ctx, domain.ListPeriodRequest{Year: 2024})
	require.NoError(t, err)
	require.Len(t, resp.Periods, 1)
	assert.Equal(t, 2024, resp.Periods[0].Year)
}
