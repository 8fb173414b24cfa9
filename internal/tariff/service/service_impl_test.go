package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/sadovo/vznos/internal/tariff/domain"
	"github.com/sadovo/vznos/internal/tariff/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupTariffService(t *testing.T) domain.Service {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_loc=auto", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	require.NoError(t, db.AutoMigrate(&domain.Tariff{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
	})
}

func TestCreateTariff(t *testing.T) {
	svc := setupTariffService(t)

	tariff, err := svc.Create(context.Background(), domain.CreateTariffRequest{
		Code:      "membership-2025",
		Type:      "membership",
		Title:     "Membership fee",
		Amount:    150000,
		AppliesTo: "plot",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.TariffStatusActive, tariff.Status)
	assert.Equal(t, domain.AppliesToPlot, tariff.AppliesTo)
	assert.False(t, tariff.ActiveFrom.IsZero())
}

func TestCreateTariffValidation(t *testing.T) {
	svc := setupTariffService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreateTariffRequest{Title: "t", Amount: 1})
	assert.ErrorIs(t, err, domain.ErrInvalidCode)

	_, err = svc.Create(ctx, domain.CreateTariffRequest{Code: "c", Amount: 1})
	assert.ErrorIs(t, err, domain.ErrInvalidTitle)

	_, err = svc.Create(ctx, domain.CreateTariffRequest{Code: "c", Title: "t", Amount: 0})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = svc.Create(ctx, domain.CreateTariffRequest{Code: "c", Title: "t", Amount: 1, AppliesTo: "household"})
	assert.ErrorIs(t, err, domain.ErrInvalidAppliesTo)
}

func TestCreateTariffDuplicateCode(t *testing.T) {
	svc := setupTariffService(t)
	ctx := context.Background()

	req := domain.CreateTariffRequest{Code: "membership-2025", Title: "Membership", Amount: 100}
	_, err := svc.Create(ctx, req)
	require.NoError(t, err)

	_, err = svc.Create(ctx, req)
	assert.ErrorIs(t, err, domain.ErrDuplicateCode)
}

func TestUpdateTariffKeepsAmount(t *testing.T) {
	svc := setupTariffService(t)
	ctx := context.Background()

	tariff, err := svc.Create(ctx, domain.CreateTariffRequest{Code: "m", Title: "Membership", Amount: 100})
	require.NoError(t, err)

	title := "Membership fee 2025"
	status := "inactive"
	updated, err := svc.Update(ctx, domain.UpdateTariffRequest{
		ID:     tariff.ID.String(),
		Title:  &title,
		Status: &status,
	})
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)
	assert.Equal(t, domain.TariffStatusInactive, updated.Status)
	assert.Equal(t, int64(100), updated.Amount)
}

func TestListTariffsActiveFirst(t *testing.T) {
	svc := setupTariffService(t)
	ctx := context.Background()

	inactive, err := svc.Create(ctx, domain.CreateTariffRequest{Code: "a-old", Title: "Old", Amount: 100})
	require.NoError(t, err)
	status := "inactive"
	_, err = svc.Update(ctx, domain.UpdateTariffRequest{ID: inactive.ID.String(), Status: &status})
	require.NoError(t, err)

	_, err = svc.Create(ctx, domain.CreateTariffRequest{Code: "z-new", Title: "New", Amount: 200})
	require.NoError(t, err)

	resp, err := svc.List(ctx, domain.ListTariffRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Tariffs, 2)
	assert.Equal(t, "z-new", resp.Tariffs[0].Code)
	assert.Equal(t, "a-old", resp.Tariffs[1].Code)
}

func TestTariffActiveAt(t *testing.T) {
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)

	tariff := domain.Tariff{
		Status:     domain.TariffStatusActive,
		ActiveFrom: from,
		ActiveTo:   &to,
	}

	assert.True(t, tariff.ActiveAt(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)))
	assert.False(t, tariff.ActiveAt(time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)))
	assert.False(t, tariff.ActiveAt(time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)))

	tariff.Status = domain.TariffStatusInactive
	assert.False(t, tariff.ActiveAt(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)))
}
