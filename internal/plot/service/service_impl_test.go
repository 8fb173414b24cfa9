package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/sadovo/vznos/internal/plot/domain"
	"github.com/sadovo/vznos/internal/plot/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupPlotService(t *testing.T) domain.Service {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_loc=auto", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	require.NoError(t, db.AutoMigrate(&domain.Plot{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
	})
}

func TestCreatePlot(t *testing.T) {
	svc := setupPlotService(t)

	plot, err := svc.Create(context.Background(), domain.CreatePlotRequest{
		Number:    "12",
		OwnerName: "Ivanov Ivan",
		Phone:     "8 (916) 123-45-67",
		AreaSqm:   600,
	})
	require.NoError(t, err)
	assert.Equal(t, "12", plot.Number)
	assert.Equal(t, "79161234567", plot.PhoneNormalized)
}

func TestCreatePlotValidation(t *testing.T) {
	svc := setupPlotService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreatePlotRequest{OwnerName: "Ivanov"})
	assert.ErrorIs(t, err, domain.ErrInvalidNumber)

	_, err = svc.Create(ctx, domain.CreatePlotRequest{Number: "12"})
	assert.ErrorIs(t, err, domain.ErrInvalidOwner)

	_, err = svc.Create(ctx, domain.CreatePlotRequest{Number: "12", OwnerName: "Ivanov", AreaSqm: -1})
	assert.ErrorIs(t, err, domain.ErrInvalidArea)
}

func TestCreatePlotDuplicateNumber(t *testing.T) {
	svc := setupPlotService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreatePlotRequest{Number: "12", OwnerName: "Ivanov"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, domain.CreatePlotRequest{Number: "12", OwnerName: "Petrov"})
	assert.ErrorIs(t, err, domain.ErrDuplicateNumber)
}

func TestUpdatePlot(t *testing.T) {
	svc := setupPlotService(t)
	ctx := context.Background()

	plot, err := svc.Create(ctx, domain.CreatePlotRequest{Number: "12", OwnerName: "Ivanov"})
	require.NoError(t, err)

	owner := "Petrov Petr"
	phone := "8 916 000 11 22"
	updated, err := svc.Update(ctx, domain.UpdatePlotRequest{
		ID:        plot.ID.String(),
		OwnerName: &owner,
		Phone:     &phone,
	})
	require.NoError(t, err)
	assert.Equal(t, "Petrov Petr", updated.OwnerName)
	assert.Equal(t, "79160001122", updated.PhoneNormalized)
}

func TestListPlotsFilterByOwner(t *testing.T) {
	svc := setupPlotService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreatePlotRequest{Number: "12", OwnerName: "Ivanov Ivan"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, domain.CreatePlotRequest{Number: "13", OwnerName: "Petrova Anna"})
	require.NoError(t, err)

	resp, err := svc.List(ctx, domain.ListPlotRequest{OwnerName: "ivanov"})
	require.NoError(t, err)
	require.Len(t, resp.Plots, 1)
	assert.Equal(t, "12", resp.Plots[0].Number)
}

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"+7 (916) 123-45-67", "79161234567"},
		{"8-916-123-45-67", "79161234567"},
		{"89161234567", "79161234567"},
		{"123-45-67", "1234567"},
		{"", ""},
		{"abc", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, NormalizePhone(tc.in), tc.in)
	}
}
