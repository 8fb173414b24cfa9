package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	perioddomain "github.com/sadovo/vznos/internal/period/domain"
	plotdomain "github.com/sadovo/vznos/internal/plot/domain"
	tariffdomain "github.com/sadovo/vznos/internal/tariff/domain"
	"gorm.io/gorm"
)

type demoPlot struct {
	number    string
	ownerName string
	phone     string
	areaSqm   int64
}

var demoPlots = []demoPlot{
	{number: "12", ownerName: "Ivanov Ivan Ivanovich", phone: "+7 (916) 123-45-67", areaSqm: 600},
	{number: "13", ownerName: "Petrova Anna Sergeevna", phone: "89161112233", areaSqm: 800},
	{number: "14a", ownerName: "Sidorov Petr Nikolaevich", phone: "", areaSqm: 1200},
}

// EnsureDemoData seeds a minimal registry so a fresh install is usable
// immediately: a few plots, the current billing period and two tariffs.
// Idempotent, safe to run on every startup.
func EnsureDemoData(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensurePlots(ctx, tx, node); err != nil {
			return err
		}
		if err := ensureCurrentPeriod(ctx, tx, node); err != nil {
			return err
		}
		return ensureTariffs(ctx, tx, node)
	})
}

func ensurePlots(ctx context.Context, tx *gorm.DB, node *snowflake.Node) error {
	for _, p := range demoPlots {
		var count int64
		if err := tx.WithContext(ctx).Model(&plotdomain.Plot{}).
			Where("number = ?", p.number).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}

		plot := plotdomain.Plot{
			ID:        node.Generate(),
			Number:    p.number,
			OwnerName: p.ownerName,
			Phone:     p.phone,
			AreaSqm:   p.areaSqm,
		}
		if err := tx.WithContext(ctx).Create(&plot).Error; err != nil {
			return err
		}
	}
	return nil
}

func ensureCurrentPeriod(ctx context.Context, tx *gorm.DB, node *snowflake.Node) error {
	now := time.Now().UTC()

	var count int64
	if err := tx.WithContext(ctx).Model(&perioddomain.Period{}).
		Where("year = ? AND month = ?", now.Year(), int(now.Month())).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	period := perioddomain.Period{
		ID:     node.Generate(),
		Year:   now.Year(),
		Month:  int(now.Month()),
		Status: perioddomain.PeriodStatusOpen,
	}
	return tx.WithContext(ctx).Create(&period).Error
}

func ensureTariffs(ctx context.Context, tx *gorm.DB, node *snowflake.Node) error {
	now := time.Now().UTC()
	yearStart := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)

	tariffs := []tariffdomain.Tariff{
		{
			ID:         node.Generate(),
			Code:       "membership-" + yearStart.Format("2006"),
			Type:       "membership",
			Title:      "Membership fee",
			Amount:     150000, // 1500 rubles per plot per month
			AppliesTo:  tariffdomain.AppliesToPlot,
			Status:     tariffdomain.TariffStatusActive,
			ActiveFrom: yearStart,
		},
		{
			ID:         node.Generate(),
			Code:       "land-" + yearStart.Format("2006"),
			Type:       "land",
			Title:      "Land maintenance fee",
			Amount:     25, // 25 kopecks per square meter per month
			AppliesTo:  tariffdomain.AppliesToArea,
			Status:     tariffdomain.TariffStatusActive,
			ActiveFrom: yearStart,
		},
	}

	for _, tariff := range tariffs {
		var count int64
		if err := tx.WithContext(ctx).Model(&tariffdomain.Tariff{}).
			Where("code = ?", tariff.Code).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		if err := tx.WithContext(ctx).Create(&tariff).Error; err != nil {
			return err
		}
	}
	return nil
}
