package migration

import (
	accrualdomain "github.com/sadovo/vznos/internal/accrual/domain"
	"github.com/sadovo/vznos/internal/config"
	paymentdomain "github.com/sadovo/vznos/internal/payment/domain"
	perioddomain "github.com/sadovo/vznos/internal/period/domain"
	plotdomain "github.com/sadovo/vznos/internal/plot/domain"
	"github.com/sadovo/vznos/internal/seed"
	tariffdomain "github.com/sadovo/vznos/internal/tariff/domain"
	"github.com/sadovo/vznos/pkg/db"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, dbCfg db.Config) error {
		if dbCfg.Type == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			// sqlite and in-memory installs get their schema from the
			// models directly.
			if err := conn.AutoMigrate(
				&plotdomain.Plot{},
				&perioddomain.Period{},
				&tariffdomain.Tariff{},
				&accrualdomain.Accrual{},
				&paymentdomain.Payment{},
				&paymentdomain.PaymentAllocation{},
			); err != nil {
				return err
			}
		}

		if cfg.SeedDemoData {
			return seed.EnsureDemoData(conn)
		}
		return nil
	}),
)
