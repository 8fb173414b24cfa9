package accrual

import (
	"github.com/sadovo/vznos/internal/accrual/repository"
	"github.com/sadovo/vznos/internal/accrual/service"
	"go.uber.org/fx"
)

var Module = fx.Module("accrual.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
