package tariff

import (
	"github.com/sadovo/vznos/internal/tariff/repository"
	"github.com/sadovo/vznos/internal/tariff/service"
	"go.uber.org/fx"
)

var Module = fx.Module("tariff.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
