package plot

import (
	"github.com/sadovo/vznos/internal/plot/repository"
	"github.com/sadovo/vznos/internal/plot/service"
	"go.uber.org/fx"
)

var Module = fx.Module("plot.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
