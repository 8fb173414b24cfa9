package period

import (
	"github.com/sadovo/vznos/internal/period/repository"
	"github.com/sadovo/vznos/internal/period/service"
	"go.uber.org/fx"
)

var Module = fx.Module("period.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
