package debt

import (
	"github.com/sadovo/vznos/internal/debt/service"
	"go.uber.org/fx"
)

var Module = fx.Module("debt.service",
	fx.Provide(service.New),
)
