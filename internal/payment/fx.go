package payment

import (
	"github.com/sadovo/vznos/internal/payment/repository"
	"github.com/sadovo/vznos/internal/payment/service"
	"go.uber.org/fx"
)

var Module = fx.Module("payment.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
