package paymentimport

import (
	"github.com/sadovo/vznos/internal/paymentimport/service"
	"go.uber.org/fx"
)

var Module = fx.Module("paymentimport.service",
	fx.Provide(service.New),
)
