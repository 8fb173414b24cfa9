package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sadovo/vznos/internal/accrual"
	accrualdomain "github.com/sadovo/vznos/internal/accrual/domain"
	"github.com/sadovo/vznos/internal/allocation"
	allocationdomain "github.com/sadovo/vznos/internal/allocation/domain"
	"github.com/sadovo/vznos/internal/config"
	"github.com/sadovo/vznos/internal/debt"
	debtdomain "github.com/sadovo/vznos/internal/debt/domain"
	"github.com/sadovo/vznos/internal/observability"
	obsmiddleware "github.com/sadovo/vznos/internal/observability/logger"
	obsmetrics "github.com/sadovo/vznos/internal/observability/metrics"
	"github.com/sadovo/vznos/internal/payment"
	paymentdomain "github.com/sadovo/vznos/internal/payment/domain"
	"github.com/sadovo/vznos/internal/paymentimport"
	paymentimportdomain "github.com/sadovo/vznos/internal/paymentimport/domain"
	"github.com/sadovo/vznos/internal/period"
	perioddomain "github.com/sadovo/vznos/internal/period/domain"
	"github.com/sadovo/vznos/internal/plot"
	plotdomain "github.com/sadovo/vznos/internal/plot/domain"
	"github.com/sadovo/vznos/internal/tariff"
	tariffdomain "github.com/sadovo/vznos/internal/tariff/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	period.Module,
	tariff.Module,
	plot.Module,
	accrual.Module,
	payment.Module,
	allocation.Module,
	debt.Module,
	paymentimport.Module,
	fx.Provide(NewServer),
	fx.Invoke(registerRoutes),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, m *obsmetrics.Metrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug: obsCfg.Debug(),
	}))
	r.Use(obsmetrics.GinMiddleware(m))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if m != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(m.Registry(), promhttp.HandlerOpts{})))
	}

	return r
}

func registerGin(obsCfg observability.Config, m *obsmetrics.Metrics) *gin.Engine {
	return NewEngine(obsCfg, m)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine *gin.Engine
	cfg    config.Config
	db     *gorm.DB
	genID  *snowflake.Node

	periodSvc     perioddomain.Service
	tariffSvc     tariffdomain.Service
	plotSvc       plotdomain.Service
	accrualSvc    accrualdomain.Service
	paymentSvc    paymentdomain.Service
	allocationSvc allocationdomain.Service
	debtSvc       debtdomain.Service
	importSvc     paymentimportdomain.Service
}

type ServerParams struct {
	fx.In

	Gin           *gin.Engine
	Cfg           config.Config
	DB            *gorm.DB
	GenID         *snowflake.Node
	PeriodSvc     perioddomain.Service
	TariffSvc     tariffdomain.Service
	PlotSvc       plotdomain.Service
	AccrualSvc    accrualdomain.Service
	PaymentSvc    paymentdomain.Service
	AllocationSvc allocationdomain.Service
	DebtSvc       debtdomain.Service
	ImportSvc     paymentimportdomain.Service
}

func NewServer(p ServerParams) *Server {
	return &Server{
		engine:        p.Gin,
		cfg:           p.Cfg,
		db:            p.DB,
		genID:         p.GenID,
		periodSvc:     p.PeriodSvc,
		tariffSvc:     p.TariffSvc,
		plotSvc:       p.PlotSvc,
		accrualSvc:    p.AccrualSvc,
		paymentSvc:    p.PaymentSvc,
		allocationSvc: p.AllocationSvc,
		debtSvc:       p.DebtSvc,
		importSvc:     p.ImportSvc,
	}
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func registerRoutes(s *Server) {
	s.RegisterAPIRoutes()
}

func (s *Server) RegisterAPIRoutes() {
	api := s.engine.Group("/api/v1")

	// Billing periods
	api.GET("/periods", s.ListPeriods)
	api.POST("/periods", s.CreatePeriod)
	api.GET("/periods/:id", s.GetPeriodByID)
	api.POST("/periods/:id/close", s.ClosePeriod)
	api.DELETE("/periods/:id", s.DeletePeriod)
	api.GET("/periods/:id/summary", s.GetPeriodSummary)

	// Tariffs
	api.GET("/tariffs", s.ListTariffs)
	api.POST("/tariffs", s.CreateTariff)
	api.GET("/tariffs/:id", s.GetTariffByID)
	api.PATCH("/tariffs/:id", s.UpdateTariff)
	api.DELETE("/tariffs/:id", s.DeleteTariff)

	// Plot registry
	api.GET("/plots", s.ListPlots)
	api.POST("/plots", s.CreatePlot)
	api.GET("/plots/:id", s.GetPlotByID)
	api.PATCH("/plots/:id", s.UpdatePlot)
	api.GET("/plots/:id/balance", s.GetPlotBalance)

	// Accruals
	api.GET("/accruals", s.ListAccruals)
	api.POST("/accruals", s.CreateAccrual)
	api.GET("/accruals/:id", s.GetAccrualByID)
	api.DELETE("/accruals/:id", s.DeleteAccrual)
	api.POST("/periods/:id/accruals/generate", s.GenerateAccruals)

	// Payments and allocations
	api.GET("/payments", s.ListPayments)
	api.POST("/payments", s.CreatePayment)
	api.GET("/payments/:id", s.GetPaymentByID)
	api.DELETE("/payments/:id", s.DeletePayment)
	api.POST("/payments/:id/allocate", s.AllocatePayment)
	api.DELETE("/allocations/:id", s.DeleteAllocation)

	// Reports
	api.GET("/reports/debts", s.ListDebts)

	// Bank registry import
	api.POST("/imports/payments", s.ParseImportFile)
	api.POST("/imports/payments/confirm", s.ConfirmImportRow)
}
