package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	accrualdomain "github.com/sadovo/vznos/internal/accrual/domain"
)

type createAccrualRequest struct {
	PeriodID string `json:"period_id"`
	PlotID   string `json:"plot_id"`
	TariffID string `json:"tariff_id"`
	Amount   int64  `json:"amount"`
}

func (s *Server) CreateAccrual(c *gin.Context) {
	var req createAccrualRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.accrualSvc.Create(c.Request.Context(), accrualdomain.CreateAccrualRequest{
		PeriodID: strings.TrimSpace(req.PeriodID),
		PlotID:   strings.TrimSpace(req.PlotID),
		TariffID: strings.TrimSpace(req.TariffID),
		Amount:   req.Amount,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListAccruals(c *gin.Context) {
	var query struct {
		PeriodID string `form:"period_id"`
		PlotID   string `form:"plot_id"`
		TariffID string `form:"tariff_id"`
		Status   string `form:"status"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.accrualSvc.List(c.Request.Context(), accrualdomain.ListAccrualRequest{
		PeriodID: strings.TrimSpace(query.PeriodID),
		PlotID:   strings.TrimSpace(query.PlotID),
		TariffID: strings.TrimSpace(query.TariffID),
		Status:   strings.TrimSpace(query.Status),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetAccrualByID(c *gin.Context) {
	resp, err := s.accrualSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteAccrual(c *gin.Context) {
	if err := s.accrualSvc.Delete(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (s *Server) GenerateAccruals(c *gin.Context) {
	resp, err := s.accrualSvc.GenerateForPeriod(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func isAccrualValidationError(err error) bool {
	switch err {
	case accrualdomain.ErrInvalidID,
		accrualdomain.ErrInvalidPeriodID,
		accrualdomain.ErrInvalidPlotID,
		accrualdomain.ErrInvalidTariffID,
		accrualdomain.ErrInvalidAmount,
		accrualdomain.ErrInvalidStatus:
		return true
	default:
		return false
	}
}
