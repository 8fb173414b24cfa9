package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	debtdomain "github.com/sadovo/vznos/internal/debt/domain"
)

func (s *Server) ListDebts(c *gin.Context) {
	var query struct {
		PeriodID string `form:"period_id"`
		MinDebt  int64  `form:"min_debt"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.debtSvc.ComputeDebtsByPlot(c.Request.Context(), debtdomain.DebtsRequest{
		PeriodID: strings.TrimSpace(query.PeriodID),
		MinDebt:  query.MinDebt,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetPeriodSummary(c *gin.Context) {
	resp, err := s.debtSvc.GetPeriodSummary(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetPlotBalance(c *gin.Context) {
	resp, err := s.debtSvc.GetPlotBalance(
		c.Request.Context(),
		strings.TrimSpace(c.Param("id")),
		strings.TrimSpace(c.Query("period_id")),
	)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
