package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	perioddomain "github.com/sadovo/vznos/internal/period/domain"
)

type createPeriodRequest struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

func (s *Server) CreatePeriod(c *gin.Context) {
	var req createPeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.periodSvc.Create(c.Request.Context(), perioddomain.CreatePeriodRequest{
		Year:  req.Year,
		Month: req.Month,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListPeriods(c *gin.Context) {
	var query struct {
		Year   int    `form:"year"`
		Status string `form:"status"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.periodSvc.List(c.Request.Context(), perioddomain.ListPeriodRequest{
		Year:   query.Year,
		Status: strings.TrimSpace(query.Status),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetPeriodByID(c *gin.Context) {
	resp, err := s.periodSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ClosePeriod(c *gin.Context) {
	resp, err := s.periodSvc.Close(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeletePeriod(c *gin.Context) {
	if err := s.periodSvc.Delete(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func isPeriodValidationError(err error) bool {
	switch err {
	case perioddomain.ErrInvalidID,
		perioddomain.ErrInvalidYear,
		perioddomain.ErrInvalidMonth,
		perioddomain.ErrInvalidStatus:
		return true
	default:
		return false
	}
}
