package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	plotdomain "github.com/sadovo/vznos/internal/plot/domain"
	"github.com/sadovo/vznos/pkg/db/pagination"
)

type createPlotRequest struct {
	Number    string `json:"number"`
	OwnerName string `json:"owner_name"`
	Phone     string `json:"phone"`
	AreaSqm   int64  `json:"area_sqm"`
}

func (s *Server) CreatePlot(c *gin.Context) {
	var req createPlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.plotSvc.Create(c.Request.Context(), plotdomain.CreatePlotRequest{
		Number:    strings.TrimSpace(req.Number),
		OwnerName: strings.TrimSpace(req.OwnerName),
		Phone:     strings.TrimSpace(req.Phone),
		AreaSqm:   req.AreaSqm,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type updatePlotRequest struct {
	OwnerName *string `json:"owner_name"`
	Phone     *string `json:"phone"`
	AreaSqm   *int64  `json:"area_sqm"`
}

func (s *Server) UpdatePlot(c *gin.Context) {
	var req updatePlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.plotSvc.Update(c.Request.Context(), plotdomain.UpdatePlotRequest{
		ID:        strings.TrimSpace(c.Param("id")),
		OwnerName: req.OwnerName,
		Phone:     req.Phone,
		AreaSqm:   req.AreaSqm,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListPlots(c *gin.Context) {
	var query struct {
		pagination.Pagination
		Number    string `form:"number"`
		OwnerName string `form:"owner_name"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.plotSvc.List(c.Request.Context(), plotdomain.ListPlotRequest{
		Pagination: query.Pagination,
		Number:     strings.TrimSpace(query.Number),
		OwnerName:  strings.TrimSpace(query.OwnerName),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetPlotByID(c *gin.Context) {
	resp, err := s.plotSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func isPlotValidationError(err error) bool {
	switch err {
	case plotdomain.ErrInvalidID,
		plotdomain.ErrInvalidNumber,
		plotdomain.ErrInvalidOwner,
		plotdomain.ErrInvalidArea:
		return true
	default:
		return false
	}
}
