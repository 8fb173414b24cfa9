package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	tariffdomain "github.com/sadovo/vznos/internal/tariff/domain"
)

type createTariffRequest struct {
	Code       string `json:"code"`
	Type       string `json:"type"`
	Title      string `json:"title"`
	Amount     int64  `json:"amount"`
	AppliesTo  string `json:"applies_to"`
	ActiveFrom string `json:"active_from"`
	ActiveTo   string `json:"active_to"`
}

func (s *Server) CreateTariff(c *gin.Context) {
	var req createTariffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	activeFrom, err := parseOptionalTime(req.ActiveFrom, false)
	if err != nil {
		AbortWithError(c, newValidationError("active_from", "invalid_active_from", "invalid active_from"))
		return
	}
	activeTo, err := parseOptionalTime(req.ActiveTo, true)
	if err != nil {
		AbortWithError(c, newValidationError("active_to", "invalid_active_to", "invalid active_to"))
		return
	}

	create := tariffdomain.CreateTariffRequest{
		Code:      strings.TrimSpace(req.Code),
		Type:      strings.TrimSpace(req.Type),
		Title:     strings.TrimSpace(req.Title),
		Amount:    req.Amount,
		AppliesTo: strings.TrimSpace(req.AppliesTo),
		ActiveTo:  activeTo,
	}
	if activeFrom != nil {
		create.ActiveFrom = *activeFrom
	}

	resp, err := s.tariffSvc.Create(c.Request.Context(), create)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type updateTariffRequest struct {
	Title    *string `json:"title"`
	Status   *string `json:"status"`
	ActiveTo *string `json:"active_to"`
}

func (s *Server) UpdateTariff(c *gin.Context) {
	var req updateTariffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	update := tariffdomain.UpdateTariffRequest{
		ID:     strings.TrimSpace(c.Param("id")),
		Title:  req.Title,
		Status: req.Status,
	}
	if req.ActiveTo != nil {
		activeTo, err := parseOptionalTime(*req.ActiveTo, true)
		if err != nil {
			AbortWithError(c, newValidationError("active_to", "invalid_active_to", "invalid active_to"))
			return
		}
		update.ActiveTo = activeTo
	}

	resp, err := s.tariffSvc.Update(c.Request.Context(), update)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListTariffs(c *gin.Context) {
	var query struct {
		Type   string `form:"type"`
		Status string `form:"status"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.tariffSvc.List(c.Request.Context(), tariffdomain.ListTariffRequest{
		Type:   strings.TrimSpace(query.Type),
		Status: strings.TrimSpace(query.Status),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetTariffByID(c *gin.Context) {
	resp, err := s.tariffSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteTariff(c *gin.Context) {
	if err := s.tariffSvc.Delete(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func isTariffValidationError(err error) bool {
	switch err {
	case tariffdomain.ErrInvalidID,
		tariffdomain.ErrInvalidCode,
		tariffdomain.ErrInvalidTitle,
		tariffdomain.ErrInvalidAmount,
		tariffdomain.ErrInvalidAppliesTo,
		tariffdomain.ErrInvalidStatus:
		return true
	default:
		return false
	}
}
