package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	allocationdomain "github.com/sadovo/vznos/internal/allocation/domain"
	paymentdomain "github.com/sadovo/vznos/internal/payment/domain"
)

type createPaymentRequest struct {
	PlotID     string `json:"plot_id"`
	PaidAt     string `json:"paid_at"`
	Amount     int64  `json:"amount"`
	Source     string `json:"source"`
	ExternalID string `json:"external_id"`
	Comment    string `json:"comment"`
}

func (s *Server) CreatePayment(c *gin.Context) {
	var req createPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	var paidAt time.Time
	if parsed, err := parseOptionalTime(req.PaidAt, false); err != nil {
		AbortWithError(c, newValidationError("paid_at", "invalid_paid_at", "invalid paid_at"))
		return
	} else if parsed != nil {
		paidAt = *parsed
	}

	resp, err := s.paymentSvc.Create(c.Request.Context(), paymentdomain.CreatePaymentRequest{
		PlotID:     strings.TrimSpace(req.PlotID),
		PaidAt:     paidAt,
		Amount:     req.Amount,
		Source:     strings.TrimSpace(req.Source),
		ExternalID: strings.TrimSpace(req.ExternalID),
		Comment:    strings.TrimSpace(req.Comment),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListPayments(c *gin.Context) {
	var query struct {
		PlotID   string `form:"plot_id"`
		Source   string `form:"source"`
		PaidFrom string `form:"paid_from"`
		PaidTo   string `form:"paid_to"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	paidFrom, err := parseOptionalTime(query.PaidFrom, false)
	if err != nil {
		AbortWithError(c, newValidationError("paid_from", "invalid_paid_from", "invalid paid_from"))
		return
	}
	paidTo, err := parseOptionalTime(query.PaidTo, true)
	if err != nil {
		AbortWithError(c, newValidationError("paid_to", "invalid_paid_to", "invalid paid_to"))
		return
	}

	resp, err := s.paymentSvc.List(c.Request.Context(), paymentdomain.ListPaymentRequest{
		PlotID:   strings.TrimSpace(query.PlotID),
		Source:   strings.TrimSpace(query.Source),
		PaidFrom: paidFrom,
		PaidTo:   paidTo,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetPaymentByID(c *gin.Context) {
	resp, err := s.paymentSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeletePayment(c *gin.Context) {
	if err := s.paymentSvc.Delete(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (s *Server) AllocatePayment(c *gin.Context) {
	resp, err := s.allocationSvc.AllocatePayment(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteAllocation(c *gin.Context) {
	if err := s.paymentSvc.DeleteAllocation(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func isPaymentValidationError(err error) bool {
	switch err {
	case paymentdomain.ErrInvalidID,
		paymentdomain.ErrInvalidPlotID,
		paymentdomain.ErrInvalidAmount,
		paymentdomain.ErrInvalidSource,
		paymentdomain.ErrInvalidPaidAt:
		return true
	default:
		return false
	}
}

func isAllocationValidationError(err error) bool {
	switch err {
	case allocationdomain.ErrInvalidPaymentID:
		return true
	default:
		return false
	}
}
