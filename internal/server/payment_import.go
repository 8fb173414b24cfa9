package server

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	paymentimportdomain "github.com/sadovo/vznos/internal/paymentimport/domain"
)

// ParseImportFile accepts a bank registry CSV either as a multipart
// "file" field or as the raw request body.
func (s *Server) ParseImportFile(c *gin.Context) {
	var reader io.Reader

	if file, err := c.FormFile("file"); err == nil {
		opened, err := file.Open()
		if err != nil {
			AbortWithError(c, invalidRequestError())
			return
		}
		defer opened.Close()
		reader = opened
	} else {
		reader = c.Request.Body
	}

	resp, err := s.importSvc.ParseAndMatch(c.Request.Context(), reader)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type confirmImportRowRequest struct {
	PlotID     string `json:"plot_id"`
	PaidAt     string `json:"paid_at"`
	Amount     int64  `json:"amount"`
	ExternalID string `json:"external_id"`
	RawRowHash string `json:"raw_row_hash"`
	Comment    string `json:"comment"`
}

func (s *Server) ConfirmImportRow(c *gin.Context) {
	var req confirmImportRowRequest
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

	resp, err := s.importSvc.ConfirmRow(c.Request.Context(), paymentimportdomain.ConfirmRowRequest{
		PlotID:     strings.TrimSpace(req.PlotID),
		PaidAt:     paidAt,
		Amount:     req.Amount,
		ExternalID: strings.TrimSpace(req.ExternalID),
		RawRowHash: strings.TrimSpace(req.RawRowHash),
		Comment:    strings.TrimSpace(req.Comment),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
