package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	accrualdomain "github.com/sadovo/vznos/internal/accrual/domain"
	allocationdomain "github.com/sadovo/vznos/internal/allocation/domain"
	debtdomain "github.com/sadovo/vznos/internal/debt/domain"
	paymentdomain "github.com/sadovo/vznos/internal/payment/domain"
	paymentimportdomain "github.com/sadovo/vznos/internal/paymentimport/domain"
	perioddomain "github.com/sadovo/vznos/internal/period/domain"
	plotdomain "github.com/sadovo/vznos/internal/plot/domain"
	tariffdomain "github.com/sadovo/vznos/internal/tariff/domain"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrConflict       = errors.New("conflict")
	ErrInternal       = errors.New("internal_error")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if isValidationError(err) {
		code := validationErrorCode(err)
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: validationErrorMessage(code),
				},
			},
		}
	}

	switch {
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: err.Error(),
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, ErrInternal):
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return true
	case isPeriodValidationError(err),
		isTariffValidationError(err),
		isPlotValidationError(err),
		isAccrualValidationError(err),
		isPaymentValidationError(err),
		isAllocationValidationError(err),
		isReportValidationError(err),
		isImportValidationError(err):
		return true
	default:
		return false
	}
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, ErrConflict),
		errors.Is(err, perioddomain.ErrDuplicatePeriod),
		errors.Is(err, perioddomain.ErrAlreadyClosed),
		errors.Is(err, tariffdomain.ErrDuplicateCode),
		errors.Is(err, plotdomain.ErrDuplicateNumber),
		errors.Is(err, accrualdomain.ErrDuplicateAccrual),
		errors.Is(err, accrualdomain.ErrPeriodClosed),
		errors.Is(err, paymentdomain.ErrDuplicateRowHash),
		errors.Is(err, paymentdomain.ErrHasAllocations),
		errors.Is(err, allocationdomain.ErrPaymentNotLinked):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, perioddomain.ErrNotFound),
		errors.Is(err, tariffdomain.ErrNotFound),
		errors.Is(err, plotdomain.ErrNotFound),
		errors.Is(err, accrualdomain.ErrNotFound),
		errors.Is(err, accrualdomain.ErrPeriodNotFound),
		errors.Is(err, paymentdomain.ErrNotFound),
		errors.Is(err, paymentdomain.ErrAllocationNotFound),
		errors.Is(err, allocationdomain.ErrPaymentNotFound),
		errors.Is(err, debtdomain.ErrPeriodNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return "invalid_request"
	default:
		return err.Error()
	}
}

func validationErrorField(code string) string {
	if code == "invalid_request" {
		return "request"
	}
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}

func validationErrorMessage(code string) string {
	switch code {
	case "invalid_request":
		return "invalid request"
	default:
		return "invalid value"
	}
}

func isImportValidationError(err error) bool {
	switch {
	case errors.Is(err, paymentimportdomain.ErrEmptyFile),
		errors.Is(err, paymentimportdomain.ErrMissingColumns):
		return true
	default:
		return false
	}
}

func isReportValidationError(err error) bool {
	switch {
	case errors.Is(err, debtdomain.ErrInvalidPeriodID),
		errors.Is(err, debtdomain.ErrInvalidPlotID):
		return true
	default:
		return false
	}
}
