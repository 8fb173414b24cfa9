// Package domain defines the payment allocation contract: distributing a
// payment's unallocated amount across the plot's outstanding accruals,
// oldest charge first.
package domain

import (
	"context"
	"errors"

	paymentdomain "github.com/sadovo/vznos/internal/payment/domain"
)

// Result reports the full allocation state of a payment after a run:
// pre-existing plus newly created allocations.
type Result struct {
	PaymentID   string                            `json:"payment_id"`
	Allocations []paymentdomain.PaymentAllocation `json:"allocations"`
	Allocated   int64                             `json:"allocated"`
	// Unallocated is the surplus left after all outstanding accruals are
	// covered. It stays on the payment, unattached to any accrual.
	Unallocated int64 `json:"unallocated"`
	Created     int   `json:"created"`
}

type Service interface {
	// AllocatePayment applies the payment's remaining amount to the
	// plot's accruals in FIFO order by accrual creation time. Calling it
	// again with no new funds is a no-op returning the existing set.
	AllocatePayment(ctx context.Context, paymentID string) (Result, error)
}

var (
	ErrPaymentNotFound  = errors.New("payment_not_found")
	ErrInvalidPaymentID = errors.New("invalid_payment_id")
	ErrPaymentNotLinked = errors.New("payment_not_linked_to_plot")
)
