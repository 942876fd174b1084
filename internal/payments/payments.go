// Package payments verifies pay-per-view payment tokens.
//
// Payment capture happens outside this system; a Verifier only confirms that
// a presented token plausibly represents a captured payment. The offline
// verifier applies local shape checks, the Stripe verifier resolves the
// token as a PaymentIntent.
package payments

import (
	"context"
	"errors"
)

// Errors
var (
	ErrInvalidToken        = errors.New("payments: invalid payment token")
	ErrInvalidAmount       = errors.New("payments: amount must be positive")
	ErrProviderUnavailable = errors.New("payments: payment provider unavailable")
)

// MinTokenLength is the minimum plausible payment token length.
const MinTokenLength = 10

// Verifier confirms a payment token covers the given amount.
type Verifier interface {
	Verify(ctx context.Context, paymentToken string, amount float64) error
}

// OfflineVerifier accepts any well-formed token without contacting a payment
// processor. Rejections happen before any state mutation in callers.
type OfflineVerifier struct{}

// Verify applies local shape checks only.
func (OfflineVerifier) Verify(_ context.Context, paymentToken string, amount float64) error {
	if len(paymentToken) < MinTokenLength {
		return ErrInvalidToken
	}
	if amount <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

var _ Verifier = OfflineVerifier{}
