package payments

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/client"

	"github.com/mbd888/pressgate/internal/circuitbreaker"
	"github.com/mbd888/pressgate/internal/retry"
)

const (
	stripeBreakerKey = "stripe"
	stripeMaxRetries = 3
	stripeRetryDelay = 200 * time.Millisecond
)

// StripeVerifier resolves payment tokens as Stripe PaymentIntent IDs and
// checks the intent succeeded for at least the requested amount.
//
// Lookups retry transient failures with backoff; a circuit breaker sheds
// load when Stripe is down so grant purchases fail fast instead of
// queueing behind 30-second timeouts.
type StripeVerifier struct {
	api     *client.API
	breaker *circuitbreaker.Breaker
}

// NewStripeVerifier creates a verifier using the given Stripe secret key.
func NewStripeVerifier(apiKey string) *StripeVerifier {
	api := &client.API{}
	api.Init(apiKey, nil)
	return &StripeVerifier{
		api:     api,
		breaker: circuitbreaker.New(5, 30*time.Second),
	}
}

// Verify fetches the PaymentIntent named by the token. The shape checks
// mirror the offline verifier so both reject the same malformed input.
func (v *StripeVerifier) Verify(ctx context.Context, paymentToken string, amount float64) error {
	if len(paymentToken) < MinTokenLength {
		return ErrInvalidToken
	}
	if amount <= 0 {
		return ErrInvalidAmount
	}

	if !v.breaker.Allow(stripeBreakerKey) {
		return ErrProviderUnavailable
	}

	var intent *stripe.PaymentIntent
	err := retry.Do(ctx, stripeMaxRetries, stripeRetryDelay, func() error {
		params := &stripe.PaymentIntentParams{}
		params.Context = ctx

		got, err := v.api.PaymentIntents.Get(paymentToken, params)
		if err != nil {
			// Client errors (unknown intent, bad key) will not heal on retry.
			var stripeErr *stripe.Error
			if errors.As(err, &stripeErr) && stripeErr.HTTPStatusCode < 500 {
				return retry.Permanent(err)
			}
			return err
		}
		intent = got
		return nil
	})
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.HTTPStatusCode < 500 {
			// Stripe answered; the token is just bad.
			v.breaker.RecordSuccess(stripeBreakerKey)
			return fmt.Errorf("%w: %v", ErrInvalidToken, err)
		}
		v.breaker.RecordFailure(stripeBreakerKey)
		return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	v.breaker.RecordSuccess(stripeBreakerKey)

	if intent.Status != stripe.PaymentIntentStatusSucceeded {
		return fmt.Errorf("%w: payment intent status %s", ErrInvalidToken, intent.Status)
	}

	wantCents := int64(math.Round(amount * 100))
	if intent.AmountReceived < wantCents {
		return fmt.Errorf("%w: received %d of %d cents", ErrInvalidAmount, intent.AmountReceived, wantCents)
	}
	return nil
}

var _ Verifier = (*StripeVerifier)(nil)
