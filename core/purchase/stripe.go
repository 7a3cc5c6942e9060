package purchase

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v74"
	stripecl "github.com/stripe/stripe-go/v74/client"
)

// Stripe is the Payments implementation on the Stripe API.
type Stripe struct {
	client *stripecl.API
}

func NewStripe(client *stripecl.API) *Stripe {
	return &Stripe{client: client}
}

func (s *Stripe) CreateCustomer(ctx context.Context, email string) (string, error) {
	params := &stripe.CustomerParams{
		Email: stripe.String(email),
	}
	params.Context = ctx

	c, err := s.client.Customers.New(params)
	if err != nil {
		return "", fmt.Errorf("creating stripe customer: %w", err)
	}
	return c.ID, nil
}

func (s *Stripe) CreateCheckoutSession(ctx context.Context, sess Session) (string, error) {
	li := make([]*stripe.CheckoutSessionLineItemParams, 0, len(sess.Items))
	for _, it := range sess.Items {
		li = append(li, &stripe.CheckoutSessionLineItemParams{
			Quantity: stripe.Int64(it.Quantity),

			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(it.Currency),
				UnitAmount: stripe.Int64(it.Amount),

				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name:        stripe.String(it.Name),
					Description: stripe.String(it.Description),
				},
			},
		})
	}

	params := &stripe.CheckoutSessionParams{
		Customer:   stripe.String(sess.CustomerID),
		SuccessURL: stripe.String(sess.SuccessURL),
		CancelURL:  stripe.String(sess.CancelURL),
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems:  li,
	}
	params.Context = ctx
	for k, v := range sess.Metadata {
		params.AddMetadata(k, v)
	}

	cs, err := s.client.CheckoutSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("creating stripe session: %w", err)
	}
	return cs.URL, nil
}
