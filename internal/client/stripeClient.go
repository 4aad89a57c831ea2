package client

import (
	"context"
	"fmt"
	"strings"
	"time"

	"payment-ledger-sync/internal/config"
	"payment-ledger-sync/internal/model"

	"github.com/stripe/stripe-go/v82"
	stripeclient "github.com/stripe/stripe-go/v82/client"
)

const stripeMaxPageSize = 100

type stripeClientImpl struct {
	api *stripeclient.API
}

// NewStripeClient returns a processor bound to its own stripe API instance,
// so no package-level key is ever set.
func NewStripeClient(cfg *config.Stripe) PaymentProcessor {
	var backends *stripe.Backends
	if cfg.BaseURL != "" {
		backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
			URL: stripe.String(cfg.BaseURL),
		})
		backends = &stripe.Backends{API: backend, Connect: backend, Uploads: backend}
	}

	api := &stripeclient.API{}
	api.Init(cfg.SecretKey, backends)

	return &stripeClientImpl{api: api}
}

func (c *stripeClientImpl) Name() string {
	return ProviderStripe
}

func (c *stripeClientImpl) ListPayments(ctx context.Context, createdAfter time.Time, limit int) ([]model.ExternalPayment, error) {
	if limit <= 0 {
		limit = stripeMaxPageSize
	}

	params := &stripe.PaymentIntentListParams{
		CreatedRange: &stripe.RangeQueryParams{GreaterThan: createdAfter.Unix()},
	}
	params.Context = ctx
	params.Limit = stripe.Int64(int64(min(limit, stripeMaxPageSize)))
	params.AddExpand("data.customer")
	params.AddExpand("data.payment_method")
	params.AddExpand("data.latest_charge")

	payments := make([]model.ExternalPayment, 0, limit)
	iter := c.api.PaymentIntents.List(params)
	for iter.Next() {
		payments = append(payments, mapPaymentIntent(iter.PaymentIntent()))
		if len(payments) >= limit {
			break
		}
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("list stripe payment intents: %w", err)
	}

	return payments, nil
}

func (c *stripeClientImpl) GetCustomer(ctx context.Context, id string) (*model.ExternalCustomer, error) {
	cus, err := c.api.Customers.Get(id, &stripe.CustomerParams{Params: stripe.Params{Context: ctx}})
	if err != nil {
		return nil, fmt.Errorf("get stripe customer %s: %w", id, err)
	}

	return &model.ExternalCustomer{ID: cus.ID, Email: cus.Email, Name: cus.Name}, nil
}

func (c *stripeClientImpl) GetPaymentMethod(ctx context.Context, id string) (*model.ExternalPaymentMethod, error) {
	pm, err := c.api.PaymentMethods.Get(id, &stripe.PaymentMethodParams{Params: stripe.Params{Context: ctx}})
	if err != nil {
		return nil, fmt.Errorf("get stripe payment method %s: %w", id, err)
	}

	return mapPaymentMethod(pm), nil
}

func mapPaymentIntent(pi *stripe.PaymentIntent) model.ExternalPayment {
	payment := model.ExternalPayment{
		ID:          pi.ID,
		Amount:      pi.Amount,
		Currency:    strings.ToLower(string(pi.Currency)),
		Status:      string(pi.Status),
		Created:     time.Unix(pi.Created, 0).UTC(),
		Description: pi.Description,
		Metadata:    pi.Metadata,
	}

	// a refund is reported on the charge, the intent itself stays "succeeded"
	if pi.LatestCharge != nil && pi.LatestCharge.Refunded {
		payment.Status = "refunded"
	}

	if pi.Customer != nil {
		payment.CustomerRef = pi.Customer.ID
		payment.CustomerEmail = pi.Customer.Email
	}

	if pi.PaymentMethod != nil {
		payment.PaymentMethodRef = pi.PaymentMethod.ID
		if pi.PaymentMethod.Type != "" {
			payment.PaymentMethod = mapPaymentMethod(pi.PaymentMethod)
		}
	}

	return payment
}

func mapPaymentMethod(pm *stripe.PaymentMethod) *model.ExternalPaymentMethod {
	method := &model.ExternalPaymentMethod{
		ID:   pm.ID,
		Type: string(pm.Type),
	}
	if pm.Card != nil {
		method.Brand = string(pm.Card.Brand)
		method.Last4 = pm.Card.Last4
	}
	return method
}
