package client

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"payment-ledger-sync/internal/config"
	"payment-ledger-sync/internal/model"
)

const (
	ProviderStripe    = "stripe"
	ProviderBraintree = "braintree"
	ProviderPaypal    = "paypal"
)

var ErrLookupUnsupported = errors.New("lookup not supported by processor")

// PaymentProcessor is the read side of an external payment processor.
type PaymentProcessor interface {
	Name() string
	// ListPayments returns at most limit payments created after createdAfter.
	ListPayments(ctx context.Context, createdAfter time.Time, limit int) ([]model.ExternalPayment, error)
	GetCustomer(ctx context.Context, id string) (*model.ExternalCustomer, error)
	GetPaymentMethod(ctx context.Context, id string) (*model.ExternalPaymentMethod, error)
}

// NewPaymentProcessor builds the processor selected by cfg.Processor.
func NewPaymentProcessor(cfg *config.Config) (PaymentProcessor, error) {
	switch strings.ToLower(cfg.Processor) {
	case ProviderStripe, "":
		if cfg.Stripe.SecretKey == "" {
			return nil, fmt.Errorf("stripe secret key is not configured")
		}
		return NewStripeClient(&cfg.Stripe), nil
	case ProviderBraintree:
		if cfg.BrainTree.MerchantID == "" {
			return nil, fmt.Errorf("braintree merchant id is not configured")
		}
		return NewBraintreeClient(&cfg.BrainTree), nil
	case ProviderPaypal:
		if cfg.Paypal.ClientID == "" || cfg.Paypal.ClientSecret == "" {
			return nil, fmt.Errorf("paypal credentials are not configured")
		}
		return NewPaypalClient(&cfg.Paypal), nil
	default:
		return nil, fmt.Errorf("unknown payment processor %q", cfg.Processor)
	}
}
