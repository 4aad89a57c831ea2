package client

import (
	"context"
	"fmt"
	"strings"
	"time"

	"payment-ledger-sync/internal/config"
	"payment-ledger-sync/internal/model"

	"github.com/braintree-go/braintree-go"
	"github.com/shopspring/decimal"
)

type braintreeClientImpl struct {
	gateway *braintree.Braintree
}

// NewBraintreeClient initializes the Braintree SDK gateway
func NewBraintreeClient(cfg *config.Braintree) PaymentProcessor {
	env := braintree.Sandbox
	if cfg.Environment == "production" {
		env = braintree.Production
	}

	gateway := braintree.New(
		env,
		cfg.MerchantID,
		cfg.PublicKey,
		cfg.PrivateKey,
	)

	return &braintreeClientImpl{
		gateway: gateway,
	}
}

func (c *braintreeClientImpl) Name() string {
	return ProviderBraintree
}

func (c *braintreeClientImpl) ListPayments(ctx context.Context, createdAfter time.Time, limit int) ([]model.ExternalPayment, error) {
	query := new(braintree.SearchQuery)
	createdAt := query.AddTimeField("created-at")
	createdAt.Min = createdAfter

	result, err := c.gateway.Transaction().Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search braintree transactions: %w", err)
	}

	var payments []model.ExternalPayment
	for result != nil && len(result.Transactions) > 0 {
		for _, tx := range result.Transactions {
			// created-at min is inclusive on braintree's side
			if tx.CreatedAt != nil && !tx.CreatedAt.After(createdAfter) {
				continue
			}
			payments = append(payments, mapTransaction(tx))
			if limit > 0 && len(payments) >= limit {
				return payments, nil
			}
		}

		result, err = c.gateway.Transaction().SearchNext(ctx, query, result)
		if err != nil {
			return nil, fmt.Errorf("search braintree transactions next page: %w", err)
		}
	}

	return payments, nil
}

func (c *braintreeClientImpl) GetCustomer(ctx context.Context, id string) (*model.ExternalCustomer, error) {
	customer, err := c.gateway.Customer().Find(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find braintree customer %s: %w", id, err)
	}

	name := strings.TrimSpace(customer.FirstName + " " + customer.LastName)
	return &model.ExternalCustomer{ID: customer.Id, Email: customer.Email, Name: name}, nil
}

func (c *braintreeClientImpl) GetPaymentMethod(ctx context.Context, token string) (*model.ExternalPaymentMethod, error) {
	card, err := c.gateway.CreditCard().Find(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("find braintree credit card %s: %w", token, err)
	}

	return mapCreditCard(card), nil
}

func mapTransaction(tx *braintree.Transaction) model.ExternalPayment {
	currency := strings.ToLower(tx.CurrencyISOCode)

	payment := model.ExternalPayment{
		ID:               tx.Id,
		Amount:           braintreeMinorUnits(tx.Amount, currency),
		Currency:         currency,
		Status:           string(tx.Status),
		PaymentMethodRef: tx.PaymentMethodToken,
	}
	if tx.Type == "credit" {
		payment.Status = "refunded"
	}
	if tx.CreatedAt != nil {
		payment.Created = tx.CreatedAt.UTC()
	}
	if tx.OrderId != "" {
		payment.Metadata = map[string]string{"order_id": tx.OrderId}
	}
	if tx.Customer != nil {
		payment.CustomerRef = tx.Customer.Id
		payment.CustomerEmail = tx.Customer.Email
	}
	if tx.CreditCard != nil && tx.CreditCard.Last4 != "" {
		payment.PaymentMethod = mapCreditCard(tx.CreditCard)
	}

	return payment
}

func mapCreditCard(card *braintree.CreditCard) *model.ExternalPaymentMethod {
	return &model.ExternalPaymentMethod{
		ID:    card.Token,
		Type:  "card",
		Brand: strings.ToLower(card.CardType),
		Last4: card.Last4,
	}
}

// braintree reports amounts in major units, e.g. NewDecimal(5000, 2) for "50.00"
func braintreeMinorUnits(amount *braintree.Decimal, currency string) int64 {
	if amount == nil {
		return 0
	}
	d := decimal.New(amount.Unscaled, -int32(amount.Scale))
	return d.Shift(model.CurrencyExponent(currency)).Round(0).IntPart()
}
