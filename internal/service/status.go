package service

import (
	"payment-ledger-sync/internal/client"
	"payment-ledger-sync/internal/model"
)

var stripeStatuses = map[string]model.PaymentStatus{
	"succeeded":               model.PaymentStatusSucceeded,
	"canceled":                model.PaymentStatusCancelled,
	"refunded":                model.PaymentStatusRefunded,
	"requires_payment_method": model.PaymentStatusPending,
	"requires_confirmation":   model.PaymentStatusPending,
	"requires_action":         model.PaymentStatusPending,
	"processing":              model.PaymentStatusPending,
}

var braintreeStatuses = map[string]model.PaymentStatus{
	"settled":                  model.PaymentStatusSucceeded,
	"settling":                 model.PaymentStatusSucceeded,
	"submitted_for_settlement": model.PaymentStatusSucceeded,
	"authorized":               model.PaymentStatusPending,
	"authorizing":              model.PaymentStatusPending,
	"settlement_pending":       model.PaymentStatusPending,
	"voided":                   model.PaymentStatusCancelled,
	"authorization_expired":    model.PaymentStatusCancelled,
	"refunded":                 model.PaymentStatusRefunded,
}

// transaction search status codes
var paypalStatuses = map[string]model.PaymentStatus{
	"S": model.PaymentStatusSucceeded,
	"P": model.PaymentStatusPending,
	"V": model.PaymentStatusRefunded,
	"D": model.PaymentStatusFailed,
}

// MapPaymentStatus translates a processor status into the local taxonomy.
// Unknown statuses map to failed; unknown providers use the stripe table.
func MapPaymentStatus(provider, status string) model.PaymentStatus {
	table := stripeStatuses
	switch provider {
	case client.ProviderBraintree:
		table = braintreeStatuses
	case client.ProviderPaypal:
		table = paypalStatuses
	}

	if mapped, ok := table[status]; ok {
		return mapped
	}
	return model.PaymentStatusFailed
}
