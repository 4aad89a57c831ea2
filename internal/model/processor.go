package model

import "time"

// ExternalPayment is a payment as reported by a processor. Amount is in minor units.
type ExternalPayment struct {
	ID            string
	Amount        int64
	Currency      string
	Status        string
	Created       time.Time
	CustomerRef   string
	CustomerEmail string
	PaymentMethod *ExternalPaymentMethod
	// set when the processor did not expand the method inline
	PaymentMethodRef string
	Description      string
	Metadata         map[string]string
	// MapErr is set when the processor record could not be decoded; only ID is
	// reliable then.
	MapErr error
}

type ExternalCustomer struct {
	ID    string
	Email string
	Name  string
}

type ExternalPaymentMethod struct {
	ID    string
	Type  string
	Brand string
	Last4 string
}

// Descriptor renders the method the way it is stored on a local payment, e.g. "card:visa:4242".
func (m *ExternalPaymentMethod) Descriptor() string {
	if m == nil {
		return ""
	}
	out := m.Type
	if out == "" {
		out = "unknown"
	}
	if m.Brand != "" {
		out += ":" + m.Brand
	}
	if m.Last4 != "" {
		out += ":" + m.Last4
	}
	return out
}
