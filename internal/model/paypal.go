package model

// Payloads of the PayPal Transaction Search API (GET /v1/reporting/transactions).

type PaypalMoney struct {
	Currency string `json:"currency_code"`
	Value    string `json:"value"`
}

type PaypalTransactionInfo struct {
	TransactionID     string       `json:"transaction_id"`
	EventCode         string       `json:"transaction_event_code"`
	InitiationDate    string       `json:"transaction_initiation_date"`
	UpdatedDate       string       `json:"transaction_updated_date"`
	Amount            PaypalMoney  `json:"transaction_amount"`
	Fee               *PaypalMoney `json:"fee_amount,omitempty"`
	Status            string       `json:"transaction_status"`
	Subject           string       `json:"transaction_subject"`
	Note              string       `json:"transaction_note"`
	InvoiceID         string       `json:"invoice_id"`
	CustomField       string       `json:"custom_field"`
	PaypalReferenceID string       `json:"paypal_reference_id"`
	InstrumentType    string       `json:"instrument_type"`
	InstrumentSubType string       `json:"instrument_sub_type"`
}

type PaypalPayerName struct {
	GivenName         string `json:"given_name"`
	Surname           string `json:"surname"`
	AlternateFullName string `json:"alternate_full_name"`
}

type PaypalPayerInfo struct {
	AccountID string          `json:"account_id"`
	Email     string          `json:"email_address"`
	PayerName PaypalPayerName `json:"payer_name"`
}

type PaypalTransactionDetail struct {
	TransactionInfo PaypalTransactionInfo `json:"transaction_info"`
	PayerInfo       PaypalPayerInfo       `json:"payer_info"`
}

type PaypalTransactionSearchResult struct {
	TransactionDetails []PaypalTransactionDetail `json:"transaction_details"`
	Page               int                       `json:"page"`
	TotalItems         int                       `json:"total_items"`
	TotalPages         int                       `json:"total_pages"`
}

type PaypalTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type PaypalErrorResponse struct {
	Name    string `json:"name"`
	Message string `json:"message"`
	DebugID string `json:"debug_id"`
}
