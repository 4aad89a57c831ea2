package client

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"payment-ledger-sync/internal/config"
	"payment-ledger-sync/internal/model"

	"github.com/go-resty/resty/v2"
)

const (
	// transaction search rejects ranges longer than 31 days
	paypalSearchWindow   = 31 * 24 * time.Hour
	paypalMaxPageSize    = 500
	paypalDateLayout     = "2006-01-02T15:04:05-0700"
	paypalTokenLeeway    = time.Minute
	paypalRequestTimeout = 30 * time.Second
)

type paypalClientImpl struct {
	http         *resty.Client
	clientID     string
	clientSecret string
	now          func() time.Time

	mu          sync.Mutex
	accessToken string
	expiresAt   time.Time
}

func NewPaypalClient(paypalCfg *config.Paypal) PaymentProcessor {
	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(paypalCfg.BaseApiURL, "/")).
		SetTimeout(paypalRequestTimeout).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(3 * time.Second)

	return &paypalClientImpl{
		http:         httpClient,
		clientID:     paypalCfg.ClientID,
		clientSecret: paypalCfg.ClientSecret,
		now:          time.Now,
	}
}

func (c *paypalClientImpl) Name() string {
	return ProviderPaypal
}

func (c *paypalClientImpl) getAccessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && c.now().Before(c.expiresAt) {
		return c.accessToken, nil
	}

	var res model.PaypalTokenResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBasicAuth(c.clientID, c.clientSecret).
		SetFormData(map[string]string{"grant_type": "client_credentials"}).
		SetResult(&res).
		Post("/v1/oauth2/token")
	if err != nil {
		return "", fmt.Errorf("paypal token request: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("paypal token error %d: %s", resp.StatusCode(), resp.String())
	}
	if res.AccessToken == "" {
		return "", fmt.Errorf("paypal token response has no access token")
	}

	c.accessToken = res.AccessToken
	c.expiresAt = c.now().Add(time.Duration(res.ExpiresIn)*time.Second - paypalTokenLeeway)

	return c.accessToken, nil
}

func (c *paypalClientImpl) ListPayments(ctx context.Context, createdAfter time.Time, limit int) ([]model.ExternalPayment, error) {
	accessToken, err := c.getAccessToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("get paypal access token: %w", err)
	}

	pageSize := paypalMaxPageSize
	if limit > 0 && limit < pageSize {
		pageSize = limit
	}

	var payments []model.ExternalPayment
	end := c.now().UTC()
	for start := createdAfter.UTC(); start.Before(end); start = start.Add(paypalSearchWindow) {
		windowEnd := start.Add(paypalSearchWindow)
		if windowEnd.After(end) {
			windowEnd = end
		}

		for page := 1; ; page++ {
			result, err := c.searchTransactions(ctx, accessToken, start, windowEnd, page, pageSize)
			if err != nil {
				return nil, err
			}

			for _, detail := range result.TransactionDetails {
				payment, err := mapPaypalTransaction(detail)
				if err != nil {
					// surfaced per record so the rest of the batch still syncs
					payment = model.ExternalPayment{ID: detail.TransactionInfo.TransactionID, MapErr: err}
				} else if !payment.Created.After(createdAfter) {
					continue
				}
				payments = append(payments, payment)
				if limit > 0 && len(payments) >= limit {
					return payments, nil
				}
			}

			if page >= result.TotalPages {
				break
			}
		}
	}

	return payments, nil
}

func (c *paypalClientImpl) searchTransactions(ctx context.Context, accessToken string, start, end time.Time, page, pageSize int) (*model.PaypalTransactionSearchResult, error) {
	var result model.PaypalTransactionSearchResult
	var apiErr model.PaypalErrorResponse

	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetQueryParams(map[string]string{
			"start_date": start.Format(time.RFC3339),
			"end_date":   end.Format(time.RFC3339),
			"fields":     "transaction_info,payer_info",
			"page_size":  strconv.Itoa(pageSize),
			"page":       strconv.Itoa(page),
		}).
		SetResult(&result).
		SetError(&apiErr).
		Get("/v1/reporting/transactions")
	if err != nil {
		return nil, fmt.Errorf("paypal transaction search: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("paypal transaction search error %d: %s %s", resp.StatusCode(), apiErr.Name, apiErr.Message)
	}

	return &result, nil
}

// Transaction search has no customer or instrument lookups; payer data comes inline.
func (c *paypalClientImpl) GetCustomer(ctx context.Context, id string) (*model.ExternalCustomer, error) {
	return nil, ErrLookupUnsupported
}

func (c *paypalClientImpl) GetPaymentMethod(ctx context.Context, id string) (*model.ExternalPaymentMethod, error) {
	return nil, ErrLookupUnsupported
}

func mapPaypalTransaction(detail model.PaypalTransactionDetail) (model.ExternalPayment, error) {
	info := detail.TransactionInfo

	created, err := parsePaypalDate(info.InitiationDate)
	if err != nil {
		return model.ExternalPayment{}, fmt.Errorf("paypal transaction %s: %w", info.TransactionID, err)
	}

	currency := strings.ToLower(info.Amount.Currency)
	amount, err := model.MajorToMinor(info.Amount.Value, currency)
	if err != nil {
		return model.ExternalPayment{}, fmt.Errorf("paypal transaction %s: %w", info.TransactionID, err)
	}

	status := info.Status
	// refunds come back as their own negative transaction
	if amount < 0 {
		amount = -amount
		status = "V"
	}

	metadata := map[string]string{"event_code": info.EventCode}
	if info.InvoiceID != "" {
		metadata["invoice_id"] = info.InvoiceID
	}
	if info.CustomField != "" {
		metadata["custom_field"] = info.CustomField
	}

	methodType := strings.ToLower(info.InstrumentType)
	if methodType == "" {
		methodType = "paypal"
	}

	return model.ExternalPayment{
		ID:            info.TransactionID,
		Amount:        amount,
		Currency:      currency,
		Status:        status,
		Created:       created.UTC(),
		CustomerRef:   detail.PayerInfo.AccountID,
		CustomerEmail: detail.PayerInfo.Email,
		PaymentMethod: &model.ExternalPaymentMethod{
			Type:  methodType,
			Brand: strings.ToLower(info.InstrumentSubType),
		},
		Description: info.Subject,
		Metadata:    metadata,
	}, nil
}

func parsePaypalDate(value string) (time.Time, error) {
	if t, err := time.Parse(paypalDateLayout, value); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", value)
	}
	return t, nil
}
