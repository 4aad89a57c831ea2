package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

type PaymentStatus string

const (
	PaymentStatusSucceeded PaymentStatus = "succeeded"
	PaymentStatusCancelled PaymentStatus = "cancelled"
	PaymentStatusRefunded  PaymentStatus = "refunded"
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusFailed    PaymentStatus = "failed"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusSucceeded, PaymentStatusCancelled, PaymentStatusRefunded,
		PaymentStatusPending, PaymentStatusFailed:
		return true
	}
	return false
}

type SyncMode string

const (
	SyncModeIncremental SyncMode = "incremental"
	SyncModeFull        SyncMode = "full"
)

// SyncStatus summarizes one reconciliation run.
type SyncStatus struct {
	RunID       string    `json:"run_id"`
	Mode        SyncMode  `json:"mode"`
	Checkpoint  time.Time `json:"checkpoint"`
	TriggeredBy string    `json:"triggered_by"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
	Count       int       `json:"count"`
	Successful  int       `json:"successful"`
	Failed      int       `json:"failed"`
	Skipped     int       `json:"skipped"`
	Error       string    `json:"error,omitempty"`
}

// currencies whose minor unit is the major unit
var zeroDecimalCurrencies = map[string]struct{}{
	"bif": {}, "clp": {}, "djf": {}, "gnf": {}, "jpy": {}, "kmf": {}, "krw": {}, "mga": {},
	"pyg": {}, "rwf": {}, "ugx": {}, "vnd": {}, "vuv": {}, "xaf": {}, "xof": {}, "xpf": {},
}

// CurrencyExponent returns the number of minor-unit digits for an ISO currency code.
func CurrencyExponent(currency string) int32 {
	if _, ok := zeroDecimalCurrencies[strings.ToLower(currency)]; ok {
		return 0
	}
	return 2
}

// MinorToMajor converts an amount in minor units (cents) to a decimal in major units.
func MinorToMajor(amount int64, currency string) decimal.Decimal {
	exp := CurrencyExponent(currency)
	return decimal.New(amount, -exp).Round(exp)
}

// MajorToMinor parses a major-unit amount string ("25.00") into minor units.
func MajorToMinor(value, currency string) (int64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", value, err)
	}
	return d.Shift(CurrencyExponent(currency)).Round(0).IntPart(), nil
}
