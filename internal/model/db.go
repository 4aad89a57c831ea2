package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type User struct {
	ID                 string  `gorm:"primaryKey;size:36;not null"`
	Email              string  `gorm:"size:255;uniqueIndex;not null"`
	Name               string  `gorm:"size:255"`
	Role               Role    `gorm:"size:16;index;not null;default:'member'"`
	SubscriptionPlanID *string `gorm:"size:36;index"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

type SubscriptionPlan struct {
	ID                  string          `gorm:"primaryKey;size:36;not null"`
	Name                string          `gorm:"size:64;uniqueIndex;not null"`
	Price               decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Currency            string          `gorm:"size:8;not null"`
	BillingInterval     string          `gorm:"size:16;not null"` // month, year
	MaxMembers          int             `gorm:"not null"`
	MaxStorageMB        int             `gorm:"not null"`
	MaxMeetingsPerMonth int             `gorm:"not null"`
	IsActive            bool            `gorm:"not null;default:true"`
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

type Payment struct {
	ID                 string          `gorm:"primaryKey;size:36;not null"`
	Amount             decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Currency           string          `gorm:"size:8;not null"`
	Provider           string          `gorm:"size:32;index;not null"` // stripe, braintree, paypal
	PaymentStatus      PaymentStatus   `gorm:"size:16;index;not null"`
	ProviderPaymentID  string          `gorm:"size:191;uniqueIndex;not null"` // processor payment id
	ProviderCustomerID *string         `gorm:"size:191;index"`
	PaymentMethod      string          `gorm:"size:128"`
	Details            datatypes.JSON
	BillingPeriodStart time.Time
	BillingPeriodEnd   time.Time
	UserID             string `gorm:"size:36;index;not null"`
	SubscriptionPlanID string `gorm:"size:36;index;not null"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
