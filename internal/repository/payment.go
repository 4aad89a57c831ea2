package repository

import (
	"context"
	"fmt"

	"payment-ledger-sync/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PaymentRepository interface {
	// ExistingProviderPaymentIDs reports which of ids already have a local row.
	ExistingProviderPaymentIDs(ctx context.Context, ids []string) (map[string]struct{}, error)
	// Upsert inserts the payment or, when its provider id is taken, refreshes
	// the mutable columns only.
	Upsert(ctx context.Context, payment *model.Payment) error
	FindByProviderPaymentID(ctx context.Context, providerPaymentID string) (*model.Payment, error)
}

type paymentRepoImpl struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepoImpl{
		db: db,
	}
}

func (r *paymentRepoImpl) ExistingProviderPaymentIDs(ctx context.Context, ids []string) (map[string]struct{}, error) {
	existing := make(map[string]struct{}, len(ids))
	if len(ids) == 0 {
		return existing, nil
	}

	var found []string
	err := r.db.WithContext(ctx).
		Model(&model.Payment{}).
		Where("provider_payment_id IN ?", ids).
		Pluck("provider_payment_id", &found).
		Error
	if err != nil {
		return nil, fmt.Errorf("load existing payment ids: %w", err)
	}

	for _, id := range found {
		existing[id] = struct{}{}
	}
	return existing, nil
}

func (r *paymentRepoImpl) Upsert(ctx context.Context, payment *model.Payment) error {
	if !payment.PaymentStatus.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidPaymentStatus, payment.PaymentStatus)
	}

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "provider_payment_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"payment_status",
				"details",
				"billing_period_start",
				"billing_period_end",
				"updated_at",
			}),
		}).
		Create(payment).
		Error
}

func (r *paymentRepoImpl) FindByProviderPaymentID(ctx context.Context, providerPaymentID string) (*model.Payment, error) {
	var payment model.Payment
	err := r.db.WithContext(ctx).
		Where("provider_payment_id = ?", providerPaymentID).
		First(&payment).
		Error
	if err != nil {
		return nil, translateNotFound(err)
	}

	return &payment, nil
}
