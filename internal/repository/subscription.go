package repository

import (
	"context"
	"errors"
	"fmt"

	"payment-ledger-sync/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SubscriptionPlanRepository interface {
	// EnsureDefault returns the oldest plan, creating fallback first when the
	// table is empty.
	EnsureDefault(ctx context.Context, fallback *model.SubscriptionPlan) (*model.SubscriptionPlan, error)
	FindByID(ctx context.Context, id string) (*model.SubscriptionPlan, error)
}

type subscriptionPlanRepoImpl struct {
	db *gorm.DB
}

func NewSubscriptionPlanRepository(db *gorm.DB) SubscriptionPlanRepository {
	return &subscriptionPlanRepoImpl{
		db: db,
	}
}

func (r *subscriptionPlanRepoImpl) EnsureDefault(ctx context.Context, fallback *model.SubscriptionPlan) (*model.SubscriptionPlan, error) {
	plan, err := r.oldest(ctx)
	if err == nil {
		return plan, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("load subscription plan: %w", err)
	}

	// a concurrent first run may insert the same name, keep whichever landed
	err = r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).
		Create(fallback).
		Error
	if err != nil {
		return nil, fmt.Errorf("create default subscription plan: %w", err)
	}

	plan, err = r.oldest(ctx)
	if err != nil {
		return nil, fmt.Errorf("reload subscription plan: %w", err)
	}
	return plan, nil
}

func (r *subscriptionPlanRepoImpl) oldest(ctx context.Context) (*model.SubscriptionPlan, error) {
	var plan model.SubscriptionPlan
	err := r.db.WithContext(ctx).
		Order("created_at ASC").
		Order("id ASC").
		First(&plan).
		Error
	if err != nil {
		return nil, translateNotFound(err)
	}

	return &plan, nil
}

func (r *subscriptionPlanRepoImpl) FindByID(ctx context.Context, id string) (*model.SubscriptionPlan, error) {
	var plan model.SubscriptionPlan
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&plan).
		Error
	if err != nil {
		return nil, translateNotFound(err)
	}

	return &plan, nil
}
