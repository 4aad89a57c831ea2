package repository

import (
	"sync"
	"testing"
	"time"

	"payment-ledger-sync/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPlan(name string) *model.SubscriptionPlan {
	return &model.SubscriptionPlan{
		ID:                  uuid.NewString(),
		Name:                name,
		Price:               decimal.Zero,
		Currency:            "usd",
		BillingInterval:     "month",
		MaxMembers:          10,
		MaxStorageMB:        1024,
		MaxMeetingsPerMonth: 4,
		IsActive:            true,
	}
}

func TestEnsureDefaultCreatesOnce(t *testing.T) {
	ctx := t.Context()
	repo := NewSubscriptionPlanRepository(newTestDB(t))

	first, err := repo.EnsureDefault(ctx, newPlan("Default"))
	require.NoError(t, err)
	assert.Equal(t, "Default", first.Name)

	second, err := repo.EnsureDefault(ctx, newPlan("Default"))
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	found, err := repo.FindByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, found.MaxMembers)
}

func TestEnsureDefaultPrefersExistingPlan(t *testing.T) {
	ctx := t.Context()
	db := newTestDB(t)
	repo := NewSubscriptionPlanRepository(db)

	existing := newPlan("Community")
	existing.CreatedAt = time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, db.Create(existing).Error)

	plan, err := repo.EnsureDefault(ctx, newPlan("Default"))
	require.NoError(t, err)
	assert.Equal(t, existing.ID, plan.ID)

	var count int64
	require.NoError(t, db.Model(&model.SubscriptionPlan{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestEnsureDefaultConcurrentFirstRun(t *testing.T) {
	ctx := t.Context()
	db := newTestDB(t)
	repo := NewSubscriptionPlanRepository(db)

	ids := make([]string, 5)
	var wg sync.WaitGroup
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			plan, err := repo.EnsureDefault(ctx, newPlan("Default"))
			if assert.NoError(t, err) {
				ids[i] = plan.ID
			}
		}(i)
	}
	wg.Wait()

	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}

	var count int64
	require.NoError(t, db.Model(&model.SubscriptionPlan{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	_, err := repo.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
