package repository

import (
	"testing"

	"payment-ledger-sync/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository(t *testing.T) {
	ctx := t.Context()
	repo := NewUserRepository(newTestDB(t))

	require.NoError(t, repo.Create(ctx, &model.User{ID: "u-1", Email: "Pastor@Example.org", Role: model.RoleAdmin}))

	byEmail, err := repo.FindByEmail(ctx, "pastor@example.ORG")
	require.NoError(t, err)
	assert.Equal(t, "u-1", byEmail.ID)

	byID, err := repo.FindByID(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, byID.Role)

	_, err = repo.FindByEmail(ctx, "nobody@example.org")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = repo.FindByID(ctx, "u-2")
	assert.ErrorIs(t, err, ErrNotFound)
}
