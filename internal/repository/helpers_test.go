package repository

import (
	"path/filepath"
	"testing"

	"payment-ledger-sync/internal/client"
	"payment-ledger-sync/internal/config"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := client.NewDatabase(config.Database{
		Driver:       "sqlite",
		URL:          filepath.Join(t.TempDir(), "ledger.db"),
		MaxIdleConns: 1,
		MaxOpenConns: 1,
	}, zap.NewNop())
	require.NoError(t, err)

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}
