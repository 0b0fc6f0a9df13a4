// Package repotest 为测试提供内存 SQLite 上的 Store
package repotest

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"fitness-tracker/internal/core/database"
	"fitness-tracker/internal/repo"
)

// NewDB 每次调用得到独立的内存库（与生产同一套 NewGorm 配置，sqlite 内存库强制单连接）
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := database.NewGorm(database.Opts{
		Driver:   "sqlite",
		DSN:      ":memory:",
		LogLevel: "silent",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

func NewStore(t testing.TB) *repo.Store {
	t.Helper()
	s := repo.NewStore(NewDB(t))
	require.NoError(t, s.AutoMigrate())
	return s
}
