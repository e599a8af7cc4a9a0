// Package dbtest 为测试提供隔离的内存 SQLite 数据库
package dbtest

import (
	"fmt"
	"testing"

	"skillnet/config"
	"skillnet/internal/model"
	dbPkg "skillnet/pkg/db"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// New 创建一个已完成迁移的内存数据库，测试结束时自动关闭
func New(t testing.TB) *gorm.DB {
	t.Helper()

	cfg := config.DatabaseConfig{
		Driver:   "sqlite",
		Database: fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
		MaxIdle:  1,
		MaxOpen:  1,
	}
	db, err := dbPkg.InitDB(cfg)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := dbPkg.AutoMigrate(db, model.All()...); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	t.Cleanup(func() { _ = dbPkg.CloseDB(db) })
	return db
}
