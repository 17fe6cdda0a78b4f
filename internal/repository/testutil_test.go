package repository

import (
	"errors"
	"os"
	"sync"
	"testing"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/ugobe007/pythh-sub016/internal/model"
)

var errMissingDSN = errors.New("missing TEST_POSTGRES_DSN")

var (
	dbOnce sync.Once
	testDB *gorm.DB
	dbErr  error
)

// openTestDB 连接 TEST_POSTGRES_DSN 指向的库并迁移；未设置时跳过
func openTestDB(tb testing.TB) *gorm.DB {
	tb.Helper()
	dbOnce.Do(func() {
		dsn := os.Getenv("TEST_POSTGRES_DSN")
		if dsn == "" {
			dbErr = errMissingDSN
			return
		}
		testDB, dbErr = gorm.Open(postgres.Open(dsn), &gorm.Config{
			Logger: gormLogger.Default.LogMode(gormLogger.Silent),
		})
		if dbErr != nil {
			return
		}
		dbErr = testDB.AutoMigrate(&model.Startup{}, &model.Investor{}, &model.Match{}, &model.MatchUnlock{}, &model.SignalEvent{})
	})
	if errors.Is(dbErr, errMissingDSN) {
		tb.Skip("set TEST_POSTGRES_DSN to run repo integration tests")
	}
	if dbErr != nil {
		tb.Fatalf("failed to init test db: %v", dbErr)
	}
	return testDB
}

// tx 每个测试一个事务，结束时回滚
func tx(tb testing.TB) *gorm.DB {
	tb.Helper()
	db := openTestDB(tb)
	t := db.Begin()
	if t.Error != nil {
		tb.Fatalf("begin tx: %v", t.Error)
	}
	tb.Cleanup(func() { t.Rollback() })
	return t
}
