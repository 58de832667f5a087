package testutil

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/yungbote/bankbridge-backend/internal/logger"
	"github.com/yungbote/bankbridge-backend/internal/types"
)

var dbSeq atomic.Int64

// DB opens a fresh in-memory sqlite database, migrated with the full schema.
// A single pooled connection keeps writes serialized and keeps the memory
// database alive for the test's lifetime.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()
	dsn := fmt.Sprintf("file:bankbridge_test_%d?mode=memory&cache=shared&_busy_timeout=5000", dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		tb.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		tb.Fatalf("sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(
		&types.User{},
		&types.UserProfile{},
		&types.BankAccount{},
		&types.Transaction{},
	); err != nil {
		tb.Fatalf("migrate: %v", err)
	}
	tb.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func Logger(tb testing.TB) *logger.Logger {
	tb.Helper()
	log, err := logger.New("test")
	if err != nil {
		tb.Fatalf("logger.New: %v", err)
	}
	return log
}

func SeedUser(tb testing.TB, ctx context.Context, db *gorm.DB, email string) *types.User {
	tb.Helper()
	u := &types.User{
		Name:     "A B",
		Email:    email,
		Password: "pw",
	}
	if err := db.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedAccount(tb testing.TB, ctx context.Context, db *gorm.DB, userID uint, balance string) *types.BankAccount {
	tb.Helper()
	a := &types.BankAccount{
		UserID:            userID,
		BankName:          "bank",
		BankAccountNumber: "0001",
		Balance:           decimal.RequireFromString(balance),
	}
	if err := db.WithContext(ctx).Create(a).Error; err != nil {
		tb.Fatalf("seed account: %v", err)
	}
	return a
}

func SeedTransaction(tb testing.TB, ctx context.Context, db *gorm.DB, sourceID, destID uint, amount string, status types.TransactionStatus) *types.Transaction {
	tb.Helper()
	txn := &types.Transaction{
		SourceAccountID:      sourceID,
		DestinationAccountID: destID,
		Amount:               decimal.RequireFromString(amount),
		Status:               status,
	}
	if err := db.WithContext(ctx).Create(txn).Error; err != nil {
		tb.Fatalf("seed transaction: %v", err)
	}
	return txn
}
