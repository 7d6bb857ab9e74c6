/*
 * @Author: NEFU AB-IN
 * @Date: 2025-10-20 14:02:11
 * @FilePath: \shiftcash-bot\backend\internal\repository\shift_metrics_repository_test.go
 * @LastEditTime: 2025-10-20 14:02:16
 */
package repository_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"shiftcash-bot/backend/internal/domain/shift"
	"shiftcash-bot/backend/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var metricsDBSeq int

func setupMetricsRepo(t *testing.T) *repository.ShiftMetricsRepository {
	t.Helper()

	metricsDBSeq++
	dsn := fmt.Sprintf("file:metrics_%d?mode=memory&cache=shared", metricsDBSeq)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}

	// SQLite 对并发写入会返回 busy 错误，测试里收敛到单连接即可串行化。
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&shift.DailyMetrics{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	return repository.NewShiftMetricsRepository(db)
}

func today() time.Time {
	return shift.Day(time.Now(), time.UTC)
}

func TestReadDay_MissingRowIsZero(t *testing.T) {
	repo := setupMetricsRepo(t)

	m, err := repo.ReadDay(context.Background(), today())
	if err != nil {
		t.Fatalf("ReadDay returned error: %v", err)
	}
	if m.Checks != 0 || !m.Cash.IsZero() || !m.Card.IsZero() || !m.QR.IsZero() || !m.Refund.IsZero() {
		t.Fatalf("missing row must read as zero, got %+v", m)
	}
	if !m.MetricsDate.Equal(today()) {
		t.Fatalf("zero row must carry the requested date")
	}
}

func TestAccumulate_CreatesThenAdds(t *testing.T) {
	repo := setupMetricsRepo(t)
	ctx := context.Background()
	day := today()

	if err := repo.Accumulate(ctx, day, shift.FieldCash, decimal.NewFromFloat(100.5)); err != nil {
		t.Fatalf("first accumulate: %v", err)
	}
	if err := repo.Accumulate(ctx, day, shift.FieldCash, decimal.NewFromFloat(49.5)); err != nil {
		t.Fatalf("second accumulate: %v", err)
	}
	if err := repo.Accumulate(ctx, day, shift.FieldChecks, decimal.NewFromInt(3)); err != nil {
		t.Fatalf("checks accumulate: %v", err)
	}

	m, err := repo.ReadDay(ctx, day)
	if err != nil {
		t.Fatalf("ReadDay: %v", err)
	}
	if !m.Cash.Equal(decimal.NewFromInt(150)) {
		t.Fatalf("cash = %s, want 150", m.Cash)
	}
	if m.Checks != 3 {
		t.Fatalf("checks = %d, want 3", m.Checks)
	}
	if !m.Card.IsZero() {
		t.Fatalf("card must stay untouched, got %s", m.Card)
	}
}

func TestAccumulate_SeparateDaysDoNotMix(t *testing.T) {
	repo := setupMetricsRepo(t)
	ctx := context.Background()

	dayA := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
	dayB := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)

	if err := repo.Accumulate(ctx, dayA, shift.FieldQR, decimal.NewFromInt(10)); err != nil {
		t.Fatalf("accumulate dayA: %v", err)
	}
	if err := repo.Accumulate(ctx, dayB, shift.FieldQR, decimal.NewFromInt(20)); err != nil {
		t.Fatalf("accumulate dayB: %v", err)
	}

	a, err := repo.ReadDay(ctx, dayA)
	if err != nil {
		t.Fatalf("ReadDay dayA: %v", err)
	}
	b, err := repo.ReadDay(ctx, dayB)
	if err != nil {
		t.Fatalf("ReadDay dayB: %v", err)
	}
	if !a.QR.Equal(decimal.NewFromInt(10)) || !b.QR.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("days mixed: dayA qr=%s dayB qr=%s", a.QR, b.QR)
	}
}

func TestAccumulate_ConcurrentWritersLoseNothing(t *testing.T) {
	repo := setupMetricsRepo(t)
	ctx := context.Background()
	day := today()

	const writers = 20
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- repo.Accumulate(ctx, day, shift.FieldCash, decimal.NewFromInt(1))
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent accumulate: %v", err)
		}
	}

	m, err := repo.ReadDay(ctx, day)
	if err != nil {
		t.Fatalf("ReadDay: %v", err)
	}
	if !m.Cash.Equal(decimal.NewFromInt(writers)) {
		t.Fatalf("cash = %s, want %d (lost update)", m.Cash, writers)
	}
}

func TestAccumulate_InvalidField(t *testing.T) {
	repo := setupMetricsRepo(t)

	err := repo.Accumulate(context.Background(), today(), shift.Field("revenue"), decimal.NewFromInt(1))
	if !errors.Is(err, shift.ErrInvalidField) {
		t.Fatalf("expected ErrInvalidField, got %v", err)
	}
}

func TestResetDay_Idempotent(t *testing.T) {
	repo := setupMetricsRepo(t)
	ctx := context.Background()
	day := today()

	// 空库上的 reset 不是错误。
	if err := repo.ResetDay(ctx, day); err != nil {
		t.Fatalf("reset empty day: %v", err)
	}

	if err := repo.Accumulate(ctx, day, shift.FieldCard, decimal.NewFromInt(42)); err != nil {
		t.Fatalf("accumulate: %v", err)
	}
	if err := repo.ResetDay(ctx, day); err != nil {
		t.Fatalf("reset: %v", err)
	}

	m, err := repo.ReadDay(ctx, day)
	if err != nil {
		t.Fatalf("ReadDay: %v", err)
	}
	if !m.Card.IsZero() {
		t.Fatalf("card = %s after reset, want 0", m.Card)
	}

	// 重置后可以立刻重新累加，等价于开新一班。
	if err := repo.Accumulate(ctx, day, shift.FieldCard, decimal.NewFromInt(5)); err != nil {
		t.Fatalf("accumulate after reset: %v", err)
	}
	m, err = repo.ReadDay(ctx, day)
	if err != nil {
		t.Fatalf("ReadDay: %v", err)
	}
	if !m.Card.Equal(decimal.NewFromInt(5)) {
		t.Fatalf("card = %s, want 5", m.Card)
	}
}
