/*
 * @Author: NEFU AB-IN
 * @Date: 2025-10-17 20:03:42
 * @FilePath: \shiftcash-bot\backend\internal\repository\shift_metrics_repository.go
 * @LastEditTime: 2025-10-18 11:40:19
 */
package repository

import (
	"context"
	"errors"
	"time"

	"shiftcash-bot/backend/internal/domain/shift"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ShiftMetricsRepository 负责当日流水计数的持久化，基于 GORM 实现。
type ShiftMetricsRepository struct {
	db *gorm.DB
}

// NewShiftMetricsRepository 构造流水仓储，接收共享的 *gorm.DB。
func NewShiftMetricsRepository(db *gorm.DB) *ShiftMetricsRepository {
	return &ShiftMetricsRepository{db: db}
}

// Accumulate 向指定日期的指定字段累加 amount。
// 整个操作是一条 INSERT ... ON CONFLICT(metrics_date) DO UPDATE SET col = col + ? 语句：
// 行不存在时以 amount 作为初值插入，存在时原子自增，由数据库保证同一日期键上
// 并发写入的串行化，不存在先读后写的丢失更新窗口。
// 列名只来自 Field 枚举的 switch 分发，调用方传入的字符串永远不会进入 SQL。
func (r *ShiftMetricsRepository) Accumulate(ctx context.Context, day time.Time, field shift.Field, amount decimal.Decimal) error {
	row := shift.DailyMetrics{MetricsDate: day}

	var column string
	var value any
	switch field {
	case shift.FieldChecks:
		column = "checks"
		row.Checks = amount.IntPart()
		value = amount.IntPart()
	case shift.FieldCash:
		column = "cash"
		row.Cash = amount
		value = amount
	case shift.FieldCard:
		column = "card"
		row.Card = amount
		value = amount
	case shift.FieldQR:
		column = "qr"
		row.QR = amount
		value = amount
	case shift.FieldRefund:
		column = "refund"
		row.Refund = amount
		value = amount
	default:
		return shift.ErrInvalidField
	}

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "metrics_date"}},
			DoUpdates: clause.Assignments(map[string]any{column: gorm.Expr(column+" + ?", value)}),
		}).
		Create(&row).Error
}

// ReadDay 读取指定日期的计数。行不存在时返回全零数据而不是错误。
func (r *ShiftMetricsRepository) ReadDay(ctx context.Context, day time.Time) (shift.DailyMetrics, error) {
	var m shift.DailyMetrics
	err := r.db.WithContext(ctx).Where("metrics_date = ?", day).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shift.DailyMetrics{MetricsDate: day}, nil
	}
	if err != nil {
		return shift.DailyMetrics{}, err
	}
	return m, nil
}

// ResetDay 删除指定日期的行。行不存在时为空操作，幂等。
func (r *ShiftMetricsRepository) ResetDay(ctx context.Context, day time.Time) error {
	return r.db.WithContext(ctx).
		Where("metrics_date = ?", day).
		Delete(&shift.DailyMetrics{}).Error
}
