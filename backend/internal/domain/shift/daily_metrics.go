package shift

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ErrInvalidField 表示调用方请求累加一个不在白名单内的字段。
// 正常路由下用户输入不可能触发该错误；一旦出现应视为内部故障并拒绝写入。
var ErrInvalidField = errors.New("shift: invalid metrics field")

// Field 枚举当日报表可累加的五个计数字段。
// 仓储层只按枚举值做列名分发，任何字符串都不会直接拼进 SQL。
type Field string

const (
	FieldChecks Field = "checks"
	FieldCash   Field = "cash"
	FieldCard   Field = "card"
	FieldQR     Field = "qr"
	FieldRefund Field = "refund"
)

// Valid 判断字段是否在白名单内。
func (f Field) Valid() bool {
	switch f {
	case FieldChecks, FieldCash, FieldCard, FieldQR, FieldRefund:
		return true
	}
	return false
}

// Monetary 区分金额字段与整数计数字段（checks）。
func (f Field) Monetary() bool {
	return f != FieldChecks
}

// DailyMetrics 映射 shift_daily_metrics 表的一行数据，按自然日唯一。
// 所有数值字段只接受累加更新；缺行等价于全零，不是错误。
type DailyMetrics struct {
	ID          uint            `gorm:"column:id;primaryKey"`
	MetricsDate time.Time       `gorm:"column:metrics_date;type:date;uniqueIndex"`
	Checks      int64           `gorm:"column:checks;default:0"`
	Cash        decimal.Decimal `gorm:"column:cash;type:decimal(20,4);default:0"`
	Card        decimal.Decimal `gorm:"column:card;type:decimal(20,4);default:0"`
	QR          decimal.Decimal `gorm:"column:qr;type:decimal(20,4);default:0"`
	Refund      decimal.Decimal `gorm:"column:refund;type:decimal(20,4);default:0"`
	CreatedAt   time.Time       `gorm:"column:created_at"`
	UpdatedAt   time.Time       `gorm:"column:updated_at"`
}

// TableName 返回对应的表名，避免 Gorm 使用默认命名。
func (DailyMetrics) TableName() string {
	return "shift_daily_metrics"
}

// Day 把时刻归一化为 loc 时区下的自然日，并以 UTC 零点表示。
// 所有读写路径共用同一归一化结果，保证日期键在不同存储后端下可比较。
func Day(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}
