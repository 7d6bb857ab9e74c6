package shift

import (
	"time"

	"github.com/shopspring/decimal"
)

// Report 是由原始计数推导出的当日报表，随用随算，从不落库也从不缓存。
type Report struct {
	Date    time.Time       `json:"date"`
	Checks  int64           `json:"checks"`
	Cash    decimal.Decimal `json:"cash"`
	Card    decimal.Decimal `json:"card"`
	QR      decimal.Decimal `json:"qr"`
	Refund  decimal.Decimal `json:"refund"`
	Revenue decimal.Decimal `json:"revenue"`
	Total   decimal.Decimal `json:"total"`
}

// Compile 依据固定公式计算派生值：revenue = cash+card+qr，total = revenue-refund。
// 纯函数，精度完全由 decimal 保证，展示层的格式化不在此处处理。
func Compile(m DailyMetrics) Report {
	revenue := m.Cash.Add(m.Card).Add(m.QR)
	return Report{
		Date:    m.MetricsDate,
		Checks:  m.Checks,
		Cash:    m.Cash,
		Card:    m.Card,
		QR:      m.QR,
		Refund:  m.Refund,
		Revenue: revenue,
		Total:   revenue.Sub(m.Refund),
	}
}
