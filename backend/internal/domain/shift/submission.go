package shift

import (
	"time"

	"gorm.io/datatypes"
)

// ReportSubmission 记录一次员工交班提交及其分发结果，用于事后审计。
// Payload 保存提交时刻的完整报表快照，后续重置不会影响历史记录。
type ReportSubmission struct {
	ID          string         `gorm:"column:id;primaryKey;size:36" json:"id"`
	SubmittedBy int64          `gorm:"column:submitted_by;index" json:"submitted_by"`
	Attempted   int            `gorm:"column:attempted" json:"attempted"`
	Delivered   int            `gorm:"column:delivered" json:"delivered"`
	Payload     datatypes.JSON `gorm:"column:payload" json:"payload"`
	CreatedAt   time.Time      `gorm:"column:created_at" json:"created_at"`
}

// TableName 返回对应的表名。
func (ReportSubmission) TableName() string {
	return "shift_report_submissions"
}
