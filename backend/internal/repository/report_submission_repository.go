package repository

import (
	"context"

	"shiftcash-bot/backend/internal/domain/shift"

	"gorm.io/gorm"
)

// ReportSubmissionRepository 负责交班提交审计记录的持久化。
type ReportSubmissionRepository struct {
	db *gorm.DB
}

// NewReportSubmissionRepository 构造提交审计仓储。
func NewReportSubmissionRepository(db *gorm.DB) *ReportSubmissionRepository {
	return &ReportSubmissionRepository{db: db}
}

// Record 写入一条提交记录。
func (r *ReportSubmissionRepository) Record(ctx context.Context, sub *shift.ReportSubmission) error {
	return r.db.WithContext(ctx).Create(sub).Error
}

// ListRecent 按提交时间倒序返回最近 limit 条记录。
func (r *ReportSubmissionRepository) ListRecent(ctx context.Context, limit int) ([]shift.ReportSubmission, error) {
	if limit <= 0 {
		limit = 20
	}
	var subs []shift.ReportSubmission
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&subs).Error; err != nil {
		return nil, err
	}
	return subs, nil
}
