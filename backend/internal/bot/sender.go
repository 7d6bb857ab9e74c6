package bot

import (
	"context"

	"shiftcash-bot/backend/internal/domain/shift"
	"shiftcash-bot/backend/internal/infra/telegram"
)

// ReportSender 通过 Bot API 把报表送达单个管理员，实现 notify.Sender。
type ReportSender struct {
	client *telegram.Client
}

// NewReportSender 构造报表投递器。
func NewReportSender(client *telegram.Client) *ReportSender {
	return &ReportSender{client: client}
}

// SendReport 发送带来源标注的报表文本。失败原样返回，由分发层统计。
func (s *ReportSender) SendReport(ctx context.Context, recipient int64, report shift.Report) error {
	return s.client.SendMessage(ctx, recipient, renderManagerCopy(report))
}
