/*
 * @Author: NEFU AB-IN
 * @Date: 2025-10-19 14:26:40
 * @FilePath: \shiftcash-bot\backend\internal\infra\email\report_sender.go
 * @LastEditTime: 2025-10-19 15:02:11
 */
package email

import (
	"context"
	"fmt"
	"strings"

	"shiftcash-bot/backend/internal/domain/shift"

	openapi "github.com/alibabacloud-go/darabonba-openapi/v2/client"
	dm "github.com/alibabacloud-go/dm-20151123/v2/client"
	"github.com/alibabacloud-go/tea/tea"
)

// AliyunReportSender 使用阿里云 DirectMail 把交班报表抄送到邮箱。
type AliyunReportSender struct {
	client *dm.Client
	cfg    AliyunConfig
}

// NewAliyunReportSender 构造 DirectMail 客户端。
func NewAliyunReportSender(cfg AliyunConfig) (*AliyunReportSender, error) {
	if cfg.AccessKeyID == "" || cfg.AccessKeySecret == "" {
		return nil, fmt.Errorf("aliyun access key not configured")
	}
	if cfg.AccountName == "" {
		return nil, fmt.Errorf("aliyun account name not configured")
	}
	if len(cfg.Recipients) == 0 {
		return nil, fmt.Errorf("report recipients not configured")
	}

	endpoint := cfg.Endpoint
	if strings.TrimSpace(endpoint) == "" {
		endpoint = "dm.aliyuncs.com"
	}

	openapiCfg := &openapi.Config{
		AccessKeyId:     tea.String(cfg.AccessKeyID),
		AccessKeySecret: tea.String(cfg.AccessKeySecret),
	}
	if cfg.RegionID != "" {
		openapiCfg.RegionId = tea.String(cfg.RegionID)
	}
	openapiCfg.Endpoint = tea.String(endpoint)

	client, err := dm.NewClient(openapiCfg)
	if err != nil {
		return nil, fmt.Errorf("init aliyun directmail client: %w", err)
	}

	return &AliyunReportSender{client: client, cfg: cfg}, nil
}

// CopyReport 把报表逐个发送到配置的抄送地址，任一地址失败即返回错误。
func (s *AliyunReportSender) CopyReport(ctx context.Context, report shift.Report) error {
	if s == nil || s.client == nil {
		return fmt.Errorf("aliyun sender not configured")
	}

	subject, textBody, htmlBody := composeReportContent(report)

	for _, address := range s.cfg.Recipients {
		request := &dm.SingleSendMailRequest{
			AccountName:    tea.String(s.cfg.AccountName),
			ToAddress:      tea.String(address),
			Subject:        tea.String(subject),
			AddressType:    tea.Int32(s.cfg.AddressType),
			ReplyToAddress: tea.Bool(s.cfg.ReplyToAddress),
		}

		if s.cfg.FromAlias != "" {
			request.FromAlias = tea.String(s.cfg.FromAlias)
		}
		if s.cfg.TagName != "" {
			request.TagName = tea.String(s.cfg.TagName)
		}

		if htmlBody != "" {
			request.HtmlBody = tea.String(htmlBody)
		} else {
			request.TextBody = tea.String(textBody)
		}

		// DirectMail SDK 不支持 context 取消，但我们仍在外层等待调用返回。
		if _, err := s.client.SingleSendMail(request); err != nil {
			return fmt.Errorf("aliyun single send mail to %s: %w", address, err)
		}
	}

	return nil
}
