/*
 * @Author: NEFU AB-IN
 * @Date: 2025-10-19 14:10:12
 * @FilePath: \shiftcash-bot\backend\internal\infra\email\config.go
 * @LastEditTime: 2025-10-19 14:10:16
 */
package email

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// AliyunConfig 描述阿里云邮件推送（DirectMail）的必要配置与报表抄送地址。
type AliyunConfig struct {
	AccessKeyID     string
	AccessKeySecret string
	RegionID        string
	AccountName     string
	FromAlias       string
	TagName         string
	ReplyToAddress  bool
	Endpoint        string
	AddressType     int32
	Recipients      []string
}

// LoadAliyunConfigFromEnv 从环境变量读取阿里云邮件推送配置。
// 缺少任一必填项视为未启用抄送，不是错误。
// 返回值：配置、是否启用、错误。
func LoadAliyunConfigFromEnv() (AliyunConfig, bool, error) {
	accessKey := strings.TrimSpace(os.Getenv("ALIYUN_DM_ACCESS_KEY_ID"))
	secret := strings.TrimSpace(os.Getenv("ALIYUN_DM_ACCESS_KEY_SECRET"))
	region := strings.TrimSpace(os.Getenv("ALIYUN_DM_REGION_ID"))
	accountName := strings.TrimSpace(os.Getenv("ALIYUN_DM_ACCOUNT_NAME"))
	recipients := splitRecipients(os.Getenv("SHIFT_REPORT_EMAILS"))

	if accessKey == "" || secret == "" || region == "" || accountName == "" || len(recipients) == 0 {
		return AliyunConfig{}, false, nil
	}

	fromAlias := strings.TrimSpace(os.Getenv("ALIYUN_DM_FROM_ALIAS"))
	tagName := strings.TrimSpace(os.Getenv("ALIYUN_DM_TAG_NAME"))
	endpoint := strings.TrimSpace(os.Getenv("ALIYUN_DM_ENDPOINT"))
	if endpoint == "" {
		endpoint = "dm.aliyuncs.com"
	}

	replyStr := strings.TrimSpace(os.Getenv("ALIYUN_DM_REPLY_TO_ADDRESS"))
	replyToAddress := true
	if replyStr != "" {
		parsed, err := strconv.ParseBool(replyStr)
		if err != nil {
			return AliyunConfig{}, false, fmt.Errorf("parse ALIYUN_DM_REPLY_TO_ADDRESS: %w", err)
		}
		replyToAddress = parsed
	}

	addressTypeStr := strings.TrimSpace(os.Getenv("ALIYUN_DM_ADDRESS_TYPE"))
	addressType := int32(1)
	if addressTypeStr != "" {
		parsed, err := strconv.Atoi(addressTypeStr)
		if err != nil {
			return AliyunConfig{}, false, fmt.Errorf("parse ALIYUN_DM_ADDRESS_TYPE: %w", err)
		}
		if parsed == 1 {
			addressType = 1
		} else if parsed == 0 {
			// AddressType=0 会由 DirectMail 生成随机发件地址（spam alias），这里强制退回到 1。
			addressType = 1
		} else {
			return AliyunConfig{}, false, fmt.Errorf("invalid ALIYUN_DM_ADDRESS_TYPE: %d", parsed)
		}
	}

	return AliyunConfig{
		AccessKeyID:     accessKey,
		AccessKeySecret: secret,
		RegionID:        region,
		AccountName:     accountName,
		FromAlias:       fromAlias,
		TagName:         tagName,
		ReplyToAddress:  replyToAddress,
		Endpoint:        endpoint,
		AddressType:     addressType,
		Recipients:      recipients,
	}, true, nil
}

// splitRecipients 解析逗号分隔的收件人列表并去掉空项。
func splitRecipients(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if addr := strings.TrimSpace(item); addr != "" {
			out = append(out, addr)
		}
	}
	return out
}
