/*
 * @Author: NEFU AB-IN
 * @Date: 2025-10-18 09:02:14
 * @FilePath: \shiftcash-bot\backend\internal\config\bot.go
 * @LastEditTime: 2025-10-19 20:15:48
 */
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultPollTimeout = 30
	defaultRateLimit   = 20
	defaultRateWindow  = time.Minute
	defaultHTTPPort    = 8080
)

// BotConfig 汇总机器人运行所需的全部配置。
type BotConfig struct {
	Token          string
	PollTimeout    int
	RateLimit      int
	RateWindow     time.Duration
	ManagerIDs     []int64
	EmployeeIDs    []int64
	AdminJWTSecret string
	HTTPPort       int
}

// LoadBotConfig 从环境变量读取机器人配置。Token 与至少一份非空白名单是硬性要求。
func LoadBotConfig() (BotConfig, error) {
	token := strings.TrimSpace(os.Getenv("BOT_TOKEN"))
	if token == "" {
		return BotConfig{}, fmt.Errorf("BOT_TOKEN is required")
	}

	managers, err := parseIDList(os.Getenv("SHIFT_MANAGER_IDS"))
	if err != nil {
		return BotConfig{}, fmt.Errorf("parse SHIFT_MANAGER_IDS: %w", err)
	}
	employees, err := parseIDList(os.Getenv("SHIFT_EMPLOYEE_IDS"))
	if err != nil {
		return BotConfig{}, fmt.Errorf("parse SHIFT_EMPLOYEE_IDS: %w", err)
	}
	if len(managers) == 0 && len(employees) == 0 {
		return BotConfig{}, fmt.Errorf("at least one of SHIFT_MANAGER_IDS / SHIFT_EMPLOYEE_IDS must be set")
	}

	cfg := BotConfig{
		Token:          token,
		PollTimeout:    defaultPollTimeout,
		RateLimit:      defaultRateLimit,
		RateWindow:     defaultRateWindow,
		ManagerIDs:     managers,
		EmployeeIDs:    employees,
		AdminJWTSecret: strings.TrimSpace(os.Getenv("ADMIN_JWT_SECRET")),
		HTTPPort:       defaultHTTPPort,
	}

	if raw := strings.TrimSpace(os.Getenv("BOT_POLL_TIMEOUT")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return BotConfig{}, fmt.Errorf("invalid BOT_POLL_TIMEOUT: %q", raw)
		}
		cfg.PollTimeout = parsed
	}
	if raw := strings.TrimSpace(os.Getenv("BOT_RATE_LIMIT")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return BotConfig{}, fmt.Errorf("invalid BOT_RATE_LIMIT: %q", raw)
		}
		cfg.RateLimit = parsed
	}
	if raw := strings.TrimSpace(os.Getenv("BOT_RATE_WINDOW")); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil || parsed <= 0 {
			return BotConfig{}, fmt.Errorf("invalid BOT_RATE_WINDOW: %q", raw)
		}
		cfg.RateWindow = parsed
	}
	if raw := strings.TrimSpace(os.Getenv("HTTP_PORT")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 65535 {
			return BotConfig{}, fmt.Errorf("invalid HTTP_PORT: %q", raw)
		}
		cfg.HTTPPort = parsed
	}

	return cfg, nil
}

// parseIDList 解析逗号分隔的整数 ID 列表，空串返回空列表。
func parseIDList(raw string) ([]int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	var ids []int64
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		id, err := strconv.ParseInt(item, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q", item)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
