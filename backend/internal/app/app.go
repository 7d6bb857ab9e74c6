/*
 * @Author: NEFU AB-IN
 * @Date: 2025-10-19 19:12:47
 * @FilePath: \shiftcash-bot\backend\internal\app\app.go
 * @LastEditTime: 2025-10-20 09:36:51
 */
package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"shiftcash-bot/backend/internal/config"
	"shiftcash-bot/backend/internal/domain/shift"
	infraclient "shiftcash-bot/backend/internal/infra/client"
	appLogger "shiftcash-bot/backend/internal/infra/logger"

	"github.com/redis/go-redis/v9"
	mysqlDriver "gorm.io/driver/mysql"
	sqliteDriver "gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Resources 汇总进程生命周期内共享的外部资源。
type Resources struct {
	Flags config.RuntimeFlags
	Bot   config.BotConfig
	DB    *gorm.DB
	Redis *redis.Client
	Loc   *time.Location
}

// Bootstrap 加载配置、打开存储并执行迁移。Redis 是可选资源，
// 未配置时机器人退化为内存限流，不影响核心功能。
func Bootstrap(ctx context.Context) (*Resources, error) {
	config.LoadEnvFiles()

	flags := config.LoadRuntimeFlags()

	botCfg, err := config.LoadBotConfig()
	if err != nil {
		return nil, fmt.Errorf("load bot config: %w", err)
	}

	loc := time.Local
	if flags.Timezone != "" {
		loc, err = time.LoadLocation(flags.Timezone)
		if err != nil {
			return nil, fmt.Errorf("load timezone %q: %w", flags.Timezone, err)
		}
	}

	db, err := openDatabase(flags)
	if err != nil {
		return nil, err
	}
	if err := db.WithContext(ctx).AutoMigrate(&shift.DailyMetrics{}, &shift.ReportSubmission{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	resources := &Resources{
		Flags: flags,
		Bot:   botCfg,
		DB:    db,
		Loc:   loc,
	}

	if redisClient, ok := tryRedis(); ok {
		resources.Redis = redisClient
	}

	return resources, nil
}

// openDatabase 按运行模式打开 SQLite 或 MySQL。
func openDatabase(flags config.RuntimeFlags) (*gorm.DB, error) {
	switch flags.Mode {
	case config.ModeLocal:
		if err := os.MkdirAll(filepath.Dir(flags.SQLite.DBPath), 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
		db, err := gorm.Open(sqliteDriver.Open(flags.SQLite.DBPath), &gorm.Config{})
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		return db, nil
	case config.ModeOnline:
		if flags.MySQLDSN == "" {
			return nil, fmt.Errorf("MYSQL_DSN is required in online mode")
		}
		db, err := gorm.Open(mysqlDriver.Open(flags.MySQLDSN), &gorm.Config{})
		if err != nil {
			return nil, fmt.Errorf("open mysql: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("get sql db: %w", err)
		}
		sqlDB.SetConnMaxLifetime(60 * time.Minute)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(25)
		return db, nil
	default:
		return nil, fmt.Errorf("unknown APP_MODE: %q", flags.Mode)
	}
}

// tryRedis 尝试连接 Redis。未配置或连接失败都不算致命错误。
func tryRedis() (*redis.Client, bool) {
	opts, err := infraclient.NewDefaultRedisOptions()
	if err != nil {
		return nil, false
	}
	client, err := infraclient.NewRedisClient(opts)
	if err != nil {
		appLogger.S().Warnw("redis unavailable, falling back to in-memory rate limiter", "error", err)
		return nil, false
	}
	return client, true
}

// Close 释放所有持有的资源。
func (r *Resources) Close() error {
	if r == nil {
		return nil
	}
	if r.Redis != nil {
		if err := r.Redis.Close(); err != nil {
			return err
		}
	}
	if r.DB != nil {
		sqlDB, err := r.DB.DB()
		if err == nil {
			return sqlDB.Close()
		}
	}
	return nil
}

// WithShutdown 统一处理应用主函数的错误出口。
func WithShutdown(ctx context.Context, cancel func(), fn func(context.Context) error) {
	defer cancel()
	if err := fn(ctx); err != nil {
		log.Fatalf("application error: %v", err)
	}
}
