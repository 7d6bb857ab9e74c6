package config

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	// ModeLocal 表示用 SQLite 本地文件运行，适合单店部署与开发调试。
	ModeLocal = "local"
	// ModeOnline 表示连接 MySQL 的默认在线模式。
	ModeOnline = "online"

	defaultLocalDBRelPath = "data/shiftcash-local.db"
)

// RuntimeFlags 汇总运行期所需的模式与存储配置。
type RuntimeFlags struct {
	Mode     string
	SQLite   SQLiteRuntime
	MySQLDSN string
	Timezone string
}

// SQLiteRuntime 描述本地模式下的 SQLite 配置。
type SQLiteRuntime struct {
	DBPath string
}

// LoadRuntimeFlags 读取环境变量，推导当前运行模式与存储参数。
func LoadRuntimeFlags() RuntimeFlags {
	mode := strings.ToLower(strings.TrimSpace(os.Getenv("APP_MODE")))
	if mode == "" {
		mode = ModeOnline
	}

	sqlitePath := defaultLocalDBPath()
	if rawPath := strings.TrimSpace(os.Getenv("LOCAL_SQLITE_PATH")); rawPath != "" {
		sqlitePath = normalisePath(rawPath)
	}

	return RuntimeFlags{
		Mode:     mode,
		SQLite:   SQLiteRuntime{DBPath: sqlitePath},
		MySQLDSN: strings.TrimSpace(os.Getenv("MYSQL_DSN")),
		Timezone: strings.TrimSpace(os.Getenv("SHIFT_TIMEZONE")),
	}
}

// defaultLocalDBPath 计算默认的本地数据库路径并返回绝对路径。
func defaultLocalDBPath() string {
	return normalisePath(defaultLocalDBRelPath)
}

// normalisePath 将路径展开为绝对路径，兼容 ~ 前缀与相对路径。
func normalisePath(raw string) string {
	if raw == "" {
		return raw
	}
	if strings.HasPrefix(raw, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			raw = filepath.Join(home, strings.TrimPrefix(raw, "~"))
		}
	}
	if filepath.IsAbs(raw) {
		return raw
	}
	if abs, err := filepath.Abs(raw); err == nil {
		return abs
	}
	return raw
}
