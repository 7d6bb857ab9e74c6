package config

import (
	"testing"
	"time"
)

func setRequiredBotEnv(t *testing.T) {
	t.Helper()
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("SHIFT_MANAGER_IDS", "100,200")
	t.Setenv("SHIFT_EMPLOYEE_IDS", "300")
}

func TestLoadBotConfig_Defaults(t *testing.T) {
	setRequiredBotEnv(t)
	t.Setenv("BOT_POLL_TIMEOUT", "")
	t.Setenv("BOT_RATE_LIMIT", "")
	t.Setenv("BOT_RATE_WINDOW", "")
	t.Setenv("HTTP_PORT", "")

	cfg, err := LoadBotConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Token != "123:abc" {
		t.Fatalf("token = %q", cfg.Token)
	}
	if len(cfg.ManagerIDs) != 2 || cfg.ManagerIDs[0] != 100 || cfg.ManagerIDs[1] != 200 {
		t.Fatalf("manager ids = %v", cfg.ManagerIDs)
	}
	if len(cfg.EmployeeIDs) != 1 || cfg.EmployeeIDs[0] != 300 {
		t.Fatalf("employee ids = %v", cfg.EmployeeIDs)
	}
	if cfg.PollTimeout != defaultPollTimeout {
		t.Fatalf("poll timeout = %d", cfg.PollTimeout)
	}
	if cfg.RateLimit != defaultRateLimit || cfg.RateWindow != defaultRateWindow {
		t.Fatalf("rate limit defaults = %d/%s", cfg.RateLimit, cfg.RateWindow)
	}
	if cfg.HTTPPort != defaultHTTPPort {
		t.Fatalf("http port = %d", cfg.HTTPPort)
	}
}

func TestLoadBotConfig_Overrides(t *testing.T) {
	setRequiredBotEnv(t)
	t.Setenv("BOT_POLL_TIMEOUT", "50")
	t.Setenv("BOT_RATE_LIMIT", "5")
	t.Setenv("BOT_RATE_WINDOW", "30s")
	t.Setenv("HTTP_PORT", "9090")

	cfg, err := LoadBotConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.PollTimeout != 50 || cfg.RateLimit != 5 || cfg.RateWindow != 30*time.Second || cfg.HTTPPort != 9090 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
}

func TestLoadBotConfig_MissingToken(t *testing.T) {
	t.Setenv("BOT_TOKEN", "")
	t.Setenv("SHIFT_MANAGER_IDS", "100")
	t.Setenv("SHIFT_EMPLOYEE_IDS", "")

	if _, err := LoadBotConfig(); err == nil {
		t.Fatalf("expected error for missing token")
	}
}

func TestLoadBotConfig_EmptyWhitelists(t *testing.T) {
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("SHIFT_MANAGER_IDS", "")
	t.Setenv("SHIFT_EMPLOYEE_IDS", "")

	if _, err := LoadBotConfig(); err == nil {
		t.Fatalf("expected error for empty whitelists")
	}
}

func TestLoadBotConfig_BadIDList(t *testing.T) {
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("SHIFT_MANAGER_IDS", "100,abc")
	t.Setenv("SHIFT_EMPLOYEE_IDS", "300")

	if _, err := LoadBotConfig(); err == nil {
		t.Fatalf("expected error for malformed id list")
	}
}

func TestParseIDList_SkipsBlanks(t *testing.T) {
	ids, err := parseIDList(" 1, ,2 ,3,")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 3 || ids[0] != 1 || ids[1] != 2 || ids[2] != 3 {
		t.Fatalf("ids = %v", ids)
	}
}
