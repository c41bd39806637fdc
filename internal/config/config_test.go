package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"DATABASE_PATH", "DATA_PATH", "PRICE_SOURCES", "POLICY_FILE", "SOLVER_NODE_LIMIT",
		"MENU_SEED", "PRICE_UPDATE_HOUR", "TELEGRAM_BOT_TOKEN", "TELEGRAM_WEBHOOK_URL",
		"TELEGRAM_ALLOWED_USER_IDS", "ADMIN_TELEGRAM_ID", "PORT",
	} {
		t.Setenv(key, "")
	}
}

func TestNewFromEnv(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		clearEnv(t)

		cfg, err := NewFromEnv()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if cfg.DatabasePath != "data/menu.db" {
			t.Errorf("Expected DatabasePath to be 'data/menu.db', got '%s'", cfg.DatabasePath)
		}
		if len(cfg.PriceSources) != 1 || cfg.PriceSources[0] != "manual" {
			t.Errorf("Expected PriceSources to be [manual], got %v", cfg.PriceSources)
		}
		if cfg.SolverNodeLimit != 100000 {
			t.Errorf("Expected SolverNodeLimit 100000, got %d", cfg.SolverNodeLimit)
		}
		if cfg.MenuSeed != 42 {
			t.Errorf("Expected MenuSeed 42, got %d", cfg.MenuSeed)
		}
		if cfg.PriceUpdateHour != 3 {
			t.Errorf("Expected PriceUpdateHour 3, got %d", cfg.PriceUpdateHour)
		}
		if cfg.Port != "8080" {
			t.Errorf("Expected Port '8080', got '%s'", cfg.Port)
		}
	})

	t.Run("Overrides", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("PRICE_SOURCES", " shufersal, victory ,,rami_levy")
		t.Setenv("SOLVER_NODE_LIMIT", "500")
		t.Setenv("MENU_SEED", "-7")
		t.Setenv("TELEGRAM_ALLOWED_USER_IDS", "11, 22")
		t.Setenv("ADMIN_TELEGRAM_ID", "99")

		cfg, err := NewFromEnv()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if strings.Join(cfg.PriceSources, "|") != "shufersal|victory|rami_levy" {
			t.Errorf("Expected three trimmed sources, got %v", cfg.PriceSources)
		}
		if cfg.SolverNodeLimit != 500 {
			t.Errorf("Expected SolverNodeLimit 500, got %d", cfg.SolverNodeLimit)
		}
		if cfg.MenuSeed != -7 {
			t.Errorf("Expected MenuSeed -7, got %d", cfg.MenuSeed)
		}
		if !cfg.IsAllowedUser(22) || !cfg.IsAllowedUser(99) || cfg.IsAllowedUser(33) {
			t.Errorf("Unexpected allow list behaviour for %v (admin %d)", cfg.TelegramAllowedUserIDs, cfg.AdminTelegramID)
		}
	})

	malformed := []struct {
		key, value, want string
	}{
		{"SOLVER_NODE_LIMIT", "lots", "SOLVER_NODE_LIMIT must be a positive integer"},
		{"SOLVER_NODE_LIMIT", "0", "SOLVER_NODE_LIMIT must be a positive integer"},
		{"MENU_SEED", "abc", "MENU_SEED must be an integer"},
		{"PRICE_UPDATE_HOUR", "24", "PRICE_UPDATE_HOUR must be an hour"},
		{"TELEGRAM_ALLOWED_USER_IDS", "1,two", "TELEGRAM_ALLOWED_USER_IDS must be a list"},
		{"ADMIN_TELEGRAM_ID", "root", "ADMIN_TELEGRAM_ID must be a user id"},
		{"PRICE_SOURCES", " , ", "PRICE_SOURCES must name at least one source"},
	}
	for _, tc := range malformed {
		t.Run("Malformed"+tc.key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tc.key, tc.value)

			_, err := NewFromEnv()
			if err == nil {
				t.Fatalf("Expected an error for %s=%q, got nil", tc.key, tc.value)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("Expected error containing '%s', got '%s'", tc.want, err.Error())
			}
		})
	}
}

func TestIsAllowedUserOpenByDefault(t *testing.T) {
	cfg := &Config{}
	if !cfg.IsAllowedUser(12345) {
		t.Error("Expected an empty allow list to admit everyone")
	}
}

func TestLoadPolicy(t *testing.T) {
	t.Run("EmptyPath", func(t *testing.T) {
		p, err := LoadPolicy("")
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if len(p.AlwaysRotate) != 0 || p.Targets != nil {
			t.Errorf("Expected an empty policy, got %+v", p)
		}
	})

	t.Run("File", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "policy.yaml")
		content := `
always_rotate: [carrot, beet]
slot_shares:
  breakfast: {min: 0.25, max: 0.35}
targets:
  num_days: 5
  min_protein: 70
  max_protein: 120
`
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}

		p, err := LoadPolicy(path)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if len(p.AlwaysRotate) != 2 || p.AlwaysRotate[1] != "beet" {
			t.Errorf("Expected always_rotate [carrot beet], got %v", p.AlwaysRotate)
		}
		if p.SlotShares["breakfast"].Max != 0.35 {
			t.Errorf("Expected breakfast max 0.35, got %v", p.SlotShares["breakfast"].Max)
		}
		if p.Targets == nil || p.Targets.NumDays != 5 || p.Targets.MinProtein != 70 {
			t.Errorf("Expected targets to be read, got %+v", p.Targets)
		}
	})

	t.Run("InvalidShare", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "policy.yaml")
		if err := os.WriteFile(path, []byte("slot_shares:\n  lunch: {min: 0.5, max: 0.4}\n"), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadPolicy(path); err == nil {
			t.Error("Expected an error for an inverted share range, got nil")
		}
	})

	t.Run("MissingFile", func(t *testing.T) {
		if _, err := LoadPolicy(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
			t.Error("Expected an error for a missing file, got nil")
		}
	})
}
