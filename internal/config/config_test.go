package config

import (
	"reflect"
	"strings"
	"testing"
)

// TestParseCSVEnv проверяет разбор списка origin из ENV.
func TestParseCSVEnv(t *testing.T) {
	t.Setenv("SERVER_CORS_ORIGINS", " HTTP://Localhost:5173, ,https://planner.example.com ")

	got := parseCSVEnv("SERVER_CORS_ORIGINS")
	want := []string{"http://localhost:5173", "https://planner.example.com"}

	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

// TestParseCSVEnvMissing проверяет поведение при отсутствии переменной.
func TestParseCSVEnvMissing(t *testing.T) {
	got := parseCSVEnv("MISSING_ENV")
	if got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}

// TestParseFloatEnv проверяет разбор денежных значений и отказ от отрицательных.
func TestParseFloatEnv(t *testing.T) {
	t.Setenv("PLANNER_MIN_BALANCE_COMFORT", " 1500.50 ")

	got, err := parseFloatEnv("PLANNER_MIN_BALANCE_COMFORT", 2000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 1500.50 {
		t.Fatalf("expected 1500.50, got %v", got)
	}

	t.Setenv("PLANNER_MIN_BALANCE_COMFORT", "-1")
	if _, err := parseFloatEnv("PLANNER_MIN_BALANCE_COMFORT", 2000); err == nil {
		t.Fatalf("expected error for negative value")
	}

	if got, _ := parseFloatEnv("MISSING_ENV", 2000); got != 2000 {
		t.Fatalf("expected fallback 2000, got %v", got)
	}
}

// TestLoadDefaults проверяет значения по умолчанию без переменных окружения.
func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENV_FILE", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Fatalf("expected port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Planner.ReminderSpec != "0 9 * * *" {
		t.Fatalf("unexpected reminder spec %q", cfg.Planner.ReminderSpec)
	}
	if cfg.Planner.Location == nil || cfg.Planner.Location.String() != "America/Mexico_City" {
		t.Fatalf("unexpected location %v", cfg.Planner.Location)
	}
	if cfg.Planner.MinBalanceComfort != 2000 {
		t.Fatalf("expected comfort 2000, got %v", cfg.Planner.MinBalanceComfort)
	}
}

// TestLoadInvalidTimezone проверяет ошибку для неизвестной зоны.
func TestLoadInvalidTimezone(t *testing.T) {
	t.Setenv("ENV_FILE", "")
	t.Setenv("PLANNER_TIMEZONE", "Mars/Olympus")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid timezone")
	}
}

// TestLoadGeminiDefaults проверяет адрес, модель и запасной ключ для Gemini.
func TestLoadGeminiDefaults(t *testing.T) {
	t.Setenv("ENV_FILE", "")
	t.Setenv("AI_PROVIDER", " Gemini ")
	t.Setenv("AI_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "gemini-key")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.AI.Provider != "gemini" || cfg.AI.APIKey != "gemini-key" {
		t.Fatalf("unexpected ai config: %+v", cfg.AI)
	}
	if cfg.AI.BaseURL != geminiBaseURL || cfg.AI.Model != geminiModel {
		t.Fatalf("unexpected gemini defaults: %s %s", cfg.AI.BaseURL, cfg.AI.Model)
	}
}

// TestLoadFirstParseError проверяет, что возвращается первая ошибка разбора.
func TestLoadFirstParseError(t *testing.T) {
	t.Setenv("ENV_FILE", "")
	t.Setenv("SERVER_PORT", "http")
	t.Setenv("DB_AUTO_MIGRATE", "maybe")

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "SERVER_PORT") {
		t.Fatalf("expected SERVER_PORT error, got %v", err)
	}
}

// TestLoadAutoMigrate проверяет разбор флага миграций.
func TestLoadAutoMigrate(t *testing.T) {
	t.Setenv("ENV_FILE", "")
	t.Setenv("DB_AUTO_MIGRATE", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Planner.Migrate {
		t.Fatal("expected migrations to be disabled")
	}
}
