package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

type Config struct {
	Env      string
	Server   ServerConfig
	Database DatabaseConfig
	AI       AIConfig
	Planner  PlannerConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	CORSOrigins  []string
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxIdleTime time.Duration
	ConnMaxLifetime time.Duration
}

type AIConfig struct {
	Provider           string
	APIKey             string
	BaseURL            string
	Model              string
	Timeout            time.Duration
	RateLimitPerMinute int
	RateLimitBurst     int
	MaxOutputTokens    int
}

type PlannerConfig struct {
	Location            *time.Location
	ReminderSpec        string
	ReminderHorizonDays int
	RateLimitPerMinute  int
	RateLimitBurst      int
	MinBalanceComfort   float64
	Migrate             bool
}

const (
	groqBaseURL   = "https://api.groq.com/openai/v1"
	groqModel     = "llama-3.1-8b-instant"
	geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	geminiModel   = "gemini-2.0-flash"
)

// Load загружает конфигурацию приложения из окружения и .env.
// Возвращается первая ошибка разбора; после разбора конфигурация валидируется целиком.
func Load() (Config, error) {
	cfg := Config{}

	if err := loadEnv(); err != nil {
		return cfg, err
	}

	env := &envReader{}
	cfg.Env = getEnv("APP_ENV", "local")
	cfg.Server = loadServer(env)
	cfg.Database = loadDatabase(env)
	cfg.AI = loadAI(env)
	cfg.Planner = loadPlanner(env)
	if env.err != nil {
		return cfg, env.err
	}

	if err := cfg.validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func loadServer(env *envReader) ServerConfig {
	return ServerConfig{
		Host:         getEnv("SERVER_HOST", "0.0.0.0"),
		Port:         env.intEnv("SERVER_PORT", 8080),
		ReadTimeout:  env.durationEnv("SERVER_READ_TIMEOUT", 5*time.Second),
		WriteTimeout: env.durationEnv("SERVER_WRITE_TIMEOUT", 10*time.Second),
		IdleTimeout:  env.durationEnv("SERVER_IDLE_TIMEOUT", 60*time.Second),
		CORSOrigins:  parseCSVEnv("SERVER_CORS_ORIGINS"),
	}
}

func loadDatabase(env *envReader) DatabaseConfig {
	return DatabaseConfig{
		Host:            getEnv("DB_HOST", "localhost"),
		Port:            env.intEnv("DB_PORT", 5432),
		User:            getEnv("DB_USER", "planner"),
		Password:        getEnv("DB_PASSWORD", "planner"),
		Name:            getEnv("DB_NAME", "card_planner"),
		SSLMode:         getEnv("DB_SSLMODE", "disable"),
		MaxOpenConns:    env.intEnv("DB_MAX_OPEN_CONNS", 10),
		MaxIdleConns:    env.intEnv("DB_MAX_IDLE_CONNS", 5),
		ConnMaxIdleTime: env.durationEnv("DB_CONN_MAX_IDLE_TIME", 5*time.Minute),
		ConnMaxLifetime: env.durationEnv("DB_CONN_MAX_LIFETIME", 30*time.Minute),
	}
}

// loadAI подставляет адрес и модель по умолчанию для выбранного провайдера.
// Для Gemini ключ можно задать через GEMINI_API_KEY.
func loadAI(env *envReader) AIConfig {
	provider := strings.ToLower(strings.TrimSpace(getEnv("AI_PROVIDER", "groq")))
	baseURL, model := groqBaseURL, groqModel
	apiKey := getEnv("AI_API_KEY", "")
	if provider == "gemini" {
		baseURL, model = geminiBaseURL, geminiModel
		if apiKey == "" {
			apiKey = getEnv("GEMINI_API_KEY", "")
		}
	}

	return AIConfig{
		Provider:           provider,
		APIKey:             apiKey,
		BaseURL:            getEnv("AI_BASE_URL", baseURL),
		Model:              getEnv("AI_MODEL", model),
		Timeout:            env.durationEnv("AI_TIMEOUT", 20*time.Second),
		RateLimitPerMinute: env.intEnv("AI_RATE_LIMIT_PER_MINUTE", 30),
		RateLimitBurst:     env.intEnv("AI_RATE_LIMIT_BURST", 10),
		MaxOutputTokens:    env.intEnv("AI_MAX_OUTPUT_TOKENS", 4096),
	}
}

func loadPlanner(env *envReader) PlannerConfig {
	return PlannerConfig{
		Location:            env.locationEnv("PLANNER_TIMEZONE", "America/Mexico_City"),
		ReminderSpec:        strings.TrimSpace(getEnv("REMINDER_CRON", "0 9 * * *")),
		ReminderHorizonDays: env.intEnv("REMINDER_HORIZON_DAYS", 3),
		RateLimitPerMinute:  env.intEnv("RECOMMEND_RATE_LIMIT_PER_MINUTE", 60),
		RateLimitBurst:      env.intEnv("RECOMMEND_RATE_LIMIT_BURST", 20),
		MinBalanceComfort:   env.floatEnv("PLANNER_MIN_BALANCE_COMFORT", 2000),
		Migrate:             env.boolEnv("DB_AUTO_MIGRATE", true),
	}
}

// envReader запоминает первую ошибку разбора, чтобы секции читались без проверки после каждого поля.
type envReader struct {
	err error
}

func (r *envReader) keep(err error) {
	if r.err == nil && err != nil {
		r.err = err
	}
}

func (r *envReader) intEnv(key string, fallback int) int {
	value, err := parseIntEnv(key, fallback)
	r.keep(err)
	return value
}

func (r *envReader) durationEnv(key string, fallback time.Duration) time.Duration {
	value, err := parseDurationEnv(key, fallback)
	r.keep(err)
	return value
}

func (r *envReader) floatEnv(key string, fallback float64) float64 {
	value, err := parseFloatEnv(key, fallback)
	r.keep(err)
	return value
}

func (r *envReader) boolEnv(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}

	parsed, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		r.keep(fmt.Errorf("%s must be a boolean: %w", key, err))
		return fallback
	}

	return parsed
}

func (r *envReader) locationEnv(key, fallback string) *time.Location {
	location, err := time.LoadLocation(getEnv(key, fallback))
	if err != nil {
		r.keep(fmt.Errorf("%s must be a valid IANA zone: %w", key, err))
		return nil
	}

	return location
}

// DSN возвращает строку подключения к базе данных.
func (c DatabaseConfig) DSN() string {
	user := url.UserPassword(c.User, c.Password)
	dsn := url.URL{
		Scheme: "postgres",
		User:   user,
		Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:   c.Name,
	}

	query := url.Values{}
	query.Set("sslmode", c.SSLMode)
	return dsn.String() + "?" + query.Encode()
}

func (c Config) validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("SERVER_PORT must be greater than 0")
	}

	if c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}

	if c.Database.User == "" {
		return fmt.Errorf("DB_USER is required")
	}

	if c.Database.Name == "" {
		return fmt.Errorf("DB_NAME is required")
	}

	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("DB_MAX_IDLE_CONNS cannot exceed DB_MAX_OPEN_CONNS")
	}

	if c.AI.RateLimitPerMinute <= 0 {
		return fmt.Errorf("AI_RATE_LIMIT_PER_MINUTE must be greater than 0")
	}

	if c.AI.RateLimitBurst <= 0 {
		return fmt.Errorf("AI_RATE_LIMIT_BURST must be greater than 0")
	}

	if c.AI.MaxOutputTokens <= 0 {
		return fmt.Errorf("AI_MAX_OUTPUT_TOKENS must be greater than 0")
	}

	if c.Planner.ReminderSpec == "" {
		return fmt.Errorf("REMINDER_CRON is required")
	}

	if c.Planner.Location == nil {
		return fmt.Errorf("PLANNER_TIMEZONE is required")
	}

	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}

	return fallback
}

func parseIntEnv(key string, fallback int) (int, error) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}

	if parsed <= 0 {
		return 0, fmt.Errorf("%s must be greater than 0", key)
	}

	return parsed, nil
}

func parseDurationEnv(key string, fallback time.Duration) (time.Duration, error) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}

	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
	}

	if parsed <= 0 {
		return 0, fmt.Errorf("%s must be greater than 0", key)
	}

	return parsed, nil
}

func parseFloatEnv(key string, fallback float64) (float64, error) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}

	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number: %w", key, err)
	}

	if parsed < 0 {
		return 0, fmt.Errorf("%s must not be negative", key)
	}

	return parsed, nil
}

func parseCSVEnv(key string) []string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}

	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.ToLower(strings.TrimSpace(part))
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}
	return out
}

func loadEnv() error {
	if envFile := os.Getenv("ENV_FILE"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("load env file %s: %w", envFile, err)
		}
		return nil
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("load .env: %w", err)
	}

	return nil
}
