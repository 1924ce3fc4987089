package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"example.com/card-planner/backend/internal/ai"
	"example.com/card-planner/backend/internal/config"
	"example.com/card-planner/backend/internal/handlers"
	"example.com/card-planner/backend/internal/notifications"
	"example.com/card-planner/backend/internal/repository"
)

// New собирает HTTP-сервер Echo с роутами и зависимостями.
// Хаб уведомлений создается снаружи, чтобы его мог использовать планировщик напоминаний.
func New(cfg config.Config, logger *slog.Logger, db *pgxpool.Pool, hub *notifications.Hub) *echo.Echo {
	if logger == nil {
		logger = slog.Default()
	}
	if hub == nil {
		hub = notifications.NewHub()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = NewValidator()

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(requestLogger(logger))
	if len(cfg.Server.CORSOrigins) > 0 {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: cfg.Server.CORSOrigins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		}))
	}

	clock := handlers.NewClock(cfg.Planner.Location)

	accountRepo := repository.NewAccountRepository(db)
	cardRepo := repository.NewCardRepository(db)
	expenseRepo := repository.NewExpenseRepository(db)
	recommendationRepo := repository.NewRecommendationRepository(db)
	statsRepo := repository.NewStatsRepository(db)
	aiRepo := repository.NewAIRepository(db)

	aiService := ai.NewService(newAIClient(cfg.AI))

	plannerHandler := handlers.NewPlannerHandler(accountRepo, cardRepo, expenseRepo, recommendationRepo, hub, clock, cfg.Planner.MinBalanceComfort)

	var pinger handlers.Pinger
	if db != nil {
		pinger = db
	}

	registerRoutes(e, routeHandlers{
		health:          handlers.Health(pinger),
		planner:         plannerHandler,
		recommendations: handlers.NewRecommendationHandler(recommendationRepo, hub),
		cards:           handlers.NewCardHandler(cardRepo, hub, clock),
		accounts:        handlers.NewAccountHandler(accountRepo, hub),
		expenses:        handlers.NewExpenseHandler(expenseRepo, hub, clock),
		stats:           handlers.NewStatsHandler(statsRepo, clock),
		insights:        handlers.NewInsightHandler(aiService, plannerHandler, statsRepo, aiRepo, cfg.AI.Provider, cfg.AI.Model),
		notifications:   handlers.NewNotificationHandler(hub),
		plannerLimiter:  rateLimiter(cfg.Planner.RateLimitPerMinute, cfg.Planner.RateLimitBurst),
		aiLimiter:       rateLimiter(cfg.AI.RateLimitPerMinute, cfg.AI.RateLimitBurst),
	})

	return e
}

// NewHTTPServer создает net/http сервер с заданными таймаутами.
func NewHTTPServer(cfg config.ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
}

func newAIClient(cfg config.AIConfig) ai.Client {
	switch strings.ToLower(cfg.Provider) {
	case "gemini":
		return ai.NewGeminiClient(cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.Timeout, cfg.MaxOutputTokens)
	default:
		return ai.NewGroqClient(cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.Timeout, cfg.MaxOutputTokens)
	}
}

func requestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogError:     true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.String("remote_ip", v.RemoteIP),
				slog.String("request_id", v.RequestID),
				slog.Duration("latency", v.Latency),
			}

			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
			}

			msg := "request completed"
			if v.Status >= http.StatusInternalServerError {
				logger.LogAttrs(c.Request().Context(), slog.LevelError, msg, attrs...)
				return nil
			}

			logger.LogAttrs(c.Request().Context(), slog.LevelInfo, msg, attrs...)
			return nil
		},
	})
}

func rateLimiter(perMinute, burst int) echo.MiddlewareFunc {
	limit := rate.Limit(float64(perMinute) / 60.0)
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      limit,
		Burst:     burst,
		ExpiresIn: time.Minute,
	})

	return middleware.RateLimiter(store)
}
