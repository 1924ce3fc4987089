package server

import (
	"github.com/labstack/echo/v4"

	"example.com/card-planner/backend/internal/handlers"
)

type routeHandlers struct {
	health          echo.HandlerFunc
	planner         *handlers.PlannerHandler
	recommendations *handlers.RecommendationHandler
	cards           *handlers.CardHandler
	accounts        *handlers.AccountHandler
	expenses        *handlers.ExpenseHandler
	stats           *handlers.StatsHandler
	insights        *handlers.InsightHandler
	notifications   *handlers.NotificationHandler
	plannerLimiter  echo.MiddlewareFunc
	aiLimiter       echo.MiddlewareFunc
}

func registerRoutes(e *echo.Echo, h routeHandlers) {
	e.GET("/health", h.health)

	api := e.Group("/api/v1")

	api.GET("/dashboard", h.planner.Dashboard)
	api.POST("/recommend", h.planner.Recommend, h.plannerLimiter)

	recommendations := api.Group("/recommendations")
	recommendations.GET("", h.recommendations.List)
	recommendations.POST("/execute-batch", h.recommendations.ExecuteBatch)
	recommendations.POST("/:id/execute", h.recommendations.Execute)
	recommendations.POST("/:id/cancel", h.recommendations.Cancel)
	recommendations.GET("/:id/schedule.csv", h.recommendations.ScheduleCSV)

	cards := api.Group("/cards")
	cards.GET("", h.cards.List)
	cards.POST("", h.cards.Create)
	cards.PUT("/:id", h.cards.Update)
	cards.DELETE("/:id", h.cards.Delete)
	cards.POST("/:id/pay", h.cards.Pay)

	api.POST("/balance", h.accounts.UpdateBalance)

	savings := api.Group("/savings")
	savings.GET("/available", h.planner.SavingsAvailable)
	savings.POST("/transfer", h.accounts.TransferToSavings)

	settings := api.Group("/settings")
	settings.PUT("/income", h.accounts.UpdateIncome)
	settings.PUT("/savings-goal", h.accounts.UpdateSavingsGoal)

	expenses := api.Group("/expenses")
	expenses.GET("/fixed", h.expenses.ListFixed)
	expenses.POST("/fixed", h.expenses.CreateFixed)
	expenses.PUT("/fixed/:id", h.expenses.UpdateFixed)
	expenses.POST("/fixed/:id/pay", h.expenses.PayFixed)
	expenses.POST("/variable", h.expenses.AddVariable)
	expenses.DELETE("/variable/:id", h.expenses.DeleteVariable)
	expenses.GET("/this-month", h.expenses.ThisMonth)

	stats := api.Group("/stats")
	stats.GET("/categories", h.stats.Categories)

	insights := api.Group("/insights", h.aiLimiter)
	insights.POST("/advice", h.insights.Advice)
	api.GET("/insights/history", h.insights.History)

	notifications := api.Group("/notifications")
	notifications.GET("/stream", h.notifications.Stream)
}
