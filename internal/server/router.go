package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yungbote/bankbridge-backend/internal/handlers"
	"github.com/yungbote/bankbridge-backend/internal/middleware"
)

type RouterConfig struct {
	RequestLogMiddleware *middleware.RequestLogMiddleware
	UserHandler          *handlers.UserHandler
	AccountHandler       *handlers.AccountHandler
	TransactionHandler   *handlers.TransactionHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	// Cors
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	if cfg.RequestLogMiddleware != nil {
		router.Use(cfg.RequestLogMiddleware.Handler())
	}

	router.GET("/healthcheck", handlers.HealthCheck)

	v1 := router.Group("/api/v1")
	{
		// Users
		v1.POST("/users", cfg.UserHandler.Create)
		v1.GET("/users", cfg.UserHandler.List)
		v1.GET("/users/:userId", cfg.UserHandler.Get)
		v1.PUT("/users/:userId", cfg.UserHandler.Update)
		v1.DELETE("/users/:userId", cfg.UserHandler.Delete)
		// Accounts
		v1.POST("/accounts", cfg.AccountHandler.Create)
		v1.GET("/accounts", cfg.AccountHandler.List)
		v1.GET("/accounts/:accountId", cfg.AccountHandler.Get)
		v1.PUT("/accounts/:accountId", cfg.AccountHandler.Update)
		v1.DELETE("/accounts/:accountId", cfg.AccountHandler.Delete)
		// Transactions
		v1.POST("/transactions", cfg.TransactionHandler.Create)
		v1.GET("/transactions", cfg.TransactionHandler.List)
		v1.GET("/transactions/:transactionId", cfg.TransactionHandler.Get)
		v1.PUT("/transactions/:transactionId", cfg.TransactionHandler.Update)
		v1.DELETE("/transactions/:transactionId", cfg.TransactionHandler.Delete)
	}

	return router
}
