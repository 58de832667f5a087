package main

import (
	"fmt"
	"os"
	"time"

	"github.com/yungbote/bankbridge-backend/internal/db"
	"github.com/yungbote/bankbridge-backend/internal/handlers"
	"github.com/yungbote/bankbridge-backend/internal/logger"
	"github.com/yungbote/bankbridge-backend/internal/middleware"
	"github.com/yungbote/bankbridge-backend/internal/repos"
	"github.com/yungbote/bankbridge-backend/internal/server"
	"github.com/yungbote/bankbridge-backend/internal/services"
	"github.com/yungbote/bankbridge-backend/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Env
	log.Info("Loading environment variables from main...")
	transferTimeoutMS := utils.GetEnvAsInt("TRANSFER_TIMEOUT_MS", 5000, log)

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Error("Postgres auto migration failed", "error", err)
		os.Exit(1)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up Repos from main...")
	userRepo := repos.NewUserRepo(thePG, log)
	bankAccountRepo := repos.NewBankAccountRepo(thePG, log)
	transactionRepo := repos.NewTransactionRepo(thePG, log)

	// Services
	log.Info("Setting up Services from main...")
	userService := services.NewUserService(thePG, log, userRepo)
	accountService := services.NewAccountService(thePG, log, userRepo, bankAccountRepo, transactionRepo)
	transferService := services.NewTransferService(thePG, log, bankAccountRepo, transactionRepo, time.Duration(transferTimeoutMS)*time.Millisecond)

	// Handlers
	log.Info("Setting up handlers from main...")
	userHandler := handlers.NewUserHandler(log, userService)
	accountHandler := handlers.NewAccountHandler(log, accountService)
	transactionHandler := handlers.NewTransactionHandler(log, transferService)

	// Middleware
	log.Info("Setting up middleware from main...")
	requestLogMiddleware := middleware.NewRequestLogMiddleware(log)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		RequestLogMiddleware: requestLogMiddleware,
		UserHandler:          userHandler,
		AccountHandler:       accountHandler,
		TransactionHandler:   transactionHandler,
	})

	port := utils.GetEnv("PORT", "8080", log)
	fmt.Printf("Server listening on :%s\n", port)
	if err := router.Run(":" + port); err != nil {
		log.Error("Server failed", "error", err)
	}
}
