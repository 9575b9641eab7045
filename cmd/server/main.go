// Package main is the entry point for the card management service. It
// wires the database, cache, services, HTTP surface and the limit
// scheduler, then serves until killed.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"cardvault/internal/config"
	"cardvault/internal/handlers"
	"cardvault/internal/middleware"
	"cardvault/internal/repositories"
	"cardvault/internal/routes"
	"cardvault/internal/services/auth"
	"cardvault/internal/services/card"
	"cardvault/internal/services/limit"
	"cardvault/internal/services/transaction"
	"cardvault/internal/services/user"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/sirupsen/logrus"
)

func main() {
	config.LoadEnv()

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	if level, err := logrus.ParseLevel(config.GetEnv("LOG_LEVEL", "info")); err == nil {
		log.SetLevel(level)
	}

	if err := repositories.InitDB(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	if repositories.CacheService != nil {
		if err := repositories.CacheService.FlushAll(context.Background()); err != nil {
			log.Warnf("Failed to flush cache on startup: %v", err)
		}
	}

	store := repositories.NewStore(repositories.DB)
	cacheSvc := repositories.CacheService

	encryptor := card.NewEncryptor(config.GetEnv("CARD_PASSPHRASE", "dev-passphrase"))
	cardService := card.NewService(store, cacheSvc, encryptor, log)
	limitService := limit.NewService(store, cacheSvc, config.LoadDefaultLimits(), log, nil)
	txService := transaction.NewService(store, limitService, cardService, cacheSvc, log)
	userService := user.NewService(store, limitService, log)
	authService := auth.NewService(store)

	scheduler := limit.NewScheduler(limitService, cardService, log)
	if err := scheduler.Register(); err != nil {
		log.Fatalf("Failed to register scheduled jobs: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	app := fiber.New()
	app.Use(cors.New(cors.Config{
		AllowOrigins: config.GetEnv("CORS_ORIGINS", "http://localhost:5173"),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
	}))
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	routes.Setup(app, routes.Handlers{
		Auth:        handlers.NewAuthHandler(authService),
		User:        handlers.NewUserHandler(userService),
		Card:        handlers.NewCardHandler(cardService),
		Limit:       handlers.NewLimitHandler(limitService),
		Transaction: handlers.NewTransactionHandler(txService),
		AuthMW:      middleware.NewAuthMiddleware(authService),
	})

	go func() {
		addr := ":" + config.GetEnv("PORT", "8080")
		if err := app.Listen(addr); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	if err := app.Shutdown(); err != nil {
		log.Errorf("Shutdown failed: %v", err)
	}
}
