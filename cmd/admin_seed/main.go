// Command admin_seed creates the initial administrator account so the
// admin-only endpoints are reachable on a fresh deployment.
package main

import (
	"context"

	"cardvault/internal/config"
	"cardvault/internal/repositories"
	"cardvault/internal/services/limit"
	"cardvault/internal/services/user"

	"github.com/sirupsen/logrus"
)

func main() {
	log := logrus.New()
	config.LoadEnv()

	if err := repositories.InitDB(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	store := repositories.NewStore(repositories.DB)
	limitService := limit.NewService(store, nil, config.LoadDefaultLimits(), log, nil)
	userService := user.NewService(store, limitService, log)

	admin, err := userService.Register(context.Background(), user.RegisterInput{
		Name:     config.GetEnv("ADMIN_NAME", "Administrator"),
		Email:    config.GetEnv("ADMIN_EMAIL", "admin@cardvault.local"),
		Password: config.GetEnv("ADMIN_PASSWORD", "changeme"),
		Role:     "admin",
	})
	if err != nil {
		log.Fatalf("Failed to seed admin: %v", err)
	}
	log.Infof("Admin created: %s (id=%d)", admin.Email, admin.ID)
}
