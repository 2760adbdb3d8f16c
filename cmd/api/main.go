// cmd/api/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/saree-store/internal/config"
	"github.com/your-org/saree-store/internal/domain/order"
	"github.com/your-org/saree-store/internal/infrastructure/database/postgres"
	"github.com/your-org/saree-store/internal/infrastructure/database/redis"
	"github.com/your-org/saree-store/internal/interfaces/http"
	"github.com/your-org/saree-store/internal/pkg/email"
	"github.com/your-org/saree-store/internal/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	log := logger.New(cfg.Logging)
	log.WithFields(logrus.Fields{
		"app":         cfg.App.Name,
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
	}).Info("Starting storefront")

	db, err := postgres.NewConnection(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	redisClient, err := redis.NewConnection(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to Redis")
	}
	defer redisClient.Close()

	migration := postgres.NewMigration(db.GetDB(), log)
	if err := migration.RunAutoMigrations(); err != nil {
		log.WithError(err).Fatal("Database migration failed")
	}
	if err := migration.CreateIndexes(); err != nil {
		log.WithError(err).Warn("Index creation incomplete")
	}

	if cfg.IsDevelopment() {
		err := migration.SeedInitialData(postgres.SeedOptions{
			AdminEmail:    cfg.Seed.AdminEmail,
			AdminPassword: cfg.Seed.AdminPassword,
			BcryptCost:    cfg.Security.BcryptCost,
		})
		if err != nil {
			log.WithError(err).Warn("Data seeding failed")
		}
		if _, err := migration.GetTableInfo(); err != nil {
			log.WithError(err).Warn("Failed to read table info")
		}
	}

	var (
		notifier     order.Notifier
		emailService *email.EmailService
	)
	if cfg.EmailEnabled() {
		emailService = email.NewEmailService(cfg, log)
		notifier = emailService
		log.WithField("smtp_host", cfg.Email.SMTPHost).Info("Order emails enabled")
	} else {
		log.Info("SMTP not configured, order emails disabled")
	}

	server := http.NewServer(cfg, db.GetDB(), redisClient, notifier, log)

	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Stop(ctx); err != nil {
		log.WithError(err).Error("Failed to shut down HTTP server gracefully")
	}
	if emailService != nil {
		emailService.Wait()
	}

	log.Info("Shutdown complete")
}
