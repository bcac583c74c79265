// Command reminders runs a single reminder scan and prints the result as JSON.
// It is meant to be triggered by an external scheduler such as cron.
package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"time"

	"groupsync/internal/config"
	"groupsync/internal/database"
	"groupsync/internal/email"
	"groupsync/internal/lock"
	"groupsync/internal/logger"
	"groupsync/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := logger.Init(logger.Config{Debug: cfg.Debug, JSON: cfg.LogJSON}); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	dispatcher, err := email.New(cfg.Email)
	if err != nil {
		log.Fatalf("Failed to configure email provider: %v", err)
	}

	scanner := services.NewReminderScanner(db, email.NewMailer(nil, dispatcher), cfg.DisplayTimezone)
	if cfg.RedisURL != "" {
		locker, err := lock.NewRedisLocker(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to configure Redis: %v", err)
		}
		defer locker.Close()
		scanner.WithLocker(locker, cfg.Reminder.LockTTL)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	result := scanner.Run(ctx)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		log.Fatalf("Failed to write result: %v", err)
	}
}
