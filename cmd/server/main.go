package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"groupsync/internal/config"
	"groupsync/internal/database"
	"groupsync/internal/email"
	"groupsync/internal/handlers"
	"groupsync/internal/lock"
	"groupsync/internal/logger"
	"groupsync/internal/services"

	"github.com/gin-gonic/gin"
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
	log := logger.Named("server")

	if cfg.Release {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	dispatcher, err := email.New(cfg.Email)
	if err != nil {
		log.Fatalf("Failed to configure email provider: %v", err)
	}
	mailer := email.NewMailer(nil, dispatcher)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	notifier := services.NewNotifier(db, mailer, cfg.Notify.Concurrency)

	var queue services.Notifications
	if cfg.AMQPURL != "" {
		amqpQueue, err := services.NewAMQPQueue(cfg.AMQPURL, notifier, mailer, cfg.Notify.Workers)
		if err != nil {
			log.Fatalf("Failed to configure RabbitMQ: %v", err)
		}
		if err := amqpQueue.Start(ctx); err != nil {
			log.Fatalf("Failed to start notification consumer: %v", err)
		}
		defer amqpQueue.Close()
		queue = amqpQueue
		log.Info("Notifications are queued through RabbitMQ")
	} else {
		memQueue := services.NewNotifyQueue(notifier, mailer, cfg.Notify.Workers, cfg.Notify.QueueSize)
		// Workers outlive the signal context so Stop can drain queued emails
		memQueue.Start(context.Background())
		defer memQueue.Stop()
		queue = memQueue
	}

	scanner := services.NewReminderScanner(db, mailer, cfg.DisplayTimezone)
	if cfg.RedisURL != "" {
		locker, err := lock.NewRedisLocker(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to configure Redis: %v", err)
		}
		defer locker.Close()
		if err := locker.Ping(ctx); err != nil {
			log.Warnf("Redis is not reachable, scans will run unlocked until it is: %v", err)
		}
		scanner.WithLocker(locker, cfg.Reminder.LockTTL)
	}
	worker := services.NewReminderWorker(scanner, cfg.Reminder.Interval)
	worker.Start(ctx)

	var places services.PlaceResolver
	if cfg.GoogleMapsKey != "" {
		resolver, err := services.NewMapsPlaceResolver(cfg.GoogleMapsKey)
		if err != nil {
			log.Fatalf("Failed to configure Google Maps: %v", err)
		}
		places = resolver
	}

	var avatars services.AvatarUploader
	if cfg.Cloudinary.Enabled() {
		uploader, err := services.NewCloudinaryAvatars(cfg.Cloudinary)
		if err != nil {
			log.Fatalf("Failed to configure Cloudinary: %v", err)
		}
		avatars = uploader
	}

	h := &handlers.Handler{
		Groups:       services.NewGroupService(db, queue),
		Profiles:     services.NewProfileService(db, queue),
		Tasks:        services.NewTaskService(db, queue),
		Appointments: services.NewAppointmentService(db, queue, places, cfg.DisplayTimezone),
		Polls:        services.NewPollService(db, queue, cfg.DisplayTimezone),
		Links:        services.NewLinkService(db),
		Notifier:     notifier,
		Mailer:       mailer,
		Scanner:      scanner,
		Avatars:      avatars,
		Places:       places,
	}
	router := handlers.NewRouter(h, handlers.RouterConfig{
		JWTSecret:      cfg.JWTSecret,
		InternalAPIKey: cfg.InternalAPIKey,
		CORSOrigins:    cfg.CORSOrigins,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof("Server starting on port %s...", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("HTTP shutdown: %v", err)
	}
	worker.Stop()
	log.Info("Server stopped")
}
