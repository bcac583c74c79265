package database

import (
	"fmt"
	"time"

	"groupsync/internal/config"
	"groupsync/internal/logger"
	"groupsync/internal/models"
	"groupsync/internal/utils"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// scannerQueryPatterns are the reminder scan queries; they run on every tick and would drown the log
var scannerQueryPatterns = []string{
	"WHERE start_time >= ",
	"WHERE ends_at >= ",
	"WHERE due_date >= ",
	"email_reminders_sent",
}

// GormConfig returns the gorm settings shared by the server and the tests
func GormConfig(debug bool) *gorm.Config {
	level := gormlogger.Warn
	if debug {
		level = gormlogger.Info
	}
	baseLogger := gormlogger.New(
		utils.NewZapWriter(logger.Named("gorm")),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	return &gorm.Config{
		Logger:                 utils.NewCustomGormLogger(baseLogger, scannerQueryPatterns...),
		NowFunc:                func() time.Time { return time.Now().UTC() },
		SkipDefaultTransaction: false,
		TranslateError:         true,
	}
}

// Connect opens the Postgres connection with retry logic and configures the pool
func Connect(cfg config.DatabaseConfig) (*gorm.DB, error) {
	log := logger.Named("database")

	var (
		db  *gorm.DB
		err error
	)
	maxRetries := 5
	retryDelay := time.Second * 5

	for i := 0; i < maxRetries; i++ {
		db, err = gorm.Open(postgres.Open(cfg.DSN()), GormConfig(cfg.Debug))
		if err == nil {
			break
		}
		log.Warnf("Database connection attempt %d failed: %v", i+1, err)
		if i < maxRetries-1 {
			log.Infof("Retrying in %v...", retryDelay)
			time.Sleep(retryDelay)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", maxRetries, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Info("Database connection established and migrations completed")
	return db, nil
}

// Migrate creates or updates every table
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Profile{},
		&models.Group{},
		&models.GroupMember{},
		&models.Task{},
		&models.Appointment{},
		&models.Poll{},
		&models.PollOption{},
		&models.PollVote{},
		&models.GroupLink{},
		&models.EmailReminderSent{},
	); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}
