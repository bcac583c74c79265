package config

import (
	"fmt"
	"sort"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds every runtime setting of the service
type Config struct {
	Port      string
	Release   bool
	Debug     bool
	LogJSON   bool
	JWTSecret string

	InternalAPIKey string
	CORSOrigins    []string

	Database DatabaseConfig
	Email    EmailConfig
	Notify   NotifyConfig
	Reminder ReminderConfig

	RedisURL        string
	AMQPURL         string // optional RabbitMQ transport for notifications
	GoogleMapsKey   string
	Cloudinary      CloudinaryConfig
	DisplayTimezone *time.Location
}

// DatabaseConfig describes how to reach Postgres. URL wins over the individual fields.
type DatabaseConfig struct {
	URL      string
	Host     string
	User     string
	Password string
	Name     string
	Port     string
	SSLMode  string
	Debug    bool
}

// DSN returns the connection string for the postgres driver
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC connect_timeout=10",
		c.Host, c.User, c.Password, c.Name, c.Port, c.SSLMode)
}

// EmailConfig selects and configures the transactional email provider
type EmailConfig struct {
	Provider      string // resend, sendgrid or smtp
	From          string
	ResendAPIKey  string
	ResendBaseURL string
	SendGridKey   string
	SendGridHost  string
	SMTPHost      string
	SMTPPort      int
	SMTPUser      string
	SMTPPassword  string
	RatePerSecond float64
	Burst         int
}

// NotifyConfig sizes the asynchronous fan-out queue
type NotifyConfig struct {
	Workers     int
	QueueSize   int
	Concurrency int
}

// ReminderConfig controls the in-process reminder worker
type ReminderConfig struct {
	Interval time.Duration // zero disables the worker
	LockTTL  time.Duration
}

// CloudinaryConfig enables avatar uploads when all fields are set
type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
}

// Enabled reports whether avatar uploads are configured
func (c CloudinaryConfig) Enabled() bool {
	return c.CloudName != "" && c.APIKey != "" && c.APISecret != ""
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("gin_mode", "debug")
	v.SetDefault("db_ssl_mode", "disable")
	v.SetDefault("email_provider", "resend")
	v.SetDefault("email_from", "GroupSync <noreply@groupsync.team>")
	v.SetDefault("resend_base_url", "https://api.resend.com")
	v.SetDefault("sendgrid_host", "https://api.sendgrid.com")
	v.SetDefault("smtp_port", 587)
	v.SetDefault("email_rate_per_second", 2.0)
	v.SetDefault("email_burst", 2)
	v.SetDefault("notify_workers", 4)
	v.SetDefault("notify_queue_size", 256)
	v.SetDefault("notify_concurrency", 8)
	v.SetDefault("reminder_interval", "15m")
	v.SetDefault("reminder_lock_ttl", "10m")
	v.SetDefault("display_timezone", "Europe/Berlin")
	v.SetDefault("cors_origins", "*")
}

// Load reads .env (if present) and the process environment
func Load() (*Config, error) {
	// A missing .env file is normal outside local development
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	release := v.GetString("gin_mode") == "release"

	cfg := &Config{
		Port:           v.GetString("port"),
		Release:        release,
		Debug:          v.GetBool("log_debug"),
		LogJSON:        v.GetBool("log_json"),
		JWTSecret:      v.GetString("jwt_secret"),
		InternalAPIKey: v.GetString("internal_api_key"),
		CORSOrigins:    splitList(v.GetString("cors_origins")),
		Database: DatabaseConfig{
			URL:      v.GetString("database_url"),
			Host:     v.GetString("db_host"),
			User:     v.GetString("db_user"),
			Password: v.GetString("db_password"),
			Name:     v.GetString("db_name"),
			Port:     v.GetString("db_port"),
			SSLMode:  v.GetString("db_ssl_mode"),
			Debug:    v.GetBool("db_debug"),
		},
		Email: EmailConfig{
			Provider:      strings.ToLower(v.GetString("email_provider")),
			From:          v.GetString("email_from"),
			ResendAPIKey:  v.GetString("resend_api_key"),
			ResendBaseURL: v.GetString("resend_base_url"),
			SendGridKey:   v.GetString("sendgrid_api_key"),
			SendGridHost:  v.GetString("sendgrid_host"),
			SMTPHost:      v.GetString("smtp_host"),
			SMTPPort:      v.GetInt("smtp_port"),
			SMTPUser:      v.GetString("smtp_user"),
			SMTPPassword:  v.GetString("smtp_password"),
			RatePerSecond: v.GetFloat64("email_rate_per_second"),
			Burst:         v.GetInt("email_burst"),
		},
		Notify: NotifyConfig{
			Workers:     v.GetInt("notify_workers"),
			QueueSize:   v.GetInt("notify_queue_size"),
			Concurrency: v.GetInt("notify_concurrency"),
		},
		Reminder: ReminderConfig{
			Interval: v.GetDuration("reminder_interval"),
			LockTTL:  v.GetDuration("reminder_lock_ttl"),
		},
		RedisURL:      v.GetString("redis_url"),
		AMQPURL:       v.GetString("amqp_url"),
		GoogleMapsKey: v.GetString("google_maps_api_key"),
		Cloudinary: CloudinaryConfig{
			CloudName: v.GetString("cloudinary_cloud_name"),
			APIKey:    v.GetString("cloudinary_api_key"),
			APISecret: v.GetString("cloudinary_api_secret"),
		},
	}

	loc, err := time.LoadLocation(v.GetString("display_timezone"))
	if err != nil {
		return nil, fmt.Errorf("invalid DISPLAY_TIMEZONE: %w", err)
	}
	cfg.DisplayTimezone = loc

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var missing []string
	if c.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if c.InternalAPIKey == "" {
		missing = append(missing, "INTERNAL_API_KEY")
	}
	if c.Database.URL == "" {
		for key, value := range map[string]string{
			"DB_HOST":     c.Database.Host,
			"DB_USER":     c.Database.User,
			"DB_PASSWORD": c.Database.Password,
			"DB_NAME":     c.Database.Name,
			"DB_PORT":     c.Database.Port,
		} {
			if value == "" {
				missing = append(missing, key)
			}
		}
	}

	switch c.Email.Provider {
	case "resend":
		if c.Email.ResendAPIKey == "" {
			missing = append(missing, "RESEND_API_KEY")
		}
	case "sendgrid":
		if c.Email.SendGridKey == "" {
			missing = append(missing, "SENDGRID_API_KEY")
		}
	case "smtp":
		if c.Email.SMTPHost == "" {
			missing = append(missing, "SMTP_HOST")
		}
	default:
		return fmt.Errorf("unsupported EMAIL_PROVIDER %q", c.Email.Provider)
	}

	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("required environment variables are not set: %s", strings.Join(missing, ", "))
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
