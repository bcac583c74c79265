package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper(values map[string]any) *viper.Viper {
	v := viper.New()
	setDefaults(v)
	for key, value := range values {
		v.Set(key, value)
	}
	return v
}

func TestFromViperDefaults(t *testing.T) {
	cfg, err := fromViper(newViper(map[string]any{
		"jwt_secret":       "secret",
		"internal_api_key": "key",
		"database_url":     "postgres://localhost/groupsync",
		"resend_api_key":   "re_123",
	}))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.False(t, cfg.Release)
	assert.Equal(t, "resend", cfg.Email.Provider)
	assert.Equal(t, "https://api.resend.com", cfg.Email.ResendBaseURL)
	assert.Equal(t, 15*time.Minute, cfg.Reminder.Interval)
	assert.Equal(t, "Europe/Berlin", cfg.DisplayTimezone.String())
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Equal(t, "postgres://localhost/groupsync", cfg.Database.DSN())
	assert.False(t, cfg.Cloudinary.Enabled())
}

func TestFromViperMissingRequired(t *testing.T) {
	_, err := fromViper(newViper(map[string]any{
		"email_provider": "sendgrid",
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_HOST")
	assert.Contains(t, err.Error(), "JWT_SECRET")
	assert.Contains(t, err.Error(), "SENDGRID_API_KEY")
}

func TestFromViperUnknownProvider(t *testing.T) {
	_, err := fromViper(newViper(map[string]any{
		"jwt_secret":       "secret",
		"internal_api_key": "key",
		"database_url":     "postgres://localhost/groupsync",
		"email_provider":   "pigeon",
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pigeon")
}

func TestDatabaseDSNFromFields(t *testing.T) {
	c := DatabaseConfig{Host: "db", User: "u", Password: "p", Name: "n", Port: "5432", SSLMode: "disable"}
	assert.Equal(t, "host=db user=u password=p dbname=n port=5432 sslmode=disable TimeZone=UTC connect_timeout=10", c.DSN())
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"https://a.test", "https://b.test"}, splitList(" https://a.test, ,https://b.test "))
	assert.Nil(t, splitList(""))
}
