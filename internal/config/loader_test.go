package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFrom(viper.New(), writeConfig(t, "{}\n"))
	require.NoError(t, err)

	assert.Equal(t, "voyage-leads", cfg.App.Name)
	assert.Equal(t, ":8080", cfg.App.Addr())
	assert.Equal(t, StoreDriverPostgres, cfg.Store.Driver)
	assert.Equal(t, "leads", cfg.Store.Mongo.Collection)
	assert.Equal(t, "gemini-2.5-flash", cfg.GenAI.Model)
	assert.Equal(t, 30*time.Second, cfg.GenAI.Timeout)
	assert.Equal(t, 10, cfg.Chat.RateLimit)
	assert.Equal(t, time.Minute, cfg.Chat.RateWindow)
	assert.Equal(t, 70.0, cfg.Mail.ScoreThreshold)
	assert.True(t, cfg.Backfill.Enabled())
}

func TestLoadMissingStoreURLIsNotAnError(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	cfg, err := LoadFrom(viper.New(), writeConfig(t, "{}\n"))
	require.NoError(t, err)
	assert.Empty(t, cfg.Store.Postgres.URL)
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
app:
  port: 9090
store:
  driver: mongo
  mongo:
    uri: mongodb://localhost:27017
redis:
  address: localhost:6379
  cache_ttl: 1h
mail:
  host: smtp.example.com
  to: sales@example.com
`)

	cfg, err := LoadFrom(viper.New(), path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.App.Addr())
	assert.Equal(t, StoreDriverMongo, cfg.Store.Driver)
	assert.Equal(t, "mongodb://localhost:27017", cfg.Store.Mongo.URI)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, time.Hour, cfg.Redis.CacheTTL)
	assert.True(t, cfg.Mail.Enabled())
	assert.False(t, cfg.RabbitMQ.Enabled())
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/leads")
	t.Setenv("ELEVENLABS_WEBHOOK_SECRET", "whsec")
	t.Setenv("GENAI_MODEL", "gpt-4o-mini")

	cfg, err := LoadFrom(viper.New(), writeConfig(t, "{}\n"))
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost/leads", cfg.Store.Postgres.URL)
	assert.Equal(t, "whsec", cfg.Webhook.Secret)
	assert.Equal(t, "gpt-4o-mini", cfg.GenAI.Model)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			App:      AppConfig{Port: 8080},
			Store:    StoreConfig{Driver: StoreDriverPostgres},
			GenAI:    GenAIConfig{Timeout: time.Second},
			Chat:     ChatConfig{RateLimit: 1, RateWindow: time.Second},
			Mail:     MailConfig{ScoreThreshold: 70},
			Backfill: BackfillConfig{Interval: time.Minute, Grace: time.Minute, MaxAge: time.Hour},
		}
	}

	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"unknown driver", func(c *Config) { c.Store.Driver = "sqlite" }},
		{"port out of range", func(c *Config) { c.App.Port = 70000 }},
		{"zero genai timeout", func(c *Config) { c.GenAI.Timeout = 0 }},
		{"zero rate limit", func(c *Config) { c.Chat.RateLimit = 0 }},
		{"threshold above 100", func(c *Config) { c.Mail.ScoreThreshold = 101 }},
		{"backfill max age below grace", func(c *Config) { c.Backfill.MaxAge = time.Second }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}
