package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// envAliases binds config keys to the environment variable names used by
// existing deployments, in addition to the derived KEY_PATH form.
var envAliases = map[string][]string{
	"store.postgres.url": {"DATABASE_URL"},
	"store.mongo.uri":    {"MONGODB_URI"},
	"genai.api_key":      {"OPENAI_API_KEY", "GEMINI_API_KEY"},
	"genai.base_url":     {"OPENAI_ENDPOINT"},
	"webhook.secret":     {"ELEVENLABS_WEBHOOK_SECRET"},
	"rabbitmq.url":       {"RABBITMQ_URL"},
	"redis.address":      {"REDIS_ADDR"},
	"redis.password":     {"REDIS_PASSWORD"},
	"mail.host":          {"MAIL_HOST"},
	"mail.user":          {"MAIL_USER"},
	"mail.password":      {"MAIL_PASS"},
	"app.port":           {"PORT"},
	"logging.level":      {"LOG_LEVEL"},
}

// Load reads .env, an optional config.yaml and the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return LoadFrom(viper.New(), "")
}

// LoadFrom loads configuration into v. When path is empty config.yaml is
// searched in ./configs and the working directory.
func LoadFrom(v *viper.Viper, path string) (*Config, error) {
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	for key, aliases := range envAliases {
		names := append([]string{strings.ToUpper(strings.NewReplacer(".", "_").Replace(key))}, aliases...)
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "voyage-leads")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.port", 8080)
	v.SetDefault("app.allowed_origins", []string{"http://localhost:3000"})

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("store.driver", StoreDriverPostgres)
	v.SetDefault("store.postgres.max_open_conns", 10)
	v.SetDefault("store.postgres.max_idle_conns", 5)
	v.SetDefault("store.mongo.database", "voyage")
	v.SetDefault("store.mongo.collection", "leads")

	v.SetDefault("genai.base_url", "https://generativelanguage.googleapis.com/v1beta/openai/")
	v.SetDefault("genai.model", "gemini-2.5-flash")
	v.SetDefault("genai.timeout", 30*time.Second)

	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.cache_ttl", 24*time.Hour)

	v.SetDefault("chat.rate_limit", 10)
	v.SetDefault("chat.rate_window", time.Minute)

	v.SetDefault("mail.port", 587)
	v.SetDefault("mail.from", "leads@classyvoyage.com")
	v.SetDefault("mail.score_threshold", 70.0)

	v.SetDefault("backfill.interval", 15*time.Minute)
	v.SetDefault("backfill.grace", 10*time.Minute)
	v.SetDefault("backfill.max_age", 24*time.Hour)
}

func (c *Config) Validate() error {
	switch c.Store.Driver {
	case StoreDriverPostgres, StoreDriverMongo:
	default:
		return fmt.Errorf("store.driver must be %q or %q, got %q", StoreDriverPostgres, StoreDriverMongo, c.Store.Driver)
	}
	if c.App.Port <= 0 || c.App.Port > 65535 {
		return fmt.Errorf("app.port out of range: %d", c.App.Port)
	}
	if c.GenAI.Timeout <= 0 {
		return fmt.Errorf("genai.timeout must be positive")
	}
	if c.Chat.RateLimit <= 0 || c.Chat.RateWindow <= 0 {
		return fmt.Errorf("chat rate limit and window must be positive")
	}
	if c.Mail.ScoreThreshold < 0 || c.Mail.ScoreThreshold > 100 {
		return fmt.Errorf("mail.score_threshold must be within 0..100")
	}
	if c.Backfill.Enabled() && (c.Backfill.Grace < 0 || c.Backfill.MaxAge <= c.Backfill.Grace) {
		return fmt.Errorf("backfill.max_age must exceed backfill.grace")
	}
	return nil
}
