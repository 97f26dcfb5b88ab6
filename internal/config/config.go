package config

import (
	"fmt"
	"time"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMongo    = "mongo"
)

// Config is the application configuration shared by the api and worker binaries.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Store    StoreConfig    `mapstructure:"store"`
	GenAI    GenAIConfig    `mapstructure:"genai"`
	RabbitMQ RabbitMQConfig `mapstructure:"rabbitmq"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Webhook  WebhookConfig  `mapstructure:"webhook"`
	Chat     ChatConfig     `mapstructure:"chat"`
	Mail     MailConfig     `mapstructure:"mail"`
	Backfill BackfillConfig `mapstructure:"backfill"`
}

type AppConfig struct {
	Name           string   `mapstructure:"name"`
	Environment    string   `mapstructure:"environment"`
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type StoreConfig struct {
	Driver   string         `mapstructure:"driver"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	Mongo    MongoConfig    `mapstructure:"mongo"`
}

type PostgresConfig struct {
	URL          string `mapstructure:"url"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
}

type MongoConfig struct {
	URI        string `mapstructure:"uri"`
	Database   string `mapstructure:"database"`
	Collection string `mapstructure:"collection"`
}

type GenAIConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type RabbitMQConfig struct {
	URL string `mapstructure:"url"`
}

func (r RabbitMQConfig) Enabled() bool { return r.URL != "" }

type RedisConfig struct {
	Address  string        `mapstructure:"address"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

func (r RedisConfig) Enabled() bool { return r.Address != "" }

type WebhookConfig struct {
	// Secret enables ElevenLabs signature verification when set.
	Secret string `mapstructure:"secret"`
}

type ChatConfig struct {
	RateLimit  int           `mapstructure:"rate_limit"`
	RateWindow time.Duration `mapstructure:"rate_window"`
}

type MailConfig struct {
	Host           string  `mapstructure:"host"`
	Port           int     `mapstructure:"port"`
	User           string  `mapstructure:"user"`
	Password       string  `mapstructure:"password"`
	From           string  `mapstructure:"from"`
	To             string  `mapstructure:"to"`
	ScoreThreshold float64 `mapstructure:"score_threshold"`
}

func (m MailConfig) Enabled() bool { return m.Host != "" && m.To != "" }

// BackfillConfig drives the worker's re-announcement of unenriched leads.
// A zero interval disables it.
type BackfillConfig struct {
	Interval time.Duration `mapstructure:"interval"`
	Grace    time.Duration `mapstructure:"grace"`
	MaxAge   time.Duration `mapstructure:"max_age"`
}

func (b BackfillConfig) Enabled() bool { return b.Interval > 0 }

// Addr is the listen address for the HTTP server.
func (a AppConfig) Addr() string {
	return fmt.Sprintf(":%d", a.Port)
}
