// Package config описывает настройки бота и загружает их из .env, YAML и переменных окружения
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Допустимые хранилища диалоговых сессий.
const (
	SessionBackendMemory = "memory"
	SessionBackendRedis  = "redis"
)

// EnvLocal — окружение локальной разработки.
const EnvLocal = "local"

// Config общая структура для хранения настроек
type Config struct {
	Env                     string        `yaml:"env" env:"ENV" env-default:"local"`
	BotToken                string        `yaml:"bot_token" env:"BOT_TOKEN"`
	StorageConnectionString string        `yaml:"storage_connection_string" env:"DB_URL"`
	MigrationsPath          string        `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"./migrations"`
	OrderLifetime           time.Duration `yaml:"order_lifetime" env:"ORDER_LIFETIME" env-default:"48h"`
	AdminID                 int64         `yaml:"admin_id" env:"ADMIN_ID"`
	Group                   `yaml:"group"`
	GoogleSheets            `yaml:"google_sheets"`
	Notify                  `yaml:"notify"`
	Telegram                `yaml:"telegram"`
	Session                 `yaml:"session"`
	RedisConnection         `yaml:"redis_connection"`
	RabbitMQ                `yaml:"rabbitmq"`
	HTTPServer              `yaml:"http_server"`
	RateLimit               `yaml:"bot"`
}

// Group настройки общей группы и её веток (топиков)
type Group struct {
	GroupID           int64 `yaml:"id" env:"NETWORKING_GROUP_ID"`
	NetworkingTopicID int   `yaml:"networking_topic_id" env:"NETWORKING_TOPIC_ID"`
	OrdersTopicID     int   `yaml:"orders_topic_id" env:"ORDERS_TOPIC_ID"`
}

// GoogleSheets настройки зеркала в Google Таблицах. Пустой SpreadsheetID отключает зеркало.
type GoogleSheets struct {
	CredentialsPath string `yaml:"credentials_path" env:"GOOGLE_CREDS_JSON" env-default:"credentials.json"`
	SpreadsheetID   string `yaml:"spreadsheet_id" env:"GOOGLE_SHEET_ID"`
	UsersSheet      string `yaml:"users_sheet" env:"GOOGLE_USERS_SHEET" env-default:"Пользователи"`
	OrdersSheet     string `yaml:"orders_sheet" env:"GOOGLE_ORDERS_SHEET" env-default:"Заказы"`
}

// Notify настройки рассылки уведомлений после сохранения данных
type Notify struct {
	NotifyTimeout time.Duration `yaml:"timeout" env:"NOTIFY_TIMEOUT" env-default:"10s"`
}

// Telegram настройки клиента Bot API
type Telegram struct {
	TelegramTimeout time.Duration `yaml:"timeout" env:"TELEGRAM_TIMEOUT" env-default:"30s"`
	PollTimeout     int           `yaml:"poll_timeout" env:"TELEGRAM_POLL_TIMEOUT" env-default:"60"`
	Debug           bool          `yaml:"debug" env:"TELEGRAM_DEBUG"`
}

// Session настройки хранения состояний диалогов
type Session struct {
	SessionBackend string        `yaml:"backend" env:"SESSION_BACKEND" env-default:"memory"`
	SessionTTL     time.Duration `yaml:"ttl" env:"SESSION_TTL" env-default:"24h"`
}

// RedisConnection структура для настройки подключения к redis
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis" env:"REDIS_ADDR"`
	Password     string        `yaml:"password" env:"REDIS_PASSWORD"`
	User         string        `yaml:"user" env:"REDIS_USER"`
	DB           int           `yaml:"db" env:"REDIS_DB"`
	MaxRetries   int           `yaml:"max_retries" env:"REDIS_MAX_RETRIES"`
	DialTimeout  time.Duration `yaml:"dial_timeout" env:"REDIS_DIAL_TIMEOUT"`
	TimeoutRedis time.Duration `yaml:"timeoutredis" env:"REDIS_TIMEOUT"`
}

// RabbitMQ настройки публикации событий. Пустой URL отключает публикацию.
type RabbitMQ struct {
	RabbitMQURL        string        `yaml:"url" env:"RABBITMQ_URL"`
	RabbitMQMaxRetries int           `yaml:"max_retries" env:"RABBITMQ_MAX_RETRIES" env-default:"5"`
	RabbitMQRetryDelay time.Duration `yaml:"retry_delay" env:"RABBITMQ_RETRY_DELAY" env-default:"2s"`
}

// HTTPServer структура для настройки сервера метрик и healthcheck
type HTTPServer struct {
	AddressHTTP string        `yaml:"address" env:"HTTP_ADDRESS" env-default:":8080"`
	TimeoutHTTP time.Duration `yaml:"timeout" env:"HTTP_TIMEOUT" env-default:"5s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
}

// RateLimit ограничение частоты входящих событий от одного пользователя
type RateLimit struct {
	RatePerSecond float64 `yaml:"rate_per_second" env:"BOT_RATE" env-default:"2"`
	Burst         int     `yaml:"burst" env:"BOT_BURST" env-default:"5"`
}

// Load читает .env‑файлы, затем YAML из CONFIG_PATH (если задан) и переменные окружения.
// Переменные окружения имеют приоритет над файлом.
func Load() (*Config, error) {
	loadDotEnvs()

	var cfg Config
	if configPath := os.Getenv("CONFIG_PATH"); configPath != "" {
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("file: %s - does not exist", configPath)
		}
		if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
			return nil, fmt.Errorf("cannot read config: %w", err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("cannot read env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// MustLoad функция для загрузки конфига, завершает процесс при ошибке
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("cannot load config: %s", err)
	}
	return cfg
}

// Validate проверяет обязательные настройки.
func (c *Config) Validate() error {
	var errs []error
	if c.BotToken == "" {
		errs = append(errs, errors.New("bot_token (BOT_TOKEN) is required"))
	}
	if c.StorageConnectionString == "" {
		errs = append(errs, errors.New("storage_connection_string (DB_URL) is required"))
	}
	if c.OrderLifetime <= 0 {
		errs = append(errs, errors.New("order_lifetime must be positive"))
	}
	switch c.SessionBackend {
	case SessionBackendMemory:
	case SessionBackendRedis:
		if c.AddressRedis == "" {
			errs = append(errs, errors.New("redis_connection.addressredis is required for redis session backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown session backend %q", c.SessionBackend))
	}
	if c.RatePerSecond <= 0 || c.Burst <= 0 {
		errs = append(errs, errors.New("rate_limit values must be positive"))
	}
	return errors.Join(errs...)
}

// SheetsEnabled сообщает, настроено ли зеркало в Google Таблицах.
func (c *Config) SheetsEnabled() bool {
	return c.SpreadsheetID != ""
}

// EventsEnabled сообщает, настроена ли публикация событий в RabbitMQ.
func (c *Config) EventsEnabled() bool {
	return c.RabbitMQURL != ""
}

// loadDotEnvs подгружает .env‑файлы: .env.<env>.local, .env.local, .env.<env>, .env.
// godotenv не перезаписывает уже заданные переменные, поэтому первый файл важнее.
func loadDotEnvs() {
	env := os.Getenv("ENV")
	if env == "" {
		env = EnvLocal
	}
	for _, name := range []string{".env." + env + ".local", ".env.local", ".env." + env, ".env"} {
		_ = godotenv.Load(name)
	}
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"BotToken: %s\n"+
			"MigrationsPath: %s\n"+
			"OrderLifetime: %s\n"+
			"AdminID: %d\n"+
			"Group: id=%d networking_topic=%d orders_topic=%d\n"+
			"GoogleSheets: spreadsheet=%q users=%q orders=%q\n"+
			"NotifyTimeout: %s\n"+
			"Session: %s ttl=%s\n"+
			"Redis: %s db=%d\n"+
			"RabbitMQ enabled: %t\n"+
			"HTTPServer: %s\n",
		c.Env,
		mask(c.BotToken),
		c.MigrationsPath,
		c.OrderLifetime,
		c.AdminID,
		c.GroupID, c.NetworkingTopicID, c.OrdersTopicID,
		c.SpreadsheetID, c.UsersSheet, c.OrdersSheet,
		c.NotifyTimeout,
		c.SessionBackend, c.SessionTTL,
		c.AddressRedis, c.DB,
		c.EventsEnabled(),
		c.AddressHTTP,
	)
}

func mask(secret string) string {
	if len(secret) <= 4 {
		return "****"
	}
	return secret[:4] + "****"
}
