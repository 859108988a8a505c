// Package config предоставляет структуры и функцию для парсинга и загрузки конфига
package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек
type Config struct {
	Env                     string `yaml:"env"`
	StorageConnectionString string `yaml:"storage_connection_string"`
	BackendBaseURL          string `yaml:"backend_base_url"`
	RedisConnection         `yaml:"redis_connection"`
	HTTPServer              `yaml:"http_server"`
	JWTToken                `yaml:"jwttoken"`
	SMTP                    `yaml:"smtp"`
	Rabbit                  `yaml:"rabbit"`
	Billing                 `yaml:"billing"`
	Social                  `yaml:"social"`
	Upload                  `yaml:"upload"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp"`
	IdleTimeout time.Duration `yaml:"idle_timeout"`
}

// RedisConnection структура для настройки подключения к redis
type RedisConnection struct {
	Addr        string        `yaml:"addr"`
	Password    string        `yaml:"password"`
	User        string        `yaml:"user"`
	DB          int           `yaml:"db"`
	MaxRetries  int           `yaml:"max_retries"`
	DialTimeout time.Duration `yaml:"dial_timeout"`
	Timeout     time.Duration `yaml:"timeout"`
}

// JWTToken структура для работы с jwt-токеном
type JWTToken struct {
	JWTSecretKey  string        `yaml:"jwt_secret_key" env:"JWT_SECRET_KEY"`
	TokenTTL      time.Duration `yaml:"token_ttl"`
	EmailTokenTTL time.Duration `yaml:"email_token_ttl"`
}

// SMTP структура для настройки SMTP-транспорта исходящих писем
type SMTP struct {
	SMTPHost  string `yaml:"smtp_host"`
	SMTPPort  string `yaml:"smtp_port"`
	SMTPUser  string `yaml:"smtp_user" env:"SMTP_EMAIL"`
	SMTPPass  string `yaml:"smtp_pass" env:"SMTP_PASSWORD"`
	FromEmail string `yaml:"from_email"`
}

// Rabbit структура для настройки подключения к RabbitMQ
type Rabbit struct {
	RabbitURL      string        `yaml:"rabbit_url"`
	ConnectRetries int           `yaml:"connect_retries"`
	ConnectDelay   time.Duration `yaml:"connect_delay"`
}

// Billing структура с настройками платежного шлюза.
//
// Значения, пришедшие из переменных окружения, могут быть случайно обёрнуты
// в кавычки (copy-paste из .env), перед использованием они очищаются в Normalize.
type Billing struct {
	StripeSecretKey string `yaml:"stripe_secret_key" env:"STRIPE_SECRET_KEY"`
	BasicPriceID    string `yaml:"basic_price_id" env:"STRIPE_BASIC_PRICE_ID"`
	PremiumPriceID  string `yaml:"premium_price_id" env:"STRIPE_PREMIUM_PRICE_ID"`
	WebhookSecret   string `yaml:"webhook_secret" env:"STRIPE_WEBHOOK_SECRET"`
	FrontendURL     string `yaml:"frontend_url"`
}

// Social структура с реквизитами провайдеров социального входа
type Social struct {
	GoogleClientID    string `yaml:"google_client_id" env:"GOOGLE_CLIENT_ID"`
	FacebookAppID     string `yaml:"facebook_app_id" env:"FACEBOOK_APP_ID"`
	FacebookAppSecret string `yaml:"facebook_app_secret" env:"FACEBOOK_APP_SECRET"`
}

// Upload структура с настройками загрузки файлов
type Upload struct {
	UploadDir     string `yaml:"upload_dir"`
	MaxUploadSize int64  `yaml:"max_upload_size"`
}

// MustLoad функция для загрузки конфига, завершает процесс при любой ошибке.
// Отсутствие секретного ключа Stripe фатально, отсутствие webhook-секрета —
// только предупреждение: проверка подписи webhook будет всегда падать.
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("file: %s - does not exist", configPath)
	}
	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	cfg.Billing.Normalize()
	if cfg.Billing.StripeSecretKey == "" {
		log.Fatal("stripe secret key is not set")
	}
	if cfg.Billing.WebhookSecret == "" {
		log.Print("WARNING: stripe webhook secret is not set, webhook validation will fail")
	}
	return &cfg
}

// Normalize очищает реквизиты шлюза от случайных кавычек
func (b *Billing) Normalize() {
	b.StripeSecretKey = trimQuotes(b.StripeSecretKey)
	b.BasicPriceID = trimQuotes(b.BasicPriceID)
	b.PremiumPriceID = trimQuotes(b.PremiumPriceID)
	b.WebhookSecret = trimQuotes(b.WebhookSecret)
	b.FrontendURL = trimQuotes(b.FrontendURL)
}

func trimQuotes(val string) string {
	return strings.Trim(val, `'"`)
}
