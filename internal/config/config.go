package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Gateway   GatewayConfig
	Checkout  CheckoutConfig
	Kafka     KafkaConfig
	Telegram  TelegramConfig
	Telemetry TelemetryConfig
}

type ServerConfig struct {
	Port    int
	Env     string // "development", "production"
	SiteURL string // prefix for result page redirects; empty keeps them relative
}

type DatabaseConfig struct {
	Driver  string // "mysql" or "postgres"
	Host    string
	Port    string
	Name    string
	User    string
	Pass    string
	Charset string
}

type RedisConfig struct {
	Addr     string
	Pass     string
	DB       int
	DedupTTL time.Duration
}

// GatewayConfig holds the payment gateway credentials. The public key is
// handed to browsers; the secret key and webhook hash never leave the server.
type GatewayConfig struct {
	PublicKey  string
	SecretKey  string
	SecretHash string
	BaseURL    string
	Timeout    time.Duration
}

// Configured reports whether both API keys are present.
func (g GatewayConfig) Configured() bool {
	return g.PublicKey != "" && g.SecretKey != ""
}

type CheckoutConfig struct {
	Currency       string
	PaymentOptions string
	Source         string
	Title          string
	ScriptURL      string
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

type TelegramConfig struct {
	Token  string
	ChatID int64
}

type TelemetryConfig struct {
	ServiceName  string
	OTLPEndpoint string
}

// Load reads configuration from .env file and environment variables.
func Load() (*Config, error) {
	// Load .env file (ignore error if missing)
	_ = godotenv.Load()

	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("APP_PORT", 8080)
	viper.SetDefault("APP_ENV", "production")
	viper.SetDefault("DB_DRIVER", "mysql")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "3306")
	viper.SetDefault("DB_CHARSET", "utf8mb4")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("WEBHOOK_DEDUP_TTL", "24h")
	viper.SetDefault("FLW_BASE_URL", "https://api.flutterwave.com")
	viper.SetDefault("FLW_CHECKOUT_SCRIPT", "https://checkout.flutterwave.com/v3.js")
	viper.SetDefault("GATEWAY_TIMEOUT", "15s")
	viper.SetDefault("PAYMENT_CURRENCY", "NGN")
	viper.SetDefault("PAYMENT_OPTIONS", "card,banktransfer,ussd")
	viper.SetDefault("PAYMENT_SOURCE", "storefront")
	viper.SetDefault("PAYMENT_TITLE", "Store checkout")
	viper.SetDefault("KAFKA_TOPIC", "payment.outcome")
	viper.SetDefault("OTEL_SERVICE_NAME", "storepay")

	dedupTTL, err := time.ParseDuration(viper.GetString("WEBHOOK_DEDUP_TTL"))
	if err != nil {
		dedupTTL = 24 * time.Hour
	}
	gatewayTimeout, err := time.ParseDuration(viper.GetString("GATEWAY_TIMEOUT"))
	if err != nil {
		gatewayTimeout = 15 * time.Second
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:    viper.GetInt("APP_PORT"),
			Env:     viper.GetString("APP_ENV"),
			SiteURL: strings.TrimRight(viper.GetString("SITE_URL"), "/"),
		},
		Database: DatabaseConfig{
			Driver:  viper.GetString("DB_DRIVER"),
			Host:    viper.GetString("DB_HOST"),
			Port:    viper.GetString("DB_PORT"),
			Name:    viper.GetString("DB_NAME"),
			User:    viper.GetString("DB_USER"),
			Pass:    viper.GetString("DB_PASS"),
			Charset: viper.GetString("DB_CHARSET"),
		},
		Redis: RedisConfig{
			Addr:     viper.GetString("REDIS_ADDR"),
			Pass:     viper.GetString("REDIS_PASS"),
			DB:       viper.GetInt("REDIS_DB"),
			DedupTTL: dedupTTL,
		},
		Gateway: GatewayConfig{
			PublicKey:  strings.TrimSpace(viper.GetString("FLW_PUBLIC_KEY")),
			SecretKey:  strings.TrimSpace(viper.GetString("FLW_SECRET_KEY")),
			SecretHash: viper.GetString("FLW_SECRET_HASH"),
			BaseURL:    strings.TrimRight(viper.GetString("FLW_BASE_URL"), "/"),
			Timeout:    gatewayTimeout,
		},
		Checkout: CheckoutConfig{
			Currency:       strings.ToUpper(viper.GetString("PAYMENT_CURRENCY")),
			PaymentOptions: viper.GetString("PAYMENT_OPTIONS"),
			Source:         viper.GetString("PAYMENT_SOURCE"),
			Title:          viper.GetString("PAYMENT_TITLE"),
			ScriptURL:      viper.GetString("FLW_CHECKOUT_SCRIPT"),
		},
		Kafka: KafkaConfig{
			Brokers: splitList(viper.GetString("KAFKA_BROKERS")),
			Topic:   viper.GetString("KAFKA_TOPIC"),
		},
		Telegram: TelegramConfig{
			Token:  viper.GetString("TELEGRAM_BOT_TOKEN"),
			ChatID: viper.GetInt64("TELEGRAM_CHAT_ID"),
		},
		Telemetry: TelemetryConfig{
			ServiceName:  viper.GetString("OTEL_SERVICE_NAME"),
			OTLPEndpoint: viper.GetString("OTEL_EXPORTER_OTLP_ENDPOINT"),
		},
	}

	if !cfg.Gateway.Configured() {
		log.Println("WARNING: FLW_PUBLIC_KEY or FLW_SECRET_KEY is not set, checkout is disabled")
	}
	if cfg.Database.Name == "" {
		log.Println("WARNING: DB_NAME is not set")
	}

	return cfg, nil
}

// DSN returns the driver-specific DSN string for GORM.
func (d *DatabaseConfig) DSN() string {
	if d.Driver == "postgres" {
		return "host=" + d.Host + " port=" + d.Port + " user=" + d.User + " password=" + d.Pass + " dbname=" + d.Name + " sslmode=disable"
	}
	return d.User + ":" + d.Pass + "@tcp(" + d.Host + ":" + d.Port + ")/" + d.Name + "?charset=" + d.Charset + "&parseTime=True&loc=Local"
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

// LoadDatabaseOnly reads just the database settings, for --bootstrap-db.
func LoadDatabaseOnly() (*DatabaseConfig, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}
	return &cfg.Database, nil
}
