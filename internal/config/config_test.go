package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("FLW_PUBLIC_KEY", "")
	t.Setenv("FLW_SECRET_KEY", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "NGN", cfg.Checkout.Currency)
	assert.Equal(t, "card,banktransfer,ussd", cfg.Checkout.PaymentOptions)
	assert.Equal(t, "storefront", cfg.Checkout.Source)
	assert.Equal(t, 15*time.Second, cfg.Gateway.Timeout)
	assert.Equal(t, 24*time.Hour, cfg.Redis.DedupTTL)
	assert.Equal(t, "payment.outcome", cfg.Kafka.Topic)
	assert.False(t, cfg.Gateway.Configured())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("SITE_URL", "https://shop.example.com/")
	t.Setenv("FLW_PUBLIC_KEY", " FLWPUBK_TEST ")
	t.Setenv("FLW_SECRET_KEY", "FLWSECK_TEST")
	t.Setenv("FLW_SECRET_HASH", "hash")
	t.Setenv("PAYMENT_CURRENCY", "ghs")
	t.Setenv("GATEWAY_TIMEOUT", "3s")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("TELEGRAM_CHAT_ID", "-1001234")
	t.Setenv("DB_DRIVER", "postgres")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "https://shop.example.com", cfg.Server.SiteURL)
	assert.Equal(t, "FLWPUBK_TEST", cfg.Gateway.PublicKey)
	assert.True(t, cfg.Gateway.Configured())
	assert.Equal(t, "GHS", cfg.Checkout.Currency)
	assert.Equal(t, 3*time.Second, cfg.Gateway.Timeout)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, int64(-1001234), cfg.Telegram.ChatID)
	assert.Contains(t, cfg.Database.DSN(), "dbname=")
}

func TestDSN(t *testing.T) {
	mysql := DatabaseConfig{Driver: "mysql", Host: "db", Port: "3306", Name: "shop", User: "u", Pass: "p", Charset: "utf8mb4"}
	assert.Equal(t, "u:p@tcp(db:3306)/shop?charset=utf8mb4&parseTime=True&loc=Local", mysql.DSN())

	_, err := NewDatabase(&DatabaseConfig{Driver: "sqlite"})
	assert.Error(t, err)
}
