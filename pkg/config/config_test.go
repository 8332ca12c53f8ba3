package config_test

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/invoice-builder/pkg/config"
)

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := config.FromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
	assert.Equal(t, config.DraftStoreMemory, cfg.Draft.Store)
	assert.Equal(t, "SAR", cfg.Invoice.DefaultCurrency)
	assert.Equal(t, "15", cfg.Invoice.DefaultTaxRate)
	assert.Equal(t, 5*time.Second, cfg.Invoice.EncodeTimeout)
	assert.Equal(t, 4, cfg.DB.MaxConns)
}

func TestFromViper_Overrides(t *testing.T) {
	v := viper.New()
	v.Set("HTTP_PORT", "9090")
	v.Set("DRAFT_STORE", "Redis")
	v.Set("INVOICE_ENCODE_TIMEOUT", "250ms")
	v.Set("DRAFT_TTL", "3600")
	v.Set("INVOICE_DEFAULT_CURRENCY", "usd")
	v.Set("DB_MAX_CONNS", "12")

	cfg, err := config.FromViper(v)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, config.DraftStoreRedis, cfg.Draft.Store)
	assert.Equal(t, 250*time.Millisecond, cfg.Invoice.EncodeTimeout)
	assert.Equal(t, time.Hour, cfg.Draft.TTL)
	assert.Equal(t, "USD", cfg.Invoice.DefaultCurrency)
	assert.Equal(t, 12, cfg.DB.MaxConns)
}

func TestFromViper_StoreInvalido(t *testing.T) {
	v := viper.New()
	v.Set("DRAFT_STORE", "localstorage")
	_, err := config.FromViper(v)
	assert.Error(t, err)
}

func TestDBConfig_DSN(t *testing.T) {
	c := config.DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss", DBName: "inv", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss@db:5432/inv?sslmode=disable", c.DSN())

	c.DatabaseURL = "postgres://x"
	assert.Equal(t, "postgres://x", c.ConnectionString())
}

func TestFromViper_QRSizeInvalido(t *testing.T) {
	v := viper.New()
	v.Set("INVOICE_QR_SIZE", "0")
	_, err := config.FromViper(v)
	assert.Error(t, err)
}
