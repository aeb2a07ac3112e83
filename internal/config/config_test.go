package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, BackendMemory, cfg.CartBackend)
	assert.Equal(t, BackendMemory, cfg.HistoryBackend)
	assert.Equal(t, 7*24*time.Hour, cfg.DeliveryLead)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSOrigins)

	rules, err := cfg.PricingRules()
	require.NoError(t, err)
	assert.Equal(t, int64(2000), rules.FreeShippingThreshold)
	assert.Equal(t, int64(100), rules.DomesticShipping)
	assert.Equal(t, int64(500), rules.InternationalShipping)
	assert.Equal(t, "0.18", rules.TaxRate.String())
	assert.Equal(t, "India", rules.DomesticCountry)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("CART_BACKEND", "Redis")
	t.Setenv("HISTORY_BACKEND", "postgres")
	t.Setenv("TAX_RATE", "0.05")
	t.Setenv("FREE_SHIPPING_THRESHOLD", "5000")
	t.Setenv("DELIVERY_LEAD_DAYS", "3")
	t.Setenv("CORS_ORIGINS", "https://dots.example, https://admin.dots.example ,")

	cfg, err := load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, BackendRedis, cfg.CartBackend)
	assert.Equal(t, BackendPostgres, cfg.HistoryBackend)
	assert.Equal(t, 3*24*time.Hour, cfg.DeliveryLead)
	assert.Equal(t, []string{"https://dots.example", "https://admin.dots.example"}, cfg.CORSOrigins)

	rules, err := cfg.PricingRules()
	require.NoError(t, err)
	assert.Equal(t, int64(5000), rules.FreeShippingThreshold)
	assert.Equal(t, "0.05", rules.TaxRate.String())
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"CART_BACKEND":       "mongo",
		"TAX_RATE":           "eighteen",
		"DELIVERY_LEAD_DAYS": "0",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := load(viper.New())
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}
