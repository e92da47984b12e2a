package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLoaderConfig(files ...string) aconfig.Config {
	return aconfig.Config{
		EnvPrefix: "STOREFRONT",
		SkipFlags: true,
		SkipFiles: len(files) == 0,
		Files:     files,
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	cfg, err := loadConfig(testLoaderConfig())
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Addr)
	assert.Empty(t, cfg.CatalogFile)
	assert.Equal(t, "0.05", cfg.TaxRateDecimal().String())
	assert.True(t, cfg.Orders.StrictStatus)
	assert.Equal(t, 64, cfg.Events.Buffer)
	assert.Equal(t, []string{"*"}, cfg.CORS.Origins)
	assert.Equal(t, 3*time.Second, cfg.Graceful.ReadinessDelay)
	assert.Equal(t, 15*time.Second, cfg.Graceful.ShutdownTimeout)
}

func TestLoadConfig_Env(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("STOREFRONT_TAX_RATE", "0.08")
	t.Setenv("STOREFRONT_ORDERS_STRICT_STATUS", "false")
	t.Setenv("STOREFRONT_EVENTS_BUFFER", "16")
	t.Setenv("STOREFRONT_CATALOG_FILE", "/data/menu.json.gz")

	cfg, err := loadConfig(testLoaderConfig())
	require.NoError(t, err)

	assert.Equal(t, "0.08", cfg.TaxRateDecimal().String())
	assert.False(t, cfg.Orders.StrictStatus)
	assert.Equal(t, 16, cfg.Events.Buffer)
	assert.Equal(t, "/data/menu.json.gz", cfg.CatalogFile)
}

func TestLoadConfig_YAML(t *testing.T) {
	t.Setenv("PORT", "")
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("addr: 127.0.0.1:9090\nrate_limit:\n  rps: 5\n  burst: 10\n"), 0o600))

	cfg, err := loadConfig(testLoaderConfig(path))
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9090", cfg.Addr)
	assert.Equal(t, 5.0, cfg.RateLimit.RPS)
	assert.Equal(t, 10, cfg.RateLimit.Burst)
}

func TestLoadConfig_PlatformPort(t *testing.T) {
	t.Setenv("PORT", "3000")
	cfg, err := loadConfig(testLoaderConfig())
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:3000", cfg.Addr)

	t.Setenv("STOREFRONT_ADDR", "127.0.0.1:8081")
	cfg, err = loadConfig(testLoaderConfig())
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8081", cfg.Addr, "explicit addr wins over PORT")
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Setenv("PORT", "")
	for name, env := range map[string][2]string{
		"TaxRateNotDecimal": {"STOREFRONT_TAX_RATE", "five percent"},
		"TaxRateNegative":   {"STOREFRONT_TAX_RATE", "-0.01"},
		"TaxRateTooLarge":   {"STOREFRONT_TAX_RATE", "1"},
		"EventsBuffer":      {"STOREFRONT_EVENTS_BUFFER", "0"},
		"RateLimit":         {"STOREFRONT_RATE_LIMIT_RPS", "0"},
	} {
		t.Run(name, func(t *testing.T) {
			t.Setenv(env[0], env[1])
			_, err := loadConfig(testLoaderConfig())
			require.Error(t, err)
		})
	}
}
