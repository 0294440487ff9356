package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromMissingFile(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	// defaults apply
	assert.True(t, cfg.Schema.DetectMarketPricing)
	assert.Equal(t, "./output", cfg.Outputs.File.OutputDir)
	assert.Equal(t, 9000, cfg.Outputs.ClickHouse.Port)
	assert.Equal(t, "market_prices", cfg.Outputs.ClickHouse.Table)
	assert.Equal(t, 5432, cfg.Database.Postgres.Port)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := DefaultConfig()
	cfg.Outputs.File.OutputDir = "./exports"
	cfg.Schema.CustomPatterns = []string{"^ERP "}
	require.NoError(t, SaveTo(cfg, path))

	back, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "./exports", back.Outputs.File.OutputDir)
	assert.Equal(t, []string{"^ERP "}, back.Schema.CustomPatterns)
}

func TestLoadFromAppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	partial := `schema:
  detect_market_pricing: false
`
	require.NoError(t, os.WriteFile(path, []byte(partial), 0644))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.False(t, cfg.Schema.DetectMarketPricing)
	assert.Equal(t, "./output", cfg.Outputs.File.OutputDir, "missing sections fall back")
	assert.Equal(t, []int{200, 800}, cfg.Images.Sizes)
}

func TestLoadFromRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(":\n  - ["), 0644))

	_, err := LoadFrom(path)
	assert.Error(t, err)
}

func TestSchemaConfigOptions(t *testing.T) {
	t.Run("compiles custom patterns", func(t *testing.T) {
		sc := SchemaConfig{
			DetectVariantFields: true,
			CustomPatterns:      []string{"^ERP ", "Internal$"},
		}
		opts, err := sc.Options()
		require.NoError(t, err)
		assert.True(t, opts.DetectVariantFields)
		require.Len(t, opts.CustomPatterns, 2)
		assert.True(t, opts.CustomPatterns[0].MatchString("ERP Sync Key"))
	})

	t.Run("invalid pattern fails", func(t *testing.T) {
		sc := SchemaConfig{CustomPatterns: []string{"("}}
		_, err := sc.Options()
		assert.Error(t, err)
	})
}
