package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/badno/shopcsv/internal/schema"
)

const (
	DefaultConfigDir  = ".shopcsv"
	DefaultConfigFile = "config.yaml"
)

// Config represents the application configuration
type Config struct {
	Schema   SchemaConfig   `yaml:"schema"`
	Outputs  OutputsConfig  `yaml:"outputs"`
	Database DatabaseConfig `yaml:"database,omitempty"`
	Images   ImagesConfig   `yaml:"images,omitempty"`
}

// SchemaConfig holds the classifier detection settings
type SchemaConfig struct {
	DetectMarketPricing  bool     `yaml:"detect_market_pricing"`
	DetectGoogleShopping bool     `yaml:"detect_google_shopping"`
	DetectVariantFields  bool     `yaml:"detect_variant_fields"`
	CustomPatterns       []string `yaml:"custom_patterns,omitempty"`
}

// Options compiles the schema settings into classifier options
func (s SchemaConfig) Options() (schema.Options, error) {
	opts := schema.Options{
		DetectMarketPricing:  s.DetectMarketPricing,
		DetectGoogleShopping: s.DetectGoogleShopping,
		DetectVariantFields:  s.DetectVariantFields,
	}
	for _, p := range s.CustomPatterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return opts, fmt.Errorf("invalid custom pattern %q: %w", p, err)
		}
		opts.CustomPatterns = append(opts.CustomPatterns, re)
	}
	return opts, nil
}

// OutputsConfig contains configuration for all output adapters
type OutputsConfig struct {
	File       FileOutputConfig `yaml:"file"`
	ClickHouse ClickHouseConfig `yaml:"clickhouse"`
}

// FileOutputConfig holds file output settings
type FileOutputConfig struct {
	OutputDir string `yaml:"output_dir"`
	Pretty    bool   `yaml:"pretty"`
}

// ClickHouseConfig holds ClickHouse settings
type ClickHouseConfig struct {
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	Database    string `yaml:"database"`
	UsernameEnv string `yaml:"username_env"`
	PasswordEnv string `yaml:"password_env"`
	Table       string `yaml:"table"`
	Secure      bool   `yaml:"secure"`
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Postgres PostgresConfig `yaml:"postgres"`
}

// PostgresConfig holds PostgreSQL settings
type PostgresConfig struct {
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	Database    string `yaml:"database"`
	UsernameEnv string `yaml:"username_env"`
	PasswordEnv string `yaml:"password_env"`
	SSLMode     string `yaml:"ssl_mode"`
}

// ImagesConfig holds image fetching settings
type ImagesConfig struct {
	OutputDir string `yaml:"output_dir"`
	Sizes     []int  `yaml:"sizes,omitempty"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Schema: SchemaConfig{
			DetectMarketPricing:  true,
			DetectGoogleShopping: true,
			DetectVariantFields:  true,
		},
		Outputs: OutputsConfig{
			File: FileOutputConfig{
				OutputDir: "./output",
				Pretty:    true,
			},
			ClickHouse: ClickHouseConfig{
				Host:        "localhost",
				Port:        9000,
				Database:    "shopcsv",
				UsernameEnv: "CLICKHOUSE_USERNAME",
				PasswordEnv: "CLICKHOUSE_PASSWORD",
				Table:       "market_prices",
			},
		},
		Database: DatabaseConfig{
			Postgres: PostgresConfig{
				Host:        "localhost",
				Port:        5432,
				Database:    "shopcsv",
				UsernameEnv: "POSTGRES_USER",
				PasswordEnv: "POSTGRES_PASSWORD",
				SSLMode:     "prefer",
			},
		},
		Images: ImagesConfig{
			OutputDir: "./output/images",
			Sizes:     []int{200, 800},
		},
	}
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(home, DefaultConfigDir, DefaultConfigFile), nil
}

// Load reads the configuration from the config file
func Load() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	return LoadFrom(configPath)
}

// LoadFrom reads the configuration from a specific path
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Return default config if file doesn't exist
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&config)

	return &config, nil
}

// Save writes the configuration to the config file
func Save(config *Config) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	return SaveTo(config, configPath)
}

// SaveTo writes the configuration to a specific path
func SaveTo(config *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Init creates a new config file with defaults
func Init() error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config file already exists: %s", configPath)
	}

	return Save(DefaultConfig())
}

// Exists checks if the config file exists
func Exists() bool {
	configPath, err := GetConfigPath()
	if err != nil {
		return false
	}

	_, err = os.Stat(configPath)
	return err == nil
}

// applyDefaults fills in missing values with defaults
func applyDefaults(config *Config) {
	defaults := DefaultConfig()

	if config.Outputs.File.OutputDir == "" {
		config.Outputs.File.OutputDir = defaults.Outputs.File.OutputDir
	}
	if config.Outputs.ClickHouse.Port == 0 {
		config.Outputs.ClickHouse.Port = defaults.Outputs.ClickHouse.Port
	}
	if config.Outputs.ClickHouse.Table == "" {
		config.Outputs.ClickHouse.Table = defaults.Outputs.ClickHouse.Table
	}
	if config.Database.Postgres.Port == 0 {
		config.Database.Postgres.Port = defaults.Database.Postgres.Port
	}
	if config.Database.Postgres.SSLMode == "" {
		config.Database.Postgres.SSLMode = defaults.Database.Postgres.SSLMode
	}
	if config.Images.OutputDir == "" {
		config.Images.OutputDir = defaults.Images.OutputDir
	}
	if len(config.Images.Sizes) == 0 {
		config.Images.Sizes = defaults.Images.Sizes
	}
}

// Set updates a specific config value
func Set(key, value string) error {
	config, err := Load()
	if err != nil {
		return err
	}

	switch key {
	case "schema.detect_market_pricing":
		config.Schema.DetectMarketPricing = value == "true"
	case "schema.detect_google_shopping":
		config.Schema.DetectGoogleShopping = value == "true"
	case "schema.detect_variant_fields":
		config.Schema.DetectVariantFields = value == "true"
	case "outputs.file.output_dir":
		config.Outputs.File.OutputDir = value
	case "outputs.clickhouse.host":
		config.Outputs.ClickHouse.Host = value
	case "outputs.clickhouse.database":
		config.Outputs.ClickHouse.Database = value
	case "outputs.clickhouse.table":
		config.Outputs.ClickHouse.Table = value
	case "database.postgres.host":
		config.Database.Postgres.Host = value
	case "database.postgres.database":
		config.Database.Postgres.Database = value
	case "database.postgres.username_env":
		config.Database.Postgres.UsernameEnv = value
	case "database.postgres.password_env":
		config.Database.Postgres.PasswordEnv = value
	case "images.output_dir":
		config.Images.OutputDir = value
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}

	return Save(config)
}

// Get retrieves a specific config value
func Get(key string) (string, error) {
	config, err := Load()
	if err != nil {
		return "", err
	}

	switch key {
	case "schema.detect_market_pricing":
		return fmt.Sprintf("%t", config.Schema.DetectMarketPricing), nil
	case "schema.detect_google_shopping":
		return fmt.Sprintf("%t", config.Schema.DetectGoogleShopping), nil
	case "schema.detect_variant_fields":
		return fmt.Sprintf("%t", config.Schema.DetectVariantFields), nil
	case "outputs.file.output_dir":
		return config.Outputs.File.OutputDir, nil
	case "outputs.clickhouse.host":
		return config.Outputs.ClickHouse.Host, nil
	case "outputs.clickhouse.database":
		return config.Outputs.ClickHouse.Database, nil
	case "outputs.clickhouse.table":
		return config.Outputs.ClickHouse.Table, nil
	case "database.postgres.host":
		return config.Database.Postgres.Host, nil
	case "database.postgres.database":
		return config.Database.Postgres.Database, nil
	case "database.postgres.username_env":
		return config.Database.Postgres.UsernameEnv, nil
	case "database.postgres.password_env":
		return config.Database.Postgres.PasswordEnv, nil
	case "images.output_dir":
		return config.Images.OutputDir, nil
	default:
		return "", fmt.Errorf("unknown config key: %s", key)
	}
}
