package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	App      AppConfig      `mapstructure:"app"`
	Cashfree CashfreeConfig `mapstructure:"cashfree"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug, release, test
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns the Redis address string.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// AppConfig holds host-application settings used to build public URLs
// (invoice pages, the return/notify callbacks embedded in gateway orders).
type AppConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

// CashfreeConfig holds gateway credentials for both modes plus feature
// toggles. The live pair is used in production; the test pair whenever
// test_mode is on.
type CashfreeConfig struct {
	AppID             string `mapstructure:"app_id"`
	SecretKey         string `mapstructure:"secret_key"`
	TestAppID         string `mapstructure:"test_app_id"`
	TestSecretKey     string `mapstructure:"test_secret_key"`
	TestMode          bool   `mapstructure:"test_mode"`
	EnableCartDetails bool   `mapstructure:"enable_cart_details"`
	APIVersion        string `mapstructure:"api_version"`
	BaseURL           string `mapstructure:"base_url"`
	SandboxBaseURL    string `mapstructure:"sandbox_base_url"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Pretty bool   `mapstructure:"pretty"` // human-readable output (dev only)
}

// Load reads configuration from file and environment variables.
// Environment variables override file values. Prefix: CFC_ (Cashfree Checkout).
// Nested keys use underscore: CFC_DATABASE_HOST, CFC_CASHFREE_SECRET_KEY, etc.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "cashfree_checkout")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("app.base_url", "http://localhost:8080")
	v.SetDefault("cashfree.app_id", "")
	v.SetDefault("cashfree.secret_key", "")
	v.SetDefault("cashfree.test_app_id", "")
	v.SetDefault("cashfree.test_secret_key", "")
	v.SetDefault("cashfree.test_mode", false)
	v.SetDefault("cashfree.enable_cart_details", false)
	v.SetDefault("cashfree.api_version", "2025-01-01")
	v.SetDefault("cashfree.base_url", "https://api.cashfree.com/pg")
	v.SetDefault("cashfree.sandbox_base_url", "https://sandbox.cashfree.com/pg")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	// File config
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables: CFC_CASHFREE_TEST_MODE -> cashfree.test_mode
	v.SetEnvPrefix("CFC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (not required, env vars can suffice)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}
