package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Binance   BinanceConfig   `mapstructure:"binance"`
	CMC       CMCConfig       `mapstructure:"cmc"`
	Broadcast BroadcastConfig `mapstructure:"broadcast"`
	Logger    LoggerConfig    `mapstructure:"logger"`
}

type AppConfig struct {
	Port string `mapstructure:"port"`
	Env  string `mapstructure:"env"` // e.g., "local", "prod"
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type BinanceConfig struct {
	WSURL string `mapstructure:"ws_url"`
}

// CMCConfig configures the reference-data provider. An empty APIKey disables
// the metadata refresher without failing startup.
type CMCConfig struct {
	APIKey          string        `mapstructure:"api_key"`
	BaseURL         string        `mapstructure:"base_url"`
	Limit           int           `mapstructure:"limit"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
}

// BroadcastConfig controls the join/fan-out step. QuotePreference doubles as
// the set of quote suffixes stripped from trading pairs and, by list order,
// the preference ranking when one asset trades against several quotes.
type BroadcastConfig struct {
	Top             int      `mapstructure:"top"`
	QuotePreference []string `mapstructure:"quote_preference"`
}

type LoggerConfig struct {
	Level    string `mapstructure:"level"`    // debug, info, warn, error
	Encoding string `mapstructure:"encoding"` // json or console
}

// LoadConfig reads configuration from .env file, environment variables, and defaults.
func LoadConfig() (*Config, error) {
	v := viper.New()

	// 1. Load .env file into System Environment (if it exists)
	// This ensures variables like APP_PORT are available as real env vars
	if err := godotenv.Load(); err != nil {
		log.Println("Note: No .env file found, relying on System Env Vars")
	}

	// 2. Set Defaults (12-Factor App: Dev/Prod Parity)
	v.SetDefault("app.port", ":8080")
	v.SetDefault("app.env", "local")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("binance.ws_url", "wss://stream.binance.com:9443/ws/!ticker@arr")

	v.SetDefault("cmc.api_key", "")
	v.SetDefault("cmc.base_url", "https://pro-api.coinmarketcap.com")
	v.SetDefault("cmc.limit", 100)
	v.SetDefault("cmc.refresh_interval", 10*time.Minute)

	v.SetDefault("broadcast.top", 15)
	v.SetDefault("broadcast.quote_preference", []string{"USDT", "BUSD", "USDC"})

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.encoding", "json")

	// 3. Configure Viper to read Environment Variables
	// This maps dot-notation to underscores (e.g., "redis.addr" -> "REDIS_ADDR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 4. Explicitly Bind Env Vars to Keys
	// This is crucial for Viper to map flat Env Vars (APP_PORT) to nested structs (App.Port)
	bindEnv(v, "app.port", "app.env")
	bindEnv(v, "redis.addr", "redis.password", "redis.db")
	bindEnv(v, "binance.ws_url")
	bindEnv(v, "cmc.api_key", "cmc.base_url", "cmc.limit", "cmc.refresh_interval")
	bindEnv(v, "broadcast.top", "broadcast.quote_preference")
	bindEnv(v, "logger.level", "logger.encoding")

	// 5. Unmarshal into Struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %v", err)
	}

	// 6. Basic Validation
	if cfg.Broadcast.Top <= 0 {
		return nil, fmt.Errorf("broadcast.top must be positive, got %d", cfg.Broadcast.Top)
	}
	if len(cfg.Broadcast.QuotePreference) == 0 {
		return nil, fmt.Errorf("broadcast.quote_preference cannot be empty")
	}
	if cfg.CMC.RefreshInterval <= 0 {
		return nil, fmt.Errorf("cmc.refresh_interval must be positive")
	}

	return &cfg, nil
}

// bindEnv is a helper to bind multiple keys at once
func bindEnv(v *viper.Viper, keys ...string) {
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			log.Printf("Could not bind env var for key %s: %v", key, err)
		}
	}
}
