package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	// Server
	Port string `mapstructure:"PORT"`
	Env  string `mapstructure:"ENV"`

	// Prophet API
	APIBaseURL   string        `mapstructure:"API_BASE_URL"`
	APITimeout   time.Duration `mapstructure:"API_TIMEOUT"`
	APIRateLimit float64       `mapstructure:"API_RATE_LIMIT"`

	// Redis
	RedisURL string        `mapstructure:"REDIS_URL"`
	CacheTTL time.Duration `mapstructure:"CACHE_TTL"`

	// Site output
	OutputDir string `mapstructure:"OUTPUT_DIR"`
	AssetsDir string `mapstructure:"ASSETS_DIR"`

	// Report
	StartingBankroll  float64 `mapstructure:"STARTING_BANKROLL"`
	DefaultTotalWeeks int     `mapstructure:"DEFAULT_TOTAL_WEEKS"`
	SourceScale       string  `mapstructure:"SOURCE_SCALE"` // "percent" or "fraction"

	// Preview server
	RebuildInterval time.Duration `mapstructure:"REBUILD_INTERVAL"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("API_BASE_URL", "http://localhost:5195")
	viper.SetDefault("API_TIMEOUT", "10s")
	viper.SetDefault("API_RATE_LIMIT", 5) // requests per second
	viper.SetDefault("REDIS_URL", "")     // empty disables the response cache
	viper.SetDefault("CACHE_TTL", "15m")
	viper.SetDefault("OUTPUT_DIR", "./public")
	viper.SetDefault("ASSETS_DIR", "./web/static")
	viper.SetDefault("STARTING_BANKROLL", 10000)
	viper.SetDefault("DEFAULT_TOTAL_WEEKS", 18)
	viper.SetDefault("SOURCE_SCALE", "percent")
	viper.SetDefault("REBUILD_INTERVAL", "0s") // 0 disables scheduled rebuilds

	// Read from environment
	viper.AutomaticEnv()

	// Read config file if exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	return &config, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
