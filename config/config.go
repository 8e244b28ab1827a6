package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/Web3vDev/SolanaRacer/logging"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Environment      string                 `mapstructure:"environment"`
	Server           ServerConfig           `mapstructure:"server"`
	Redis            RedisConfig            `mapstructure:"redis"`
	Kafka            KafkaConfig            `mapstructure:"kafka"`
	JWT              JWTConfig              `mapstructure:"jwt"`
	Logging          logging.Config         `mapstructure:"logging"`
	ExternalServices ExternalServicesConfig `mapstructure:"external_services"`
	Game             GameConfig             `mapstructure:"game"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	EnableCORS   bool          `mapstructure:"enable_cors"`
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr         string `mapstructure:"addr"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	DB           int    `mapstructure:"db"`
	PoolSize     int    `mapstructure:"pool_size"`
	MinIdleConns int    `mapstructure:"min_idle_conns"`
}

// KafkaConfig holds Kafka configuration
type KafkaConfig struct {
	Brokers       []string          `mapstructure:"brokers"`
	ConsumerGroup string            `mapstructure:"consumer_group"`
	Topics        map[string]string `mapstructure:"topics"`
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	Expiration time.Duration `mapstructure:"expiration"`
}

// ExternalServicesConfig holds external service configurations
type ExternalServicesConfig struct {
	IdentityService ServiceConfig `mapstructure:"identity_service"`
	ProfileService  ServiceConfig `mapstructure:"profile_service"`
	PriceService    ServiceConfig `mapstructure:"price_service"`
	AuditService    ServiceConfig `mapstructure:"audit_service"`
}

// ServiceConfig holds external service configuration
type ServiceConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// GameConfig holds race gameplay timing and tuning parameters
type GameConfig struct {
	RoundWindow        time.Duration `mapstructure:"round_window"`
	ResultDisplayDelay time.Duration `mapstructure:"result_display_delay"`
	SyncDebounce       time.Duration `mapstructure:"sync_debounce"`
	BootstrapTimeout   time.Duration `mapstructure:"bootstrap_timeout"`
	BaseRegenInterval  time.Duration `mapstructure:"base_regen_interval"`
	PriceRefresh       time.Duration `mapstructure:"price_refresh"`
	PriceTick          time.Duration `mapstructure:"price_tick"`
	LeaderboardRefresh time.Duration `mapstructure:"leaderboard_refresh"`
	SessionIdleTTL     time.Duration `mapstructure:"session_idle_ttl"`
}

// Load loads configuration from YAML file using Viper
func Load(filename string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(filename)
	v.SetConfigType("yaml")

	// Enable environment variable substitution
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", filename, err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Set defaults
	config.setDefaults()

	return &config, nil
}

// LoadByEnv loads configuration based on environment using Viper
func LoadByEnv(configDir string) (*Config, error) {
	v := viper.New()

	// Set config search paths
	v.AddConfigPath(configDir)
	v.AddConfigPath(".")

	// Get environment
	env := viper.GetString("ENV")
	if env == "" {
		env = viper.GetString("APP_ENV")
	}
	if env == "" {
		env = "development"
	}

	v.SetConfigName(fmt.Sprintf("config-%s", env))
	v.SetConfigType("yaml")

	// Enable environment variable substitution
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.setDefaults()

	return &config, nil
}

// setDefaults sets default values for missing configuration
func (c *Config) setDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 30 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 30 * time.Second
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 60 * time.Second
	}
	if c.Redis.PoolSize == 0 {
		c.Redis.PoolSize = 10
	}
	if c.Redis.MinIdleConns == 0 {
		c.Redis.MinIdleConns = 5
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "stdout"
	}
	// Service defaults
	if c.ExternalServices.IdentityService.Timeout == 0 {
		c.ExternalServices.IdentityService.Timeout = 10 * time.Second
	}
	if c.ExternalServices.ProfileService.Timeout == 0 {
		c.ExternalServices.ProfileService.Timeout = 10 * time.Second
	}
	if c.ExternalServices.PriceService.Timeout == 0 {
		c.ExternalServices.PriceService.Timeout = 10 * time.Second
	}
	if c.ExternalServices.AuditService.Timeout == 0 {
		c.ExternalServices.AuditService.Timeout = 10 * time.Second
	}
	// Gameplay defaults
	if c.Game.RoundWindow == 0 {
		c.Game.RoundWindow = 4 * time.Second
	}
	if c.Game.ResultDisplayDelay == 0 {
		c.Game.ResultDisplayDelay = 1500 * time.Millisecond
	}
	if c.Game.SyncDebounce == 0 {
		c.Game.SyncDebounce = 2 * time.Second
	}
	if c.Game.BootstrapTimeout == 0 {
		c.Game.BootstrapTimeout = 2 * time.Second
	}
	if c.Game.BaseRegenInterval == 0 {
		c.Game.BaseRegenInterval = 10 * time.Minute
	}
	if c.Game.PriceRefresh == 0 {
		c.Game.PriceRefresh = 30 * time.Second
	}
	if c.Game.PriceTick == 0 {
		c.Game.PriceTick = 2 * time.Second
	}
	if c.Game.LeaderboardRefresh == 0 {
		c.Game.LeaderboardRefresh = 30 * time.Second
	}
	if c.Game.SessionIdleTTL == 0 {
		c.Game.SessionIdleTTL = 30 * time.Minute
	}
}

// GetAddr returns Redis address
func (c *RedisConfig) GetAddr() string {
	return c.Addr
}

// IsDevelopment returns true if environment is development
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development" || c.Environment == "dev"
}

// IsProduction returns true if environment is production
func (c *Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}
