package wire

import (
	"github.com/Web3vDev/SolanaRacer/config"
	"github.com/Web3vDev/SolanaRacer/db/redis"
	"github.com/Web3vDev/SolanaRacer/events/kafka"
	"github.com/Web3vDev/SolanaRacer/logging"
	"github.com/Web3vDev/SolanaRacer/pkg/leaderboard"
	"github.com/Web3vDev/SolanaRacer/pkg/pricefeed"
	"github.com/Web3vDev/SolanaRacer/pkg/providers"
	"github.com/Web3vDev/SolanaRacer/provider"
	"github.com/Web3vDev/SolanaRacer/server"
	"github.com/google/wire"
	"github.com/rs/zerolog"
)

// ProvideLogger provides a zerolog.Logger
func ProvideLogger(cfg *config.Config) zerolog.Logger {
	return logging.New(cfg.Logging)
}

// ProvideRedisClient provides a Redis client
func ProvideRedisClient(cfg *config.Config) (*redis.Client, error) {
	return redis.New(cfg.Redis)
}

// ProvideKafkaProducer provides a Kafka producer. Returns nil when no
// brokers are configured, which the audit provider treats as a no-op sink.
func ProvideKafkaProducer(cfg *config.Config) (*kafka.Producer, error) {
	return kafka.NewProducer(cfg.Kafka.Brokers)
}

// ProvideIdentityProvider provides the identity service client
func ProvideIdentityProvider(cfg *config.Config, logger zerolog.Logger) providers.IdentityProvider {
	return provider.NewIdentityProvider(cfg, logger)
}

// ProvideProfileStore provides the profile store client
func ProvideProfileStore(cfg *config.Config, logger zerolog.Logger) providers.ProfileStore {
	return provider.NewProfileProvider(cfg, logger)
}

// ProvideAuditLogger provides the audit log client
func ProvideAuditLogger(cfg *config.Config, producer *kafka.Producer, logger zerolog.Logger) providers.AuditLogger {
	return provider.NewAuditProvider(cfg, producer, logger)
}

// ProvidePriceSource provides the price feed source
func ProvidePriceSource(cfg *config.Config, logger zerolog.Logger) pricefeed.PriceSource {
	return provider.NewPriceProvider(cfg, logger)
}

// ProvideServerOptions provides server options
func ProvideServerOptions(
	cfg *config.Config,
	logger zerolog.Logger,
	store providers.ProfileStore,
	identity providers.IdentityProvider,
	audit providers.AuditLogger,
	cache *redis.Client,
	source pricefeed.PriceSource,
) server.Options {
	return server.Options{
		Config:      cfg,
		Logger:      logger,
		Store:       store,
		Identity:    identity,
		Audit:       audit,
		Cache:       cache,
		PriceSource: source,
	}
}

// ProvideApp provides the main application
func ProvideApp(opts server.Options) *server.App {
	return server.New(opts)
}

// ConfigSet is the wire provider set for configuration
var ConfigSet = wire.NewSet(
	config.Load,
)

// LoggingSet is the wire provider set for logging
var LoggingSet = wire.NewSet(
	ProvideLogger,
)

// RedisSet is the wire provider set for Redis
var RedisSet = wire.NewSet(
	ProvideRedisClient,
)

// KafkaSet is the wire provider set for Kafka
var KafkaSet = wire.NewSet(
	ProvideKafkaProducer,
)

// ProviderSet is the wire provider set for external service clients
var ProviderSet = wire.NewSet(
	ProvideIdentityProvider,
	ProvideProfileStore,
	ProvideAuditLogger,
	ProvidePriceSource,
)

// ServerSet is the wire provider set for server
var ServerSet = wire.NewSet(
	ProvideServerOptions,
	ProvideApp,
)

// DefaultSet is the default wire provider set including all common providers
var DefaultSet = wire.NewSet(
	LoggingSet,
	ServerSet,
)

// FullSet includes all providers including Redis, Kafka, and service clients
var FullSet = wire.NewSet(
	DefaultSet,
	RedisSet,
	KafkaSet,
	ProviderSet,
)

// leaderboard.Cache is satisfied by *redis.Client
var _ leaderboard.Cache = (*redis.Client)(nil)
