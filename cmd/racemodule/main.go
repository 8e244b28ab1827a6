package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"runtime/debug"

	"github.com/Web3vDev/SolanaRacer/config"
	"github.com/Web3vDev/SolanaRacer/db/redis"
	"github.com/Web3vDev/SolanaRacer/events/kafka"
	"github.com/Web3vDev/SolanaRacer/logging"
	"github.com/Web3vDev/SolanaRacer/provider"
	"github.com/Web3vDev/SolanaRacer/server"
	"github.com/spf13/cobra"

	"github.com/Web3vDev/SolanaRacer/docs" // Swagger docs for runtime host update
)

var (
	version   = getVersion()
	configDir = "config"
)

// getVersion returns the module version from build info
func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		if info.Main.Version != "" && info.Main.Version != "(devel)" {
			return info.Main.Version
		}
	}
	return "dev" // fallback for development
}

// @title           SOL Racer API
// @version         1.0
// @description     SOL price prediction race service API

// @host
// @BasePath  /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	rootCmd := &cobra.Command{
		Use:     "racemodule",
		Short:   "SOL Racer - price prediction race service",
		Version: version,
	}
	rootCmd.PersistentFlags().StringVarP(&configDir, "config", "c", "config", "Config directory")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the race service",
		RunE:  runServe,
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the service version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version)
		},
	}

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	// 1. Load config & logger
	cfg, err := config.LoadByEnv(configDir)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger := logging.New(cfg.Logging)

	// 2. Initialize dependencies
	redisClient, err := redis.New(cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	kafkaProducer, _ := kafka.NewProducer(cfg.Kafka.Brokers)

	// 3. Create app with providers
	app := server.New(server.Options{
		Config:      cfg,
		Logger:      logger,
		Store:       provider.NewProfileProvider(cfg, logger),
		Identity:    provider.NewIdentityProvider(cfg, logger),
		Audit:       provider.NewAuditProvider(cfg, kafkaProducer, logger),
		Cache:       redisClient,
		PriceSource: provider.NewPriceProvider(cfg, logger),
	})

	// 4. Setup routes & features
	app.UseCommonMiddlewares()
	app.RegisterHealthCheck()
	app.RegisterRaceRoutes()
	app.RegisterSwagger(server.SwaggerInfo{Title: "SOL Racer API", Version: "1.0"}, func(host string) {
		docs.SwaggerInfo.Host = host
	})

	// 5. Fold external points adjustments into the standings
	// (topic: points-updates or config override)
	if len(cfg.Kafka.Brokers) > 0 {
		topic := "points-updates"
		if cfg.Kafka.Topics != nil {
			if t, ok := cfg.Kafka.Topics["points_updates"]; ok {
				topic = t
			}
		}
		consumer := kafka.NewConsumer(kafka.ConsumerConfig{
			Brokers:       cfg.Kafka.Brokers,
			Topic:         topic,
			ConsumerGroup: cfg.Kafka.ConsumerGroup + "-points",
			Logger:        logger,
		}, kafka.NewPointsCache(logger))
		if err := consumer.Start(); err != nil {
			logger.Fatal().Err(err).Msg("Failed to start points Kafka consumer")
		}
		sub := consumer.SubscribeAll()
		go func() {
			for evt := range sub.Channel {
				app.Leaderboard().RecordPoints(context.Background(), evt.FID, evt.NewPoints)
			}
		}()
		app.OnShutdown(func() {
			consumer.Unsubscribe(sub)
			_ = consumer.Stop()
		})
	}

	// 6. Cleanup & run
	app.OnShutdown(func() {
		if kafkaProducer != nil {
			kafkaProducer.Close()
		}
		redisClient.Close()
	})

	logger.Info().Int("port", cfg.Server.Port).Msg("Starting SOL Racer service")
	if err := app.Run(); err != nil {
		logger.Fatal().Err(err).Msg("Server error")
	}
	return nil
}
