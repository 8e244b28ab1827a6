package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Web3vDev/SolanaRacer/auth"
	"github.com/Web3vDev/SolanaRacer/config"
	"github.com/Web3vDev/SolanaRacer/game"
	"github.com/Web3vDev/SolanaRacer/middleware"
	"github.com/Web3vDev/SolanaRacer/pkg/leaderboard"
	"github.com/Web3vDev/SolanaRacer/pkg/pricefeed"
	"github.com/Web3vDev/SolanaRacer/pkg/providers"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// App represents the race service application
type App struct {
	engine      *gin.Engine
	config      *config.Config
	logger      zerolog.Logger
	deps        Deps
	httpServer  *http.Server
	onShutdown  []func()
	sessions    *SessionManager
	leaderboard *leaderboard.Service
	prices      *pricefeed.Service
	audit       providers.AuditLogger

	raceHandler        *RaceHandler
	leaderboardHandler *LeaderboardHandler
	streamHandler      *StreamHandler
}

// Options holds server construction options
type Options struct {
	Config      *config.Config
	Logger      zerolog.Logger
	Store       providers.ProfileStore
	Identity    providers.IdentityProvider
	Audit       providers.AuditLogger
	Cache       leaderboard.Cache
	PriceSource pricefeed.PriceSource
}

// Router is an alias for gin.Engine for convenience
type Router = gin.Engine

// New creates a new race service application
func New(opts Options) *App {
	// Configure decimal.Decimal to marshal as JSON number instead of string
	// WARNING: This may cause precision loss for decimals with many digits when
	// unmarshaled by clients using IEEE 754 double-precision (e.g., JavaScript)
	decimal.MarshalJSONWithoutQuotes = true

	// Set Gin mode
	if opts.Config.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	app := &App{
		engine: gin.New(),
		config: opts.Config,
		logger: opts.Logger,
		audit:  opts.Audit,
	}

	app.leaderboard = leaderboard.NewService(leaderboard.ServiceConfig{
		Logger:          opts.Logger,
		Store:           opts.Store,
		Cache:           opts.Cache,
		RefreshInterval: opts.Config.Game.LeaderboardRefresh,
	})

	app.prices = pricefeed.NewService(pricefeed.ServiceConfig{
		Logger:          opts.Logger,
		Source:          opts.PriceSource,
		RefreshInterval: opts.Config.Game.PriceRefresh,
		TickInterval:    opts.Config.Game.PriceTick,
	})

	app.deps = Deps{
		Logger:      opts.Logger,
		Config:      opts.Config,
		Store:       opts.Store,
		Identity:    opts.Identity,
		Audit:       opts.Audit,
		Leaderboard: app.leaderboard,
		Prices:      app.prices,
		RNG:         game.DefaultRNG(),
	}
	app.sessions = NewSessionManager(app.deps)

	app.raceHandler = NewRaceHandler(app)
	app.leaderboardHandler = NewLeaderboardHandler(app)
	app.streamHandler = NewStreamHandler(app)

	return app
}

// UseCommonMiddlewares adds common middlewares to the application
func (a *App) UseCommonMiddlewares() {
	// Recovery middleware (must be first)
	a.engine.Use(middleware.Recovery(a.logger))

	// Trace ID middleware
	a.engine.Use(middleware.TraceID())

	// Logging middleware
	a.engine.Use(middleware.Logging(a.logger))

	// CORS middleware if enabled
	if a.config.Server.EnableCORS {
		a.engine.Use(middleware.CORS())
	}
}

// UseMiddleware adds a custom middleware
func (a *App) UseMiddleware(m gin.HandlerFunc) {
	a.engine.Use(m)
}

// RegisterHealthCheck adds health check endpoints
func (a *App) RegisterHealthCheck() {
	a.engine.GET("/health", a.healthCheck)
	a.engine.GET("/api/health", a.healthCheck)
}

func (a *App) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":          "healthy",
		"timestamp":       time.Now(),
		"service":         a.config.Environment,
		"active_sessions": a.sessions.ActiveCount(),
	})
}

// RegisterRaceRoutes registers the race API routes
//
// Flow: HTTP Request -> raceRoutes -> handlers -> Session -> game engine
//
// Routes registered:
//   - POST /api/race/predict             -> RaceHandler.Predict
//   - GET  /api/race/round               -> RaceHandler.GetRound
//   - GET  /api/race/profile             -> RaceHandler.GetProfile
//   - GET  /api/race/catalog             -> RaceHandler.GetCatalog
//   - POST /api/race/shop/upgrades/{id}  -> RaceHandler.BuyUpgrade
//   - POST /api/race/shop/cars/{id}      -> RaceHandler.BuyCar
//   - POST /api/race/garage/equip/{id}   -> RaceHandler.EquipCar
//   - POST /api/race/items/{id}/use      -> RaceHandler.UseItem
//   - GET  /api/race/tasks               -> RaceHandler.ListTasks
//   - POST /api/race/tasks/{id}/complete -> RaceHandler.CompleteTask
//   - GET  /api/race/history             -> RaceHandler.GetHistory
//   - GET  /api/race/leaderboard         -> LeaderboardHandler.GetLeaderboard
//   - GET  /api/race/rank                -> LeaderboardHandler.GetRank
//   - GET  /api/race/stream              -> StreamHandler.StreamUpdates (SSE)
//   - GET  /api/race/stream/ws           -> StreamHandler.StreamUpdatesWebSocket
func (a *App) RegisterRaceRoutes() {
	race := a.engine.Group("/api/race")
	race.Use(auth.JWTMiddleware(a.config.JWT.Secret, a.logger))
	{
		race.POST("/predict", a.raceHandler.Predict)
		race.GET("/round", a.raceHandler.GetRound)
		race.GET("/profile", a.raceHandler.GetProfile)
		race.GET("/catalog", a.raceHandler.GetCatalog)

		race.POST("/shop/upgrades/:id", a.raceHandler.BuyUpgrade)
		race.POST("/shop/cars/:id", a.raceHandler.BuyCar)
		race.POST("/garage/equip/:id", a.raceHandler.EquipCar)
		race.POST("/items/:id/use", a.raceHandler.UseItem)

		race.GET("/tasks", a.raceHandler.ListTasks)
		race.POST("/tasks/:id/complete", a.raceHandler.CompleteTask)
		race.GET("/history", a.raceHandler.GetHistory)

		race.GET("/leaderboard", a.leaderboardHandler.GetLeaderboard)
		race.GET("/rank", a.leaderboardHandler.GetRank)

		race.GET("/stream", a.streamHandler.StreamUpdates)
		race.GET("/stream/ws", a.streamHandler.StreamUpdatesWebSocket)
	}

	a.logger.Info().Msg("Race routes registered: /api/race")
}

// Router returns the Gin engine for custom route registration
func (a *App) Router() *gin.Engine {
	return a.engine
}

// Group creates a route group
func (a *App) Group(path string, handlers ...gin.HandlerFunc) *gin.RouterGroup {
	return a.engine.Group(path, handlers...)
}

// AuthGroup creates a route group with JWT authentication
func (a *App) AuthGroup(path string) *gin.RouterGroup {
	return a.engine.Group(path, auth.JWTMiddleware(a.config.JWT.Secret, a.logger))
}

// Sessions returns the session manager
func (a *App) Sessions() *SessionManager {
	return a.sessions
}

// Leaderboard returns the standings service
func (a *App) Leaderboard() *leaderboard.Service {
	return a.leaderboard
}

// Prices returns the price feed service
func (a *App) Prices() *pricefeed.Service {
	return a.prices
}

// OnShutdown registers a function to be called on shutdown
func (a *App) OnShutdown(fn func()) {
	a.onShutdown = append(a.onShutdown, fn)
}

// Run starts the HTTP server and blocks until an interrupt signal
func (a *App) Run() error {
	addr := fmt.Sprintf(":%d", a.config.Server.Port)

	a.httpServer = &http.Server{
		Addr:         addr,
		Handler:      a.engine,
		ReadTimeout:  a.config.Server.ReadTimeout,
		WriteTimeout: a.config.Server.WriteTimeout,
		IdleTimeout:  a.config.Server.IdleTimeout,
	}

	go func() {
		a.logger.Info().
			Int("port", a.config.Server.Port).
			Str("environment", a.config.Environment).
			Msg("Starting HTTP server")

		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	return a.waitForShutdown()
}

// RunWithContext starts the HTTP server and stops with the context
func (a *App) RunWithContext(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", a.config.Server.Port)

	a.httpServer = &http.Server{
		Addr:         addr,
		Handler:      a.engine,
		ReadTimeout:  a.config.Server.ReadTimeout,
		WriteTimeout: a.config.Server.WriteTimeout,
		IdleTimeout:  a.config.Server.IdleTimeout,
	}

	errChan := make(chan error, 1)
	go func() {
		a.logger.Info().
			Int("port", a.config.Server.Port).
			Str("environment", a.config.Environment).
			Msg("Starting HTTP server")

		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		return a.shutdown()
	case err := <-errChan:
		return err
	}
}

func (a *App) waitForShutdown() error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	return a.shutdown()
}

func (a *App) shutdown() error {
	a.logger.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, fn := range a.onShutdown {
		fn()
	}

	// Closing sessions flushes pending profile updates
	a.sessions.Close()
	a.prices.Stop()
	a.leaderboard.Stop()

	if err := a.httpServer.Shutdown(ctx); err != nil {
		a.logger.Error().Err(err).Msg("Error during server shutdown")
		return err
	}

	a.logger.Info().Msg("Server shutdown complete")
	return nil
}

// Config returns the application configuration
func (a *App) Config() *config.Config {
	return a.config
}

// Logger returns the application logger
func (a *App) Logger() zerolog.Logger {
	return a.logger
}
