package container

import (
	"context"
	"fmt"

	"lunchvote/internal/config"
	"lunchvote/internal/repository"
	"lunchvote/internal/service"
	"lunchvote/pkg/database"
	"lunchvote/pkg/logger"
	"lunchvote/pkg/redis"
)

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *logger.Logger
	RedisClient *redis.Client
	Store       repository.PollStore
	Services    *service.Services

	postgres *database.PostgresDB
	sqlite   *database.SQLiteDB
}

// New opens the configured poll store, connects to Redis when configured,
// and wires the services.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Container, error) {
	c := &Container{Config: cfg, Logger: log}

	switch cfg.DatabaseDriver {
	case config.DriverSQLite:
		db, err := database.NewSQLiteDB(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		c.sqlite = db
		c.Store = repository.NewSQLitePollStore(db)
		log.WithField("path", cfg.SQLitePath).Info("Using SQLite poll store")

	default:
		opts := database.DefaultPoolOptions()
		opts.SimpleProtocol = cfg.SimpleProtocol

		db, err := database.NewPostgresDB(ctx, cfg.DatabaseURL, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if cfg.AutoMigrate {
			if err := db.EnsureSchema(ctx); err != nil {
				db.Close()
				return nil, err
			}
			log.Info("Database schema ensured")
		}
		c.postgres = db
		c.Store = repository.NewPostgresPollStore(db)
		log.Info("Using Postgres poll store")
	}

	c.RedisClient = connectRedis(cfg, log)
	c.wireServices()
	return c, nil
}

// NewWithStore builds a container around an existing store. Used by tests
// and tools that manage the store themselves.
func NewWithStore(cfg *config.Config, log *logger.Logger, store repository.PollStore, redisClient *redis.Client) *Container {
	c := &Container{
		Config:      cfg,
		Logger:      log,
		RedisClient: redisClient,
		Store:       store,
	}
	c.wireServices()
	return c
}

func connectRedis(cfg *config.Config, log *logger.Logger) *redis.Client {
	if cfg.RedisURL == "" {
		log.Info("Redis URL not configured, proceeding without voter marker cache")
		return nil
	}

	client, err := redis.NewClient(cfg.RedisURL, cfg.Environment, log.Logger)
	if err != nil {
		log.WithError(err).Warn("Failed to initialize Redis client, proceeding without voter marker cache")
		return nil
	}
	log.Info("Redis client initialized successfully")
	return client
}

func (c *Container) wireServices() {
	zl := c.Logger.Logger
	cache := service.NewCacheService(c.RedisClient, zl.Named("cache"))

	c.Services = &service.Services{
		Polls:  service.NewPollService(c.Store, cache, zl.Named("poll_lifecycle"), c.Config.StoreTimeout),
		Votes:  service.NewVotingService(c.Store, cache, zl.Named("vote_recorder"), c.Config.StoreTimeout),
		Tally:  service.NewTallyService(c.Store, zl.Named("tally"), c.Config.StoreTimeout),
		Health: service.NewHealthService(c.Store, cache),
	}
}

// GetLogger returns the logger
func (c *Container) GetLogger() *logger.Logger {
	return c.Logger
}

// GetConfig returns the configuration
func (c *Container) GetConfig() *config.Config {
	return c.Config
}

// GetRedisClient returns the Redis client (may be nil if not configured)
func (c *Container) GetRedisClient() *redis.Client {
	return c.RedisClient
}

// HasRedis returns true if Redis client is available
func (c *Container) HasRedis() bool {
	return c.RedisClient != nil
}

// PostgresDB returns the Postgres pool, or nil when another driver is used
func (c *Container) PostgresDB() *database.PostgresDB {
	return c.postgres
}

// SQLiteDB returns the SQLite handle, or nil when another driver is used
func (c *Container) SQLiteDB() *database.SQLiteDB {
	return c.sqlite
}
