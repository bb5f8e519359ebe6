package container

import (
	"context"
	"fmt"
	"sync"

	config "gitlab.com/smartcabinet/cab.device_config/src/production/CAB.Config"
	"gitlab.com/smartcabinet/cab.device_config/src/production/CAB.ConfigService/health"
	logger "gitlab.com/smartcabinet/cab.device_config/src/production/CAB.Logger"
	implementation "gitlab.com/smartcabinet/cab.device_config/src/production/CAB.Repository/Implementation"
	interfaces "gitlab.com/smartcabinet/cab.device_config/src/production/CAB.Repository/Interfaces"
	"go.mongodb.org/mongo-driver/mongo"
)

// Container manages dependencies and their lifecycle
type Container struct {
	config *config.Config
	logger *logger.Logger

	mongoClient   *mongo.Client
	cabinetRepo   interfaces.CabinetRepository
	healthChecker *health.HealthChecker

	mu sync.Mutex

	cleanupFuncs []func() error
}

// NewContainer loads the device configuration and builds a container around it
func NewContainer(opts config.LoadOptions) (*Container, error) {
	cfg, err := config.Load(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	return NewContainerWithConfig(cfg, logger.NewLogger(cfg.Logging())), nil
}

// NewContainerWithConfig wraps an already built configuration
func NewContainerWithConfig(cfg *config.Config, log *logger.Logger) *Container {
	log = log.WithCabinet(cfg.CabinetID())

	if placeholders := cfg.Placeholders(); len(placeholders) > 0 {
		log.Logger.Warn().Strs("fields", placeholders).Msg("Configuration still holds placeholder values")
	}

	c := &Container{
		config: cfg,
		logger: log,
	}
	c.registerCleanup()
	return c
}

// GetConfig returns the configuration
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetLogger returns the logger
func (c *Container) GetLogger() *logger.Logger {
	return c.logger
}

// GetCabinetRepository returns the fleet registry, connecting to MongoDB on
// first use. Without MONGODB_URI the registry lives in memory.
func (c *Container) GetCabinetRepository(ctx context.Context) (interfaces.CabinetRepository, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cabinetRepo != nil {
		return c.cabinetRepo, nil
	}

	registry := c.config.Registry()
	if registry.URI == "" {
		c.logger.Info("MONGODB_URI not set, using in-memory cabinet registry")
		c.cabinetRepo = implementation.NewMemoryCabinetRepository()
		return c.cabinetRepo, nil
	}

	client, err := implementation.ConnectMongoWithTimeout(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to registry: %w", err)
	}

	repo, err := implementation.NewMongoCabinetRepository(ctx, implementation.CabinetCollection(client, registry))
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	c.mongoClient = client
	c.cabinetRepo = repo
	c.logger.WithField("database", registry.Database).WithField("collection", registry.Collection).
		Info("Connected to MongoDB cabinet registry")
	return c.cabinetRepo, nil
}

// GetHealthChecker returns the health checker. The registry is resolved
// first so readiness reflects the real backend.
func (c *Container) GetHealthChecker(ctx context.Context) (*health.HealthChecker, error) {
	if _, err := c.GetCabinetRepository(ctx); err != nil {
		return nil, fmt.Errorf("failed to get registry for health checker: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.healthChecker == nil {
		c.healthChecker = health.NewHealthChecker(c.config, c.mongoClient)
	}
	return c.healthChecker, nil
}

// Shutdown gracefully shuts down the container and all its dependencies
func (c *Container) Shutdown(ctx context.Context) error {
	c.logger.Info("Shutting down container...")

	c.mu.Lock()
	funcs := c.cleanupFuncs
	c.cleanupFuncs = nil
	c.mu.Unlock()

	// Reverse registration order
	for i := len(funcs) - 1; i >= 0; i-- {
		if err := funcs[i](); err != nil {
			c.logger.ErrorWithError(err, "Error during cleanup")
		}
	}

	c.logger.Info("Container shutdown complete")
	return c.logger.Close()
}

func (c *Container) registerCleanup() {
	c.cleanupFuncs = append(c.cleanupFuncs, func() error {
		c.mu.Lock()
		client := c.mongoClient
		c.mongoClient = nil
		c.mu.Unlock()

		if client == nil {
			return nil
		}
		return client.Disconnect(context.Background())
	})
}

// AddCleanupFunc adds a cleanup function
func (c *Container) AddCleanupFunc(fn func() error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cleanupFuncs = append(c.cleanupFuncs, fn)
}
