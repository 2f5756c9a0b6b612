package app

import (
	"fmt"

	"github.com/asakaida/unicatalog/internal/infrastructure/config"
	"github.com/asakaida/unicatalog/internal/infrastructure/database"
	"github.com/asakaida/unicatalog/internal/repositories/postgres"
	"github.com/asakaida/unicatalog/internal/retry"
	"github.com/asakaida/unicatalog/internal/services"
	"github.com/asakaida/unicatalog/internal/services/filter"
	"github.com/asakaida/unicatalog/pkg/cache"
	"github.com/asakaida/unicatalog/pkg/cache/memorycache"
	"go.uber.org/zap"
)

// App holds the wired catalog components shared by the binaries
type App struct {
	DB      *database.Postgres
	Cache   cache.Cache // nil when caching is disabled
	Catalog *services.CatalogService
}

// New connects to the database and wires repositories and services from cfg
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	descriptions, err := config.LoadDescriptions(cfg.Catalog.DescriptionsFile)
	if err != nil {
		return nil, err
	}

	var attrCache cache.Cache
	if cfg.Cache.Enabled {
		attrCache, err = memorycache.New(&memorycache.Config{
			MaxSizeBytes:  cfg.Cache.MaxMemoryBytes,
			DefaultTTL:    cfg.Cache.TTL(),
			EnableMetrics: cfg.Cache.Metrics,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create attribute cache: %w", err)
		}
	}

	engine, err := filter.NewEngine()
	if err != nil {
		return nil, err
	}

	pg, err := database.NewPostgres(&cfg.Database)
	if err != nil {
		return nil, err
	}

	logger.Info("connected to database",
		zap.String("user", cfg.Database.User),
		zap.String("host", cfg.Database.Host),
		zap.Int("port", cfg.Database.Port),
		zap.String("database", cfg.Database.Database),
	)

	attributeRepo := postgres.NewPostgresAttributeRepository(pg.DB, &postgres.AttributeRepositoryConfig{
		Descriptions: descriptions,
		Cache:        attrCache,
		CacheTTL:     cfg.Cache.TTL(),
	})
	entityRepo := postgres.NewPostgresEntityRepository(pg.DB, attributeRepo)

	retryCfg := retry.DefaultConfig()
	retryCfg.MaxAttempts = cfg.Retry.MaxAttempts
	retryCfg.InitialDelay = cfg.Retry.InitialDelay()

	catalog := services.NewCatalogService(entityRepo, attributeRepo, engine,
		services.WithRetry(retryCfg),
		services.WithLogger(logger.Named("catalog")),
	)

	return &App{DB: pg, Cache: attrCache, Catalog: catalog}, nil
}

// Close releases the database pool and the cache
func (a *App) Close() error {
	if a.Cache != nil {
		_ = a.Cache.Close()
	}
	return a.DB.Close()
}
