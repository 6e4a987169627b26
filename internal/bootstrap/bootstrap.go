package bootstrap

import (
	"context"
	"errors"

	"rates-engine/internal/application"
	"rates-engine/internal/config"
	"rates-engine/internal/domain"
	"rates-engine/internal/infrastructure/memcache"
	"rates-engine/internal/infrastructure/pg"
	"rates-engine/internal/infrastructure/provider"
	rediscache "rates-engine/internal/infrastructure/redis"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var ErrMissingDBURL = errors.New("DATABASE_URL is required")

// App bundles the wired service plus the pieces the binaries need.
type App struct {
	Service *application.Service
	Ping    func(ctx context.Context) error
	Cleanup func()
}

// Build wires config into the full engine: postgres store, cache backend,
// rate provider, resolver, refresher and the service facade.
func Build(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}
	fail := func(err error) (*App, error) {
		cleanup()
		return nil, err
	}

	if cfg.DatabaseURL == "" {
		return fail(ErrMissingDBURL)
	}
	db, err := pg.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fail(err)
	}
	cleanups = append(cleanups, func() {
		log.Info("closing pg")
		db.Close()
	})
	if err := pg.RunMigrations(ctx, db); err != nil {
		return fail(err)
	}

	cache, cacheCleanup := buildCache(cfg, log)
	if cacheCleanup != nil {
		cleanups = append(cleanups, cacheCleanup)
	}

	catalog := loadCatalog(ctx, db, log)

	resolver := application.NewResolver(cache, pg.NewRateRepo(db), buildProvider(cfg), cfg.CacheTTL,
		application.WithLogger(log))
	refresher := application.NewBatchRefresher(resolver, catalog.Codes(), log)
	svc := application.NewService(resolver, refresher, catalog)

	return &App{Service: svc, Ping: db.Ping, Cleanup: cleanup}, nil
}

func buildCache(cfg config.Config, log *zap.Logger) (application.RateCache, func()) {
	switch cfg.CacheBackend {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		return rediscache.New(client, log), func() { _ = client.Close() }
	case "memory":
		c, err := memcache.New(1 << 14)
		if err != nil {
			log.Warn("memory cache init failed; running cacheless", zap.Error(err))
			return application.NoopCache{}, nil
		}
		return c, c.Close
	default:
		return application.NoopCache{}, nil
	}
}

func buildProvider(cfg config.Config) application.RateProvider {
	if cfg.RatesAPIBase == "" {
		// Local dev without an API configured still answers queries.
		return provider.NewFake(devRates())
	}
	return provider.NewRatesAPIClient(cfg.RatesAPIBase, cfg.RatesAPITimeout)
}

func loadCatalog(ctx context.Context, db *pg.DB, log *zap.Logger) *domain.CurrencyCatalog {
	list, err := pg.NewCurrencyRepo(db).ListActive(ctx)
	if err != nil || len(list) == 0 {
		log.Warn("currencies table empty or unreadable; using built-in set", zap.Error(err))
		list = domain.DefaultCurrencies()
	}
	return domain.NewCurrencyCatalog(list)
}
