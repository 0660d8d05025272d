package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yungbote/storefront-backend/internal/data/cache"
	"github.com/yungbote/storefront-backend/internal/data/db"
	domainagg "github.com/yungbote/storefront-backend/internal/domain/aggregates"
	"github.com/yungbote/storefront-backend/internal/observability"
	"github.com/yungbote/storefront-backend/internal/platform/logger"
)

type App struct {
	Log        *logger.Logger
	DB         *gorm.DB
	Router     *gin.Engine
	Cfg        Config
	Repos      Repos
	Services   Services
	Aggregates Aggregates
	CartCache  cache.CartCache
	Metrics    *observability.Metrics
	cancel     context.CancelFunc
}

func New() (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)

	pg, err := db.NewService(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init postgres: %w", err)
	}
	if err := pg.AutoMigrateAll(); err != nil {
		log.Sync()
		return nil, fmt.Errorf("postgres automigrate: %w", err)
	}
	theDB := pg.DB()

	metrics := observability.Init(log)

	var cartCache cache.CartCache = cache.NoopCartCache{}
	if cfg.RedisAddr != "" {
		cartCache, err = cache.NewCartCache(log, metrics, cfg.RedisAddr, cfg.CartCacheTTL)
		if err != nil {
			log.Sync()
			return nil, fmt.Errorf("init cart cache: %w", err)
		}
	}

	reposet := wireRepos(theDB, log)
	serviceset := wireServices(log)
	aggregateset := wireAggregates(theDB, log, metrics, reposet, serviceset)
	handlerset := wireHandlers(log, aggregateset, cartCache)
	middlewareset := wireMiddleware(log, cfg)
	router := wireRouter(cfg, handlerset, middlewareset, metrics)

	return &App{
		Log:        log,
		DB:         theDB,
		Router:     router,
		Cfg:        cfg,
		Repos:      reposet,
		Services:   serviceset,
		Aggregates: aggregateset,
		CartCache:  cartCache,
		Metrics:    metrics,
	}, nil
}

func (a *App) Start() {
	if a == nil || a.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	a.Metrics.StartPostgresCollector(ctx, a.Log, a.DB)
	a.Metrics.StartRedisCollector(ctx, a.Log, a.Cfg.RedisAddr)

	// In-process renewal loop; disabled when the interval is zero so the
	// standalone renewals cmd can own the schedule instead.
	if a.Cfg.RenewalInterval > 0 {
		go a.runRenewalLoop(ctx)
	}
}

func (a *App) runRenewalLoop(ctx context.Context) {
	ticker := time.NewTicker(a.Cfg.RenewalInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			start := time.Now()
			result, err := a.Aggregates.Subscription.ProcessDueRenewals(ctx, domainagg.ProcessRenewalsInput{
				Limit: a.Cfg.RenewalLimit,
			})
			if err != nil {
				a.Log.Error("renewal batch failed", "error", err)
				continue
			}
			a.Metrics.ObserveRenewalBatch(result.Processed, result.Renewed, result.Failed, time.Since(start))
			if result.Processed > 0 {
				a.Log.Info("renewal batch complete",
					"processed", result.Processed,
					"renewed", result.Renewed,
					"failed", result.Failed,
				)
			}
		}
	}
}

func (a *App) Run(addr string) error {
	if a == nil || a.Router == nil {
		return fmt.Errorf("app not initialized")
	}
	return a.Router.Run(addr)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.CartCache != nil {
		_ = a.CartCache.Close()
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
