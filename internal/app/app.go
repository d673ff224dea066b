package app

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/GlebRadaev/marketsettle/internal/cache"
	"github.com/GlebRadaev/marketsettle/internal/config"
	"github.com/GlebRadaev/marketsettle/internal/handlers"
	"github.com/GlebRadaev/marketsettle/internal/pg"
	"github.com/GlebRadaev/marketsettle/internal/reconcile"
	"github.com/GlebRadaev/marketsettle/internal/repo"
	"github.com/GlebRadaev/marketsettle/internal/service"
	"github.com/GlebRadaev/marketsettle/internal/service/commissionservice"
	"github.com/GlebRadaev/marketsettle/pkg/auth"
	"github.com/GlebRadaev/marketsettle/pkg/clients"
	"github.com/GlebRadaev/marketsettle/pkg/logger"
)

type ApplicationI interface {
	Start(ctx context.Context) error
	Wait(ctx context.Context, cancel context.CancelFunc) error
}

type Application struct {
	cfg    *config.Config
	api    *handlers.Handlers
	srv    *service.Services
	repo   *repo.Repositories
	poller *reconcile.Poller
	pool   *pgxpool.Pool
	redis  *redis.Client

	errCh chan error
	wg    sync.WaitGroup
	ready bool
}

func New() *Application {
	return &Application{
		errCh: make(chan error),
	}
}

func (a *Application) Start(ctx context.Context) error {
	cfg := config.New()

	err := logger.InitLogger(cfg)
	if err != nil {
		return fmt.Errorf("can't init logger: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		zap.L().Error("invalid configuration: ", zap.Error(err))
		return fmt.Errorf("invalid configuration: %w", err)
	}

	pool, err := getPgxpool(ctx, cfg)
	if err != nil {
		zap.L().Error("build pgx pool failed: ", zap.Error(err))
		return fmt.Errorf("can't build pgx pool: %w", err)
	}
	if err := pg.RunMigrations(pool); err != nil {
		zap.L().Error("migrations failed: ", zap.Error(err))
		return fmt.Errorf("can't run migrations: %w", err)
	}
	a.pool = pool
	txManager := pg.NewTXManager(pool)

	rateCache, err := a.rateCache(ctx, cfg)
	if err != nil {
		zap.L().Error("redis connection failed: ", zap.Error(err))
		return fmt.Errorf("can't connect to redis: %w", err)
	}

	a.cfg = cfg
	a.repo = repo.New(pg.New(pool))
	a.srv = service.New(a.repo, txManager, rateCache, cfg.AdminAccountID)
	a.api = handlers.New(a.srv, auth.NewJWTService(cfg.JWTSecret), cfg.WebhookSecret)
	if cfg.WebhookSecret == "" {
		zap.L().Warn("WEBHOOK_SECRET is empty, gateway callbacks will be refused")
	}

	if err = a.startHTTPServer(ctx); err != nil {
		return fmt.Errorf("can't start http server: %w", err)
	}

	if cfg.GatewayAddress != "" {
		a.poller = reconcile.New(cfg, a.srv.TransactionService, clients.NewHTTPClient())
		a.startReconciler(ctx)
	}

	a.ready = true
	zap.L().Info("all systems started successfully")
	return nil
}

func getPgxpool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	cfgpool, err := pgxpool.ParseConfig(cfg.Database)
	if err != nil {
		return nil, err
	}
	dbpool, err := pgxpool.NewWithConfig(ctx, cfgpool)
	if err != nil {
		return nil, err
	}
	if err = dbpool.Ping(ctx); err != nil {
		return nil, err
	}
	return dbpool, nil
}

// rateCache returns a nil interface when REDIS_ADDRESS is not set, so the
// commission service falls back to reading the setting on every call.
func (a *Application) rateCache(ctx context.Context, cfg *config.Config) (commissionservice.RateCache, error) {
	if cfg.RedisAddress == "" {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddress})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	a.redis = client
	zap.L().Info("commission rate cache enabled", zap.String("redis", cfg.RedisAddress), zap.Duration("ttl", cfg.CommissionTTL))
	return cache.NewRateCache(client, cfg.CommissionTTL), nil
}

func (a *Application) startHTTPServer(ctx context.Context) error {
	router := chi.NewRouter()
	a.api.InitRoutes(router)
	server := http.Server{
		Addr:    a.cfg.Address,
		Handler: router,
	}
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		<-ctx.Done()

		sCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(sCtx)
	}()

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		zap.L().Info("starting http server on port", zap.String("port", a.cfg.Address))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.errCh <- fmt.Errorf("http server exited with error: %w", err)
		}
	}()

	return nil
}

func (a *Application) startReconciler(ctx context.Context) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		zap.L().Info("starting gateway reconciliation", zap.String("gateway", a.cfg.GatewayAddress))
		a.poller.Run(ctx)
	}()
}

func (a *Application) close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			zap.L().Error("failed to close redis client", zap.Error(err))
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
}

func (a *Application) Wait(ctx context.Context, cancel context.CancelFunc) error {
	var appErr error

	var wg sync.WaitGroup
	wg.Add(1)

	go func() {
		defer wg.Done()

		for err := range a.errCh {
			cancel()
			zap.L().Error(err.Error())
			appErr = err
		}
	}()

	<-ctx.Done()
	a.wg.Wait()
	a.close()
	close(a.errCh)
	wg.Wait()

	return appErr
}
