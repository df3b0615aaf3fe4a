package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	httptransport "github.com/spec-kit/staff-schedule/internal/api/http"
	"github.com/spec-kit/staff-schedule/internal/api/http/handlers"
	"github.com/spec-kit/staff-schedule/internal/auth"
	"github.com/spec-kit/staff-schedule/internal/cache"
	"github.com/spec-kit/staff-schedule/internal/config"
	"github.com/spec-kit/staff-schedule/internal/events"
	"github.com/spec-kit/staff-schedule/internal/observability"
	"github.com/spec-kit/staff-schedule/internal/persistence"
	"github.com/spec-kit/staff-schedule/internal/repository"
	"github.com/spec-kit/staff-schedule/internal/repository/gormrepo"
	"github.com/spec-kit/staff-schedule/internal/service"
	"github.com/spec-kit/staff-schedule/internal/worker"
	"github.com/spec-kit/staff-schedule/migrations"
)

// storage is the repository set of the configured driver.
type storage struct {
	tx      repository.Transactor
	users   repository.UserRepository
	months  repository.MonthRepository
	entries repository.DayEntryRepository
	name    string
	pinger  handlers.Pinger
	close   func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.App, cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := openStorage(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to open storage", zap.String("driver", cfg.Storage.Driver), zap.Error(err))
	}
	defer store.close()

	dependencies := map[string]handlers.Pinger{store.name: store.pinger}
	var approvalCache cache.ApprovalCache = cache.Noop{}
	if redis := persistence.NewRedis(ctx, cfg.Redis, logger); redis != nil {
		defer redis.Close()
		approvalCache = cache.NewRedisApprovalCache(redis.Client, cfg.Redis.ApprovalTTL())
		dependencies["redis"] = redis
	}

	dispatcher := events.NewInMemoryDispatcher()
	worker.StartNotificationWorker(service.NewNotificationService(dispatcher, logger, cfg.Notification), logger)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	userService := service.NewUserService(cfg.Auth, service.UserDependencies{
		Transactor:   store.tx,
		UserRepo:     store.users,
		DayEntryRepo: store.entries,
		Tokens:       tokens,
		Logger:       logger,
	})
	scheduleService := service.NewScheduleService(service.ScheduleDependencies{
		Transactor:   store.tx,
		UserRepo:     store.users,
		MonthRepo:    store.months,
		DayEntryRepo: store.entries,
		Cache:        approvalCache,
		Dispatcher:   dispatcher,
		Logger:       logger,
	})

	if cfg.Seed.Enabled {
		if _, err := userService.EnsureAdmin(ctx, cfg.Seed); err != nil {
			logger.Fatal("failed to seed admin account", zap.Error(err))
		}
	}

	metrics := observability.NewMetrics()
	app := httptransport.NewApp(cfg.App)
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, metrics, dependencies),
		Users:          handlers.NewUsersHandler(userService),
		Schedule:       handlers.NewScheduleHandler(scheduleService),
		AuthMiddleware: auth.NewAuthMiddleware(tokens, store.users),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
}

func openStorage(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*storage, error) {
	switch cfg.Storage.Driver {
	case config.StoragePostgres:
		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, err
		}
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.Pool, migrations.FS, logger); err != nil {
				pg.Close()
				return nil, err
			}
		}
		return &storage{
			tx:      repository.NewTransactor(pg.Pool),
			users:   repository.NewUserRepository(pg.Pool),
			months:  repository.NewMonthRepository(pg.Pool),
			entries: repository.NewDayEntryRepository(pg.Pool),
			name:    "postgres",
			pinger:  pg,
			close:   pg.Close,
		}, nil

	case config.StorageSQLite:
		db, err := persistence.NewSQLite(cfg.Storage, logger)
		if err != nil {
			return nil, err
		}
		store, err := gormrepo.NewStore(db)
		if err != nil {
			return nil, err
		}
		return &storage{
			tx:      store,
			users:   store.Users(),
			months:  store.Months(),
			entries: store.DayEntries(),
			name:    "sqlite",
			pinger:  store,
			close: func() {
				if sqlDB, err := db.DB(); err == nil {
					_ = sqlDB.Close()
				}
			},
		}, nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
