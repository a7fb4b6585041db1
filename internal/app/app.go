package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/riskibarqy/fantasy-cricket/internal/config"
	"github.com/riskibarqy/fantasy-cricket/internal/infrastructure/account/anubis"
	"github.com/riskibarqy/fantasy-cricket/internal/infrastructure/feed"
	"github.com/riskibarqy/fantasy-cricket/internal/infrastructure/jobqueue"
	"github.com/riskibarqy/fantasy-cricket/internal/infrastructure/realtime"
	redisinfra "github.com/riskibarqy/fantasy-cricket/internal/infrastructure/redis"
	"github.com/riskibarqy/fantasy-cricket/internal/interfaces/httpapi"
	"github.com/riskibarqy/fantasy-cricket/internal/platform/cache"
	"github.com/riskibarqy/fantasy-cricket/internal/platform/id"
	"github.com/riskibarqy/fantasy-cricket/internal/platform/logging"
	"github.com/riskibarqy/fantasy-cricket/internal/usecase"
	"github.com/sourcegraph/conc/pool"
)

const shutdownTimeout = 10 * time.Second

// App owns the HTTP server and every background loop: the realtime hub and
// publisher, the Redis relay and the score feed consumer.
type App struct {
	cfg        config.Config
	logger     *logging.Logger
	server     *http.Server
	repos      repositories
	redis      *redisinfra.Client
	background map[string]func(context.Context) error
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	a := &App{
		cfg:        cfg,
		logger:     logger,
		background: make(map[string]func(context.Context) error),
	}

	var store *cache.Store
	if cfg.CacheEnabled {
		store = cache.NewStore(cfg.CacheTTL)
	}

	repos, err := newRepositories(ctx, cfg, store)
	if err != nil {
		return nil, err
	}
	a.repos = repos

	locker := usecase.NewLocalLocker()
	hub := realtime.NewHub(realtime.HubConfig{AllowedOrigins: cfg.CORSAllowedOrigins, BroadcastQueue: cfg.BroadcastBuffer}, logger)
	var sink realtime.Sink = hub

	if cfg.RedisEnabled {
		client, err := redisinfra.New(ctx, redisinfra.ClientConfig{
			Addr:       cfg.RedisAddr,
			Password:   cfg.RedisPassword,
			DB:         cfg.RedisDB,
			TLSEnabled: cfg.RedisTLSEnabled,
		})
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		a.redis = client
		locker = redisinfra.NewLocker(client, id.NewUUIDGenerator(), redisinfra.LockerConfig{TTL: cfg.MatchLockTTL})

		bus := redisinfra.NewSignalBus(client)
		sink = realtime.NewBusSink(bus, realtime.DefaultBusChannel)
		a.background["realtime relay"] = func(ctx context.Context) error {
			return realtime.Relay(ctx, bus, realtime.DefaultBusChannel, hub, logger)
		}
	}

	publisher := realtime.NewPublisher(sink, realtime.PublisherConfig{Buffer: cfg.BroadcastBuffer}, logger)
	a.background["realtime hub"] = func(ctx context.Context) error {
		hub.Run(ctx)
		return nil
	}
	a.background["realtime publisher"] = func(ctx context.Context) error {
		publisher.Run(ctx)
		return nil
	}

	var queue usecase.JobQueue = usecase.NewNoopJobQueue()
	if cfg.QStashEnabled {
		queue = jobqueue.NewQStashPublisher(jobqueue.QStashPublisherConfig{
			BaseURL:          cfg.QStashBaseURL,
			Token:            cfg.QStashToken,
			TargetBaseURL:    cfg.QStashTargetBaseURL,
			Retries:          cfg.QStashRetries,
			InternalJobToken: cfg.InternalJobToken,
			CircuitBreaker:   cfg.QStashCircuit,
		}, logger)
	}

	services := newServices(cfg, repos, store, locker, publisher, queue, logger)

	if cfg.AMQPEnabled {
		consumer := feed.NewConsumer(feed.ConsumerConfig{
			URL:        cfg.AMQPURL,
			Exchange:   cfg.AMQPExchange,
			Queue:      cfg.AMQPQueue,
			RoutingKey: cfg.AMQPRoutingKey,
			Prefetch:   cfg.AMQPPrefetch,
		}, services.Ingestion, logger)
		a.background["score feed consumer"] = consumer.Run
	}

	verifier := anubis.NewClient(&http.Client{Timeout: cfg.AnubisTimeout}, anubis.Config{
		BaseURL:        cfg.AnubisBaseURL,
		IntrospectPath: cfg.AnubisIntrospectURL,
		AdminKey:       cfg.AnubisAdminKey,
		Timeout:        cfg.AnubisTimeout,
		CacheTTL:       cfg.CacheTTL,
		CircuitBreaker: cfg.AnubisCircuit,
	}, logger)

	handler := httpapi.NewHandler(services, hub, a.healthChecks(), logger)
	a.server = &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: httpapi.NewRouter(handler, verifier, logger, httpapi.RouterConfig{
			CORSAllowedOrigins: cfg.CORSAllowedOrigins,
			InternalJobToken:   cfg.InternalJobToken,
		}),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	logger.Info("app wired",
		"storage", cfg.StorageDriver,
		"cache", cfg.CacheEnabled,
		"redis", cfg.RedisEnabled,
		"amqp", cfg.AMQPEnabled,
		"qstash", cfg.QStashEnabled,
		"settlement_mode", cfg.SettlementMode,
	)
	return a, nil
}

func newServices(
	cfg config.Config,
	repos repositories,
	store *cache.Store,
	locker usecase.Locker,
	broadcaster usecase.Broadcaster,
	queue usecase.JobQueue,
	logger *logging.Logger,
) httpapi.Services {
	ids := id.NewUUIDGenerator()
	rules := usecase.NewRulesResolver(repos.scoring, "")
	leaderboard := usecase.NewLeaderboardService(repos.contests, repos.teams, store, logger)
	settlement := usecase.NewSettlementService(repos.matches, repos.contests, repos.ledger, leaderboard, locker, broadcaster, ids,
		usecase.SettlementConfig{Workers: cfg.SettlementWorkers}, logger)
	dispatcher := usecase.NewSettlementDispatcher(settlement, queue, repos.dispatches,
		usecase.SettlementDispatcherConfig{Mode: cfg.SettlementMode}, logger)

	return httpapi.Services{
		Contests: usecase.NewContestService(repos.matches, repos.contests, repos.teams, rules, leaderboard, locker, ids,
			usecase.ContestConfig{DefaultRake: cfg.DefaultRake}, logger),
		Leaderboard: leaderboard,
		Ingestion: usecase.NewIngestionService(repos.matches, repos.stats, repos.contests, rules,
			usecase.NewAggregator(repos.teams, logger), leaderboard, locker, broadcaster, usecase.IngestionConfig{}, logger),
		Lifecycle:  usecase.NewMatchLifecycleService(repos.matches, repos.contests, dispatcher, locker, logger),
		Settlement: settlement,
		Dispatcher: dispatcher,
		Wallets:    usecase.NewWalletService(repos.wallets, logger),
	}
}

func (a *App) healthChecks() map[string]httpapi.HealthCheck {
	checks := make(map[string]httpapi.HealthCheck)
	if a.repos.db != nil {
		checks["postgres"] = a.repos.db.PingContext
	}
	if a.redis != nil {
		checks["redis"] = a.redis.Ping
	}
	return checks
}

// Run serves HTTP and the background loops until ctx is done or one of them
// fails, then shuts the server down gracefully.
func (a *App) Run(ctx context.Context) error {
	p := pool.New().WithErrors().WithContext(ctx).WithCancelOnError()

	for name, run := range a.background {
		p.Go(func(ctx context.Context) error {
			a.logger.Info("background loop starting", "loop", name)
			if err := run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("%s: %w", name, err)
			}
			return nil
		})
	}

	p.Go(func(ctx context.Context) error {
		errCh := make(chan error, 1)
		go func() {
			a.logger.Info("http server starting", "addr", a.cfg.HTTPAddr)
			errCh <- a.server.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("http server: %w", err)
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown: %w", err)
		}
		a.logger.Info("http server stopped")
		return nil
	})

	return p.Wait()
}

func (a *App) Close() error {
	var errs []error
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	if err := a.repos.close(); err != nil {
		errs = append(errs, fmt.Errorf("close postgres: %w", err))
	}
	return errors.Join(errs...)
}
