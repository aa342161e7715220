package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/helpdesk/internal/api/http"
	"github.com/spec-kit/helpdesk/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/config"
	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/observability"
	"github.com/spec-kit/helpdesk/internal/persistence"
	"github.com/spec-kit/helpdesk/internal/repository"
	"github.com/spec-kit/helpdesk/internal/service"
	"github.com/spec-kit/helpdesk/internal/worker"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.Pool, cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis, err := persistence.NewRedis(ctx, cfg.Redis, logger)
	if err != nil {
		logger.Fatal("invalid redis config", zap.Error(err))
	}
	defer redis.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	registry.MustRegister(persistence.NewPoolCollector(pg.Pool))
	observability.MustRegister(registry)

	var publisher events.Publisher = events.NewLogPublisher(logger)
	if cfg.Broker.URL != "" {
		publisher = events.NewAMQPPublisher(cfg.Broker.URL, cfg.Broker.Exchange)
	}
	defer publisher.Close() //nolint:errcheck

	dispatcher := events.NewInMemoryDispatcher()
	relayDone := worker.StartEventRelay(ctx, service.NewEventRelay(dispatcher, publisher, logger, 0))

	store := repository.NewStore(pg.Pool, cfg.Auth.BcryptCost)
	tokens := auth.NewTokenCodec(cfg.Auth.JWTSecret, cfg.Auth.TokenIssuer)

	sessionService := service.NewSessionService(cfg.Auth, service.SessionDependencies{
		Store:      store,
		Tokens:     tokens,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	orgService := service.NewOrgService(service.OrgDependencies{
		SectorRepo:   store.Sectors(),
		PositionRepo: store.Positions(),
	})
	userService := service.NewUserService(service.UserDependencies{
		Store:     store,
		Positions: orgService,
		Logger:    logger,
	})
	ticketService := service.NewTicketService(service.TicketDependencies{
		Store:      store,
		Dispatcher: dispatcher,
		Logger:     logger,
	})

	policies := auth.NewPolicyTable()
	guard := auth.NewGuard(tokens, store.Sessions(), store.Accounts(), policies, logger)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, cfg.App, logger)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:   handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:     handlers.NewAuthHandler(sessionService, userService),
		Users:    handlers.NewUsersHandler(userService),
		Org:      handlers.NewOrgHandler(orgService),
		Tickets:  handlers.NewTicketsHandler(ticketService),
		Guard:    guard,
		Policies: policies,
		Throttle: httptransport.Throttle(cfg.RateLimit, redis.Client, logger),
		Metrics:  registry,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	cancel()
	<-relayDone
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
