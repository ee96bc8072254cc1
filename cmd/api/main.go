package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/helpdesk-service/internal/api/http"
	"github.com/spec-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/gateway"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/persistence"
	"github.com/spec-kit/helpdesk-service/internal/realtime"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/service"
	"github.com/spec-kit/helpdesk-service/internal/worker"
)

// Multipart bodies carry attachments up to 10 MiB plus form overhead.
const bodyLimit = 12 * 1024 * 1024

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

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(registry)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis, err := persistence.NewRedis(ctx, cfg.Redis, logger)
	if err != nil {
		logger.Warn("redis unavailable; live chat fan-out and job locks are degraded until it returns", zap.Error(err))
	}
	defer redis.Close()

	objects, err := persistence.NewObjectStore(ctx, cfg.Minio, logger)
	if err != nil {
		logger.Fatal("failed to connect object storage", zap.Error(err))
	}

	pool := pg.PoolHandle()
	ticketRepo := repository.NewTicketRepository(pool)
	userRepo := repository.NewUserRepository(pool)
	messageRepo := repository.NewChatMessageRepository(pool)
	attachmentRepo := repository.NewAttachmentRepository(pool)
	escalationRepo := repository.NewEscalationRepository(pool)
	auditRepo := repository.NewAuditLogRepository(pool)
	notificationRepo := repository.NewNotificationRepository(pool)
	slaRepo := repository.NewSLAConfigRepository(pool)
	errorLogRepo := repository.NewErrorLogRepository(pool)

	chatRegistry := realtime.NewRegistry(realtime.NewRedisTransport(redis.Client, logger), logger)
	dispatcher := events.NewInMemoryDispatcher()
	chatGateway := gateway.New(gateway.ConfigFrom(cfg), logger, gateway.WithMetrics(metrics))
	worker.StartNotificationWorker(dispatcher, chatGateway, logger)

	slaService := service.NewSLAService(slaRepo, logger)
	auditService := service.NewAuditService(service.AuditDependencies{
		AuditRepo:    auditRepo,
		UserRepo:     userRepo,
		ErrorLogRepo: errorLogRepo,
		Logger:       logger,
	})
	notificationService := service.NewNotificationService(notificationRepo, nil)
	assignmentService := service.NewAssignmentService(userRepo)

	var blobs service.BlobStore
	if objects != nil {
		blobs = objects
	}
	attachmentService := service.NewAttachmentService(service.AttachmentDependencies{
		AttachmentRepo: attachmentRepo,
		TicketRepo:     ticketRepo,
		UserRepo:       userRepo,
		ErrorLogRepo:   errorLogRepo,
		Audit:          auditService,
		Store:          blobs,
		Logger:         logger,
	})

	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:     ticketRepo,
		UserRepo:       userRepo,
		MessageRepo:    messageRepo,
		AttachmentRepo: attachmentRepo,
		EscalationRepo: escalationRepo,
		AuditRepo:      auditRepo,
		ErrorLogRepo:   errorLogRepo,
		SLA:            slaService,
		Audit:          auditService,
		Notifications:  notificationService,
		Assignment:     assignmentService,
		Dispatcher:     dispatcher,
		Publisher:      chatRegistry,
		Store:          blobs,
		Retention:      cfg.Lifecycle.Retention(),
		Logger:         logger,
	})

	scheduler := worker.NewScheduler(worker.SchedulerDependencies{
		Locks: func(key string, ttl time.Duration) worker.JobLock {
			return redis.NewLock(key, ttl)
		},
		LockTTL: cfg.Jobs.LockTTL(),
		Logger:  logger,
		Metrics: metrics,
	})
	for _, job := range worker.TicketJobs(ticketService, cfg.Jobs, logger) {
		if err := scheduler.Register(job); err != nil {
			logger.Fatal("failed to schedule job", zap.String("job", job.Name), zap.Error(err))
		}
	}
	scheduler.Start()

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, 0)
	authMiddleware := auth.NewAuthMiddleware(tokens, userRepo)

	app := fiber.New(fiber.Config{
		AppName:   cfg.App.Name,
		BodyLimit: bodyLimit,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	dependencies := map[string]handlers.Pinger{"postgres": pg, "redis": redis}
	if objects != nil {
		dependencies["minio"] = objects
	}

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, dependencies),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Stream:         handlers.NewStreamHandler(ticketService, chatRegistry, logger),
		Attachments:    handlers.NewAttachmentsHandler(attachmentService),
		Audit:          handlers.NewAuditHandler(auditService),
		Notifications:  handlers.NewNotificationsHandler(notificationService),
		SLA:            handlers.NewSLAHandler(slaService),
		Dispatch:       handlers.NewDispatchHandler(chatGateway, logger),
		AuthMiddleware: authMiddleware,
		ServiceSecret:  cfg.Auth.ServiceSecret,
		Metrics:        adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	chatRegistry.Close()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	scheduler.Stop(shutdownCtx)
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
