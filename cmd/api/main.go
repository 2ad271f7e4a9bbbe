package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/helpdesk-service/internal/api/http"
	"github.com/spec-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-service/internal/audit"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/intake"
	"github.com/spec-kit/helpdesk-service/internal/notify"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/persistence"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/service"
	"github.com/spec-kit/helpdesk-service/internal/sla"
	"github.com/spec-kit/helpdesk-service/internal/ticketcode"
)

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
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	// Redis is only needed when the intake guard must span replicas.
	var redis *persistence.Redis
	var guardCache intake.Cache
	if strings.EqualFold(cfg.Intake.CacheBackend, "redis") {
		redis = persistence.NewRedis(cfg.Redis, logger)
		defer redis.Close()
		guardCache = intake.NewRedisCache(redis.Client)
	} else {
		guardCache = intake.NewMemoryCache()
	}

	pool := pg.PoolHandle()
	ticketRepo := repository.NewTicketRepository(pool)
	statusLogRepo := repository.NewStatusLogRepository(pool)
	ruleRepo := repository.NewAssignmentRuleRepository(pool)
	profileRepo := repository.NewPriorityProfileRepository(pool)
	auditRepo := repository.NewAuditLogRepository(pool)
	notificationRepo := repository.NewNotificationRepository(pool)
	surveyRepo := repository.NewSurveyRepository(pool)
	teamRepo := repository.NewTeamRepository(pool)
	lookupRepo := repository.NewLookupRepository(pool)
	staffRepo := repository.NewStaffRepository(pool)

	metrics := observability.NewMetrics()
	auditor := audit.NewRecorder(auditRepo, logger)
	bus := events.NewInMemoryDispatcher()

	notifier := notify.NewDispatcher(
		[]notify.Channel{
			notify.NewEmailChannel(cfg.Notification),
			notify.NewWebhookChannel(cfg.Notification),
		},
		notify.DefaultTemplates(),
		notificationRepo,
		logger,
		cfg.App.PublicBaseURL,
		cfg.Notification.AttemptTimeout,
	)
	notify.NewListener(notifier, teamRepo, staffRepo, logger).Register(bus)

	guard := intake.NewGuard(guardCache, cfg.Intake.RateLimit, cfg.Intake.RateWindow(), cfg.Intake.DuplicateTTL())
	evaluator := sla.NewEvaluator(sla.Defaults{
		ResponseMinutes: cfg.SLA.DefaultResponseMinutes,
		ResolveMinutes:  cfg.SLA.DefaultResolveMinutes,
		AtRiskPercent:   cfg.SLA.AtRiskPercent,
	})

	assignmentService := service.NewAssignmentService(ruleRepo, ticketRepo, teamRepo, staffRepo, auditor, bus, logger)
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:       ticketRepo,
		StatusLogRepo:    statusLogRepo,
		ProfileRepo:      profileRepo,
		LookupRepo:       lookupRepo,
		StaffRepo:        staffRepo,
		SurveyRepo:       surveyRepo,
		AuditTrailRepo:   auditRepo,
		NotificationRepo: notificationRepo,
		Guard:            guard,
		CodeGenerator:    ticketcode.NewGenerator(),
		Resolver:         assignmentService,
		Auditor:          auditor,
		Dispatcher:       bus,
		Logger:           logger,
		CodeMaxAttempts:  cfg.Intake.CodeMaxAttempts,
	})
	slaService := service.NewSLAService(ticketRepo, profileRepo, evaluator, logger)
	authService := service.NewAuthService(*cfg, staffRepo)
	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), staffRepo)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Staff:          handlers.NewStaffHandler(authService),
		StaffTickets:   handlers.NewStaffTicketsHandler(ticketService, assignmentService, slaService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
	// Let in-flight notification attempts finish before the process exits.
	notifier.Wait()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
