package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/crediflow/collections-service/internal/api/http"
	"github.com/crediflow/collections-service/internal/api/http/handlers"
	"github.com/crediflow/collections-service/internal/auth"
	"github.com/crediflow/collections-service/internal/config"
	"github.com/crediflow/collections-service/internal/docs"
	"github.com/crediflow/collections-service/internal/events"
	"github.com/crediflow/collections-service/internal/observability"
	"github.com/crediflow/collections-service/internal/persistence"
	"github.com/crediflow/collections-service/internal/repository"
	"github.com/crediflow/collections-service/internal/rules"
	"github.com/crediflow/collections-service/internal/service"
	"github.com/crediflow/collections-service/internal/worker"
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

	rdb := persistence.NewRedis(cfg.Redis, logger)
	defer rdb.Close()

	tables, err := rules.Load(cfg.Rules.Dir)
	if err != nil {
		logger.Fatal("failed to load workflow rules", zap.Error(err))
	}

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	caseRepo := repository.NewCaseRepository(pool)
	paymentRepo := repository.NewPaymentRepository(pool)
	cancellationRepo := repository.NewCancellationRepository(pool)
	agreementRepo := repository.NewAgreementRepository(pool)
	interactionRepo := repository.NewInteractionRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	auditRepo := repository.NewAuditRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	auditService := service.NewAuditService(auditRepo, logger)
	worker.StartAuditWorker(dispatcher, auditService)

	caseCache := service.NewCaseCache(rdb.Client)

	authService := service.NewAuthService(*cfg, userRepo)
	caseService := service.NewCaseService(caseRepo, tables, caseCache, dispatcher)
	ledgerService := service.NewLedgerService(pool, caseRepo, paymentRepo, cancellationRepo, caseCache, dispatcher, logger)
	agreementService := service.NewAgreementService(agreementRepo, caseRepo, dispatcher, logger)
	interactionService := service.NewInteractionService(tables, caseRepo, interactionRepo, ticketRepo, caseCache, dispatcher, logger)
	ticketService := service.NewTicketService(ticketRepo, caseRepo, caseCache, dispatcher, logger)
	documentService := docs.NewService(docs.NoopRenderer{}, docs.NoopSigner{}, 0)

	authMiddleware := auth.NewMiddleware(authService.TokenManager(), userRepo)

	metrics := observability.NewMetrics()
	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, rdb),
		Auth:           handlers.NewAuthHandler(authService),
		Cases:          handlers.NewCasesHandler(caseService),
		Payments:       handlers.NewPaymentsHandler(ledgerService),
		Agreements:     handlers.NewAgreementsHandler(agreementService),
		Interactions:   handlers.NewInteractionsHandler(interactionService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Audit:          handlers.NewAuditHandler(auditService),
		Documents:      handlers.NewDocumentsHandler(caseService, ledgerService, documentService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
