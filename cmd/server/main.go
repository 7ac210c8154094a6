package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/rutgers-seed/proposal-portal/internal/config"
	"github.com/rutgers-seed/proposal-portal/internal/db"
	"github.com/rutgers-seed/proposal-portal/internal/goroutine"
	httpRouter "github.com/rutgers-seed/proposal-portal/internal/http/router"
	"github.com/rutgers-seed/proposal-portal/internal/identity"
	"github.com/rutgers-seed/proposal-portal/internal/infrastructure/persistence"
	"github.com/rutgers-seed/proposal-portal/internal/interface/http/handler"
	"github.com/rutgers-seed/proposal-portal/internal/logger"
	"github.com/rutgers-seed/proposal-portal/internal/usecase/proposal"
	"github.com/rutgers-seed/proposal-portal/internal/validation"
	"github.com/rutgers-seed/proposal-portal/internal/ws"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	if cfg.Env == "development" {
		logger.Init("debug")
		logger.SetTextFormatter()
	} else {
		logger.Init("info")
	}

	// Подключение к базе и миграции.
	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("main: ошибка подключения к базе: %v", err)
	}
	defer safeClose(dbConn)

	if err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath); err != nil {
		log.Fatalf("main: ошибка миграций: %v", err)
	}

	// Вход администратора.
	authenticator := identity.NewAuthenticator(
		identity.NewProvider(cfg),
		identity.NewSessionManager(cfg.SessionSecret, cfg.SessionTTL),
		cfg.InstitutionDomains,
	)

	// Вебсокеты.
	hub := ws.NewHub()
	goroutine.SafeGoWithContext(ctx, hub.Run)

	// Сценарии.
	proposalRepo := persistence.NewProposalRepositoryAdapter(dbConn)
	validator := validation.NewValidator(cfg.InstitutionDomains)

	handlers := httpRouter.Handlers{
		Proposal: handler.NewProposalHandler(proposal.NewSubmitProposalUseCase(validator, proposalRepo, hub)),
		Admin: handler.NewAdminHandler(
			authenticator,
			proposal.NewSearchProposalsUseCase(proposalRepo),
			proposal.NewGetProposalUseCase(proposalRepo),
			proposal.NewDeleteProposalUseCase(proposalRepo, hub),
			proposal.NewGetStatisticsUseCase(proposalRepo),
			cfg.ExportPrefix,
		),
		Health: handler.NewHealthHandler(dbConn),
		WS:     handler.NewWSHandler(hub, cfg.AllowedOrigins),
	}

	engine := httpRouter.SetupRouter(cfg, handlers, authenticator)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Завершаем сервер при получении сигнала.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Log.Errorf("main: ошибка остановки http сервера: %v", err)
		}
	}()

	logger.Log.Infof("main: HTTP сервер запущен на порту %s (identity=%s)", cfg.HTTPPort, cfg.IdentityProvider)

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("main: сервер завершился с ошибкой: %v", err)
	}
}

// safeClose закрывает соединение с базой.
func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		log.Printf("main: ошибка закрытия базы: %v", err)
	}
}
