package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/oursapp/ours-api/internal/config"
	"github.com/oursapp/ours-api/internal/domain/scoring"
	"github.com/oursapp/ours-api/internal/events"
	"github.com/oursapp/ours-api/internal/platform/aead"
	"github.com/oursapp/ours-api/internal/platform/mail"
	"github.com/oursapp/ours-api/internal/platform/postgres"
	"github.com/oursapp/ours-api/internal/service"
	"github.com/oursapp/ours-api/internal/service/auth"
	"github.com/oursapp/ours-api/internal/service/vault"
	"github.com/oursapp/ours-api/internal/store"
	"github.com/oursapp/ours-api/internal/task"
)

// application holds the shared dependencies so lifecycle and cleanup
// stay in one place.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	// Stores
	userStore         store.UserStore
	memoryStore       store.MemoryStore
	relationshipStore store.RelationshipStore
	invitationStore   store.InvitationStore
	reflectionStore   store.ReflectionStore

	// Services
	jwtService          auth.JWTService
	memoryService       service.MemoryService
	syncService         *service.SyncCoordinator
	invitationService   service.InvitationService
	relationshipService service.RelationshipService
	reflectionService   service.ReflectionService

	// Event system and background work
	eventEmitter *events.InMemoryEmitter
	taskRunner   *task.Runner
}

// newApplication wires all dependencies. Configuration, logger and the
// database connection are established by the caller.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	db *sql.DB,
) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}

	app.userStore = postgres.NewPostgresUserStore(db, logger)
	app.memoryStore = postgres.NewPostgresMemoryStore(db, logger)
	app.relationshipStore = postgres.NewPostgresRelationshipStore(db, logger)
	app.invitationStore = postgres.NewPostgresInvitationStore(db, logger)
	app.reflectionStore = postgres.NewPostgresReflectionStore(db, logger)

	txRunner := service.NewDBTxRunner(db)
	app.eventEmitter = events.NewInMemoryEmitter(logger)

	scorer, err := scoring.NewServiceWithParams(scoringParams(cfg.Scoring))
	if err != nil {
		return nil, fmt.Errorf("failed to create scoring service: %w", err)
	}

	gate := vault.NewGate(aead.NewCodec(), logger)

	app.memoryService, err = service.NewMemoryService(
		txRunner, app.memoryStore, app.relationshipStore, gate, app.eventEmitter, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create memory service: %w", err)
	}

	app.syncService, err = service.NewSyncService(
		app.relationshipStore, app.memoryStore, scorer, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create sync service: %w", err)
	}

	app.invitationService, err = service.NewInvitationService(
		txRunner, app.invitationStore, app.relationshipStore, app.userStore,
		app.eventEmitter,
		time.Duration(cfg.Invitation.TTLHours)*time.Hour,
		logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create invitation service: %w", err)
	}

	app.relationshipService, err = service.NewRelationshipService(
		txRunner, app.relationshipStore, app.userStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create relationship service: %w", err)
	}

	app.reflectionService, err = service.NewReflectionService(app.reflectionStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create reflection service: %w", err)
	}

	// Background delivery of invitation emails.
	app.taskRunner = task.NewRunner(task.DefaultRunnerConfig(), logger)
	app.taskRunner.Start()

	mailSender := mail.NewSendGridSender(mail.Config{
		APIKey:    cfg.Mail.APIKey,
		FromEmail: cfg.Mail.FromEmail,
		FromName:  "Ours",
		AppURL:    cfg.Mail.AppURL,
	}, logger)

	deliveryHandler := task.NewDeliveryEventHandler(
		app.invitationService, mailSender, app.taskRunner, logger)

	// Memory-recorded events invalidate the sync cache; invitation-created
	// events queue email delivery.
	app.eventEmitter.RegisterHandler(app.syncService)
	app.eventEmitter.RegisterHandler(deliveryHandler)

	logger.Info("application initialized")
	return app, nil
}

// Run starts the HTTP server and blocks until shutdown.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.taskRunner != nil {
		app.taskRunner.Stop()
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
	}

	app.logger.Info("application shutdown completed")
}

// scoringParams converts configured scoring knobs to engine parameters.
func scoringParams(cfg config.ScoringConfig) *scoring.Params {
	return &scoring.Params{
		WindowLimit:     cfg.WindowLimit,
		WindowAge:       time.Duration(cfg.WindowAgeDays) * 24 * time.Hour,
		EnergyHalfLife:  time.Duration(cfg.EnergyHalfLifeHours) * time.Hour,
		SaturationCount: cfg.SaturationCount,
		RecencyHalfLife: time.Duration(cfg.RecencyHalfLifeDays) * 24 * time.Hour,
	}
}
