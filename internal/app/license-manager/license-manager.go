package licensemanager

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/magabrotheeeer/license-manager/internal/config"
	grpchealth "github.com/magabrotheeeer/license-manager/internal/grpc/health"
	"github.com/magabrotheeeer/license-manager/internal/lib/jwt"
	"github.com/magabrotheeeer/license-manager/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/license-manager/internal/lib/sl"
	"github.com/magabrotheeeer/license-manager/internal/migrations"
	"github.com/magabrotheeeer/license-manager/internal/objectstore"
	"github.com/magabrotheeeer/license-manager/internal/services/admin"
	"github.com/magabrotheeeer/license-manager/internal/services/entitlement"
	"github.com/magabrotheeeer/license-manager/internal/services/license"
	"github.com/magabrotheeeer/license-manager/internal/settings"
	"github.com/magabrotheeeer/license-manager/internal/storage"
)

const shutdownTimeout = 15 * time.Second

type eventPublisher interface {
	PublishDownload(ctx context.Context, event rabbitmq.DownloadEvent) error
	Close() error
}

// App сервис целиком: HTTP API, gRPC health и их зависимости.
type App struct {
	server     *http.Server
	health     *grpchealth.Server
	healthAddr string
	logger     *slog.Logger
	db         *storage.Storage
	settings   *settings.Store
	events     eventPublisher
}

// New подключается к зависимостям, применяет миграции и собирает маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "licensemanager.New"

	db, err := storage.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = storage.CheckDatabaseReady(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	settingsStore, err := settings.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	events, err := newEventPublisher(cfg.RabbitMQ, logger)
	if err != nil {
		_ = settingsStore.Close()
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	signer := objectstore.NewS3Signer(settingsStore, cfg.ObjectStorage)
	dispatcher := entitlement.New(db, license.NewValidator(db), signer, cfg.PublicURL, cfg.CallTimeout)
	tokens := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	adminService := admin.New(db, settingsStore, tokens, cfg.Admin)
	if cfg.PasswordHash == "" {
		logger.Warn("admin password hash is not set, admin login is disabled")
	}

	router := chi.NewRouter()
	RegisterRoutes(router, logger, Deps{
		API:     dispatcher,
		Events:  events,
		Admin:   adminService,
		Tokens:  tokens,
		Storage: db,
	})

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server:     srv,
		health:     grpchealth.New(logger, db, cfg.ProbeInterval),
		healthAddr: cfg.AddressGRPC,
		logger:     logger,
		db:         db,
		settings:   settingsStore,
		events:     events,
	}, nil
}

func newEventPublisher(cfg config.RabbitMQ, logger *slog.Logger) (eventPublisher, error) {
	const op = "licensemanager.newEventPublisher"
	if cfg.URL == "" {
		logger.Info("rabbitmq url is not set, download events are disabled")
		return rabbitmq.NoopPublisher{}, nil
	}

	conn, err := rabbitmq.Connect(cfg.URL, cfg.Retries, cfg.RetryDelay)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	publisher, err := rabbitmq.NewPublisher(conn, cfg.Exchange, cfg.RoutingKey)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	// публикация уходит из обработчика, редирект не ждёт брокер
	return rabbitmq.NewAsyncPublisher(logger, publisher, cfg.QueueSize, cfg.PublishTimeout), nil
}

// Run запускает HTTP- и gRPC-серверы и блокируется до отмены ctx
// или падения одного из серверов.
func (a *App) Run(ctx context.Context) error {
	const op = "licensemanager.Run"

	lis, err := net.Listen("tcp", a.healthAddr)
	if err != nil {
		a.closeDeps()
		return fmt.Errorf("%s: %w", op, err)
	}

	proberCtx, stopProber := context.WithCancel(ctx)
	defer stopProber()
	go a.health.RunProber(proberCtx)

	errCh := make(chan error, 2)
	go func() {
		a.logger.Info("gRPC health server starting", slog.String("address", lis.Addr().String()))
		if err := a.health.Serve(lis); err != nil {
			errCh <- err
		}
	}()
	go func() {
		a.logger.Info("HTTP server starting", slog.String("address", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var runErr error
	select {
	case runErr = <-errCh:
		a.logger.Error("server stopped unexpectedly", sl.Err(runErr))
	case <-ctx.Done():
		a.logger.Info("shutting down gracefully")
	}

	stopProber()
	timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.server.Shutdown(timeoutCtx); err != nil {
		a.logger.Error("failed to shutdown HTTP server", sl.Err(err))
		runErr = errors.Join(runErr, err)
	}
	a.health.Stop()
	a.closeDeps()

	if runErr != nil {
		return fmt.Errorf("%s: %w", op, runErr)
	}
	return nil
}

func (a *App) closeDeps() {
	if err := a.events.Close(); err != nil {
		a.logger.Warn("failed to close event publisher", sl.Err(err))
	}
	if err := a.settings.Close(); err != nil {
		a.logger.Warn("failed to close settings store", sl.Err(err))
	}
	if err := a.db.Close(); err != nil {
		a.logger.Warn("failed to close storage", sl.Err(err))
	}
}
