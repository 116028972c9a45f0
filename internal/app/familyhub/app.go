// Package familyhub собирает основное HTTP-приложение: хранилище, кеш,
// очередь событий, бизнес-сервисы и маршруты.
package familyhub

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/family-hub/internal/cache"
	"github.com/magabrotheeeer/family-hub/internal/config"
	"github.com/magabrotheeeer/family-hub/internal/lib/jwt"
	"github.com/magabrotheeeer/family-hub/internal/lib/seal"
	"github.com/magabrotheeeer/family-hub/internal/migrations"
	"github.com/magabrotheeeer/family-hub/internal/rabbitmq"
	authservice "github.com/magabrotheeeer/family-hub/internal/services/auth"
	groupservice "github.com/magabrotheeeer/family-hub/internal/services/group"
	supportservice "github.com/magabrotheeeer/family-hub/internal/services/support"
	wikiservice "github.com/magabrotheeeer/family-hub/internal/services/wiki"
	"github.com/magabrotheeeer/family-hub/internal/storage/repository"
)

// App — основное приложение family-hub.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	amqp   *amqp.Connection
}

// New создает приложение: подключается к зависимостям, прогоняет миграции
// и регистрирует маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, "./migrations"); err != nil {
		return nil, err
	}
	if err = repository.CheckDatabaseReady(db); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	conn, err := rabbitmq.Connect(cfg.RabbitMQConnection, 5, 3*time.Second)
	if err != nil {
		return nil, err
	}
	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetNotificationQueues())
	if err != nil {
		return nil, err
	}

	codec, err := seal.New([]byte(cfg.WikiEncryptionKey))
	if err != nil {
		return nil, err
	}

	jwtMaker := jwt.NewMaker(cfg.JWTSecretKey, cfg.TokenTTL)

	authService := authservice.NewAuthService(db, jwtMaker)
	groupService := groupservice.NewGroupService(db, logger)
	wikiService := wikiservice.NewWikiService(db, codec, cacheRedis, logger)
	supportService := supportservice.NewSupportService(db, rabbitmq.NewPublisher(ch), logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, jwtMaker, db, authService, groupService, wikiService, supportService)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		amqp:   conn,
	}, nil
}

// Run запускает HTTP-сервер и останавливает его при отмене контекста.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.db.DB.Close()
		a.amqp.Close()
		return err
	}
}
