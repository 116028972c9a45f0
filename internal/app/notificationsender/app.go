// Package notificationsender собирает воркер отправки email-уведомлений
// о завершении подписки из очереди событий.
package notificationsender

import (
	"context"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/family-hub/internal/config"
	"github.com/magabrotheeeer/family-hub/internal/lib/smtp"
	"github.com/magabrotheeeer/family-hub/internal/rabbitmq"
	notifierservice "github.com/magabrotheeeer/family-hub/internal/services/notifier"
)

// App — воркер уведомлений.
type App struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	notifier *notifierservice.NotifierService
	logger   *slog.Logger
}

// New создает воркер: подключается к RabbitMQ и настраивает очереди.
func New(_ context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(cfg.RabbitMQConnection, 5, 3*time.Second)
	if err != nil {
		return nil, err
	}

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetNotificationQueues())
	if err != nil {
		conn.Close()
		return nil, err
	}

	transport := smtp.NewTransport(cfg, logger)
	notifier := notifierservice.NewNotifierService(transport, logger)

	return &App{
		conn:     conn,
		ch:       ch,
		notifier: notifier,
		logger:   logger,
	}, nil
}

// Run запускает потребителя очереди и блокируется до отмены контекста.
func (a *App) Run(ctx context.Context) error {
	err := rabbitmq.ConsumerMessage(ctx, a.ch, "notifications.subscription-expired", a.notifier.SendSubscriptionExpired)
	if err != nil {
		a.logger.Error("failed to start subscription-expired consumer", slog.Any("err", err))
		return err
	}

	<-ctx.Done()
	a.logger.Info("notification sender shutting down gracefully")

	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", slog.Any("err", err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", slog.Any("err", err))
	}
	return nil
}
