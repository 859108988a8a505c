// Package sender собирает воркер отправки транзакционных писем:
// подключение к RabbitMQ, SMTP-транспорт и цикл потребления очереди.
package sender

import (
	"context"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/zenshift/zenshift-backend/internal/config"
	"github.com/zenshift/zenshift-backend/internal/lib/smtp"
	"github.com/zenshift/zenshift-backend/internal/rabbitmq"
	senderservice "github.com/zenshift/zenshift-backend/internal/services/sender"
)

type App struct {
	conn          *amqp.Connection
	ch            *amqp.Channel
	senderService *senderservice.SenderService
	logger        *slog.Logger
}

func New(_ context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(cfg.Rabbit.RabbitURL, cfg.Rabbit.ConnectRetries, cfg.Rabbit.ConnectDelay)
	if err != nil {
		return nil, err
	}

	queues := rabbitmq.GetEmailQueues()
	ch, err := rabbitmq.SetupChannel(conn, queues)
	if err != nil {
		conn.Close()
		return nil, err
	}

	transport := smtp.NewTransport(cfg, logger)
	senderService := senderservice.NewSenderService(cfg, logger, transport)

	return &App{
		conn:          conn,
		ch:            ch,
		senderService: senderService,
		logger:        logger,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	for _, queue := range rabbitmq.GetEmailQueues() {
		if err := rabbitmq.ConsumerMessage(ctx, a.ch, queue.QueueName, a.senderService.HandleEmailJob); err != nil {
			a.logger.Error("failed to start consumer",
				slog.String("queue", queue.QueueName), slog.Any("err", err))
			return err
		}
	}

	<-ctx.Done()
	a.logger.Info("sender service shutting down gracefully")

	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", slog.Any("err", err))
	}

	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", slog.Any("err", err))
	}

	return nil
}
