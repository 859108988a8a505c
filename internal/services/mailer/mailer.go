// Package mailer публикует задания на отправку писем в очередь.
package mailer

import (
	"fmt"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/zenshift/zenshift-backend/internal/lib/sl"
	"github.com/zenshift/zenshift-backend/internal/models"
	"github.com/zenshift/zenshift-backend/internal/rabbitmq"
)

// Publisher абстрагирует публикацию в брокер сообщений.
type Publisher interface {
	Publish(exchange, routingKey string, message any) error
}

// Service ставит транзакционные письма в очередь на отправку.
type Service struct {
	publisher Publisher
	log       *slog.Logger
}

// New создает новый Service.
func New(publisher Publisher, log *slog.Logger) *Service {
	return &Service{publisher: publisher, log: log}
}

// EnqueueVerifyEmail ставит в очередь письмо подтверждения почты.
func (s *Service) EnqueueVerifyEmail(name, email, token string) error {
	return s.enqueue(models.EmailJob{
		Kind:  models.EmailKindVerifyEmail,
		Name:  name,
		Email: email,
		Token: token,
	})
}

// EnqueueResetPassword ставит в очередь письмо сброса пароля.
func (s *Service) EnqueueResetPassword(name, email, token string) error {
	return s.enqueue(models.EmailJob{
		Kind:  models.EmailKindResetPassword,
		Name:  name,
		Email: email,
		Token: token,
	})
}

// EnqueueDirect ставит в очередь произвольное письмо с заданной темой
// и телом (текстовым или HTML).
func (s *Service) EnqueueDirect(to, subject, text, html string) error {
	return s.enqueue(models.EmailJob{
		Kind:    models.EmailKindDirect,
		Email:   to,
		Subject: subject,
		Text:    text,
		HTML:    html,
	})
}

func (s *Service) enqueue(job models.EmailJob) error {
	const op = "mailer.enqueue"

	if err := s.publisher.Publish(rabbitmq.Exchange, "transactional", job); err != nil {
		s.log.Error("failed to enqueue email job",
			slog.String("kind", job.Kind), sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("email job enqueued",
		slog.String("kind", job.Kind), slog.String("email", job.Email))
	return nil
}

// AMQPPublisher адаптирует канал RabbitMQ к интерфейсу Publisher.
type AMQPPublisher struct {
	Ch *amqp.Channel
}

// Publish публикует сообщение через канал RabbitMQ.
func (p AMQPPublisher) Publish(exchange, routingKey string, message any) error {
	return rabbitmq.PublishMessage(p.Ch, exchange, routingKey, message)
}
