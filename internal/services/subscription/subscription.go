// Package subscription содержит бизнес-логику синхронизации состояния
// подписки пользователя с платежным шлюзом: создание checkout-сессий и
// применение событий webhook. Оба пути только перезаписывают поля снимка,
// поэтому повторная доставка события дает то же сохраненное состояние.
package subscription

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/zenshift/zenshift-backend/internal/billing"
	"github.com/zenshift/zenshift-backend/internal/config"
	"github.com/zenshift/zenshift-backend/internal/lib/sl"
	"github.com/zenshift/zenshift-backend/internal/models"
	"github.com/zenshift/zenshift-backend/internal/storage/repository"
)

// Ошибки бизнес-уровня, обрабатываемые на границе HTTP.
var (
	// ErrInvalidPlan план вне множества basic|premium.
	ErrInvalidPlan = errors.New("invalid plan")
	// ErrUserNotFound пользователь не найден в хранилище.
	ErrUserNotFound = errors.New("user not found")
	// ErrPriceNotConfigured для плана не задан идентификатор тарифа шлюза.
	ErrPriceNotConfigured = errors.New("price id is not configured for plan")
)

// UserRepository определяет методы хранилища, нужные для синхронизации подписки.
type UserRepository interface {
	// GetUser возвращает пользователя по его UID.
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	// GetUserByStripeCustomerID возвращает пользователя по идентификатору клиента шлюза.
	GetUserByStripeCustomerID(ctx context.Context, customerID string) (*models.User, error)
	// UpdateStripeCustomerID сохраняет идентификатор клиента шлюза на записи пользователя.
	UpdateStripeCustomerID(ctx context.Context, userUID, customerID string) error
	// UpdateSubscription перезаписывает снимок подписки пользователя.
	UpdateSubscription(ctx context.Context, userUID string, sub models.Subscription) error
}

// Gateway описывает операции платежного шлюза, используемые сервисом.
type Gateway interface {
	CreateCustomer(ctx context.Context, email, name string, metadata map[string]string) (string, error)
	CreateCheckoutSession(ctx context.Context, params billing.CheckoutSessionParams) (string, error)
}

// Service реализует синхронизацию подписки между хранилищем и шлюзом.
type Service struct {
	repo    UserRepository
	gateway Gateway
	cfg     config.Billing
	log     *slog.Logger
}

// New создает новый Service.
func New(repo UserRepository, gateway Gateway, cfg config.Billing, log *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		gateway: gateway,
		cfg:     cfg,
		log:     log,
	}
}

// CreateCheckoutSession создает checkout-сессию шлюза для выбранного плана
// и возвращает URL страницы оплаты.
//
// Если у пользователя еще нет клиента в шлюзе, он создается, и идентификатор
// сохраняется до запроса сессии: падение между этими шагами оставит в шлюзе
// лишнего клиента, что допустимо. Статус подписки на этом пути не меняется,
// его выставляет только путь webhook.
func (s *Service) CreateCheckoutSession(ctx context.Context, userUID, plan string) (string, error) {
	const op = "subscription.CreateCheckoutSession"

	if plan != models.PlanBasic && plan != models.PlanPremium {
		return "", fmt.Errorf("%s: %q: %w", op, plan, ErrInvalidPlan)
	}

	user, err := s.repo.GetUser(ctx, userUID)
	if errors.Is(err, repository.ErrNotFound) {
		return "", fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	customerID := user.Subscription.StripeCustomerID
	if customerID == "" {
		customerID, err = s.gateway.CreateCustomer(ctx, user.Email, user.Name,
			map[string]string{"user_uid": user.UID})
		if err != nil {
			return "", fmt.Errorf("%s: %w", op, err)
		}
		if err = s.repo.UpdateStripeCustomerID(ctx, user.UID, customerID); err != nil {
			return "", fmt.Errorf("%s: %w", op, err)
		}
		s.log.Info("created gateway customer",
			slog.String("user_uid", user.UID), slog.String("customer_id", customerID))
	}

	priceID, err := s.priceForPlan(plan)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	frontend := ensureAbsoluteURL(s.cfg.FrontendURL)
	url, err := s.gateway.CreateCheckoutSession(ctx, billing.CheckoutSessionParams{
		CustomerID: customerID,
		PriceID:    priceID,
		SuccessURL: frontend + "/dashboard?success=true",
		CancelURL:  frontend + "/dashboard?canceled=true",
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return url, nil
}

// ApplyEvent применяет событие шлюза к снимку подписки пользователя.
//
// Отсутствие пользователя для пришедшего customer id не ошибка: события
// шлюза могут приходить для еще (или уже) не сопоставленных клиентов, и
// ответ ошибкой заставил бы шлюз бесконечно ретраить доставку.
func (s *Service) ApplyEvent(ctx context.Context, event billing.Event) error {
	const op = "subscription.ApplyEvent"

	switch ev := event.(type) {
	case billing.SubscriptionUpserted:
		user, err := s.repo.GetUserByStripeCustomerID(ctx, ev.CustomerID)
		if errors.Is(err, repository.ErrNotFound) {
			s.log.Warn("user not found for gateway customer",
				slog.String("customer_id", ev.CustomerID))
			return nil
		}
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		sub := user.Subscription
		if ev.Status == billing.StatusActive {
			sub.Status = models.SubscriptionStatusActive
		} else {
			sub.Status = models.SubscriptionStatusInactive
		}
		sub.StripeSubscriptionID = ev.SubscriptionID
		if plan := s.planForPrice(ev.PriceID); plan != "" {
			sub.Plan = plan
		} else {
			// Незнакомый тариф: план не трогаем, событие подтверждаем
			s.log.Error("unknown price id in subscription event",
				slog.String("customer_id", ev.CustomerID), slog.String("price_id", ev.PriceID))
		}
		if err := s.repo.UpdateSubscription(ctx, user.UID, sub); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		s.log.Info("updated user subscription",
			slog.String("user_uid", user.UID),
			slog.String("status", sub.Status), slog.String("plan", sub.Plan))
		return nil

	case billing.SubscriptionDeleted:
		user, err := s.repo.GetUserByStripeCustomerID(ctx, ev.CustomerID)
		if errors.Is(err, repository.ErrNotFound) {
			s.log.Warn("user not found for gateway customer",
				slog.String("customer_id", ev.CustomerID))
			return nil
		}
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		sub := user.Subscription
		// План остается последним известным значением как исторический факт
		sub.Status = models.SubscriptionStatusCanceled
		if err := s.repo.UpdateSubscription(ctx, user.UID, sub); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		s.log.Info("marked subscription as canceled", slog.String("user_uid", user.UID))
		return nil

	case billing.Other:
		s.log.Info("ignored webhook event", slog.String("event", ev.Type))
		return nil

	default:
		s.log.Error("unhandled event variant", sl.Err(fmt.Errorf("%T", event)))
		return nil
	}
}

// GetStatus возвращает текущий снимок подписки пользователя без побочных эффектов.
func (s *Service) GetStatus(ctx context.Context, userUID string) (*models.Subscription, error) {
	const op = "subscription.GetStatus"

	user, err := s.repo.GetUser(ctx, userUID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	sub := user.Subscription
	return &sub, nil
}

func (s *Service) priceForPlan(plan string) (string, error) {
	var priceID string
	switch plan {
	case models.PlanBasic:
		priceID = s.cfg.BasicPriceID
	case models.PlanPremium:
		priceID = s.cfg.PremiumPriceID
	}
	if priceID == "" {
		return "", fmt.Errorf("%q: %w", plan, ErrPriceNotConfigured)
	}
	return priceID, nil
}

func (s *Service) planForPrice(priceID string) string {
	switch {
	case priceID != "" && priceID == s.cfg.BasicPriceID:
		return models.PlanBasic
	case priceID != "" && priceID == s.cfg.PremiumPriceID:
		return models.PlanPremium
	default:
		return ""
	}
}

var absoluteURLPattern = regexp.MustCompile(`^https?://`)

func ensureAbsoluteURL(url string) string {
	if !absoluteURLPattern.MatchString(url) {
		return "http://" + url
	}
	return url
}
