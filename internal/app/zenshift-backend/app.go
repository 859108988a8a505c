// Package zenshiftbackend собирает основное HTTP-приложение: хранилище,
// кэш, очередь писем, платежный шлюз и все сервисы поверх них.
package zenshiftbackend

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/zenshift/zenshift-backend/internal/billing"
	"github.com/zenshift/zenshift-backend/internal/cache"
	"github.com/zenshift/zenshift-backend/internal/config"
	"github.com/zenshift/zenshift-backend/internal/lib/jwt"
	"github.com/zenshift/zenshift-backend/internal/migrations"
	"github.com/zenshift/zenshift-backend/internal/models"
	"github.com/zenshift/zenshift-backend/internal/rabbitmq"
	authservice "github.com/zenshift/zenshift-backend/internal/services/auth"
	"github.com/zenshift/zenshift-backend/internal/services/mailer"
	"github.com/zenshift/zenshift-backend/internal/services/resource"
	subservice "github.com/zenshift/zenshift-backend/internal/services/subscription"
	"github.com/zenshift/zenshift-backend/internal/storage/repository"
	"github.com/zenshift/zenshift-backend/internal/upload"
)

type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	conn   *amqp.Connection
	ch     *amqp.Channel
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, "./migrations"); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	conn, err := rabbitmq.Connect(cfg.Rabbit.RabbitURL, cfg.Rabbit.ConnectRetries, cfg.Rabbit.ConnectDelay)
	if err != nil {
		return nil, err
	}
	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetEmailQueues())
	if err != nil {
		conn.Close()
		return nil, err
	}

	mailerService := mailer.New(&mailer.AMQPPublisher{Ch: ch}, logger)

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL, cfg.EmailTokenTTL)
	verifiers := map[string]authservice.SocialVerifier{
		"google":   authservice.NewGoogleVerifier(cfg.Social.GoogleClientID),
		"facebook": authservice.NewFacebookVerifier(cfg.Social.FacebookAppSecret),
	}
	authService := authservice.New(db, mailerService, jwtMaker, verifiers, cfg.EmailTokenTTL, logger)

	gateway := billing.NewClient(cfg.Billing.StripeSecretKey)
	subscriptionService := subservice.New(db, gateway, cfg.Billing, logger)

	services := &Services{
		Auth:         authService,
		Subscription: subscriptionService,
		Mailer:       mailerService,
		Products:     resource.New[models.Product](repository.NewProductRepo(db), cacheRedis, "product", logger),
		Journals:     resource.New[models.Journal](repository.NewJournalRepo(db), cacheRedis, "journal", logger),
		BlogPosts:    resource.New[models.BlogPost](repository.NewBlogPostRepo(db), cacheRedis, "blogpost", logger),
		Reviews:      resource.New[models.Review](repository.NewReviewRepo(db), cacheRedis, "review", logger),
	}

	uploadStore, err := upload.NewStore(cfg.Upload)
	if err != nil {
		conn.Close()
		return nil, err
	}

	router := chi.NewRouter()
	RegisterRoutes(router, logger, services, jwtMaker, cfg.Billing.WebhookSecret, uploadStore)

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
		conn:   conn,
		ch:     ch,
	}, nil
}

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
		a.ch.Close()
		a.conn.Close()
		a.db.DB.Close()
		return err
	}
}
