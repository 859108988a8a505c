// Package zenshiftbackend предоставляет маршруты для основного приложения.
package zenshiftbackend

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/zenshift/zenshift-backend/internal/http/handlers/auth/forgotpassword"
	"github.com/zenshift/zenshift-backend/internal/http/handlers/auth/login"
	"github.com/zenshift/zenshift-backend/internal/http/handlers/auth/register"
	"github.com/zenshift/zenshift-backend/internal/http/handlers/auth/resetpassword"
	"github.com/zenshift/zenshift-backend/internal/http/handlers/auth/social"
	"github.com/zenshift/zenshift-backend/internal/http/handlers/auth/verifyemail"
	emailsend "github.com/zenshift/zenshift-backend/internal/http/handlers/email/send"
	fileupload "github.com/zenshift/zenshift-backend/internal/http/handlers/files/upload"
	"github.com/zenshift/zenshift-backend/internal/http/handlers/health"
	"github.com/zenshift/zenshift-backend/internal/http/handlers/resource/create"
	"github.com/zenshift/zenshift-backend/internal/http/handlers/resource/list"
	"github.com/zenshift/zenshift-backend/internal/http/handlers/resource/read"
	"github.com/zenshift/zenshift-backend/internal/http/handlers/resource/remove"
	"github.com/zenshift/zenshift-backend/internal/http/handlers/resource/update"
	"github.com/zenshift/zenshift-backend/internal/http/handlers/subscription/checkout"
	"github.com/zenshift/zenshift-backend/internal/http/handlers/subscription/status"
	"github.com/zenshift/zenshift-backend/internal/http/handlers/subscription/webhook"
	"github.com/zenshift/zenshift-backend/internal/http/handlers/users/profile"
	usersremove "github.com/zenshift/zenshift-backend/internal/http/handlers/users/remove"
	usersupdate "github.com/zenshift/zenshift-backend/internal/http/handlers/users/update"
	"github.com/zenshift/zenshift-backend/internal/http/middlewarectx"
	"github.com/zenshift/zenshift-backend/internal/models"
	authservice "github.com/zenshift/zenshift-backend/internal/services/auth"
	"github.com/zenshift/zenshift-backend/internal/services/mailer"
	"github.com/zenshift/zenshift-backend/internal/services/resource"
	subservice "github.com/zenshift/zenshift-backend/internal/services/subscription"
	"github.com/zenshift/zenshift-backend/internal/upload"
)

// Services собирает бизнес-логику, которой пользуются маршруты.
type Services struct {
	Auth         *authservice.Service
	Subscription *subservice.Service
	Mailer       *mailer.Service
	Products     *resource.Service[models.Product]
	Journals     *resource.Service[models.Journal]
	BlogPosts    *resource.Service[models.BlogPost]
	Reviews      *resource.Service[models.Review]
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, services *Services, parser middlewarectx.TokenParser, webhookSecret string, uploadStore *upload.Store) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	authMW := middlewarectx.JWTMiddleware(parser, logger)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.RateLimitMiddleware(logger))
			r.Post("/auth/register", register.New(logger, services.Auth).ServeHTTP)
			r.Post("/auth/login", login.New(logger, services.Auth).ServeHTTP)
			r.Post("/auth/social", social.New(logger, services.Auth).ServeHTTP)
			r.Post("/auth/google", social.NewForProvider(logger, services.Auth, "google").ServeHTTP)
			r.Post("/auth/facebook", social.NewForProvider(logger, services.Auth, "facebook").ServeHTTP)
			r.Get("/auth/verify-email", verifyemail.New(logger, services.Auth).ServeHTTP)
			r.Post("/auth/verify-email", verifyemail.New(logger, services.Auth).ServeHTTP)
			r.Post("/auth/forgot-password", forgotpassword.New(logger, services.Auth).ServeHTTP)
			r.Post("/auth/reset-password", resetpassword.New(logger, services.Auth).ServeHTTP)
			r.Post("/email/send", emailsend.New(logger, services.Mailer).ServeHTTP)
		})

		// Каталог: чтение открыто, запись только с JWT
		registerResource(r, logger, "products", services.Products, authMW)
		registerResource(r, logger, "journals", services.Journals, authMW)
		registerResource(r, logger, "blogposts", services.BlogPosts, authMW)
		registerResource(r, logger, "reviews", services.Reviews, authMW)

		checkoutHandler := checkout.New(logger, services.Subscription)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(authMW)
			r.Get("/users/me", profile.New(logger, services.Auth).ServeHTTP)
			r.Put("/users/me", usersupdate.New(logger, services.Auth).ServeHTTP)
			r.Delete("/users/me", usersremove.New(logger, services.Auth).ServeHTTP)
			r.Post("/subscription/checkout", checkoutHandler.ServeHTTP)

			uploadHandler := fileupload.New(logger, uploadStore)
			r.Post("/files/upload", uploadHandler.ServeHTTP)
			r.Post("/files/upload-multi", uploadHandler.ServeHTTP)
		})

		// Тот же обработчик без JWT: пользователь указывается явно, как его
		// зовет фронтенд оплаты
		r.Post("/subscription/create-checkout-session", checkoutHandler.ServeHTTP)
		r.Get("/subscription/status", status.New(logger, services.Subscription).ServeHTTP)

		// Webhook endpoint (без аутентификации, подпись проверяется в обработчике)
		r.Post("/subscription/webhook", webhook.New(logger, services.Subscription, webhookSecret).ServeHTTP)

		r.Get("/health", health.New(logger).ServeHTTP)
	})

	// Загруженные файлы отдаются статикой
	r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(uploadStore.Dir()))))

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}

// registerResource вешает полный CRUD одной сущности каталога.
func registerResource[T any](r chi.Router, logger *slog.Logger, path string, svc *resource.Service[T], authMW func(http.Handler) http.Handler) {
	r.Get("/"+path, list.New[T](logger, svc).ServeHTTP)
	r.Get("/"+path+"/{id}", read.New[T](logger, svc).ServeHTTP)
	r.With(authMW).Post("/"+path, create.New[T](logger, svc).ServeHTTP)
	r.With(authMW).Put("/"+path+"/{id}", update.New[T](logger, svc).ServeHTTP)
	r.With(authMW).Delete("/"+path+"/{id}", remove.New(logger, svc).ServeHTTP)
}
