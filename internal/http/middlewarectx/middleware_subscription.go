package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/zenshift/zenshift-backend/internal/http/response"
	"github.com/zenshift/zenshift-backend/internal/lib/sl"
	"github.com/zenshift/zenshift-backend/internal/models"
)

// SubscriptionService определяет интерфейс для чтения снимка подписки пользователя.
type SubscriptionService interface {
	GetStatus(ctx context.Context, userUID string) (*models.Subscription, error)
}

// SubscriptionStatusMiddleware создает middleware, пропускающий только
// пользователей с активной подпиской. Должен стоять после JWTMiddleware.
// Каталог сейчас открыт для чтения, поэтому middleware подключается
// к маршрутам по мере появления платного контента.
func SubscriptionStatusMiddleware(log *slog.Logger, subService SubscriptionService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userUID, ok := UserUIDFromContext(r.Context())
			if !ok {
				log.Error("user identification missing")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("user identification missing"))
				return
			}

			sub, err := subService.GetStatus(r.Context(), userUID)
			if err != nil {
				log.Error("failed to get subscription status", sl.Err(err))
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.Error("internal service error"))
				return
			}

			if sub.Status != models.SubscriptionStatusActive {
				log.Info("inactive subscription, access denied",
					slog.String("user_uid", userUID),
					slog.String("status", sub.Status),
				)
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, response.Error("active subscription required"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
