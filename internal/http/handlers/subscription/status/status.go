// Package status реализует HTTP-обработчик чтения снимка подписки
// текущего пользователя.
package status

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/zenshift/zenshift-backend/internal/http/middlewarectx"
	"github.com/zenshift/zenshift-backend/internal/http/response"
	"github.com/zenshift/zenshift-backend/internal/lib/sl"
	"github.com/zenshift/zenshift-backend/internal/models"
	"github.com/zenshift/zenshift-backend/internal/services/subscription"
)

// Service описывает интерфейс чтения снимка подписки.
type Service interface {
	GetStatus(ctx context.Context, userUID string) (*models.Subscription, error)
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Статус подписки
// @Description Возвращает план и статус подписки текущего пользователя.
// @Tags Subscription
// @Produce  json
// @Param user_id query string false "Идентификатор пользователя (если запрос без JWT)"
// @Success 200 {object} models.Subscription "Снимок подписки"
// @Failure 400 {object} response.ErrorResponse "Не указан пользователь"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /subscription/status [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.status"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID, ok := middlewarectx.UserUIDFromContext(r.Context())
	if !ok {
		userUID = r.URL.Query().Get("user_id")
	}
	if userUID == "" {
		log.Error("user identification missing")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("user identification missing"))
		return
	}

	sub, err := h.service.GetStatus(r.Context(), userUID)
	if err != nil {
		if errors.Is(err, subscription.ErrUserNotFound) {
			log.Info("user not found", slog.String("uid", userUID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("user not found"))
			return
		}
		log.Error("failed to get subscription status", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to get subscription status"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(sub))
}
