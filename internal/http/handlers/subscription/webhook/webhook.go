// Package webhook реализует HTTP-обработчик событий платежного шлюза.
//
// Подпись проверяется по сырому телу запроса до любого парсинга, поэтому
// тело читается целиком, а не через json.Decoder. Для проверенных событий
// обработчик всегда отвечает 200, иначе шлюз начнет бесконечные повторы.
package webhook

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/zenshift/zenshift-backend/internal/billing"
	"github.com/zenshift/zenshift-backend/internal/http/response"
	"github.com/zenshift/zenshift-backend/internal/lib/sl"
)

// maxBodyBytes предел размера тела webhook, как в официальных примерах Stripe.
const maxBodyBytes = int64(65536)

// Service описывает интерфейс применения событий шлюза к состоянию подписок.
type Service interface {
	ApplyEvent(ctx context.Context, event billing.Event) error
}

type Handler struct {
	log           *slog.Logger
	service       Service
	webhookSecret string
}

func New(log *slog.Logger, service Service, webhookSecret string) *Handler {
	return &Handler{
		log:           log,
		service:       service,
		webhookSecret: webhookSecret,
	}
}

// ServeHTTP godoc
// @Summary Webhook платежного шлюза
// @Description Принимает события Stripe, проверяет подпись и синхронизирует снимок подписки.
// @Tags Subscription
// @Accept  json
// @Produce  json
// @Param Stripe-Signature header string true "Подпись запроса"
// @Success 200 {object} map[string]bool "Событие принято"
// @Failure 400 {object} response.ErrorResponse "Невалидная подпись или тело"
// @Failure 500 {object} response.ErrorResponse "Ошибка применения события"
// @Router /subscription/webhook [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.webhook"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		log.Error("failed to read request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to read request body"))
		return
	}

	event, err := billing.ConstructEvent(payload, r.Header.Get("Stripe-Signature"), h.webhookSecret)
	if err != nil {
		if errors.Is(err, billing.ErrInvalidSignature) {
			log.Error("webhook signature verification failed", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid signature"))
			return
		}
		log.Error("failed to construct event", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid payload"))
		return
	}

	if err := h.service.ApplyEvent(r.Context(), event); err != nil {
		log.Error("failed to apply event", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to apply event"))
		return
	}

	render.JSON(w, r, map[string]bool{"received": true})
}
