// Package checkout реализует HTTP-обработчик создания checkout-сессии
// платежного шлюза для оформления подписки.
package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/zenshift/zenshift-backend/internal/http/middlewarectx"
	"github.com/zenshift/zenshift-backend/internal/http/response"
	"github.com/zenshift/zenshift-backend/internal/lib/sl"
	"github.com/zenshift/zenshift-backend/internal/services/subscription"
)

// Request — входные данные оформления подписки. UserID используется
// только на публичном маршруте, при наличии JWT он игнорируется.
type Request struct {
	// Неизвестный план отклоняет сервис, чтобы ответ был 400, а не 422.
	Plan   string `json:"plan" validate:"required"`
	UserID string `json:"user_id"`
}

// Service описывает интерфейс бизнес-логики создания checkout-сессии.
type Service interface {
	CreateCheckoutSession(ctx context.Context, userUID, plan string) (string, error)
}

type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Создать checkout-сессию подписки
// @Description Создает сессию оплаты в платежном шлюзе и возвращает URL редиректа.
// @Tags Subscription
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body Request true "Выбранный план"
// @Success 200 {object} map[string]any "URL сессии оплаты"
// @Failure 400 {object} response.ErrorResponse "Неизвестный план или не указан пользователь"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка платежного шлюза"
// @Router /subscription/checkout [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.checkout"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	userUID, ok := middlewarectx.UserUIDFromContext(r.Context())
	if !ok {
		userUID = req.UserID
	}
	if userUID == "" {
		log.Error("user identification missing")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("user identification missing"))
		return
	}

	sessionURL, err := h.service.CreateCheckoutSession(r.Context(), userUID, req.Plan)
	if err != nil {
		switch {
		case errors.Is(err, subscription.ErrInvalidPlan):
			log.Info("invalid plan", slog.String("plan", req.Plan))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("unknown subscription plan"))
		case errors.Is(err, subscription.ErrUserNotFound):
			log.Info("user not found", slog.String("uid", userUID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("user not found"))
		default:
			// Текст ошибки шлюза отдаем как есть, фронтенд показывает его пользователю.
			log.Error("failed to create checkout session", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(err.Error()))
		}
		return
	}

	log.Info("checkout session created", slog.String("uid", userUID), slog.String("plan", req.Plan))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"url": sessionURL,
	}))
}
