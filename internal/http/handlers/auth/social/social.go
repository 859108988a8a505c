// Package social реализует HTTP-обработчик входа через внешнего провайдера
// (Google или Facebook) по токену, полученному на клиенте.
package social

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/zenshift/zenshift-backend/internal/http/response"
	"github.com/zenshift/zenshift-backend/internal/lib/sl"
	"github.com/zenshift/zenshift-backend/internal/models"
	"github.com/zenshift/zenshift-backend/internal/services/auth"
)

// Request — входные данные социального входа. Provider обязателен только
// на общем маршруте, на маршрутах конкретного провайдера он игнорируется.
type Request struct {
	Provider string `json:"provider" validate:"omitempty,oneof=google facebook"`
	Token    string `json:"token" validate:"required"`
}

// Service описывает интерфейс бизнес-логики социального входа.
type Service interface {
	SocialLogin(ctx context.Context, provider, externalToken string) (string, *models.User, error)
}

type Handler struct {
	log      *slog.Logger
	service  Service
	provider string
	validate *validator.Validate
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// NewForProvider создает Handler, привязанный к конкретному провайдеру.
// Используется на маршрутах вида /auth/google, где тело содержит только токен.
func NewForProvider(log *slog.Logger, service Service, provider string) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		provider: provider,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Вход через социального провайдера
// @Description Проверяет токен провайдера, создает или привязывает аккаунт и возвращает JWT.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Провайдер и его токен"
// @Success 200 {object} map[string]any "Успешная авторизация"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Токен провайдера не прошел проверку"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /auth/social [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.social"

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

	if h.provider != "" {
		req.Provider = h.provider
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}
	if req.Provider == "" {
		log.Info("missing provider")
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error("field Provider is a required field"))
		return
	}

	token, user, err := h.service.SocialLogin(r.Context(), req.Provider, req.Token)
	if err != nil {
		if errors.Is(err, auth.ErrUnknownProvider) {
			log.Info("unknown provider", slog.String("provider", req.Provider))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("unknown social provider"))
			return
		}
		log.Error("social login failed", sl.Err(err))
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("social token verification failed"))
		return
	}

	log.Info("social login success",
		slog.String("provider", req.Provider),
		slog.String("uid", user.UID),
	)
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"token": token,
		"user": map[string]any{
			"uid":               user.UID,
			"name":              user.Name,
			"email":             user.Email,
			"avatar":            user.Avatar,
			"is_email_verified": user.IsEmailVerified,
			"subscription":      user.Subscription,
		},
	}))
}
