// Package create реализует HTTP-обработчик создания сущности каталога.
package create

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/zenshift/zenshift-backend/internal/http/response"
	"github.com/zenshift/zenshift-backend/internal/lib/sl"
)

// Service описывает интерфейс бизнес-логики создания сущности.
type Service[T any] interface {
	Create(ctx context.Context, item *T) (string, error)
}

type Handler[T any] struct {
	log      *slog.Logger
	service  Service[T]
	validate *validator.Validate
}

func New[T any](log *slog.Logger, service Service[T]) *Handler[T] {
	return &Handler[T]{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Создать сущность каталога
// @Tags Catalog
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Success 201 {object} map[string]any "Идентификатор созданной сущности"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /{resource} [post]
func (h *Handler[T]) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.resource.create"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var item T
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(&item); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	id, err := h.service.Create(r.Context(), &item)
	if err != nil {
		log.Error("failed to create resource", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to create resource"))
		return
	}

	log.Info("resource created", slog.String("id", id))
	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"id": id,
	}))
}
