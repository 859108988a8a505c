// Package read реализует HTTP-обработчик получения сущности каталога по ID.
//
// Handler параметризован типом сущности и обслуживает любой ресурс
// (товары, журналы, публикации, отзывы) с одним и тем же контрактом.
package read

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/zenshift/zenshift-backend/internal/http/response"
	"github.com/zenshift/zenshift-backend/internal/lib/sl"
	"github.com/zenshift/zenshift-backend/internal/storage/repository"
)

// Service описывает интерфейс бизнес-логики чтения сущности.
type Service[T any] interface {
	Get(ctx context.Context, id string) (*T, error)
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
// @Summary Получить сущность каталога по ID
// @Tags Catalog
// @Produce  json
// @Param id path string true "Идентификатор сущности"
// @Success 200 {object} response.Response "Сущность"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 404 {object} response.ErrorResponse "Сущность не найдена"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /{resource}/{id} [get]
func (h *Handler[T]) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.resource.read"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id := chi.URLParam(r, "id")
	if err := h.validate.Var(id, "required,uuid"); err != nil {
		log.Info("invalid id in url", slog.String("id", id))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid id"))
		return
	}

	item, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			log.Info("not found", slog.String("id", id))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("not found"))
			return
		}
		log.Error("failed to read resource", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to read resource"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(item))
}
