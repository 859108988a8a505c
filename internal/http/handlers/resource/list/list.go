// Package list реализует HTTP-обработчик постраничного списка сущностей каталога.
//
// Пагинация и сортировка приходят в query-параметрах page, limit и sort_by,
// все остальные параметры трактуются как фильтры. Неизвестные ключи фильтров
// и значения сортировки репозиторий молча игнорирует.
package list

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/zenshift/zenshift-backend/internal/http/response"
	"github.com/zenshift/zenshift-backend/internal/lib/sl"
	"github.com/zenshift/zenshift-backend/internal/models"
)

// Service описывает интерфейс бизнес-логики списка сущностей.
type Service[T any] interface {
	List(ctx context.Context, filter models.ListFilter) ([]*T, int, error)
}

type Handler[T any] struct {
	log     *slog.Logger
	service Service[T]
}

func New[T any](log *slog.Logger, service Service[T]) *Handler[T] {
	return &Handler[T]{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Список сущностей каталога
// @Tags Catalog
// @Produce  json
// @Param page query int false "Номер страницы (с 1)"
// @Param limit query int false "Размер страницы (по умолчанию 20, максимум 100)"
// @Param sort_by query string false "Ключ сортировки"
// @Success 200 {object} response.Response "Страница сущностей"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /{resource} [get]
func (h *Handler[T]) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.resource.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	filter := parseFilter(r)

	items, total, err := h.service.List(r.Context(), filter)
	if err != nil {
		log.Error("failed to list resources", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list resources"))
		return
	}

	filter.Normalize()
	totalPages := (total + filter.Limit - 1) / filter.Limit

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"items":      items,
		"total":      total,
		"page":       filter.Page,
		"totalPages": totalPages,
	}))
}

// parseFilter собирает ListFilter из query-параметров запроса.
func parseFilter(r *http.Request) models.ListFilter {
	query := r.URL.Query()

	filter := models.ListFilter{
		SortBy:  query.Get("sort_by"),
		Filters: map[string]string{},
	}
	if page, err := strconv.Atoi(query.Get("page")); err == nil {
		filter.Page = page
	}
	if limit, err := strconv.Atoi(query.Get("limit")); err == nil {
		filter.Limit = limit
	}

	for key, values := range query {
		switch key {
		case "page", "limit", "sort_by":
			continue
		}
		if len(values) > 0 && values[0] != "" {
			filter.Filters[key] = values[0]
		}
	}
	return filter
}
