// Package upload реализует HTTP-обработчик загрузки файлов.
//
// Принимает multipart-форму с одним или несколькими файлами в полях
// file и files и возвращает публичные URL сохраненных копий.
package upload

import (
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/zenshift/zenshift-backend/internal/http/response"
	"github.com/zenshift/zenshift-backend/internal/lib/sl"
	"github.com/zenshift/zenshift-backend/internal/upload"
)

// maxFormMemory объем формы, который держится в памяти при парсинге.
const maxFormMemory = 10 << 20

// Store описывает интерфейс хранилища файлов.
type Store interface {
	Save(src io.Reader, originalName string) (string, error)
}

type Handler struct {
	log   *slog.Logger
	store Store
}

func New(log *slog.Logger, store Store) *Handler {
	return &Handler{
		log:   log,
		store: store,
	}
}

// ServeHTTP godoc
// @Summary Загрузка файлов
// @Description Сохраняет файлы из multipart-формы и возвращает их URL.
// @Tags Files
// @Accept  mpfd
// @Produce  json
// @Security BearerAuth
// @Param file formData file true "Файл"
// @Success 201 {object} map[string]any "URL сохраненных файлов"
// @Failure 400 {object} response.ErrorResponse "Некорректная форма"
// @Failure 413 {object} response.ErrorResponse "Файл слишком большой"
// @Failure 415 {object} response.ErrorResponse "Недопустимый тип файла"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /files/upload [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.files.upload"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		log.Error("failed to parse multipart form", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid multipart form"))
		return
	}

	var headers []*multipart.FileHeader
	headers = append(headers, r.MultipartForm.File["file"]...)
	headers = append(headers, r.MultipartForm.File["files"]...)
	if len(headers) == 0 {
		log.Info("no files in form")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("no files provided"))
		return
	}

	urls := make([]string, 0, len(headers))
	for _, header := range headers {
		url, err := h.saveOne(header)
		if err != nil {
			switch {
			case errors.Is(err, upload.ErrTooLarge):
				log.Info("file too large", slog.String("filename", header.Filename))
				w.WriteHeader(http.StatusRequestEntityTooLarge)
				render.JSON(w, r, response.Error("file is too large"))
			case errors.Is(err, upload.ErrUnsupportedType):
				log.Info("unsupported file type", slog.String("filename", header.Filename))
				w.WriteHeader(http.StatusUnsupportedMediaType)
				render.JSON(w, r, response.Error("unsupported file type"))
			default:
				log.Error("failed to save file", sl.Err(err))
				w.WriteHeader(http.StatusInternalServerError)
				render.JSON(w, r, response.Error("failed to save file"))
			}
			return
		}
		urls = append(urls, url)
	}

	log.Info("files uploaded", slog.Int("count", len(urls)))
	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"files": urls,
	}))
}

func (h *Handler) saveOne(header *multipart.FileHeader) (string, error) {
	src, err := header.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	name, err := h.store.Save(src, header.Filename)
	if err != nil {
		return "", err
	}
	return "/uploads/" + name, nil
}
