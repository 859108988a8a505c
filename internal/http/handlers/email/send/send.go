// Package send реализует HTTP-обработчик отправки произвольного письма
// через очередь транзакционной почты.
package send

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/zenshift/zenshift-backend/internal/http/response"
	"github.com/zenshift/zenshift-backend/internal/lib/sl"
)

// Request — произвольное письмо: адресат, тема и тело (текстовое
// или HTML, хотя бы одно из двух).
type Request struct {
	To      string `json:"to" validate:"required,email"`
	Subject string `json:"subject" validate:"required"`
	Text    string `json:"text"`
	HTML    string `json:"html"`
}

// Service ставит письмо в очередь на отправку.
type Service interface {
	EnqueueDirect(to, subject, text, html string) error
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
// @Summary Отправить письмо
// @Description Ставит письмо в очередь отправки, воркер доставляет его по SMTP.
// @Tags Email
// @Accept  json
// @Produce  json
// @Param request body Request true "Адресат, тема и тело письма"
// @Success 200 {object} map[string]any "Письмо поставлено в очередь"
// @Failure 400 {object} response.ErrorResponse "Нет ни текстового, ни HTML-тела"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Очередь недоступна"
// @Router /email/send [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.email.send"

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

	if req.Text == "" && req.HTML == "" {
		log.Info("email body missing", slog.String("to", req.To))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("text or html body is required"))
		return
	}

	if err := h.service.EnqueueDirect(req.To, req.Subject, req.Text, req.HTML); err != nil {
		log.Error("failed to enqueue email", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to send email"))
		return
	}

	log.Info("email enqueued", slog.String("to", req.To))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"message": "email queued for delivery",
	}))
}
