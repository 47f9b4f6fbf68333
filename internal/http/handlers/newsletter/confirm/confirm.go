// Package confirm реализует HTTP-обработчик подтверждения подписки
// по токену из письма.
package confirm

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/course-platform/internal/http/response"
	"github.com/magabrotheeeer/course-platform/internal/lib/sl"
	services "github.com/magabrotheeeer/course-platform/internal/services/newsletter"
)

// Handler управляет HTTP-запросами подтверждения подписки.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики подтверждения.
type Service interface {
	Confirm(ctx context.Context, token string) error
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Подтвердить подписку
// @Description Подтверждает адрес по токену из письма. Повторное подтверждение — успех.
// @Tags Newsletter
// @Produce  json
// @Param token query string true "Токен подтверждения"
// @Success 200 {object} response.Response "Подписка подтверждена"
// @Failure 404 {object} response.ErrorResponse "Токен не найден"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /newsletter/confirm [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.newsletter.confirm"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	token := r.URL.Query().Get("token")
	if err := h.service.Confirm(r.Context(), token); err != nil {
		if errors.Is(err, services.ErrTokenNotFound) {
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("confirmation token not found"))
			return
		}
		log.Error("failed to confirm subscription", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not confirm subscription"))
		return
	}

	log.Info("subscription confirmed")
	render.JSON(w, r, response.OK())
}
