// Package unsubscribe реализует HTTP-обработчик отписки по токену.
package unsubscribe

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

// Handler управляет HTTP-запросами отписки.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики отписки.
type Service interface {
	Unsubscribe(ctx context.Context, token string) error
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Отписаться от рассылки
// @Description Отписывает адрес по токену из письма. Повторная отписка — успех.
// @Tags Newsletter
// @Produce  json
// @Param token query string true "Токен отписки"
// @Success 200 {object} response.Response "Отписка выполнена"
// @Failure 404 {object} response.ErrorResponse "Токен не найден"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /newsletter/unsubscribe [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.newsletter.unsubscribe"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	token := r.URL.Query().Get("token")
	if err := h.service.Unsubscribe(r.Context(), token); err != nil {
		if errors.Is(err, services.ErrTokenNotFound) {
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("token not found"))
			return
		}
		log.Error("failed to unsubscribe", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not unsubscribe"))
		return
	}

	log.Info("subscriber unsubscribed")
	render.JSON(w, r, response.OK())
}
