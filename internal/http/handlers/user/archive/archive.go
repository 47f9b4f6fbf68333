// Package archive реализует HTTP-обработчик мягкого удаления пользователя.
package archive

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/course-platform/internal/http/response"
	"github.com/magabrotheeeer/course-platform/internal/lib/sl"
	services "github.com/magabrotheeeer/course-platform/internal/services/user"
)

// Handler управляет HTTP-запросами архивирования пользователей.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики архивирования.
type Service interface {
	Archive(ctx context.Context, uuid string) error
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Архивировать пользователя
// @Description Мягко удаляет пользователя: запись остаётся, вход запрещён.
// @Tags Users
// @Produce  json
// @Param uuid path string true "UID пользователя"
// @Success 200 {object} response.Response "Успешное архивирование"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /users/{uuid}/archive [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.archive"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	uuid := chi.URLParam(r, "uuid")
	if err := h.service.Archive(r.Context(), uuid); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("user not found"))
			return
		}
		log.Error("failed to archive user", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not archive user"))
		return
	}

	log.Info("user archived", slog.String("uuid", uuid))
	render.JSON(w, r, response.OK())
}
