// Package remove реализует HTTP-обработчик удаления рубрики блога.
//
// Запрос с ?dry_run=true ничего не удаляет и возвращает число статей,
// которые останутся без рубрики. Само удаление статьи не трогает.
package remove

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/course-platform/internal/http/response"
	"github.com/magabrotheeeer/course-platform/internal/lib/sl"
	services "github.com/magabrotheeeer/course-platform/internal/services/blog"
)

// Handler управляет HTTP-запросами удаления рубрик.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики удаления рубрики.
type Service interface {
	RemoveCategoryPreview(ctx context.Context, id int) (int, error)
	RemoveCategory(ctx context.Context, id int) error
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Удалить рубрику
// @Description Удаляет рубрику. С ?dry_run=true только возвращает число затронутых статей.
// @Tags Categories
// @Produce  json
// @Param id path int true "ID рубрики"
// @Param dry_run query bool false "Только посчитать затронутые статьи"
// @Success 200 {object} map[string]any "Результат удаления или сухого прогона"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 404 {object} response.ErrorResponse "Рубрика не найдена"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /categories/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.category.remove"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		log.Error("invalid id format", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid id"))
		return
	}

	if r.URL.Query().Get("dry_run") == "true" {
		affected, err := h.service.RemoveCategoryPreview(r.Context(), id)
		if err != nil {
			log.Error("failed to preview category removal", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not preview category removal"))
			return
		}
		render.JSON(w, r, response.OKWithData(map[string]any{
			"dry_run":        true,
			"affected_posts": affected,
		}))
		return
	}

	if err := h.service.RemoveCategory(r.Context(), id); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("category not found"))
			return
		}
		log.Error("failed to remove category", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not remove category"))
		return
	}

	log.Info("category removed", slog.Int("id", id))
	render.JSON(w, r, response.OK())
}
