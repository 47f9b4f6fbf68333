// Package read реализует HTTP-обработчик чтения одной программы.
package read

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/course-platform/internal/http/middlewarectx"
	"github.com/magabrotheeeer/course-platform/internal/http/response"
	"github.com/magabrotheeeer/course-platform/internal/lib/sl"
	"github.com/magabrotheeeer/course-platform/internal/models"
	services "github.com/magabrotheeeer/course-platform/internal/services/program"
)

// Handler управляет HTTP-запросами чтения программы.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики чтения программы.
type Service interface {
	Get(ctx context.Context, slug string, onlyPublished bool) (*models.Program, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Прочитать программу
// @Description Возвращает программу по слагу. Черновики видит только администратор.
// @Tags Programs
// @Produce  json
// @Param slug path string true "Слаг программы"
// @Success 200 {object} map[string]any "Программа"
// @Failure 404 {object} response.ErrorResponse "Программа не найдена"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /programs/{slug} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.program.read"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	slug := chi.URLParam(r, "slug")
	role, _ := r.Context().Value(middlewarectx.Role).(string)
	onlyPublished := role != models.RoleAdmin

	program, err := h.service.Get(r.Context(), slug, onlyPublished)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("program not found"))
			return
		}
		log.Error("failed to read program", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read program"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"program": program,
	}))
}
