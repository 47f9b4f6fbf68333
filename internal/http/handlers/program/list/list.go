// Package list реализует HTTP-обработчик списка программ.
//
// Публичная витрина видит только опубликованные программы;
// администратор получает полный список, включая черновики.
package list

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/course-platform/internal/http/middlewarectx"
	"github.com/magabrotheeeer/course-platform/internal/http/response"
	"github.com/magabrotheeeer/course-platform/internal/lib/sl"
	"github.com/magabrotheeeer/course-platform/internal/models"
)

// Handler управляет HTTP-запросами списка программ.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики списка программ.
type Service interface {
	List(ctx context.Context, onlyPublished bool, limit, offset int) ([]*models.Program, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Список программ
// @Description Возвращает программы. Не-администраторы видят только опубликованные.
// @Tags Programs
// @Produce  json
// @Param limit query int false "Размер страницы" default(20)
// @Param offset query int false "Смещение" default(0)
// @Success 200 {object} map[string]any "Список программ"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /programs [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.program.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = 20
	}
	offset, err := strconv.Atoi(r.URL.Query().Get("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}

	role, _ := r.Context().Value(middlewarectx.Role).(string)
	onlyPublished := role != models.RoleAdmin

	programs, err := h.service.List(r.Context(), onlyPublished, limit, offset)
	if err != nil {
		log.Error("failed to list programs", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list programs"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"programs": programs,
		"count":    len(programs),
	}))
}
