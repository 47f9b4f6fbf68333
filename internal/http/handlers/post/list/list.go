// Package list реализует HTTP-обработчик списка статей блога с
// фильтрами по статусу, рубрике, тегу и текстовому запросу.
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

// Handler управляет HTTP-запросами списка статей.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики списка статей.
type Service interface {
	ListPosts(ctx context.Context, onlyPublished bool, filter models.PostFilter) ([]*models.Post, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Список статей
// @Description Возвращает статьи, отфильтрованные и отсортированные по свежести. Не-администраторы видят только опубликованные.
// @Tags Posts
// @Produce  json
// @Param status query string false "Фильтр по статусу (только администратор)"
// @Param category_id query int false "Фильтр по рубрике"
// @Param tag query string false "Фильтр по тегу"
// @Param q query string false "Поиск по заголовку, слагу, анонсу и рубрике"
// @Success 200 {object} map[string]any "Список статей"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /posts [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.post.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	role, _ := r.Context().Value(middlewarectx.Role).(string)
	onlyPublished := role != models.RoleAdmin

	filter := models.PostFilter{
		Tag:   r.URL.Query().Get("tag"),
		Query: r.URL.Query().Get("q"),
	}
	if onlyPublished {
		filter.Status = models.PostPublished
	} else {
		filter.Status = r.URL.Query().Get("status")
	}
	if raw := r.URL.Query().Get("category_id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid category_id"))
			return
		}
		filter.CategoryID = &id
	}

	posts, err := h.service.ListPosts(r.Context(), onlyPublished, filter)
	if err != nil {
		log.Error("failed to list posts", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list posts"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"posts": posts,
		"count": len(posts),
	}))
}
