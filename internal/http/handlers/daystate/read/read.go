// Package read реализует HTTP-обработчик чтения ответов за день:
// черновик из кеша, иначе сохранённое состояние из базы, с
// умолчаниями схемы для незаполненных слайдеров.
package read

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/course-platform/internal/http/middlewarectx"
	"github.com/magabrotheeeer/course-platform/internal/http/response"
	"github.com/magabrotheeeer/course-platform/internal/lib/sl"
	"github.com/magabrotheeeer/course-platform/internal/models"
	services "github.com/magabrotheeeer/course-platform/internal/services/daystate"
)

// Handler управляет HTTP-запросами чтения ответов.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики чтения дня.
type Service interface {
	Load(ctx context.Context, userUID, programSlug string, day int) (*models.DayState, error)
	LastDay(userUID, programSlug string) int
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Прочитать ответы за день
// @Description Возвращает ответы текущего пользователя за день программы и последний посещённый день.
// @Tags DayStates
// @Produce  json
// @Param slug path string true "Слаг программы"
// @Param day path int true "Номер дня"
// @Success 200 {object} map[string]any "Состояние дня"
// @Failure 400 {object} response.ErrorResponse "Некорректный день"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "День не найден"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /programs/{slug}/days/{day}/state [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.daystate.read"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user identification missing")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	programSlug := chi.URLParam(r, "slug")
	day, err := strconv.Atoi(chi.URLParam(r, "day"))
	if err != nil {
		log.Error("invalid day format", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid day"))
		return
	}

	state, err := h.service.Load(r.Context(), userUID, programSlug, day)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrBadDay):
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid day"))
		case errors.Is(err, services.ErrDayNotFound):
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("program day not found"))
		default:
			log.Error("failed to load day state", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not load day state"))
		}
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"state":    state,
		"last_day": h.service.LastDay(userUID, programSlug),
	}))
}
