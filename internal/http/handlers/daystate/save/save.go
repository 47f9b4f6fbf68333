// Package save реализует HTTP-обработчик сохранения ответов за день
// программы. Значения нормализуются по схеме дня; кривые значения не
// приводят к отказу сохранения.
package save

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/course-platform/internal/http/middlewarectx"
	"github.com/magabrotheeeer/course-platform/internal/http/response"
	"github.com/magabrotheeeer/course-platform/internal/lib/sl"
	"github.com/magabrotheeeer/course-platform/internal/models"
	services "github.com/magabrotheeeer/course-platform/internal/services/daystate"
)

// Handler управляет HTTP-запросами сохранения ответов.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики сохранения дня.
type Service interface {
	Save(ctx context.Context, userUID, programSlug string, day int, req models.DummyDayState) (*models.DayState, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Сохранить ответы за день
// @Description Сохраняет ответы текущего пользователя за день программы.
// @Tags DayStates
// @Accept  json
// @Produce  json
// @Param slug path string true "Слаг программы"
// @Param day path int true "Номер дня"
// @Param request body models.DummyDayState true "Ответы за день"
// @Success 200 {object} map[string]any "Сохранённое состояние"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или день"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "День не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /programs/{slug}/days/{day}/state [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.daystate.save"

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

	var req models.DummyDayState
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

	state, err := h.service.Save(r.Context(), userUID, programSlug, day, req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrBadDay):
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid day"))
		case errors.Is(err, services.ErrDayNotFound):
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("program day not found"))
		default:
			log.Error("failed to save day state", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not save day state"))
		}
		return
	}

	log.Info("day state saved",
		slog.String("program", programSlug), slog.Int("day", day), slog.Int("values", len(state.Values)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"state": state,
	}))
}
