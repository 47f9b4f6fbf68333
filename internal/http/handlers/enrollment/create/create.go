// Package create реализует HTTP-обработчик записи на программу.
package create

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/course-platform/internal/http/middlewarectx"
	"github.com/magabrotheeeer/course-platform/internal/http/response"
	"github.com/magabrotheeeer/course-platform/internal/lib/sl"
	"github.com/magabrotheeeer/course-platform/internal/models"
	services "github.com/magabrotheeeer/course-platform/internal/services/enrollment"
)

// Handler управляет HTTP-запросами записи на программы.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики записи на программу.
type Service interface {
	Create(ctx context.Context, userUID string, req models.DummyEnrollment) (int, error)
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
// @Summary Записаться на программу
// @Description Записывает текущего пользователя на опубликованную программу.
// @Tags Enrollments
// @Accept  json
// @Produce  json
// @Param request body models.DummyEnrollment true "Слаг программы"
// @Success 200 {object} map[string]any "Успешная запись"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Аккаунт заблокирован"
// @Failure 404 {object} response.ErrorResponse "Программа недоступна"
// @Failure 409 {object} response.ErrorResponse "Повторная запись или лимит программ"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /enrollments [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.enrollment.create"

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

	var req models.DummyEnrollment
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

	id, err := h.service.Create(r.Context(), userUID, req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUserBlocked):
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("account is suspended or archived"))
		case errors.Is(err, services.ErrProgramNotAvailable):
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("program is not available"))
		case errors.Is(err, services.ErrAlreadyEnrolled):
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("already enrolled in this program"))
		case errors.Is(err, services.ErrLimitReached):
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("concurrent programs limit reached"))
		default:
			log.Error("failed to create enrollment", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not create enrollment"))
		}
		return
	}

	log.Info("enrollment created", slog.Int("id", id), slog.String("program", req.ProgramSlug))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"id": id,
	}))
}
