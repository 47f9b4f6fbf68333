// Package export реализует HTTP-обработчик выгрузки ответов пользователя
// по программе. Форматы json и csv; pdf не реализован и отвечает 501.
package export

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
	services "github.com/magabrotheeeer/course-platform/internal/services/daystate"
)

// Handler управляет HTTP-запросами выгрузки ответов.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики выгрузки.
type Service interface {
	Export(ctx context.Context, userUID, programSlug, format string) ([]byte, string, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Выгрузить ответы по программе
// @Description Выгружает все ответы пользователя по программе. Администратор может указать user.
// @Tags DayStates
// @Produce  json
// @Produce  text/csv
// @Param slug path string true "Слаг программы"
// @Param format query string false "Формат выгрузки: json или csv" default(json)
// @Param user query string false "UID пользователя (только администратор)"
// @Success 200 {object} map[string]any "Выгрузка"
// @Failure 400 {object} response.ErrorResponse "Неподдерживаемый формат"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 501 {object} response.ErrorResponse "Формат pdf не реализован"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /programs/{slug}/state/export [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.daystate.export"

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

	// администратор может выгрузить ответы другого пользователя
	if target := r.URL.Query().Get("user"); target != "" {
		role, _ := r.Context().Value(middlewarectx.Role).(string)
		if role != models.RoleAdmin {
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("admin access required"))
			return
		}
		userUID = target
	}

	format := r.URL.Query().Get("format")
	if format == "pdf" {
		w.WriteHeader(http.StatusNotImplemented)
		render.JSON(w, r, response.Error("pdf export is not implemented"))
		return
	}

	programSlug := chi.URLParam(r, "slug")
	data, contentType, err := h.service.Export(r.Context(), userUID, programSlug, format)
	if err != nil {
		if errors.Is(err, services.ErrBadExport) {
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("unsupported export format"))
			return
		}
		log.Error("failed to export day states", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not export day states"))
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		log.Error("failed to write export body", sl.Err(err))
	}
}
