// Package exportsubs реализует HTTP-обработчик выгрузки подписчиков
// рассылки в json или csv.
package exportsubs

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/course-platform/internal/http/response"
	"github.com/magabrotheeeer/course-platform/internal/lib/sl"
	"github.com/magabrotheeeer/course-platform/internal/models"
	services "github.com/magabrotheeeer/course-platform/internal/services/newsletter"
)

// Handler управляет HTTP-запросами выгрузки подписчиков.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики выгрузки.
type Service interface {
	Export(ctx context.Context, filter models.SubscriberFilter, format string) ([]byte, string, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Выгрузить подписчиков
// @Description Выгружает подписчиков в json или csv с теми же фильтрами, что и список.
// @Tags Newsletter
// @Produce  json
// @Produce  text/csv
// @Param format query string false "Формат выгрузки: json или csv" default(json)
// @Param status query string false "Фильтр по статусу"
// @Param tag query string false "Фильтр по тегу"
// @Success 200 {object} map[string]any "Выгрузка"
// @Failure 400 {object} response.ErrorResponse "Неподдерживаемый формат"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /newsletter/subscribers/export [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.newsletter.exportsubs"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	filter := models.SubscriberFilter{
		Status: r.URL.Query().Get("status"),
		Tag:    r.URL.Query().Get("tag"),
		Query:  r.URL.Query().Get("q"),
	}

	data, contentType, err := h.service.Export(r.Context(), filter, r.URL.Query().Get("format"))
	if err != nil {
		if errors.Is(err, services.ErrBadExport) {
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("unsupported export format"))
			return
		}
		log.Error("failed to export subscribers", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not export subscribers"))
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		log.Error("failed to write export body", sl.Err(err))
	}
}
