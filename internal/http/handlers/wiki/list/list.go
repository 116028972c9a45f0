// Package list реализует HTTP-обработчик списка wiki-документов группы.
package list

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/family-hub/internal/http/middlewarectx"
	"github.com/magabrotheeeer/family-hub/internal/http/response"
	"github.com/magabrotheeeer/family-hub/internal/lib/sl"
	"github.com/magabrotheeeer/family-hub/internal/models"
)

// Handler обрабатывает HTTP-запросы на получение списка документов.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики списка документов.
type Service interface {
	List(ctx context.Context, groupID, limit, offset int) ([]*models.WikiDocument, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Список wiki-документов
// @Description Возвращает документы группы, отсортированные по дате изменения.
// @Tags Wiki
// @Produce  json
// @Param groupId path int true "ID группы"
// @Param limit query int false "Максимум записей (по умолчанию 10)"
// @Param offset query int false "Смещение (по умолчанию 0)"
// @Success 200 {object} map[string]any "Список документов"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Не участник группы"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при чтении списка"
// @Router /groups/{groupId}/wiki-documents [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.wiki.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = 10
	}
	offset, err := strconv.Atoi(r.URL.Query().Get("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}

	group, ok := r.Context().Value(middlewarectx.Group).(*models.Group)
	if !ok || group == nil {
		log.Error("group not found in context")
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal service error"))
		return
	}

	docs, err := h.service.List(r.Context(), group.ID, limit, offset)
	if err != nil {
		log.Error("failed to list wiki documents", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list wiki documents"))
		return
	}

	log.Info("list wiki documents", slog.Int("count", len(docs)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"list_count": len(docs),
		"documents":  docs,
	}))
}
