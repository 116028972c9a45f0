// Package remove реализует HTTP-обработчик удаления wiki-документа.
//
// Удаление доступно только участникам с административными полномочиями,
// ограничение накладывает middleware на маршруте.
package remove

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/family-hub/internal/http/middlewarectx"
	"github.com/magabrotheeeer/family-hub/internal/http/response"
	"github.com/magabrotheeeer/family-hub/internal/lib/sl"
	"github.com/magabrotheeeer/family-hub/internal/models"
)

// Handler обрабатывает HTTP-запросы на удаление wiki-документов.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики удаления документа.
type Service interface {
	Remove(ctx context.Context, groupID, id int) (int, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Удалить wiki-документ
// @Description Удаляет документ группы. Требует административных полномочий.
// @Tags Wiki
// @Produce  json
// @Param groupId path int true "ID группы"
// @Param id path int true "ID документа"
// @Success 200 {object} map[string]any "Количество удаленных записей"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Нет административных полномочий"
// @Failure 404 {object} response.ErrorResponse "Документ не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при удалении документа"
// @Router /groups/{groupId}/wiki-documents/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.wiki.remove"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		log.Error("failed to decode id from url", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid document id"))
		return
	}

	group, ok := r.Context().Value(middlewarectx.Group).(*models.Group)
	if !ok || group == nil {
		log.Error("group not found in context")
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal service error"))
		return
	}

	count, err := h.service.Remove(r.Context(), group.ID, id)
	if err != nil {
		log.Error("failed to remove wiki document", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not remove wiki document"))
		return
	}
	if count == 0 {
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("wiki document not found"))
		return
	}

	log.Info("removed wiki document", slog.Int("id", id))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"removed_count": count,
	}))
}
