// Package read реализует HTTP-обработчик чтения wiki-документа.
package read

import (
	"context"
	"database/sql"
	"errors"
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

// Handler обрабатывает HTTP-запросы на чтение wiki-документа.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики чтения документа.
type Service interface {
	Read(ctx context.Context, groupID, id int) (*models.WikiDocument, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Получить wiki-документ
// @Description Возвращает документ группы с расшифрованными заголовком и содержимым.
// @Tags Wiki
// @Produce  json
// @Param groupId path int true "ID группы"
// @Param id path int true "ID документа"
// @Success 200 {object} map[string]any "Документ"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Не участник группы"
// @Failure 404 {object} response.ErrorResponse "Документ не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при чтении документа"
// @Router /groups/{groupId}/wiki-documents/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.wiki.read"
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

	doc, err := h.service.Read(r.Context(), group.ID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("wiki document not found"))
			return
		}
		log.Error("failed to read wiki document", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read wiki document"))
		return
	}

	log.Info("wiki document read", slog.Int("id", id))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"document": doc,
	}))
}
