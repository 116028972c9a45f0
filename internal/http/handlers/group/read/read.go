// Package read реализует HTTP-обработчик чтения группы с участниками.
package read

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/family-hub/internal/access"
	"github.com/magabrotheeeer/family-hub/internal/http/middlewarectx"
	"github.com/magabrotheeeer/family-hub/internal/http/response"
	"github.com/magabrotheeeer/family-hub/internal/lib/sl"
	"github.com/magabrotheeeer/family-hub/internal/models"
)

// Handler обрабатывает HTTP-запросы на чтение группы.
//
// Группа и членство уже загружены middleware, обработчик добирает
// список участников и текущее состояние доступа.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики чтения группы.
type Service interface {
	Read(ctx context.Context, groupID int) (*models.Group, []*models.GroupMember, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Получить группу
// @Description Возвращает группу, список участников, роль текущего пользователя и состояние доступа.
// @Tags Groups
// @Produce  json
// @Param groupId path int true "ID группы"
// @Success 200 {object} map[string]any "Данные группы"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Не участник группы"
// @Failure 404 {object} response.ErrorResponse "Группа не найдена"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при чтении группы"
// @Router /groups/{groupId} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.group.read"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	group, ok := r.Context().Value(middlewarectx.Group).(*models.Group)
	if !ok || group == nil {
		log.Error("group not found in context")
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal service error"))
		return
	}
	member, _ := r.Context().Value(middlewarectx.Member).(*models.GroupMember)

	_, members, err := h.service.Read(r.Context(), group.ID)
	if err != nil {
		log.Error("failed to read group members", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read group"))
		return
	}

	log.Info("group read", slog.Int("id", group.ID), slog.Int("members", len(members)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"group":     group,
		"members":   members,
		"role":      member.Role,
		"read_only": access.IsGroupReadOnly(group),
	}))
}
