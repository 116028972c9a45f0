// Package auditlogs реализует HTTP-обработчик просмотра журнала действий
// консоли поддержки.
package auditlogs

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/family-hub/internal/http/response"
	"github.com/magabrotheeeer/family-hub/internal/lib/sl"
	"github.com/magabrotheeeer/family-hub/internal/models"
)

// Handler обрабатывает HTTP-запросы на чтение журнала действий.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики чтения журнала.
type Service interface {
	ListAuditLogs(ctx context.Context, targetUID string, limit, offset int) ([]*models.AuditLog, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Журнал действий поддержки
// @Description Возвращает записи журнала, опционально по конкретному пользователю. Только для поддержки.
// @Tags Support
// @Produce  json
// @Param target_uid query string false "UID пользователя, по которому фильтровать"
// @Param limit query int false "Максимум записей (по умолчанию 10)"
// @Param offset query int false "Смещение (по умолчанию 0)"
// @Success 200 {object} map[string]any "Записи журнала"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Требуется доступ поддержки"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при чтении журнала"
// @Router /support/audit-logs [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.support.auditlogs"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	targetUID := r.URL.Query().Get("target_uid")
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = 10
	}
	offset, err := strconv.Atoi(r.URL.Query().Get("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}

	logs, err := h.service.ListAuditLogs(r.Context(), targetUID, limit, offset)
	if err != nil {
		log.Error("failed to list audit logs", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list audit logs"))
		return
	}

	log.Info("list audit logs", slog.Int("count", len(logs)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"list_count": len(logs),
		"logs":       logs,
	}))
}
