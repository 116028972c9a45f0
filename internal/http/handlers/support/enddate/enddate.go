// Package enddate реализует HTTP-обработчик изменения даты окончания
// подписки из консоли поддержки.
//
// Пустая дата означает бессрочную подписку.
package enddate

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/family-hub/internal/http/middlewarectx"
	"github.com/magabrotheeeer/family-hub/internal/http/response"
	"github.com/magabrotheeeer/family-hub/internal/lib/sl"
	"github.com/magabrotheeeer/family-hub/internal/models"
)

// Request — входные данные изменения даты окончания подписки.
type Request struct {
	EndDate *time.Time `json:"end_date"`
}

// Handler обрабатывает HTTP-запросы на изменение даты окончания подписки.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики изменения даты окончания.
type Service interface {
	SetSubscriptionEndDate(ctx context.Context, supportUID, uid string, endDate *time.Time) (*models.UserView, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Изменить дату окончания подписки
// @Description Устанавливает или очищает дату окончания подписки. Только для поддержки.
// @Tags Support
// @Accept  json
// @Produce  json
// @Param uid path string true "UID пользователя"
// @Param request body Request true "Новая дата окончания (null — бессрочно)"
// @Success 200 {object} map[string]any "Обновленный пользователь"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Требуется доступ поддержки"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при обновлении"
// @Router /support/users/{uid}/subscription-end-date [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.support.enddate"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	uid := chi.URLParam(r, "uid")
	supportUID, _ := r.Context().Value(middlewarectx.UserUID).(string)

	user, err := h.service.SetSubscriptionEndDate(r.Context(), supportUID, uid, req.EndDate)
	if err != nil {
		log.Error("failed to set subscription end date", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not set subscription end date"))
		return
	}

	log.Info("updated subscription end date", slog.String("uid", uid), slog.Any("end_date", req.EndDate))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"user": user,
	}))
}
