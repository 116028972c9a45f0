// Package renewaldate реализует HTTP-обработчик изменения даты продления
// подписки из консоли поддержки.
package renewaldate

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

// Request — входные данные изменения даты продления.
type Request struct {
	RenewalDate *time.Time `json:"renewal_date"`
}

// Handler обрабатывает HTTP-запросы на изменение даты продления.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики изменения даты продления.
type Service interface {
	SetRenewalDate(ctx context.Context, supportUID, uid string, renewalDate *time.Time) (*models.UserView, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Изменить дату продления подписки
// @Description Устанавливает или очищает дату следующего продления. Только для поддержки.
// @Tags Support
// @Accept  json
// @Produce  json
// @Param uid path string true "UID пользователя"
// @Param request body Request true "Новая дата продления (null — не назначена)"
// @Success 200 {object} map[string]any "Обновленный пользователь"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Требуется доступ поддержки"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при обновлении"
// @Router /support/users/{uid}/renewal-date [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.support.renewaldate"
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

	user, err := h.service.SetRenewalDate(r.Context(), supportUID, uid, req.RenewalDate)
	if err != nil {
		log.Error("failed to set renewal date", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not set renewal date"))
		return
	}

	log.Info("updated renewal date", slog.String("uid", uid), slog.Any("renewal_date", req.RenewalDate))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"user": user,
	}))
}
