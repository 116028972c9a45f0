// Package expire реализует HTTP-обработчик принудительного завершения
// подписки из консоли поддержки.
//
// Завершение применяет каскад: роль admin понижается до adult в группах,
// где остаётся другой активный администратор, остальные группы переходят
// в режим только для чтения. Изменения применяются одной транзакцией.
package expire

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/family-hub/internal/http/middlewarectx"
	"github.com/magabrotheeeer/family-hub/internal/http/response"
	"github.com/magabrotheeeer/family-hub/internal/lib/sl"
	"github.com/magabrotheeeer/family-hub/internal/models"
)

// Handler обрабатывает HTTP-запросы на завершение подписки.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики завершения подписки.
type Service interface {
	ExpireSubscription(ctx context.Context, supportUID, uid string) (*models.UserView, []models.ExpiryAction, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Завершить подписку
// @Description Принудительно завершает подписку и применяет каскад изменений по группам. Только для поддержки.
// @Tags Support
// @Produce  json
// @Param uid path string true "UID пользователя"
// @Success 200 {object} map[string]any "Обновленный пользователь и действия по группам"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Требуется доступ поддержки"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при завершении подписки"
// @Router /support/users/{uid}/expire-subscription [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.support.expire"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	uid := chi.URLParam(r, "uid")
	if uid == "" {
		log.Error("missing uid in url")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid user uid"))
		return
	}
	supportUID, _ := r.Context().Value(middlewarectx.UserUID).(string)

	user, actions, err := h.service.ExpireSubscription(r.Context(), supportUID, uid)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("user not found"))
			return
		}
		log.Error("failed to expire subscription", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not expire subscription"))
		return
	}

	log.Info("expired subscription", slog.String("uid", uid), slog.Int("group_actions", len(actions)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"user":    user,
		"actions": actions,
	}))
}
