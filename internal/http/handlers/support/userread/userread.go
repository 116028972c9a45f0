// Package userread реализует HTTP-обработчик просмотра пользователя в консоли поддержки.
package userread

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/family-hub/internal/http/response"
	"github.com/magabrotheeeer/family-hub/internal/lib/sl"
	"github.com/magabrotheeeer/family-hub/internal/models"
)

// Handler обрабатывает HTTP-запросы на просмотр пользователя.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики просмотра пользователя.
type Service interface {
	GetUser(ctx context.Context, uid string) (*models.UserView, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Просмотр пользователя
// @Description Возвращает состояние подписки и блокировки пользователя. Только для поддержки.
// @Tags Support
// @Produce  json
// @Param uid path string true "UID пользователя"
// @Success 200 {object} map[string]any "Данные пользователя"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Требуется доступ поддержки"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при чтении пользователя"
// @Router /support/users/{uid} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.support.userread"
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

	user, err := h.service.GetUser(r.Context(), uid)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("user not found"))
			return
		}
		log.Error("failed to read user", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read user"))
		return
	}

	log.Info("user read", slog.String("uid", uid))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"user": user,
	}))
}
