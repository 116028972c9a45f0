// Package subscription реализует HTTP-обработчик изменения статуса подписки
// пользователя из консоли поддержки.
//
// Действие записывается в журнал; при включении подписки восстанавливается
// признак активного администратора в группах пользователя.
package subscription

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/family-hub/internal/http/middlewarectx"
	"github.com/magabrotheeeer/family-hub/internal/http/response"
	"github.com/magabrotheeeer/family-hub/internal/lib/sl"
	"github.com/magabrotheeeer/family-hub/internal/models"
)

// Request — входные данные изменения подписки.
type Request struct {
	IsSubscribed *bool `json:"is_subscribed" validate:"required"`
}

// Handler обрабатывает HTTP-запросы на изменение подписки.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики изменения подписки.
type Service interface {
	UpdateSubscription(ctx context.Context, supportUID, uid string, isSubscribed bool) (*models.UserView, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Изменить статус подписки
// @Description Включает или выключает подписку пользователя. Только для поддержки.
// @Tags Support
// @Accept  json
// @Produce  json
// @Param uid path string true "UID пользователя"
// @Param request body Request true "Новый статус подписки"
// @Success 200 {object} map[string]any "Обновленный пользователь"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Требуется доступ поддержки"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при обновлении"
// @Router /support/users/{uid}/subscription [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.support.subscription"
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

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	uid := chi.URLParam(r, "uid")
	supportUID, _ := r.Context().Value(middlewarectx.UserUID).(string)

	user, err := h.service.UpdateSubscription(r.Context(), supportUID, uid, *req.IsSubscribed)
	if err != nil {
		log.Error("failed to update subscription", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not update subscription"))
		return
	}

	log.Info("updated subscription", slog.String("uid", uid), slog.Bool("is_subscribed", *req.IsSubscribed))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"user": user,
	}))
}
