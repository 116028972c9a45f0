// Package lock реализует HTTP-обработчик блокировки и разблокировки
// учётной записи из консоли поддержки.
//
// Заблокированный пользователь не может войти и теряет доступ к консоли
// поддержки, если он сотрудник.
package lock

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

// Request — входные данные блокировки.
type Request struct {
	Locked *bool  `json:"locked" validate:"required"`
	Reason string `json:"reason" validate:"max=500"`
}

// Handler обрабатывает HTTP-запросы на блокировку учётных записей.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики блокировки.
type Service interface {
	SetLock(ctx context.Context, supportUID, uid string, locked bool, reason string) (*models.UserView, error)
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
// @Summary Заблокировать или разблокировать пользователя
// @Description Блокирует учётную запись с указанием причины либо снимает блокировку. Только для поддержки.
// @Tags Support
// @Accept  json
// @Produce  json
// @Param uid path string true "UID пользователя"
// @Param request body Request true "Состояние блокировки"
// @Success 200 {object} map[string]any "Обновленный пользователь"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Требуется доступ поддержки"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при обновлении"
// @Router /support/users/{uid}/lock [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.support.lock"
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

	user, err := h.service.SetLock(r.Context(), supportUID, uid, *req.Locked, req.Reason)
	if err != nil {
		log.Error("failed to set lock", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not set lock"))
		return
	}

	log.Info("updated lock state", slog.String("uid", uid), slog.Bool("locked", *req.Locked))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"user": user,
	}))
}
