// Package create реализует HTTP-обработчик создания wiki-документа.
//
// Заголовок и содержимое шифруются на уровне сервиса перед записью,
// обработчик работает только с открытым текстом.
package create

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/family-hub/internal/http/middlewarectx"
	"github.com/magabrotheeeer/family-hub/internal/http/response"
	"github.com/magabrotheeeer/family-hub/internal/lib/sl"
	"github.com/magabrotheeeer/family-hub/internal/models"
)

// Handler обрабатывает HTTP-запросы на создание wiki-документов.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики создания документа.
type Service interface {
	Create(ctx context.Context, groupID int, authorUID string, req models.DummyWikiDocument) (int, error)
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
// @Summary Создать wiki-документ
// @Description Создает новый документ в группе. Возвращает ID созданной записи.
// @Tags Wiki
// @Accept  json
// @Produce  json
// @Param groupId path int true "ID группы"
// @Param request body models.DummyWikiDocument true "Данные нового документа"
// @Success 200 {object} map[string]any "Успешное создание документа"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Нет административных полномочий или группа в режиме только для чтения"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при создании документа"
// @Router /groups/{groupId}/wiki-documents [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.wiki.create"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyWikiDocument
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
	log.Info("all fields are validated")

	group, ok := r.Context().Value(middlewarectx.Group).(*models.Group)
	if !ok || group == nil {
		log.Error("group not found in context")
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal service error"))
		return
	}
	uid, _ := r.Context().Value(middlewarectx.UserUID).(string)

	id, err := h.service.Create(r.Context(), group.ID, uid, req)
	if err != nil {
		log.Error("failed to create wiki document", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create wiki document"))
		return
	}

	log.Info("created wiki document", slog.Int("id", id), slog.Int("group_id", group.ID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"id": id,
	}))
}
