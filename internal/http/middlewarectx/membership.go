package middlewarectx

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/family-hub/internal/access"
	"github.com/magabrotheeeer/family-hub/internal/http/response"
	"github.com/magabrotheeeer/family-hub/internal/lib/sl"
	"github.com/magabrotheeeer/family-hub/internal/models"
)

// CodeNotGroupMember — код ошибки для запросов не-участников группы.
const CodeNotGroupMember = "NOT_GROUP_MEMBER"

// MembershipService загружает группу и членство пользователя в ней.
type MembershipService interface {
	Membership(ctx context.Context, groupID int, userUID string) (*models.Group, *models.GroupMember, error)
}

// GroupMembershipMiddleware загружает группу из {groupId} и членство
// текущего пользователя, размещая их в контексте запроса.
//
// Не-участники получают 403, неизвестная группа — 404. Изменяющие методы
// (POST, PUT, DELETE) блокируются для групп в режиме только для чтения
// с машиночитаемым кодом, по которому клиент показывает точное сообщение.
func GroupMembershipMiddleware(groups MembershipService, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.GroupMembershipMiddleware"

			uid, ok := r.Context().Value(UserUID).(string)
			if !ok || uid == "" {
				log.Error("user identification missing")
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, r, response.Error("user identification missing"))
				return
			}

			groupID, err := strconv.Atoi(chi.URLParam(r, "groupId"))
			if err != nil {
				log.Error("failed to decode group id from url", sl.Err(err))
				w.WriteHeader(http.StatusBadRequest)
				render.JSON(w, r, response.Error("invalid group id"))
				return
			}

			group, member, err := groups.Membership(r.Context(), groupID, uid)
			switch {
			case err == nil:
			case errors.Is(err, sql.ErrNoRows) && group == nil:
				w.WriteHeader(http.StatusNotFound)
				render.JSON(w, r, response.Error("group not found"))
				return
			case errors.Is(err, sql.ErrNoRows):
				log.Warn("non-member attempted group access",
					slog.Int("group_id", groupID), slog.String("uid", uid))
				w.WriteHeader(http.StatusForbidden)
				render.JSON(w, r, response.ErrorWithCode("not a member of this group", CodeNotGroupMember))
				return
			default:
				log.Error("failed to load membership", slog.String("op", op), sl.Err(err))
				w.WriteHeader(http.StatusInternalServerError)
				render.JSON(w, r, response.Error("internal service error"))
				return
			}

			if isMutation(r.Method) && access.IsGroupReadOnly(group) {
				reason := access.ReadOnlyError(group)
				w.WriteHeader(http.StatusForbidden)
				render.JSON(w, r, response.Response{
					Status: response.StatusError,
					Error:  reason.Error,
					Code:   reason.Code,
					Data:   map[string]string{"message": reason.Message},
				})
				return
			}

			ctx := context.WithValue(r.Context(), Group, group)
			ctx = context.WithValue(ctx, Member, member)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin пропускает только участников с полномочиями администратора:
// роль admin либо действующий пробный период без подписки.
func RequireAdmin(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			member, _ := r.Context().Value(Member).(*models.GroupMember)
			if !access.HasAdminPermissions(member) {
				log.Warn("member without admin permissions attempted restricted operation")
				w.WriteHeader(http.StatusForbidden)
				render.JSON(w, r, response.Error("admin permissions required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func isMutation(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}
