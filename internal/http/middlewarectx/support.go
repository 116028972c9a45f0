package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/family-hub/internal/http/response"
	"github.com/magabrotheeeer/family-hub/internal/lib/sl"
	"github.com/magabrotheeeer/family-hub/internal/models"
)

// Коды ошибок доступа поддержки.
const (
	CodeSupportOnly   = "SUPPORT_ONLY"
	CodeAccountLocked = "ACCOUNT_LOCKED"
)

// UserGetter загружает пользователя для проверки актуальных флагов доступа.
type UserGetter interface {
	GetUserByUID(ctx context.Context, uid string) (*models.User, error)
}

// SupportUserMiddleware пропускает только сотрудников поддержки.
//
// Флаги поддержки и блокировки читаются из базы, а не из токена:
// отзыв доступа действует немедленно, не дожидаясь истечения JWT.
func SupportUserMiddleware(users UserGetter, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.SupportUserMiddleware"

			uid, ok := r.Context().Value(UserUID).(string)
			if !ok || uid == "" {
				log.Error("user identification missing")
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, r, response.Error("user identification missing"))
				return
			}

			user, err := users.GetUserByUID(r.Context(), uid)
			if err != nil {
				log.Error("failed to load user", slog.String("op", op), sl.Err(err))
				w.WriteHeader(http.StatusInternalServerError)
				render.JSON(w, r, response.Error("internal service error"))
				return
			}

			if user.IsLocked {
				log.Warn("locked user attempted support access", slog.String("uid", uid))
				w.WriteHeader(http.StatusForbidden)
				render.JSON(w, r, response.ErrorWithCode("account is locked", CodeAccountLocked))
				return
			}
			if !user.IsSupportUser {
				log.Warn("non-support user attempted support access", slog.String("uid", uid))
				w.WriteHeader(http.StatusForbidden)
				render.JSON(w, r, response.ErrorWithCode("support access required", CodeSupportOnly))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
