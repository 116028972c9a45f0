package expire

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/family-hub/internal/http/middlewarectx"
	"github.com/magabrotheeeer/family-hub/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) ExpireSubscription(ctx context.Context, supportUID, uid string) (*models.UserView, []models.ExpiryAction, error) {
	args := m.Called(ctx, supportUID, uid)
	var view *models.UserView
	var actions []models.ExpiryAction
	if args.Get(0) != nil {
		view = args.Get(0).(*models.UserView)
	}
	if args.Get(1) != nil {
		actions = args.Get(1).([]models.ExpiryAction)
	}
	return view, actions, args.Error(2)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func newRequest(uid string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/support/users/"+uid+"/expire-subscription", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("uid", uid)
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	ctx = context.WithValue(ctx, middlewarectx.UserUID, "support-uid")
	return req.WithContext(ctx)
}

func TestExpireHandler_ServeHTTP(t *testing.T) {
	t.Run("expire with group cascade", func(t *testing.T) {
		serviceMock := new(ServiceMock)
		view := &models.UserView{UID: "uid-1", Username: "user1", IsSubscribed: false}
		actions := []models.ExpiryAction{
			// В одной группе есть второй активный администратор, роль понижается
			{GroupID: 1, DowngradeRole: true, PreviousRole: models.RoleAdmin},
			// Другая группа остаётся без администратора и закрывается на запись
			{GroupID: 2, DowngradeRole: false},
		}
		serviceMock.On("ExpireSubscription", mock.Anything, "support-uid", "uid-1").
			Return(view, actions, nil)

		rec := httptest.NewRecorder()
		New(newNoopLogger(), serviceMock).ServeHTTP(rec, newRequest("uid-1"))

		assert.Equal(t, http.StatusOK, rec.Code)
		var got map[string]any
		assert.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
		assert.Equal(t, "OK", got["status"])

		data := got["data"].(map[string]any)
		user := data["user"].(map[string]any)
		assert.Equal(t, "uid-1", user["uid"])
		assert.Equal(t, false, user["is_subscribed"])

		gotActions := data["actions"].([]any)
		assert.Len(t, gotActions, 2)
		first := gotActions[0].(map[string]any)
		assert.Equal(t, float64(1), first["group_id"])
		assert.Equal(t, true, first["downgrade_role"])
		serviceMock.AssertExpectations(t)
	})

	t.Run("unknown user", func(t *testing.T) {
		serviceMock := new(ServiceMock)
		serviceMock.On("ExpireSubscription", mock.Anything, "support-uid", "missing").
			Return(nil, nil, sql.ErrNoRows)

		rec := httptest.NewRecorder()
		New(newNoopLogger(), serviceMock).ServeHTTP(rec, newRequest("missing"))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("storage error", func(t *testing.T) {
		serviceMock := new(ServiceMock)
		serviceMock.On("ExpireSubscription", mock.Anything, "support-uid", "uid-1").
			Return(nil, nil, errors.New("tx aborted"))

		rec := httptest.NewRecorder()
		New(newNoopLogger(), serviceMock).ServeHTTP(rec, newRequest("uid-1"))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}
