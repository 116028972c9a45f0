package middlewarectx

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
	"time"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/family-hub/internal/http/response"
	"github.com/magabrotheeeer/family-hub/internal/lib/jwt"
	"github.com/magabrotheeeer/family-hub/internal/models"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type UserGetterMock struct{ mock.Mock }

func (m *UserGetterMock) GetUserByUID(ctx context.Context, uid string) (*models.User, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type MembershipMock struct{ mock.Mock }

func (m *MembershipMock) Membership(ctx context.Context, groupID int, userUID string) (*models.Group, *models.GroupMember, error) {
	args := m.Called(ctx, groupID, userUID)
	var group *models.Group
	var member *models.GroupMember
	if args.Get(0) != nil {
		group = args.Get(0).(*models.Group)
	}
	if args.Get(1) != nil {
		member = args.Get(1).(*models.GroupMember)
	}
	return group, member, args.Error(2)
}

func okHandler() (http.Handler, *bool) {
	called := false
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}), &called
}

func decodeResponse(t *testing.T, body io.Reader) response.Response {
	t.Helper()
	var resp response.Response
	require.NoError(t, json.NewDecoder(body).Decode(&resp))
	return resp
}

func TestJWTMiddleware(t *testing.T) {
	maker := jwt.NewMaker("test-secret-key", time.Hour)

	t.Run("valid token populates context", func(t *testing.T) {
		token, err := maker.GenerateToken("alice", "uid-1", false)
		require.NoError(t, err)

		var gotUser, gotUID string
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotUser, _ = r.Context().Value(User).(string)
			gotUID, _ = r.Context().Value(UserUID).(string)
			w.WriteHeader(http.StatusOK)
		})

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		JWTMiddleware(maker, discardLogger)(next).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "alice", gotUser)
		assert.Equal(t, "uid-1", gotUID)
	})

	t.Run("missing header", func(t *testing.T) {
		next, called := okHandler()
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		w := httptest.NewRecorder()
		JWTMiddleware(maker, discardLogger)(next).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.False(t, *called)
	})

	t.Run("garbage token", func(t *testing.T) {
		next, called := okHandler()
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Authorization", "Bearer not-a-token")
		w := httptest.NewRecorder()
		JWTMiddleware(maker, discardLogger)(next).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.False(t, *called)
	})
}

func TestSupportUserMiddleware(t *testing.T) {
	withUID := func(req *http.Request, uid string) *http.Request {
		return req.WithContext(context.WithValue(req.Context(), UserUID, uid))
	}

	t.Run("support user passes", func(t *testing.T) {
		users := new(UserGetterMock)
		users.On("GetUserByUID", mock.Anything, "uid-1").
			Return(&models.User{UID: "uid-1", IsSupportUser: true}, nil)

		next, called := okHandler()
		req := withUID(httptest.NewRequest(http.MethodGet, "/test", nil), "uid-1")
		w := httptest.NewRecorder()
		SupportUserMiddleware(users, discardLogger)(next).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, *called)
		users.AssertExpectations(t)
	})

	t.Run("non-support user gets SUPPORT_ONLY", func(t *testing.T) {
		users := new(UserGetterMock)
		users.On("GetUserByUID", mock.Anything, "uid-2").
			Return(&models.User{UID: "uid-2"}, nil)

		next, called := okHandler()
		req := withUID(httptest.NewRequest(http.MethodGet, "/test", nil), "uid-2")
		w := httptest.NewRecorder()
		SupportUserMiddleware(users, discardLogger)(next).ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.False(t, *called)
		assert.Equal(t, CodeSupportOnly, decodeResponse(t, w.Body).Code)
	})

	t.Run("locked support user gets ACCOUNT_LOCKED", func(t *testing.T) {
		users := new(UserGetterMock)
		users.On("GetUserByUID", mock.Anything, "uid-3").
			Return(&models.User{UID: "uid-3", IsSupportUser: true, IsLocked: true}, nil)

		next, called := okHandler()
		req := withUID(httptest.NewRequest(http.MethodGet, "/test", nil), "uid-3")
		w := httptest.NewRecorder()
		SupportUserMiddleware(users, discardLogger)(next).ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.False(t, *called)
		assert.Equal(t, CodeAccountLocked, decodeResponse(t, w.Body).Code)
	})

	t.Run("missing uid in context", func(t *testing.T) {
		users := new(UserGetterMock)
		next, called := okHandler()
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		w := httptest.NewRecorder()
		SupportUserMiddleware(users, discardLogger)(next).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.False(t, *called)
	})
}

func groupRequest(method string, uid string, groupID string) *http.Request {
	req := httptest.NewRequest(method, "/groups/"+groupID, nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("groupId", groupID)
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	ctx = context.WithValue(ctx, UserUID, uid)
	return req.WithContext(ctx)
}

func TestGroupMembershipMiddleware(t *testing.T) {
	t.Run("member of active group passes", func(t *testing.T) {
		group := &models.Group{ID: 7, Name: "family", HasActiveAdmin: true}
		member := &models.GroupMember{GroupID: 7, UserUID: "uid-1", Role: models.RoleAdmin}
		groups := new(MembershipMock)
		groups.On("Membership", mock.Anything, 7, "uid-1").Return(group, member, nil)

		var gotGroup *models.Group
		var gotMember *models.GroupMember
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotGroup, _ = r.Context().Value(Group).(*models.Group)
			gotMember, _ = r.Context().Value(Member).(*models.GroupMember)
			w.WriteHeader(http.StatusOK)
		})

		w := httptest.NewRecorder()
		GroupMembershipMiddleware(groups, discardLogger)(next).ServeHTTP(w, groupRequest(http.MethodGet, "uid-1", "7"))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, group, gotGroup)
		assert.Equal(t, member, gotMember)
	})

	t.Run("unknown group returns 404", func(t *testing.T) {
		groups := new(MembershipMock)
		groups.On("Membership", mock.Anything, 99, "uid-1").Return(nil, nil, sql.ErrNoRows)

		next, called := okHandler()
		w := httptest.NewRecorder()
		GroupMembershipMiddleware(groups, discardLogger)(next).ServeHTTP(w, groupRequest(http.MethodGet, "uid-1", "99"))

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.False(t, *called)
	})

	t.Run("non-member gets NOT_GROUP_MEMBER", func(t *testing.T) {
		group := &models.Group{ID: 7, HasActiveAdmin: true}
		groups := new(MembershipMock)
		groups.On("Membership", mock.Anything, 7, "uid-2").Return(group, nil, sql.ErrNoRows)

		next, called := okHandler()
		w := httptest.NewRecorder()
		GroupMembershipMiddleware(groups, discardLogger)(next).ServeHTTP(w, groupRequest(http.MethodGet, "uid-2", "7"))

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.False(t, *called)
		assert.Equal(t, CodeNotGroupMember, decodeResponse(t, w.Body).Code)
	})

	t.Run("read-only group blocks writes", func(t *testing.T) {
		group := &models.Group{ID: 7, HasActiveAdmin: false}
		member := &models.GroupMember{GroupID: 7, UserUID: "uid-1", Role: models.RoleParent}
		groups := new(MembershipMock)
		groups.On("Membership", mock.Anything, 7, "uid-1").Return(group, member, nil)

		next, called := okHandler()
		w := httptest.NewRecorder()
		GroupMembershipMiddleware(groups, discardLogger)(next).ServeHTTP(w, groupRequest(http.MethodPost, "uid-1", "7"))

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.False(t, *called)
		assert.Equal(t, "GROUP_READ_ONLY", decodeResponse(t, w.Body).Code)
	})

	t.Run("read-only group still allows reads", func(t *testing.T) {
		group := &models.Group{ID: 7, HasActiveAdmin: false}
		member := &models.GroupMember{GroupID: 7, UserUID: "uid-1", Role: models.RoleParent}
		groups := new(MembershipMock)
		groups.On("Membership", mock.Anything, 7, "uid-1").Return(group, member, nil)

		next, called := okHandler()
		w := httptest.NewRecorder()
		GroupMembershipMiddleware(groups, discardLogger)(next).ServeHTTP(w, groupRequest(http.MethodGet, "uid-1", "7"))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, *called)
	})

	t.Run("storage error returns 500", func(t *testing.T) {
		groups := new(MembershipMock)
		groups.On("Membership", mock.Anything, 7, "uid-1").Return(nil, nil, errors.New("connection refused"))

		next, called := okHandler()
		w := httptest.NewRecorder()
		GroupMembershipMiddleware(groups, discardLogger)(next).ServeHTTP(w, groupRequest(http.MethodGet, "uid-1", "7"))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.False(t, *called)
	})
}

func TestRequireAdmin(t *testing.T) {
	withMember := func(req *http.Request, member *models.GroupMember) *http.Request {
		return req.WithContext(context.WithValue(req.Context(), Member, member))
	}

	t.Run("admin passes", func(t *testing.T) {
		member := &models.GroupMember{Role: models.RoleAdmin}
		next, called := okHandler()
		w := httptest.NewRecorder()
		req := withMember(httptest.NewRequest(http.MethodDelete, "/test", nil), member)
		RequireAdmin(discardLogger)(next).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, *called)
	})

	t.Run("regular member is rejected", func(t *testing.T) {
		member := &models.GroupMember{Role: models.RoleChild}
		next, called := okHandler()
		w := httptest.NewRecorder()
		req := withMember(httptest.NewRequest(http.MethodDelete, "/test", nil), member)
		RequireAdmin(discardLogger)(next).ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.False(t, *called)
	})
}
