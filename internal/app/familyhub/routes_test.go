package familyhub

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/family-hub/internal/http/response"
	"github.com/magabrotheeeer/family-hub/internal/lib/jwt"
	"github.com/magabrotheeeer/family-hub/internal/lib/seal"
	"github.com/magabrotheeeer/family-hub/internal/models"
	authservice "github.com/magabrotheeeer/family-hub/internal/services/auth"
	groupservice "github.com/magabrotheeeer/family-hub/internal/services/group"
	supportservice "github.com/magabrotheeeer/family-hub/internal/services/support"
	wikiservice "github.com/magabrotheeeer/family-hub/internal/services/wiki"
)

type GroupRepoMock struct{ mock.Mock }

func (m *GroupRepoMock) CreateGroup(ctx context.Context, name, creatorUID string) (int, error) {
	args := m.Called(ctx, name, creatorUID)
	return args.Int(0), args.Error(1)
}

func (m *GroupRepoMock) GetGroup(ctx context.Context, id int) (*models.Group, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Group), args.Error(1)
}

func (m *GroupRepoMock) GetGroupMember(ctx context.Context, groupID int, userUID string) (*models.GroupMember, error) {
	args := m.Called(ctx, groupID, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GroupMember), args.Error(1)
}

func (m *GroupRepoMock) ListGroupMembers(ctx context.Context, groupID int) ([]*models.GroupMember, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.GroupMember), args.Error(1)
}

type WikiRepoMock struct{ mock.Mock }

func (m *WikiRepoMock) CreateWikiDocument(ctx context.Context, doc models.WikiDocument) (int, error) {
	args := m.Called(ctx, doc)
	return args.Int(0), args.Error(1)
}

func (m *WikiRepoMock) ReadWikiDocument(ctx context.Context, groupID, id int) (*models.WikiDocument, error) {
	args := m.Called(ctx, groupID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WikiDocument), args.Error(1)
}

func (m *WikiRepoMock) ListWikiDocuments(ctx context.Context, groupID, limit, offset int) ([]*models.WikiDocument, error) {
	args := m.Called(ctx, groupID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.WikiDocument), args.Error(1)
}

func (m *WikiRepoMock) UpdateWikiDocument(ctx context.Context, groupID, id int, title, content string) (int, error) {
	args := m.Called(ctx, groupID, id, title, content)
	return args.Int(0), args.Error(1)
}

func (m *WikiRepoMock) RemoveWikiDocument(ctx context.Context, groupID, id int) (int, error) {
	args := m.Called(ctx, groupID, id)
	return args.Int(0), args.Error(1)
}

type CacheStub struct{}

func (CacheStub) Get(_ string, _ any) (bool, error)          { return false, nil }
func (CacheStub) Set(_ string, _ any, _ time.Duration) error { return nil }
func (CacheStub) Invalidate(_ string) error                  { return nil }

func TestWikiRoutesAdminGate(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	jwtMaker := jwt.NewMaker("test-secret", time.Hour)

	groupRepo := new(GroupRepoMock)
	wikiRepo := new(WikiRepoMock)

	group := &models.Group{ID: 1, Name: "family", HasActiveAdmin: true}
	groupRepo.On("GetGroup", mock.Anything, 1).Return(group, nil)
	groupRepo.On("GetGroupMember", mock.Anything, 1, "child-uid").
		Return(&models.GroupMember{GroupID: 1, UserUID: "child-uid", Role: models.RoleChild}, nil)
	groupRepo.On("GetGroupMember", mock.Anything, 1, "admin-uid").
		Return(&models.GroupMember{GroupID: 1, UserUID: "admin-uid", Role: models.RoleAdmin}, nil)

	codec, err := seal.New([]byte("test-key"))
	require.NoError(t, err)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, jwtMaker, nil,
		authservice.NewAuthService(nil, jwtMaker),
		groupservice.NewGroupService(groupRepo, logger),
		wikiservice.NewWikiService(wikiRepo, codec, CacheStub{}, logger),
		supportservice.NewSupportService(nil, nil, logger),
	)

	childToken, err := jwtMaker.GenerateToken("kid", "child-uid", false)
	require.NoError(t, err)
	adminToken, err := jwtMaker.GenerateToken("parent", "admin-uid", false)
	require.NoError(t, err)

	doRequest := func(method, target, token, body string) (*httptest.ResponseRecorder, response.Response) {
		req := httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		var resp response.Response
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		return w, resp
	}

	t.Run("child cannot create document", func(t *testing.T) {
		w, resp := doRequest(http.MethodPost, "/api/v1/groups/1/wiki-documents",
			childToken, `{"title": "chores", "content": "schedule"}`)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "admin permissions required", resp.Error)
		wikiRepo.AssertNotCalled(t, "CreateWikiDocument")
	})

	t.Run("child cannot update document", func(t *testing.T) {
		w, resp := doRequest(http.MethodPut, "/api/v1/groups/1/wiki-documents/5",
			childToken, `{"title": "chores", "content": "new schedule"}`)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "admin permissions required", resp.Error)
		wikiRepo.AssertNotCalled(t, "UpdateWikiDocument")
	})

	t.Run("child reads documents", func(t *testing.T) {
		wikiRepo.On("ListWikiDocuments", mock.Anything, 1, 10, 0).
			Return([]*models.WikiDocument{}, nil).Once()

		w, resp := doRequest(http.MethodGet, "/api/v1/groups/1/wiki-documents", childToken, "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "OK", resp.Status)
	})

	t.Run("admin creates document", func(t *testing.T) {
		wikiRepo.On("CreateWikiDocument", mock.Anything, mock.AnythingOfType("models.WikiDocument")).
			Return(7, nil).Once()

		w, resp := doRequest(http.MethodPost, "/api/v1/groups/1/wiki-documents",
			adminToken, `{"title": "chores", "content": "schedule"}`)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "OK", resp.Status)
		data, ok := resp.Data.(map[string]any)
		require.True(t, ok)
		assert.EqualValues(t, 7, data["id"])
	})
}
