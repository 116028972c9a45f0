package read

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

	"github.com/magabrotheeeer/family-hub/internal/http/middlewarectx"
	"github.com/magabrotheeeer/family-hub/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Read(ctx context.Context, groupID, id int) (*models.WikiDocument, error) {
	args := m.Called(ctx, groupID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WikiDocument), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func newRequest(group *models.Group, docID string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/groups/7/wiki-documents/"+docID, nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", docID)
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	ctx = context.WithValue(ctx, middlewarectx.Group, group)
	return req.WithContext(ctx)
}

func TestReadHandler_ServeHTTP(t *testing.T) {
	group := &models.Group{ID: 7, Name: "family", HasActiveAdmin: true}

	t.Run("success", func(t *testing.T) {
		serviceMock := new(ServiceMock)
		doc := &models.WikiDocument{
			ID:        3,
			GroupID:   7,
			Title:     "Emergency contacts",
			Content:   "call grandma first",
			UpdatedAt: time.Now(),
		}
		serviceMock.On("Read", mock.Anything, 7, 3).Return(doc, nil)

		rec := httptest.NewRecorder()
		New(newNoopLogger(), serviceMock).ServeHTTP(rec, newRequest(group, "3"))

		assert.Equal(t, http.StatusOK, rec.Code)
		var got map[string]any
		assert.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
		assert.Equal(t, "OK", got["status"])
		data := got["data"].(map[string]any)
		gotDoc := data["document"].(map[string]any)
		assert.Equal(t, "Emergency contacts", gotDoc["title"])
		assert.Equal(t, "call grandma first", gotDoc["content"])
		serviceMock.AssertExpectations(t)
	})

	t.Run("invalid id in url", func(t *testing.T) {
		serviceMock := new(ServiceMock)
		rec := httptest.NewRecorder()
		New(newNoopLogger(), serviceMock).ServeHTTP(rec, newRequest(group, "abc"))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		serviceMock.AssertNotCalled(t, "Read")
	})

	t.Run("document not found", func(t *testing.T) {
		serviceMock := new(ServiceMock)
		serviceMock.On("Read", mock.Anything, 7, 99).Return(nil, sql.ErrNoRows)

		rec := httptest.NewRecorder()
		New(newNoopLogger(), serviceMock).ServeHTTP(rec, newRequest(group, "99"))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("storage error", func(t *testing.T) {
		serviceMock := new(ServiceMock)
		serviceMock.On("Read", mock.Anything, 7, 3).Return(nil, errors.New("connection refused"))

		rec := httptest.NewRecorder()
		New(newNoopLogger(), serviceMock).ServeHTTP(rec, newRequest(group, "3"))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("missing group in context", func(t *testing.T) {
		serviceMock := new(ServiceMock)
		rec := httptest.NewRecorder()
		New(newNoopLogger(), serviceMock).ServeHTTP(rec, newRequest(nil, "3"))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		serviceMock.AssertNotCalled(t, "Read")
	})
}
