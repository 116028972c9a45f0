package services

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/family-hub/internal/models"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) CreateGroup(ctx context.Context, name, creatorUID string) (int, error) {
	args := m.Called(ctx, name, creatorUID)
	return args.Int(0), args.Error(1)
}

func (m *RepoMock) GetGroup(ctx context.Context, id int) (*models.Group, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Group), args.Error(1)
}

func (m *RepoMock) GetGroupMember(ctx context.Context, groupID int, userUID string) (*models.GroupMember, error) {
	args := m.Called(ctx, groupID, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GroupMember), args.Error(1)
}

func (m *RepoMock) ListGroupMembers(ctx context.Context, groupID int) ([]*models.GroupMember, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.GroupMember), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestGroupService_Create(t *testing.T) {
	repo := new(RepoMock)
	repo.On("CreateGroup", mock.Anything, "family", "uid-1").Return(7, nil)

	svc := NewGroupService(repo, newNoopLogger())
	id, err := svc.Create(context.Background(), "uid-1", models.DummyGroup{Name: "family"})
	require.NoError(t, err)
	assert.Equal(t, 7, id)
	repo.AssertExpectations(t)
}

func TestGroupService_Read(t *testing.T) {
	group := &models.Group{ID: 7, Name: "family", HasActiveAdmin: true}
	members := []*models.GroupMember{
		{GroupID: 7, UserUID: "uid-1", Role: models.RoleAdmin},
		{GroupID: 7, UserUID: "uid-2", Role: models.RoleChild},
	}

	repo := new(RepoMock)
	repo.On("GetGroup", mock.Anything, 7).Return(group, nil)
	repo.On("ListGroupMembers", mock.Anything, 7).Return(members, nil)

	svc := NewGroupService(repo, newNoopLogger())
	gotGroup, gotMembers, err := svc.Read(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, group, gotGroup)
	assert.Len(t, gotMembers, 2)
}

func TestGroupService_Membership(t *testing.T) {
	group := &models.Group{ID: 7, Name: "family", HasActiveAdmin: true}
	member := &models.GroupMember{GroupID: 7, UserUID: "uid-1", Role: models.RoleParent}

	t.Run("member", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetGroup", mock.Anything, 7).Return(group, nil)
		repo.On("GetGroupMember", mock.Anything, 7, "uid-1").Return(member, nil)

		svc := NewGroupService(repo, newNoopLogger())
		gotGroup, gotMember, err := svc.Membership(context.Background(), 7, "uid-1")
		require.NoError(t, err)
		assert.Equal(t, group, gotGroup)
		assert.Equal(t, member, gotMember)
	})

	t.Run("not a member keeps group in result", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetGroup", mock.Anything, 7).Return(group, nil)
		repo.On("GetGroupMember", mock.Anything, 7, "uid-9").Return(nil, sql.ErrNoRows)

		svc := NewGroupService(repo, newNoopLogger())
		gotGroup, gotMember, err := svc.Membership(context.Background(), 7, "uid-9")
		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.Equal(t, group, gotGroup)
		assert.Nil(t, gotMember)
	})

	t.Run("unknown group", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetGroup", mock.Anything, 99).Return(nil, sql.ErrNoRows)

		svc := NewGroupService(repo, newNoopLogger())
		gotGroup, gotMember, err := svc.Membership(context.Background(), 99, "uid-1")
		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.Nil(t, gotGroup)
		assert.Nil(t, gotMember)
	})

	t.Run("storage error", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetGroup", mock.Anything, 7).Return(nil, errors.New("connection refused"))

		svc := NewGroupService(repo, newNoopLogger())
		_, _, err := svc.Membership(context.Background(), 7, "uid-1")
		assert.Error(t, err)
	})
}
