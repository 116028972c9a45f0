// Package services содержит бизнес-логику работы с группами и членством.
package services

import (
	"context"
	"log/slog"

	"github.com/magabrotheeeer/family-hub/internal/models"
)

// GroupRepository определяет методы для работы с группами в хранилище.
type GroupRepository interface {
	// CreateGroup создает группу и членство создателя с ролью admin.
	CreateGroup(ctx context.Context, name, creatorUID string) (int, error)
	// GetGroup возвращает группу по ID.
	GetGroup(ctx context.Context, id int) (*models.Group, error)
	// GetGroupMember возвращает членство пользователя в группе.
	GetGroupMember(ctx context.Context, groupID int, userUID string) (*models.GroupMember, error)
	// ListGroupMembers возвращает всех участников группы.
	ListGroupMembers(ctx context.Context, groupID int) ([]*models.GroupMember, error)
}

// GroupService реализует бизнес-логику работы с группами.
type GroupService struct {
	repo GroupRepository
	log  *slog.Logger
}

// NewGroupService создает новый экземпляр GroupService.
func NewGroupService(repo GroupRepository, log *slog.Logger) *GroupService {
	return &GroupService{repo: repo, log: log}
}

// Create создает группу; создатель становится её администратором,
// признак активного администратора выставлен.
func (s *GroupService) Create(ctx context.Context, creatorUID string, req models.DummyGroup) (int, error) {
	id, err := s.repo.CreateGroup(ctx, req.Name, creatorUID)
	if err != nil {
		return 0, err
	}
	s.log.Info("created new group", slog.Int("id", id), slog.String("creator", creatorUID))
	return id, nil
}

// Read возвращает группу вместе со списком участников.
func (s *GroupService) Read(ctx context.Context, groupID int) (*models.Group, []*models.GroupMember, error) {
	group, err := s.repo.GetGroup(ctx, groupID)
	if err != nil {
		return nil, nil, err
	}
	members, err := s.repo.ListGroupMembers(ctx, groupID)
	if err != nil {
		return nil, nil, err
	}
	return group, members, nil
}

// Membership возвращает группу и членство пользователя в ней.
func (s *GroupService) Membership(ctx context.Context, groupID int, userUID string) (*models.Group, *models.GroupMember, error) {
	group, err := s.repo.GetGroup(ctx, groupID)
	if err != nil {
		return nil, nil, err
	}
	member, err := s.repo.GetGroupMember(ctx, groupID, userUID)
	if err != nil {
		return group, nil, err
	}
	return group, member, nil
}
