// Package services содержит бизнес-логику консоли поддержки: управление
// подписками и блокировками пользователей, каскад завершения подписки
// и журнал действий.
package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/family-hub/internal/access"
	"github.com/magabrotheeeer/family-hub/internal/models"
	"github.com/magabrotheeeer/family-hub/internal/rabbitmq"
)

// SupportRepository определяет методы хранилища, нужные консоли поддержки.
type SupportRepository interface {
	GetUserByUID(ctx context.Context, uid string) (*models.User, error)
	ListUsers(ctx context.Context, search string, limit, offset int) ([]*models.User, error)
	UpdateUserSubscription(ctx context.Context, uid string, isSubscribed bool) (int, error)
	RestoreActiveAdmin(ctx context.Context, uid string) error
	SetSupportAccess(ctx context.Context, uid string, isSupportUser bool) (int, error)
	SetLock(ctx context.Context, uid string, locked bool, reason string, at time.Time) (int, error)
	SetSubscriptionEndDate(ctx context.Context, uid string, endDate *time.Time) (int, error)
	SetRenewalDate(ctx context.Context, uid string, renewalDate *time.Time) (int, error)
	ListAdminMemberships(ctx context.Context, userUID string) ([]*models.GroupMember, error)
	ListGroupAdmins(ctx context.Context, groupID int) ([]models.AdminState, error)
	ApplyExpiry(ctx context.Context, uid string, now time.Time, actions []models.ExpiryAction, audit models.AuditLog) error
	CreateAuditLog(ctx context.Context, entry models.AuditLog) error
	ListAuditLogs(ctx context.Context, targetUID string, limit, offset int) ([]*models.AuditLog, error)
}

// EventPublisher публикует доменные события в очередь.
type EventPublisher interface {
	Publish(routingKey string, message any) error
}

// SupportService реализует операции консоли поддержки.
// Каждое изменение фиксируется в журнале с состоянием до и после.
type SupportService struct {
	repo      SupportRepository
	publisher EventPublisher
	log       *slog.Logger
}

// NewSupportService создает новый экземпляр SupportService.
func NewSupportService(repo SupportRepository, publisher EventPublisher, log *slog.Logger) *SupportService {
	return &SupportService{
		repo:      repo,
		publisher: publisher,
		log:       log,
	}
}

// ListUsers возвращает пользователей с поиском и пагинацией.
func (s *SupportService) ListUsers(ctx context.Context, search string, limit, offset int) ([]models.UserView, error) {
	users, err := s.repo.ListUsers(ctx, search, limit, offset)
	if err != nil {
		return nil, err
	}
	result := make([]models.UserView, 0, len(users))
	for _, u := range users {
		result = append(result, u.View())
	}
	return result, nil
}

// GetUser возвращает пользователя по UID.
func (s *SupportService) GetUser(ctx context.Context, uid string) (*models.UserView, error) {
	user, err := s.repo.GetUserByUID(ctx, uid)
	if err != nil {
		return nil, err
	}
	view := user.View()
	return &view, nil
}

// UpdateSubscription выставляет флаг подписки пользователя.
// При включении подписки группам, где пользователь занимает роль admin,
// возвращается признак активного администратора.
func (s *SupportService) UpdateSubscription(ctx context.Context, supportUID, uid string, isSubscribed bool) (*models.UserView, error) {
	before, err := s.repo.GetUserByUID(ctx, uid)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.UpdateUserSubscription(ctx, uid, isSubscribed); err != nil {
		return nil, err
	}
	if isSubscribed {
		if err := s.repo.RestoreActiveAdmin(ctx, uid); err != nil {
			return nil, err
		}
	}

	return s.finishUserAction(ctx, supportUID, uid, models.AuditActionUpdateSubscription, before)
}

// SetSupportAccess выставляет признак сотрудника поддержки.
func (s *SupportService) SetSupportAccess(ctx context.Context, supportUID, uid string, isSupportUser bool) (*models.UserView, error) {
	before, err := s.repo.GetUserByUID(ctx, uid)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.SetSupportAccess(ctx, uid, isSupportUser); err != nil {
		return nil, err
	}
	return s.finishUserAction(ctx, supportUID, uid, models.AuditActionSetSupportAccess, before)
}

// SetLock блокирует или разблокирует учётную запись.
func (s *SupportService) SetLock(ctx context.Context, supportUID, uid string, locked bool, reason string) (*models.UserView, error) {
	before, err := s.repo.GetUserByUID(ctx, uid)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.SetLock(ctx, uid, locked, reason, time.Now().UTC()); err != nil {
		return nil, err
	}
	return s.finishUserAction(ctx, supportUID, uid, models.AuditActionSetLock, before)
}

// SetSubscriptionEndDate выставляет дату окончания подписки, nil очищает её.
func (s *SupportService) SetSubscriptionEndDate(ctx context.Context, supportUID, uid string, endDate *time.Time) (*models.UserView, error) {
	before, err := s.repo.GetUserByUID(ctx, uid)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.SetSubscriptionEndDate(ctx, uid, endDate); err != nil {
		return nil, err
	}
	return s.finishUserAction(ctx, supportUID, uid, models.AuditActionSetEndDate, before)
}

// SetRenewalDate выставляет дату продления, nil очищает её.
func (s *SupportService) SetRenewalDate(ctx context.Context, supportUID, uid string, renewalDate *time.Time) (*models.UserView, error) {
	before, err := s.repo.GetUserByUID(ctx, uid)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.SetRenewalDate(ctx, uid, renewalDate); err != nil {
		return nil, err
	}
	return s.finishUserAction(ctx, supportUID, uid, models.AuditActionSetRenewalDate, before)
}

// ExpireSubscription завершает подписку пользователя и выполняет каскад
// по всем группам, где он занимает роль admin.
//
// Для каждой такой группы: если среди остальных администраторов есть хотя бы
// один с активной подпиской — роль пользователя понижается до adult; иначе
// у группы сбрасывается признак активного администратора, роль не меняется.
// Пометка пользователя, каскад и запись в журнал применяются одной
// транзакцией; событие публикуется после фиксации.
func (s *SupportService) ExpireSubscription(ctx context.Context, supportUID, uid string) (*models.UserView, []models.ExpiryAction, error) {
	before, err := s.repo.GetUserByUID(ctx, uid)
	if err != nil {
		return nil, nil, err
	}

	memberships, err := s.repo.ListAdminMemberships(ctx, uid)
	if err != nil {
		return nil, nil, err
	}

	actions := make([]models.ExpiryAction, 0, len(memberships))
	for _, m := range memberships {
		admins, err := s.repo.ListGroupAdmins(ctx, m.GroupID)
		if err != nil {
			return nil, nil, err
		}
		actions = append(actions, models.ExpiryAction{
			GroupID:       m.GroupID,
			DowngradeRole: access.AnyOtherActiveAdmin(admins, uid),
			PreviousRole:  m.Role,
		})
	}

	now := time.Now().UTC()
	audit := models.AuditLog{
		SupportUserUID: supportUID,
		TargetUserUID:  uid,
		Action:         models.AuditActionExpireSubscription,
		PreviousState:  marshalState(before.View()),
		NewState:       marshalExpiry(before, now, actions),
	}
	if err := s.repo.ApplyExpiry(ctx, uid, now, actions, audit); err != nil {
		return nil, nil, err
	}
	s.log.Info("subscription expired",
		slog.String("uid", uid),
		slog.Int("cascaded_groups", len(actions)))

	event := models.SubscriptionExpiredEvent{
		UserUID:   uid,
		Email:     before.Email,
		Username:  before.Username,
		ExpiredAt: now,
		Actions:   actions,
	}
	if err := s.publisher.Publish(rabbitmq.RoutingKeySubscriptionExpired, event); err != nil {
		s.log.Warn("failed to publish subscription expired event", slog.Any("err", err))
	}

	after, err := s.repo.GetUserByUID(ctx, uid)
	if err != nil {
		return nil, nil, err
	}
	view := after.View()
	return &view, actions, nil
}

// ListAuditLogs возвращает записи журнала действий поддержки.
func (s *SupportService) ListAuditLogs(ctx context.Context, targetUID string, limit, offset int) ([]*models.AuditLog, error) {
	return s.repo.ListAuditLogs(ctx, targetUID, limit, offset)
}

// finishUserAction перечитывает пользователя, пишет запись журнала
// и возвращает представление нового состояния.
func (s *SupportService) finishUserAction(ctx context.Context, supportUID, uid, action string, before *models.User) (*models.UserView, error) {
	after, err := s.repo.GetUserByUID(ctx, uid)
	if err != nil {
		return nil, err
	}

	entry := models.AuditLog{
		SupportUserUID: supportUID,
		TargetUserUID:  uid,
		Action:         action,
		PreviousState:  marshalState(before.View()),
		NewState:       marshalState(after.View()),
	}
	if err := s.repo.CreateAuditLog(ctx, entry); err != nil {
		s.log.Warn("failed to write audit log", slog.String("action", action), slog.Any("err", err))
	}

	view := after.View()
	return &view, nil
}

func marshalState(v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		return json.RawMessage(`{}`)
	}
	return data
}

func marshalExpiry(before *models.User, now time.Time, actions []models.ExpiryAction) json.RawMessage {
	view := before.View()
	view.IsSubscribed = false
	view.SubscriptionManuallyExpired = true
	view.SubscriptionEndDate = &now
	view.RenewalDate = nil
	return marshalState(struct {
		User    models.UserView       `json:"user"`
		Actions []models.ExpiryAction `json:"actions"`
	}{User: view, Actions: actions})
}
