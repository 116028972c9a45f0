// Package access реализует правила доступа к группам: состояние "только
// для чтения" и административные полномочия участников.
//
// Все функции чистые и не обращаются к хранилищу: решения принимаются
// по уже загруженным данным группы, членства и пользователя.
package access

import (
	"time"

	"github.com/magabrotheeeer/family-hub/internal/models"
)

// TrialWindow — пробный период после регистрации, в течение которого
// пользователь без подписки получает полномочия администратора.
const TrialWindow = 20 * 24 * time.Hour

// Коды машиночитаемых ошибок для клиента.
const (
	CodeGroupReadOnly       = "GROUP_READ_ONLY"
	CodeGroupReadOnlyLegacy = "GROUP_READ_ONLY_LEGACY"
)

// ReadOnlyReason — ответ 403 для запросов на изменение в группе
// только для чтения. Code клиент использует для показа точного сообщения
// вместо общего экрана ошибки.
type ReadOnlyReason struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// IsGroupReadOnly сообщает, заблокированы ли изменения в группе.
//
// Группа только для чтения, когда у неё нет администратора с активной
// подпиской либо когда выставлен устаревший ReadOnlyUntil в будущем.
// Отсутствие HasActiveAdmin имеет приоритет над ReadOnlyUntil.
// nil-группа считается доступной для записи.
func IsGroupReadOnly(group *models.Group) bool {
	return isGroupReadOnlyAt(group, time.Now())
}

func isGroupReadOnlyAt(group *models.Group, now time.Time) bool {
	if group == nil {
		return false
	}
	if !group.HasActiveAdmin {
		return true
	}
	return group.ReadOnlyUntil != nil && group.ReadOnlyUntil.After(now)
}

// HasAdminPermissions сообщает, обладает ли участник группы полномочиями
// администратора.
//
// Полномочия даёт роль admin либо пробный период: пользователь без подписки
// считается администратором 20 дней с даты регистрации. nil-членство
// и членство без присоединённого пользователя полномочий не дают.
func HasAdminPermissions(member *models.GroupMember) bool {
	return hasAdminPermissionsAt(member, time.Now())
}

func hasAdminPermissionsAt(member *models.GroupMember, now time.Time) bool {
	if member == nil {
		return false
	}
	if member.Role == models.RoleAdmin {
		return true
	}
	if member.User == nil {
		return false
	}
	return !member.User.IsSubscribed && inTrialWindowAt(member.User, now)
}

// InTrialWindow сообщает, находится ли пользователь в пробном периоде.
func InTrialWindow(user *models.User) bool {
	return inTrialWindowAt(user, time.Now())
}

func inTrialWindowAt(user *models.User, now time.Time) bool {
	if user == nil {
		return false
	}
	return now.Sub(user.CreatedAt) <= TrialWindow
}

// HasActiveSubscription сообщает, действует ли подписка пользователя:
// флаг подписки выставлен и дата окончания не наступила (или не задана).
func HasActiveSubscription(user *models.User) bool {
	return hasActiveSubscriptionAt(user, time.Now())
}

func hasActiveSubscriptionAt(user *models.User, now time.Time) bool {
	if user == nil || !user.IsSubscribed {
		return false
	}
	return user.SubscriptionEndDate == nil || user.SubscriptionEndDate.After(now)
}

// AnyOtherActiveAdmin сообщает, есть ли среди администраторов группы,
// кроме excludeUID, хотя бы один с активной подпиской. От ответа зависит
// ветка каскада завершения подписки: понижение роли или сброс HasActiveAdmin.
func AnyOtherActiveAdmin(admins []models.AdminState, excludeUID string) bool {
	return anyOtherActiveAdminAt(admins, excludeUID, time.Now())
}

func anyOtherActiveAdminAt(admins []models.AdminState, excludeUID string, now time.Time) bool {
	for _, a := range admins {
		if a.UserUID == excludeUID {
			continue
		}
		if a.IsSubscribed && (a.SubscriptionEndDate == nil || a.SubscriptionEndDate.After(now)) {
			return true
		}
	}
	return false
}

// ReadOnlyError формирует ответ 403 для группы только для чтения.
func ReadOnlyError(group *models.Group) ReadOnlyReason {
	if group != nil && !group.HasActiveAdmin {
		return ReadOnlyReason{
			Error:   "group is read-only",
			Message: "This group is read-only because no admin has an active subscription.",
			Code:    CodeGroupReadOnly,
		}
	}
	return ReadOnlyReason{
		Error:   "group is read-only",
		Message: "This group is temporarily read-only.",
		Code:    CodeGroupReadOnlyLegacy,
	}
}
