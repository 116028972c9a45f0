// Package models содержит доменные структуры группы и членства в ней.
package models

import "time"

// Роли участников группы. Ровно одна запись членства на пару (user, group).
const (
	RoleAdmin     = "admin"
	RoleParent    = "parent"
	RoleAdult     = "adult"
	RoleCaregiver = "caregiver"
	RoleChild     = "child"
)

// Group представляет семейную группу.
// Поле HasActiveAdmin сбрасывается, когда у группы не остаётся администратора
// с активной подпиской; ReadOnlyUntil — устаревший механизм временной
// блокировки записи, сохранён для старых строк.
type Group struct {
	ID             int        // Идентификатор группы
	Name           string     // Отображаемое имя группы
	HasActiveAdmin bool       // Есть ли администратор с активной подпиской
	ReadOnlyUntil  *time.Time // Группа только для чтения до этой даты (legacy)
	CreatedAt      time.Time  // Дата создания группы
}

// GroupMember представляет членство пользователя в группе.
type GroupMember struct {
	ID      int    // Идентификатор записи членства
	GroupID int    // Идентификатор группы
	UserUID string // Идентификатор пользователя
	Role    string // Роль: admin, parent, adult, caregiver или child
	User    *User  // Присоединённые данные пользователя (опционально)
}

// DummyGroup используется для приёма данных создания группы из JSON-запроса.
type DummyGroup struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
}

// AdminState — срез состояния подписки одного администратора группы.
// Используется при каскаде завершения подписки.
type AdminState struct {
	UserUID             string
	IsSubscribed        bool
	SubscriptionEndDate *time.Time
}

// ExpiryAction описывает решение каскада для одной группы:
// либо понижение роли завершаемого пользователя до adult (есть другой
// администратор с активной подпиской), либо сброс HasActiveAdmin.
type ExpiryAction struct {
	GroupID       int    `json:"group_id"`
	DowngradeRole bool   `json:"downgrade_role"`
	PreviousRole  string `json:"previous_role,omitempty"`
}
