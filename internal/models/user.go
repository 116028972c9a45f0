// Package models содержит доменную модель пользователя системы,
// включающую данные учётной записи, состояние подписки и блокировки.
// Структуры используются в бизнес‑логике и при работе с хранилищем.
package models

import "time"

// User представляет зарегистрированного пользователя системы.
type User struct {
	UID                         string     // Уникальный идентификатор пользователя
	Email                       string     // Электронная почта
	Username                    string     // Имя пользователя (уникальное)
	PasswordHash                string     // Хэш пароля пользователя
	IsSupportUser               bool       // Признак сотрудника поддержки
	IsSubscribed                bool       // Признак активной подписки
	SubscriptionEndDate         *time.Time // Дата окончания подписки, nil — без даты окончания
	RenewalDate                 *time.Time // Дата следующего продления, nil — продление не назначено
	SubscriptionManuallyExpired bool       // Подписка завершена вручную сотрудником поддержки
	IsLocked                    bool       // Учётная запись заблокирована
	LockedAt                    *time.Time // Момент блокировки
	LockedReason                string     // Причина блокировки
	CreatedAt                   time.Time  // Дата создания учётной записи, отсчёт пробного периода
}

// DummyRegister используется для приёма данных регистрации из JSON-запроса.
type DummyRegister struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,alphanum"`
	Password string `json:"password" validate:"required,min=8"`
}

// DummyLogin используется для приёма данных входа из JSON-запроса.
type DummyLogin struct {
	Username string `json:"username" validate:"required,alphanum"`
	Password string `json:"password" validate:"required"`
}

// UserView — представление пользователя для ответов консоли поддержки,
// без хэша пароля.
type UserView struct {
	UID                         string     `json:"uid"`
	Email                       string     `json:"email"`
	Username                    string     `json:"username"`
	IsSupportUser               bool       `json:"is_support_user"`
	IsSubscribed                bool       `json:"is_subscribed"`
	SubscriptionEndDate         *time.Time `json:"subscription_end_date"`
	RenewalDate                 *time.Time `json:"renewal_date"`
	SubscriptionManuallyExpired bool       `json:"subscription_manually_expired"`
	IsLocked                    bool       `json:"is_locked"`
	LockedAt                    *time.Time `json:"locked_at"`
	LockedReason                string     `json:"locked_reason,omitempty"`
	CreatedAt                   time.Time  `json:"created_at"`
}

// View возвращает представление пользователя без чувствительных полей.
func (u *User) View() UserView {
	return UserView{
		UID:                         u.UID,
		Email:                       u.Email,
		Username:                    u.Username,
		IsSupportUser:               u.IsSupportUser,
		IsSubscribed:                u.IsSubscribed,
		SubscriptionEndDate:         u.SubscriptionEndDate,
		RenewalDate:                 u.RenewalDate,
		SubscriptionManuallyExpired: u.SubscriptionManuallyExpired,
		IsLocked:                    u.IsLocked,
		LockedAt:                    u.LockedAt,
		LockedReason:                u.LockedReason,
		CreatedAt:                   u.CreatedAt,
	}
}
