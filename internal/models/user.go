// Package models содержит доменные структуры платформы и вспомогательные
// типы для приёма данных из JSON-запросов (Dummy*-структуры).
package models

import "time"

// Роли пользователей.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User представляет зарегистрированного пользователя платформы.
//
// SuspendedAt и DeletedAt — мягкие состояния: приостановленный пользователь
// не может входить, архивированный скрыт отовсюду, но запись сохраняется.
type User struct {
	UUID                  string     // Уникальный идентификатор пользователя
	Email                 string     // Электронная почта (уникальная)
	Username              string     // Имя пользователя (уникальное)
	PasswordHash          string     // Хэш пароля пользователя
	Role                  string     // Роль пользователя, admin или user
	Theme                 string     // Тема интерфейса, выбранная пользователем
	MarketingOptIn        bool       // Согласие на маркетинговые письма
	MaxConcurrentPrograms int        // Лимит одновременно проходимых программ
	SuspendedAt           *time.Time // Дата приостановки аккаунта
	DeletedAt             *time.Time // Дата архивации аккаунта
	CreatedAt             time.Time
}

// IsSuspended сообщает, приостановлен ли аккаунт.
func (u *User) IsSuspended() bool { return u.SuspendedAt != nil }

// IsArchived сообщает, архивирован ли аккаунт.
func (u *User) IsArchived() bool { return u.DeletedAt != nil }

// DummyRegister используется для приёма данных регистрации из JSON-запроса.
type DummyRegister struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,alphanum,min=3"`
	Password string `json:"password" validate:"required,min=8"`
}

// DummyLogin используется для приёма данных входа из JSON-запроса.
type DummyLogin struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// DummyUserUpdate описывает частичное обновление пользователя администратором.
// Nil-поля не изменяются.
type DummyUserUpdate struct {
	Role                  *string `json:"role,omitempty" validate:"omitempty,oneof=user admin"`
	Theme                 *string `json:"theme,omitempty"`
	MarketingOptIn        *bool   `json:"marketing_opt_in,omitempty"`
	MaxConcurrentPrograms *int    `json:"max_concurrent_programs,omitempty" validate:"omitempty,gt=0"`
	Suspended             *bool   `json:"suspended,omitempty"`
}
