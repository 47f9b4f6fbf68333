package models

import "time"

// Статусы подписчика рассылки.
const (
	SubscriberPending      = "pending"
	SubscriberConfirmed    = "confirmed"
	SubscriberUnsubscribed = "unsubscribed"
	SubscriberBounced      = "bounced"
	SubscriberComplained   = "complained"
)

// Subscriber подписчик новостной рассылки. Подписка двухэтапная:
// запись создаётся в статусе pending и подтверждается по токену из письма.
type Subscriber struct {
	ID             string     // Идентификатор подписчика (uuid)
	Email          string     // Адрес (уникальный)
	Status         string     // pending, confirmed, unsubscribed, bounced, complained
	Tags           []string   // Теги сегментации
	ConfirmToken   string     // Токен подтверждения и отписки
	SubscribedAt   time.Time  // Дата подписки
	ConfirmedAt    *time.Time // Дата подтверждения
	UnsubscribedAt *time.Time // Дата отписки
	RemindedAt     *time.Time // Дата отправки напоминания о подтверждении
}

// DummySubscribe используется для приёма заявки на подписку из JSON-запроса.
type DummySubscribe struct {
	Email string   `json:"email" validate:"required,email"`
	Tags  []string `json:"tags,omitempty"`
}

// DummySubscriberUpdate описывает изменение подписчика администратором.
type DummySubscriberUpdate struct {
	Status string   `json:"status" validate:"required,oneof=pending confirmed unsubscribed bounced complained"`
	Tags   []string `json:"tags,omitempty"`
}

// SubscriberFilter описывает фильтры списка подписчиков в админке.
type SubscriberFilter struct {
	Status string // Фильтр по статусу
	Tag    string // Фильтр по тегу
	Query  string // Поиск по адресу без учёта регистра
}

// ConfirmEmail сообщение для очереди рассылки: кому и с каким токеном
// отправить письмо подтверждения или напоминания.
type ConfirmEmail struct {
	Email string `json:"email"`
	Token string `json:"token"`
}
