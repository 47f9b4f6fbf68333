package models

import "time"

// Статусы программы.
const (
	ProgramDraft     = "draft"
	ProgramPreflight = "preflight"
	ProgramPublished = "published"
)

// Program представляет покупаемую программу-курс. Ежедневная структура
// программы хранится в JSON-файлах каталога контента, не в базе.
type Program struct {
	ID         int       // Идентификатор программы
	Slug       string    // Слаг программы (уникальный)
	Title      string    // Название
	Summary    string    // Краткое описание
	Status     string    // draft, preflight или published
	PriceCents int       // Цена в минорных единицах валюты
	Currency   string    // Код валюты (EUR и т.п.)
	Marketing  Marketing // Маркетинговые метаданные страницы программы
	DayCount   int       // Количество дней в программе
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Marketing хранит маркетинговые метаданные программы (jsonb-колонка).
type Marketing struct {
	Hero     string    `json:"hero,omitempty"`
	Benefits []string  `json:"benefits,omitempty"`
	FAQ      []FAQItem `json:"faq,omitempty"`
	SEO      SEO       `json:"seo,omitempty"`
}

// FAQItem один вопрос-ответ на странице программы.
type FAQItem struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// SEO метаданные страницы программы.
type SEO struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

// DummyProgram используется для приёма данных программы из JSON-запроса.
// Пустой слаг генерируется из названия.
type DummyProgram struct {
	Slug       string    `json:"slug,omitempty"`
	Title      string    `json:"title" validate:"required"`
	Summary    string    `json:"summary,omitempty"`
	Status     string    `json:"status" validate:"required,oneof=draft preflight published"`
	PriceCents int       `json:"price_cents" validate:"gte=0"`
	Currency   string    `json:"currency" validate:"required,len=3"`
	Marketing  Marketing `json:"marketing,omitempty"`
	DayCount   int       `json:"day_count" validate:"gte=0"`
}
