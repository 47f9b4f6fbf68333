package models

import "time"

// Статусы статьи блога.
const (
	PostDraft     = "draft"
	PostPublished = "published"
)

// Category рубрика блога. Удаляется жёстко; статьи при этом
// не перепривязываются и не блокируют удаление.
type Category struct {
	ID        int    // Идентификатор рубрики
	Name      string // Название
	Slug      string // Слаг (уникальный)
	CreatedAt time.Time
}

// Post статья блога. Удаление мягкое: DeletedAt проставляется,
// запись сохраняется и может быть восстановлена.
type Post struct {
	ID           int        // Идентификатор статьи
	Title        string     // Заголовок
	Slug         string     // Слаг (уникальный)
	Summary      string     // Анонс
	Body         string     // Текст статьи
	CategoryID   *int       // Рубрика (nil, если рубрика удалена или не задана)
	CategoryName string     // Название рубрики, подставляется при выборке
	Status       string     // draft или published
	Tags         []string   // Теги статьи
	PublishedAt  *time.Time // Дата публикации
	DeletedAt    *time.Time // Дата мягкого удаления
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// DummyCategory используется для приёма данных рубрики из JSON-запроса.
type DummyCategory struct {
	Name string `json:"name" validate:"required"`
	Slug string `json:"slug,omitempty"`
}

// DummyPost используется для приёма данных статьи из JSON-запроса.
// Пустой слаг генерируется из заголовка.
type DummyPost struct {
	Title      string   `json:"title" validate:"required"`
	Slug       string   `json:"slug,omitempty"`
	Summary    string   `json:"summary,omitempty"`
	Body       string   `json:"body" validate:"required"`
	CategoryID *int     `json:"category_id,omitempty"`
	Status     string   `json:"status" validate:"required,oneof=draft published"`
	Tags       []string `json:"tags,omitempty"`
}

// PostFilter описывает фильтры списка статей в админке.
// Пустые поля означают отсутствие фильтра.
type PostFilter struct {
	Status     string // Фильтр по статусу
	CategoryID *int   // Фильтр по рубрике
	Tag        string // Фильтр по тегу
	Query      string // Поиск без учёта регистра по заголовку, слагу, анонсу и рубрике
}
