package models

import "time"

// DayState хранит ответы пользователя за один день программы.
//
// Values — плоское отображение путь-поля → значение; путь кодирует
// секцию, упражнение и ключ поля (см. FieldPath в schema.go).
// Запись только добавляется или обновляется, удаления нет.
type DayState struct {
	UserUID      string         // Идентификатор пользователя
	ProgramSlug  string         // Слаг программы
	Day          int            // Номер дня (с 1)
	Values       map[string]any // Значения полей по путям
	SliderBefore *int           // Самочувствие до сессии
	SliderAfter  *int           // Самочувствие после сессии
	Completed    bool           // День отмечен завершённым
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// DummyDayState используется для приёма сохранения дня из JSON-запроса.
type DummyDayState struct {
	Values       map[string]any `json:"values" validate:"required"`
	SliderBefore *int           `json:"slider_before,omitempty" validate:"omitempty,gte=0,lte=10"`
	SliderAfter  *int           `json:"slider_after,omitempty" validate:"omitempty,gte=0,lte=10"`
	Completed    bool           `json:"completed"`
}
