package models

import "time"

// Статусы прохождения программы.
const (
	EnrollmentActive    = "active"
	EnrollmentCompleted = "completed"
	EnrollmentPaused    = "paused"
)

// Enrollment связывает пользователя с программой, которую он проходит.
// На пару (пользователь, программа) существует не более одной записи.
type Enrollment struct {
	ID          int        // Идентификатор записи
	UserUID     string     // Идентификатор пользователя
	ProgramSlug string     // Слаг программы
	Status      string     // active, completed или paused
	CurrentDay  int        // Текущий день программы (с 1)
	StartedAt   time.Time  // Дата начала прохождения
	CompletedAt *time.Time // Дата завершения (nil, пока программа не пройдена)
}

// DummyEnrollment используется для приёма данных записи на программу.
type DummyEnrollment struct {
	ProgramSlug string `json:"program_slug" validate:"required"`
}

// DummyEnrollmentUpdate описывает частичное обновление записи.
// Nil-поля не изменяются.
type DummyEnrollmentUpdate struct {
	Status     *string `json:"status,omitempty" validate:"omitempty,oneof=active completed paused"`
	CurrentDay *int    `json:"current_day,omitempty" validate:"omitempty,gt=0"`
}
