// Package services содержит бизнес-логику записи пользователей на программы:
// лимит одновременных программ, статусы прохождения, текущий день.
package services

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/course-platform/internal/models"
	"github.com/magabrotheeeer/course-platform/internal/storage"
)

// Ошибки уровня сервиса записей.
var (
	ErrNotFound            = errors.New("enrollment not found")
	ErrAlreadyEnrolled     = errors.New("already enrolled in this program")
	ErrLimitReached        = errors.New("concurrent programs limit reached")
	ErrProgramNotAvailable = errors.New("program is not available")
	ErrUserBlocked         = errors.New("account is suspended or archived")
	ErrForbidden           = errors.New("enrollment belongs to another user")
)

// EnrollmentRepository определяет методы для работы с записями в хранилище.
type EnrollmentRepository interface {
	CreateEnrollment(ctx context.Context, e models.Enrollment) (int, error)
	GetEnrollment(ctx context.Context, id int) (*models.Enrollment, error)
	ListEnrollmentsByUser(ctx context.Context, userUID string) ([]*models.Enrollment, error)
	CountActiveEnrollments(ctx context.Context, userUID string) (int, error)
	UpdateEnrollment(ctx context.Context, e models.Enrollment) (int, error)
}

// UserRepository отдаёт пользователя для проверки лимитов и мягких состояний.
type UserRepository interface {
	GetUserByUUID(ctx context.Context, uuid string) (*models.User, error)
}

// ProgramRepository отдаёт программу для проверки доступности.
type ProgramRepository interface {
	GetProgramBySlug(ctx context.Context, slug string) (*models.Program, error)
}

// EnrollmentService реализует бизнес-логику записей на программы.
type EnrollmentService struct {
	repo     EnrollmentRepository
	users    UserRepository
	programs ProgramRepository
	log      *slog.Logger
}

// NewEnrollmentService создает новый экземпляр EnrollmentService.
func NewEnrollmentService(repo EnrollmentRepository, users UserRepository, programs ProgramRepository, log *slog.Logger) *EnrollmentService {
	return &EnrollmentService{
		repo:     repo,
		users:    users,
		programs: programs,
		log:      log,
	}
}

// Create записывает пользователя на опубликованную программу.
// Отказ: приостановленный или архивированный аккаунт, превышение лимита
// одновременных программ, повторная запись на ту же программу.
func (s *EnrollmentService) Create(ctx context.Context, userUID string, req models.DummyEnrollment) (int, error) {
	user, err := s.users.GetUserByUUID(ctx, userUID)
	if err != nil {
		return 0, err
	}
	if user.IsSuspended() || user.IsArchived() {
		return 0, ErrUserBlocked
	}

	program, err := s.programs.GetProgramBySlug(ctx, req.ProgramSlug)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrProgramNotAvailable
	}
	if err != nil {
		return 0, err
	}
	if program.Status != models.ProgramPublished {
		return 0, ErrProgramNotAvailable
	}

	active, err := s.repo.CountActiveEnrollments(ctx, userUID)
	if err != nil {
		return 0, err
	}
	if active >= user.MaxConcurrentPrograms {
		return 0, ErrLimitReached
	}

	enrollment := models.Enrollment{
		UserUID:     userUID,
		ProgramSlug: req.ProgramSlug,
		Status:      models.EnrollmentActive,
		CurrentDay:  1,
	}
	id, err := s.repo.CreateEnrollment(ctx, enrollment)
	if err != nil {
		if storage.IsUniqueViolation(err) {
			return 0, ErrAlreadyEnrolled
		}
		return 0, err
	}

	s.log.Info("created enrollment",
		slog.Int("id", id), slog.String("user", userUID), slog.String("program", req.ProgramSlug))
	return id, nil
}

// List возвращает записи пользователя.
func (s *EnrollmentService) List(ctx context.Context, userUID string) ([]*models.Enrollment, error) {
	return s.repo.ListEnrollmentsByUser(ctx, userUID)
}

// Update меняет статус и текущий день записи. Чужую запись может менять
// только администратор. Переход в completed фиксирует дату завершения.
func (s *EnrollmentService) Update(ctx context.Context, id int, userUID, role string, req models.DummyEnrollmentUpdate) error {
	enrollment, err := s.repo.GetEnrollment(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if enrollment.UserUID != userUID && role != models.RoleAdmin {
		return ErrForbidden
	}

	if req.Status != nil {
		enrollment.Status = *req.Status
		if *req.Status == models.EnrollmentCompleted && enrollment.CompletedAt == nil {
			now := time.Now().UTC()
			enrollment.CompletedAt = &now
		}
		if *req.Status != models.EnrollmentCompleted {
			enrollment.CompletedAt = nil
		}
	}
	if req.CurrentDay != nil {
		enrollment.CurrentDay = *req.CurrentDay
	}

	count, err := s.repo.UpdateEnrollment(ctx, *enrollment)
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	return nil
}
