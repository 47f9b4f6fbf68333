// Package services содержит бизнес-логику администрирования пользователей:
// смена роли и лимитов, приостановка и архивация аккаунтов.
package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/magabrotheeeer/course-platform/internal/models"
)

// ErrNotFound возвращается, когда пользователь не существует или архивирован.
var ErrNotFound = errors.New("user not found")

// UserRepository определяет методы для работы с пользователями в хранилище.
type UserRepository interface {
	// ListUsers возвращает пользователей с пагинацией, без архивированных.
	ListUsers(ctx context.Context, limit, offset int) ([]*models.User, error)
	// UpdateUser обновляет профиль; nil-поля не трогаются.
	UpdateUser(ctx context.Context, uuid string, upd models.DummyUserUpdate) (int, error)
	// SetUserSuspended приостанавливает или восстанавливает пользователя.
	SetUserSuspended(ctx context.Context, uuid string, suspended bool) (int, error)
	// ArchiveUser мягко удаляет пользователя.
	ArchiveUser(ctx context.Context, uuid string) (int, error)
}

// UserService реализует админские операции над пользователями.
type UserService struct {
	repo UserRepository
	log  *slog.Logger
}

// NewUserService создает новый экземпляр UserService.
func NewUserService(repo UserRepository, log *slog.Logger) *UserService {
	return &UserService{repo: repo, log: log}
}

// List возвращает пользователей с пагинацией.
func (s *UserService) List(ctx context.Context, limit, offset int) ([]*models.User, error) {
	return s.repo.ListUsers(ctx, limit, offset)
}

// Update применяет частичное обновление профиля. Флаг Suspended
// обрабатывается отдельным запросом: это смена мягкого состояния,
// а не поля профиля.
func (s *UserService) Update(ctx context.Context, uuid string, upd models.DummyUserUpdate) error {
	if upd.Role != nil || upd.Theme != nil || upd.MarketingOptIn != nil || upd.MaxConcurrentPrograms != nil {
		count, err := s.repo.UpdateUser(ctx, uuid, upd)
		if err != nil {
			return err
		}
		if count == 0 {
			return ErrNotFound
		}
	}

	if upd.Suspended != nil {
		count, err := s.repo.SetUserSuspended(ctx, uuid, *upd.Suspended)
		if err != nil {
			return err
		}
		if count == 0 {
			return ErrNotFound
		}
		s.log.Info("user suspension changed",
			slog.String("uuid", uuid), slog.Bool("suspended", *upd.Suspended))
	}
	return nil
}

// Archive мягко удаляет пользователя. Повторная архивация — ErrNotFound.
func (s *UserService) Archive(ctx context.Context, uuid string) error {
	count, err := s.repo.ArchiveUser(ctx, uuid)
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	s.log.Info("user archived", slog.String("uuid", uuid))
	return nil
}
