// Package services содержит бизнес-логику управления программами,
// включая кеширование горячих чтений и проверку контента перед публикацией.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/course-platform/internal/lib/sl"
	"github.com/magabrotheeeer/course-platform/internal/lib/slug"
	"github.com/magabrotheeeer/course-platform/internal/models"
	"github.com/magabrotheeeer/course-platform/internal/storage"
)

// Ошибки уровня сервиса программ.
var (
	ErrNotFound       = errors.New("program not found")
	ErrSlugTaken      = errors.New("slug already taken")
	ErrInvalidSlug    = errors.New("invalid slug")
	ErrNotPublishable = errors.New("program content is not ready for publishing")
)

// ProgramRepository определяет методы для работы с программами в хранилище.
type ProgramRepository interface {
	CreateProgram(ctx context.Context, p models.Program) (int, error)
	GetProgramBySlug(ctx context.Context, slug string) (*models.Program, error)
	ListPrograms(ctx context.Context, onlyPublished bool, limit, offset int) ([]*models.Program, error)
	UpdateProgram(ctx context.Context, slug string, p models.Program) (int, error)
	RemoveProgram(ctx context.Context, slug string) (int, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// ContentChecker проверяет готовность дневного контента программы.
type ContentChecker interface {
	CheckProgram(programSlug string, dayCount int) error
}

// ProgramService реализует бизнес-логику работы с программами.
type ProgramService struct {
	repo    ProgramRepository
	cache   Cache
	content ContentChecker
	log     *slog.Logger
}

// NewProgramService создает новый экземпляр ProgramService.
func NewProgramService(repo ProgramRepository, cache Cache, content ContentChecker, log *slog.Logger) *ProgramService {
	return &ProgramService{
		repo:    repo,
		cache:   cache,
		content: content,
		log:     log,
	}
}

func cacheKey(programSlug string) string {
	return fmt.Sprintf("program:%s", programSlug)
}

// Create создает программу. Пустой слаг генерируется из названия.
// Публикация сразу при создании требует готового контента.
func (s *ProgramService) Create(ctx context.Context, req models.DummyProgram) (int, error) {
	programSlug := req.Slug
	if programSlug == "" {
		programSlug = slug.Make(req.Title)
	}
	if !slug.IsValid(programSlug) {
		return 0, ErrInvalidSlug
	}

	if req.Status == models.ProgramPublished {
		if err := s.content.CheckProgram(programSlug, req.DayCount); err != nil {
			return 0, fmt.Errorf("%w: %w", ErrNotPublishable, err)
		}
	}

	program := models.Program{
		Slug:       programSlug,
		Title:      req.Title,
		Summary:    req.Summary,
		Status:     req.Status,
		PriceCents: req.PriceCents,
		Currency:   req.Currency,
		Marketing:  req.Marketing,
		DayCount:   req.DayCount,
	}
	id, err := s.repo.CreateProgram(ctx, program)
	if err != nil {
		if storage.IsUniqueViolation(err) {
			return 0, ErrSlugTaken
		}
		return 0, err
	}

	s.log.Info("created new program", slog.Int("id", id), slog.String("slug", programSlug))
	return id, nil
}

// Get возвращает программу по слагу, используя кеш или репозиторий.
// При onlyPublished неопубликованные программы считаются отсутствующими.
func (s *ProgramService) Get(ctx context.Context, programSlug string, onlyPublished bool) (*models.Program, error) {
	var result *models.Program
	key := cacheKey(programSlug)
	found, err := s.cache.Get(key, &result)
	if err != nil {
		s.log.Warn("failed to read program cache", slog.String("key", key), sl.Err(err))
		found = false
	}
	if !found {
		result, err = s.repo.GetProgramBySlug(ctx, programSlug)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		if err != nil {
			return nil, err
		}
		if err := s.cache.Set(key, result, time.Hour); err != nil {
			s.log.Warn("failed to cache program", slog.String("key", key), sl.Err(err))
		}
	}

	if onlyPublished && result.Status != models.ProgramPublished {
		return nil, ErrNotFound
	}
	return result, nil
}

// List возвращает программы: публичная витрина видит только опубликованные.
func (s *ProgramService) List(ctx context.Context, onlyPublished bool, limit, offset int) ([]*models.Program, error) {
	return s.repo.ListPrograms(ctx, onlyPublished, limit, offset)
}

// Update обновляет программу по слагу и сбрасывает кеш. Перевод в
// published требует, чтобы каждый день контента существовал и парсился.
func (s *ProgramService) Update(ctx context.Context, programSlug string, req models.DummyProgram) error {
	if req.Status == models.ProgramPublished {
		if err := s.content.CheckProgram(programSlug, req.DayCount); err != nil {
			return fmt.Errorf("%w: %w", ErrNotPublishable, err)
		}
	}

	program := models.Program{
		Title:      req.Title,
		Summary:    req.Summary,
		Status:     req.Status,
		PriceCents: req.PriceCents,
		Currency:   req.Currency,
		Marketing:  req.Marketing,
		DayCount:   req.DayCount,
	}
	count, err := s.repo.UpdateProgram(ctx, programSlug, program)
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}

	if err := s.cache.Invalidate(cacheKey(programSlug)); err != nil {
		s.log.Warn("failed to invalidate program cache", slog.String("slug", programSlug), sl.Err(err))
	}
	s.log.Info("updated program", slog.String("slug", programSlug), slog.String("status", req.Status))
	return nil
}

// Remove удаляет программу по слагу и сбрасывает кеш.
func (s *ProgramService) Remove(ctx context.Context, programSlug string) error {
	if err := s.cache.Invalidate(cacheKey(programSlug)); err != nil {
		s.log.Warn("failed to invalidate program cache", slog.String("slug", programSlug), sl.Err(err))
	}

	count, err := s.repo.RemoveProgram(ctx, programSlug)
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	return nil
}
