// Package services содержит бизнес-логику блога: рубрики, статьи,
// фильтрация и сортировка списков в админке.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/magabrotheeeer/course-platform/internal/lib/slug"
	"github.com/magabrotheeeer/course-platform/internal/models"
	"github.com/magabrotheeeer/course-platform/internal/storage"
)

// Ошибки уровня сервиса блога.
var (
	ErrNotFound    = errors.New("not found")
	ErrSlugTaken   = errors.New("slug already taken")
	ErrInvalidSlug = errors.New("invalid slug")
)

// BlogRepository определяет методы для работы с блогом в хранилище.
type BlogRepository interface {
	CreateCategory(ctx context.Context, c models.Category) (int, error)
	ListCategories(ctx context.Context) ([]*models.Category, error)
	CountPostsByCategory(ctx context.Context, categoryID int) (int, error)
	RemoveCategory(ctx context.Context, id int) (int, error)

	CreatePost(ctx context.Context, p models.Post) (int, error)
	GetPostBySlug(ctx context.Context, slug string) (*models.Post, error)
	ListPosts(ctx context.Context, onlyPublished bool) ([]*models.Post, error)
	UpdatePost(ctx context.Context, id int, p models.Post) (int, error)
	SoftRemovePost(ctx context.Context, id int) (int, error)
}

// BlogService реализует бизнес-логику рубрик и статей.
type BlogService struct {
	repo BlogRepository
	log  *slog.Logger
}

// NewBlogService создает новый экземпляр BlogService.
func NewBlogService(repo BlogRepository, log *slog.Logger) *BlogService {
	return &BlogService{repo: repo, log: log}
}

// CreateCategory создает рубрику. Пустой слаг генерируется из названия.
func (s *BlogService) CreateCategory(ctx context.Context, req models.DummyCategory) (int, error) {
	categorySlug := req.Slug
	if categorySlug == "" {
		categorySlug = slug.Make(req.Name)
	}
	if !slug.IsValid(categorySlug) {
		return 0, ErrInvalidSlug
	}

	id, err := s.repo.CreateCategory(ctx, models.Category{Name: req.Name, Slug: categorySlug})
	if err != nil {
		if storage.IsUniqueViolation(err) {
			return 0, ErrSlugTaken
		}
		return 0, err
	}
	s.log.Info("created category", slog.Int("id", id), slog.String("slug", categorySlug))
	return id, nil
}

// ListCategories возвращает все рубрики.
func (s *BlogService) ListCategories(ctx context.Context) ([]*models.Category, error) {
	return s.repo.ListCategories(ctx)
}

// RemoveCategoryPreview возвращает, сколько статей затронет удаление
// рубрики. Ничего не меняет: это сухой прогон перед подтверждением.
func (s *BlogService) RemoveCategoryPreview(ctx context.Context, id int) (int, error) {
	return s.repo.CountPostsByCategory(ctx, id)
}

// RemoveCategory удаляет рубрику. Статьи не трогаются: их category_id
// обнуляется внешним ключом, каскада нет.
func (s *BlogService) RemoveCategory(ctx context.Context, id int) error {
	count, err := s.repo.RemoveCategory(ctx, id)
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	s.log.Info("removed category", slog.Int("id", id))
	return nil
}

// CreatePost создает статью. Пустой слаг генерируется из заголовка.
func (s *BlogService) CreatePost(ctx context.Context, req models.DummyPost) (int, error) {
	postSlug := req.Slug
	if postSlug == "" {
		postSlug = slug.Make(req.Title)
	}
	if !slug.IsValid(postSlug) {
		return 0, ErrInvalidSlug
	}

	post := models.Post{
		Title:      req.Title,
		Slug:       postSlug,
		Summary:    req.Summary,
		Body:       req.Body,
		CategoryID: req.CategoryID,
		Status:     req.Status,
		Tags:       req.Tags,
	}
	id, err := s.repo.CreatePost(ctx, post)
	if err != nil {
		if storage.IsUniqueViolation(err) {
			return 0, ErrSlugTaken
		}
		return 0, err
	}
	s.log.Info("created post", slog.Int("id", id), slog.String("slug", postSlug))
	return id, nil
}

// GetPost возвращает статью по слагу. Для публичной витрины черновики
// и удалённые статьи считаются отсутствующими.
func (s *BlogService) GetPost(ctx context.Context, postSlug string, onlyPublished bool) (*models.Post, error) {
	post, err := s.repo.GetPostBySlug(ctx, postSlug)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if onlyPublished && (post.Status != models.PostPublished || post.DeletedAt != nil) {
		return nil, ErrNotFound
	}
	return post, nil
}

// ListPosts возвращает статьи, отфильтрованные и отсортированные по
// свежести. Публичная витрина видит только опубликованные.
func (s *BlogService) ListPosts(ctx context.Context, onlyPublished bool, filter models.PostFilter) ([]*models.Post, error) {
	posts, err := s.repo.ListPosts(ctx, onlyPublished)
	if err != nil {
		return nil, err
	}
	posts = FilterPosts(posts, filter)
	SortRecent(posts)
	return posts, nil
}

// UpdatePost обновляет статью по идентификатору.
func (s *BlogService) UpdatePost(ctx context.Context, id int, req models.DummyPost) error {
	if req.Slug != "" && !slug.IsValid(req.Slug) {
		return ErrInvalidSlug
	}
	post := models.Post{
		Title:      req.Title,
		Slug:       req.Slug,
		Summary:    req.Summary,
		Body:       req.Body,
		CategoryID: req.CategoryID,
		Status:     req.Status,
		Tags:       req.Tags,
	}
	count, err := s.repo.UpdatePost(ctx, id, post)
	if err != nil {
		if storage.IsUniqueViolation(err) {
			return ErrSlugTaken
		}
		return fmt.Errorf("update post %d: %w", id, err)
	}
	if count == 0 {
		return ErrNotFound
	}
	return nil
}

// RemovePost мягко удаляет статью: запись остаётся в базе.
func (s *BlogService) RemovePost(ctx context.Context, id int) error {
	count, err := s.repo.SoftRemovePost(ctx, id)
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	s.log.Info("soft removed post", slog.Int("id", id))
	return nil
}

// FilterPosts возвращает статьи, проходящие все заданные фильтры сразу:
// статус, рубрику, тег и текстовый поиск. Поиск идёт без учёта регистра
// по заголовку, слагу, анонсу и названию рубрики.
func FilterPosts(posts []*models.Post, f models.PostFilter) []*models.Post {
	query := strings.ToLower(strings.TrimSpace(f.Query))
	out := make([]*models.Post, 0, len(posts))
	for _, p := range posts {
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		if f.CategoryID != nil && (p.CategoryID == nil || *p.CategoryID != *f.CategoryID) {
			continue
		}
		if f.Tag != "" && !containsTag(p.Tags, f.Tag) {
			continue
		}
		if query != "" {
			haystack := strings.ToLower(p.Title + " " + p.Slug + " " + p.Summary + " " + p.CategoryName)
			if !strings.Contains(haystack, query) {
				continue
			}
		}
		out = append(out, p)
	}
	return out
}

func containsTag(tags []string, tag string) bool {
	for _, t := range tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// SortRecent сортирует статьи по свежести: updated_at, а если его нет —
// created_at, по убыванию. Сортировка стабильная: равные даты сохраняют
// исходный порядок.
func SortRecent(posts []*models.Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		return recency(posts[i]).After(recency(posts[j]))
	})
}

// recency дата свежести статьи: updated_at, иначе created_at.
func recency(p *models.Post) time.Time {
	if !p.UpdatedAt.IsZero() {
		return p.UpdatedAt
	}
	return p.CreatedAt
}
