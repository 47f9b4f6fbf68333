package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/magabrotheeeer/course-platform/internal/models"
)

// ===== CATEGORY METHODS =====

// CreateCategory вставляет рубрику и возвращает её ID.
func (s *Storage) CreateCategory(ctx context.Context, c models.Category) (int, error) {
	const op = "storage.CreateCategory"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO categories (name, slug) VALUES ($1, $2) RETURNING id`
	var newID int
	if err := s.Db.QueryRowContext(ctx, query, c.Name, c.Slug).Scan(&newID); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ListCategories возвращает все рубрики.
func (s *Storage) ListCategories(ctx context.Context) ([]*models.Category, error) {
	const op = "storage.ListCategories"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, name, slug, created_at FROM categories ORDER BY name`
	rows, err := s.Db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []*models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// CountPostsByCategory подсчитывает неудалённые статьи рубрики.
// Используется в dry-run перед удалением рубрики.
func (s *Storage) CountPostsByCategory(ctx context.Context, categoryID int) (int, error) {
	const op = "storage.CountPostsByCategory"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT COUNT(*) FROM posts WHERE category_id = $1 AND deleted_at IS NULL`
	var count int
	if err := s.Db.QueryRowContext(ctx, query, categoryID).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// RemoveCategory жёстко удаляет рубрику. Статьи не перепривязываются:
// оператора предупреждает dry-run, каскада нет.
func (s *Storage) RemoveCategory(ctx context.Context, id int) (int, error) {
	const op = "storage.RemoveCategory"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM categories WHERE id = $1`
	result, err := s.Db.ExecContext(ctx, query, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// ===== POST METHODS =====

// CreatePost вставляет статью и возвращает её ID.
func (s *Storage) CreatePost(ctx context.Context, p models.Post) (int, error) {
	const op = "storage.CreatePost"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tags, err := json.Marshal(p.Tags)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	query := `INSERT INTO posts (title, slug, summary, body, category_id, status, tags, published_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			  RETURNING id`
	var newID int
	err = s.Db.QueryRowContext(ctx, query,
		p.Title, p.Slug, p.Summary, p.Body, p.CategoryID, p.Status, tags, p.PublishedAt).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

const postColumns = `p.id, p.title, p.slug, p.summary, p.body, p.category_id,
			COALESCE(c.name, ''), p.status, p.tags, p.published_at, p.deleted_at,
			p.created_at, p.updated_at`

func scanPost(row interface{ Scan(...any) error }) (*models.Post, error) {
	var p models.Post
	var tags []byte
	if err := row.Scan(&p.ID, &p.Title, &p.Slug, &p.Summary, &p.Body, &p.CategoryID,
		&p.CategoryName, &p.Status, &tags, &p.PublishedAt, &p.DeletedAt,
		&p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(tags, &p.Tags); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetPostBySlug возвращает неудалённую статью по слагу.
func (s *Storage) GetPostBySlug(ctx context.Context, slug string) (*models.Post, error) {
	const op = "storage.GetPostBySlug"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + postColumns + `
			  FROM posts p LEFT JOIN categories c ON c.id = p.category_id
			  WHERE p.slug = $1 AND p.deleted_at IS NULL`
	post, err := scanPost(s.Db.QueryRowContext(ctx, query, slug))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return post, nil
}

// ListPosts возвращает неудалённые статьи: либо только опубликованные
// (публичный блог), либо все статусы (админка). Фильтрация по рубрике,
// тегу и строке поиска выполняется сервисным слоем над полным набором.
func (s *Storage) ListPosts(ctx context.Context, onlyPublished bool) ([]*models.Post, error) {
	const op = "storage.ListPosts"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + postColumns + `
			  FROM posts p LEFT JOIN categories c ON c.id = p.category_id
			  WHERE p.deleted_at IS NULL
			    AND ($1 = false OR p.status = 'published')
			  ORDER BY p.id`
	rows, err := s.Db.QueryContext(ctx, query, onlyPublished)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []*models.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdatePost обновляет статью по ID и возвращает количество изменённых строк.
func (s *Storage) UpdatePost(ctx context.Context, id int, p models.Post) (int, error) {
	const op = "storage.UpdatePost"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tags, err := json.Marshal(p.Tags)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	query := `UPDATE posts
			  SET title = $2, slug = $3, summary = $4, body = $5, category_id = $6,
			      status = $7, tags = $8, published_at = $9, updated_at = now()
			  WHERE id = $1 AND deleted_at IS NULL`
	result, err := s.Db.ExecContext(ctx, query, id,
		p.Title, p.Slug, p.Summary, p.Body, p.CategoryID, p.Status, tags, p.PublishedAt)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// SoftRemovePost мягко удаляет статью (deleted_at).
func (s *Storage) SoftRemovePost(ctx context.Context, id int) (int, error) {
	const op = "storage.SoftRemovePost"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE posts SET deleted_at = now() WHERE id = $1 AND deleted_at IS NULL`
	result, err := s.Db.ExecContext(ctx, query, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}
