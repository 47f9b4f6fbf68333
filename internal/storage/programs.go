package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/magabrotheeeer/course-platform/internal/models"
)

// CreateProgram вставляет новую программу и возвращает её ID.
func (s *Storage) CreateProgram(ctx context.Context, p models.Program) (int, error) {
	const op = "storage.CreateProgram"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	marketing, err := json.Marshal(p.Marketing)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	query := `INSERT INTO programs (slug, title, summary, status, price_cents,
			      currency, marketing, day_count)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			  RETURNING id`
	var newID int
	err = s.Db.QueryRowContext(ctx, query,
		p.Slug, p.Title, p.Summary, p.Status, p.PriceCents,
		p.Currency, marketing, p.DayCount).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

func scanProgram(row interface{ Scan(...any) error }) (*models.Program, error) {
	var p models.Program
	var marketing []byte
	if err := row.Scan(&p.ID, &p.Slug, &p.Title, &p.Summary, &p.Status,
		&p.PriceCents, &p.Currency, &marketing, &p.DayCount,
		&p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(marketing, &p.Marketing); err != nil {
		return nil, err
	}
	return &p, nil
}

const programColumns = `id, slug, title, summary, status, price_cents,
			currency, marketing, day_count, created_at, updated_at`

// GetProgramBySlug возвращает программу по слагу.
func (s *Storage) GetProgramBySlug(ctx context.Context, slug string) (*models.Program, error) {
	const op = "storage.GetProgramBySlug"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + programColumns + ` FROM programs WHERE slug = $1`
	program, err := scanProgram(s.Db.QueryRowContext(ctx, query, slug))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return program, nil
}

// ListPrograms возвращает программы с пагинацией. При onlyPublished
// отдаются только опубликованные — публичная витрина.
func (s *Storage) ListPrograms(ctx context.Context, onlyPublished bool, limit, offset int) ([]*models.Program, error) {
	const op = "storage.ListPrograms"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + programColumns + `
			  FROM programs
			  WHERE ($1 = false OR status = 'published')
			  ORDER BY id
			  LIMIT $2 OFFSET $3`
	rows, err := s.Db.QueryContext(ctx, query, onlyPublished, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []*models.Program
	for rows.Next() {
		program, err := scanProgram(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, program)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateProgram обновляет программу по слагу и возвращает количество
// изменённых строк. Слаг не меняется: на него ссылаются записи и контент.
func (s *Storage) UpdateProgram(ctx context.Context, slug string, p models.Program) (int, error) {
	const op = "storage.UpdateProgram"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	marketing, err := json.Marshal(p.Marketing)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	query := `UPDATE programs
			  SET title = $2, summary = $3, status = $4, price_cents = $5,
			      currency = $6, marketing = $7, day_count = $8, updated_at = now()
			  WHERE slug = $1`
	result, err := s.Db.ExecContext(ctx, query, slug,
		p.Title, p.Summary, p.Status, p.PriceCents, p.Currency, marketing, p.DayCount)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// RemoveProgram удаляет программу по слагу и возвращает количество удалённых строк.
func (s *Storage) RemoveProgram(ctx context.Context, slug string) (int, error) {
	const op = "storage.RemoveProgram"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM programs WHERE slug = $1`
	result, err := s.Db.ExecContext(ctx, query, slug)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}
