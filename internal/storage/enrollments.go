package storage

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/course-platform/internal/models"
)

// CreateEnrollment вставляет запись на программу и возвращает её ID.
// Уникальность пары (пользователь, программа) обеспечивает индекс.
func (s *Storage) CreateEnrollment(ctx context.Context, e models.Enrollment) (int, error) {
	const op = "storage.CreateEnrollment"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO enrollments (user_uid, program_slug, status, current_day)
			  VALUES ($1, $2, $3, $4)
			  RETURNING id`
	var newID int
	err := s.Db.QueryRowContext(ctx, query,
		e.UserUID, e.ProgramSlug, e.Status, e.CurrentDay).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

const enrollmentColumns = `id, user_uid, program_slug, status, current_day, started_at, completed_at`

func scanEnrollment(row interface{ Scan(...any) error }) (*models.Enrollment, error) {
	var e models.Enrollment
	if err := row.Scan(&e.ID, &e.UserUID, &e.ProgramSlug, &e.Status,
		&e.CurrentDay, &e.StartedAt, &e.CompletedAt); err != nil {
		return nil, err
	}
	return &e, nil
}

// GetEnrollment возвращает запись по ID.
func (s *Storage) GetEnrollment(ctx context.Context, id int) (*models.Enrollment, error) {
	const op = "storage.GetEnrollment"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + enrollmentColumns + ` FROM enrollments WHERE id = $1`
	enrollment, err := scanEnrollment(s.Db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return enrollment, nil
}

// ListEnrollmentsByUser возвращает все записи пользователя.
func (s *Storage) ListEnrollmentsByUser(ctx context.Context, userUID string) ([]*models.Enrollment, error) {
	const op = "storage.ListEnrollmentsByUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + enrollmentColumns + `
			  FROM enrollments
			  WHERE user_uid = $1
			  ORDER BY id`
	rows, err := s.Db.QueryContext(ctx, query, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []*models.Enrollment
	for rows.Next() {
		enrollment, err := scanEnrollment(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, enrollment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// CountActiveEnrollments подсчитывает активные записи пользователя.
// Используется при проверке лимита одновременных программ.
func (s *Storage) CountActiveEnrollments(ctx context.Context, userUID string) (int, error) {
	const op = "storage.CountActiveEnrollments"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT COUNT(*) FROM enrollments WHERE user_uid = $1 AND status = 'active'`
	var count int
	if err := s.Db.QueryRowContext(ctx, query, userUID).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// UpdateEnrollment обновляет статус, текущий день и дату завершения
// записи по ID и возвращает количество изменённых строк.
func (s *Storage) UpdateEnrollment(ctx context.Context, e models.Enrollment) (int, error) {
	const op = "storage.UpdateEnrollment"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE enrollments
			  SET status = $2, current_day = $3, completed_at = $4
			  WHERE id = $1`
	result, err := s.Db.ExecContext(ctx, query, e.ID, e.Status, e.CurrentDay, e.CompletedAt)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}
