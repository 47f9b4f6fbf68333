package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/magabrotheeeer/course-platform/internal/models"
)

// RegisterUser вставляет нового пользователя и возвращает его uuid.
func (s *Storage) RegisterUser(ctx context.Context, user models.User) (string, error) {
	const op = "storage.RegisterUser"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO users (uuid, email, username, password_hash, role,
			      theme, marketing_opt_in, max_concurrent_programs)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			  RETURNING uuid`
	var newUUID string
	err := s.Db.QueryRowContext(ctx, query,
		user.UUID, user.Email, user.Username, user.PasswordHash, user.Role,
		user.Theme, user.MarketingOptIn, user.MaxConcurrentPrograms).Scan(&newUUID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newUUID, nil
}

const userColumns = `uuid, email, username, password_hash, role, theme,
			marketing_opt_in, max_concurrent_programs, suspended_at, deleted_at, created_at`

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	var u models.User
	if err := row.Scan(&u.UUID, &u.Email, &u.Username, &u.PasswordHash, &u.Role,
		&u.Theme, &u.MarketingOptIn, &u.MaxConcurrentPrograms,
		&u.SuspendedAt, &u.DeletedAt, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUserByUsername возвращает пользователя по имени.
func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	const op = "storage.GetUserByUsername"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	user, err := scanUser(s.Db.QueryRowContext(ctx, query, username))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

// GetUserByUUID возвращает пользователя по uuid.
func (s *Storage) GetUserByUUID(ctx context.Context, uuid string) (*models.User, error) {
	const op = "storage.GetUserByUUID"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE uuid = $1`
	user, err := scanUser(s.Db.QueryRowContext(ctx, query, uuid))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

// ListUsers возвращает пользователей с пагинацией, без архивированных.
func (s *Storage) ListUsers(ctx context.Context, limit, offset int) ([]*models.User, error) {
	const op = "storage.ListUsers"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + `
			  FROM users
			  WHERE deleted_at IS NULL
			  ORDER BY created_at DESC
			  LIMIT $1 OFFSET $2`
	rows, err := s.Db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateUser обновляет профиль пользователя; nil-поля не трогаются.
// Возвращает количество изменённых строк.
func (s *Storage) UpdateUser(ctx context.Context, uuid string, upd models.DummyUserUpdate) (int, error) {
	const op = "storage.UpdateUser"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET role = COALESCE($2, role),
			      theme = COALESCE($3, theme),
			      marketing_opt_in = COALESCE($4, marketing_opt_in),
			      max_concurrent_programs = COALESCE($5, max_concurrent_programs)
			  WHERE uuid = $1 AND deleted_at IS NULL`
	result, err := s.Db.ExecContext(ctx, query, uuid,
		upd.Role, upd.Theme, upd.MarketingOptIn, upd.MaxConcurrentPrograms)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// SetUserSuspended приостанавливает или восстанавливает пользователя.
func (s *Storage) SetUserSuspended(ctx context.Context, uuid string, suspended bool) (int, error) {
	const op = "storage.SetUserSuspended"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var suspendedAt *time.Time
	if suspended {
		now := time.Now().UTC()
		suspendedAt = &now
	}
	query := `UPDATE users SET suspended_at = $2 WHERE uuid = $1 AND deleted_at IS NULL`
	result, err := s.Db.ExecContext(ctx, query, uuid, suspendedAt)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// ArchiveUser мягко удаляет пользователя (deleted_at). Необратимая
// операция уровня API: обратного действия обработчики не предоставляют.
func (s *Storage) ArchiveUser(ctx context.Context, uuid string) (int, error) {
	const op = "storage.ArchiveUser"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users SET deleted_at = now() WHERE uuid = $1 AND deleted_at IS NULL`
	result, err := s.Db.ExecContext(ctx, query, uuid)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}
