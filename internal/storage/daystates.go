package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/course-platform/internal/models"
)

// UpsertDayState сохраняет ответы дня: вставляет запись или обновляет
// существующую. Побеждает последняя запись, версионирования нет.
func (s *Storage) UpsertDayState(ctx context.Context, st models.DayState) error {
	const op = "storage.UpsertDayState"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	answers, err := json.Marshal(st.Values)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	query := `INSERT INTO day_states (user_uid, program_slug, day, answers,
			      slider_before, slider_after, completed)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  ON CONFLICT (user_uid, program_slug, day) DO UPDATE
			  SET answers = EXCLUDED.answers,
			      slider_before = EXCLUDED.slider_before,
			      slider_after = EXCLUDED.slider_after,
			      completed = EXCLUDED.completed,
			      updated_at = now()`
	_, err = s.Db.ExecContext(ctx, query,
		st.UserUID, st.ProgramSlug, st.Day, answers,
		st.SliderBefore, st.SliderAfter, st.Completed)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

const dayStateColumns = `user_uid, program_slug, day, answers,
			slider_before, slider_after, completed, created_at, updated_at`

func scanDayState(row interface{ Scan(...any) error }) (*models.DayState, error) {
	var st models.DayState
	var answers []byte
	if err := row.Scan(&st.UserUID, &st.ProgramSlug, &st.Day, &answers,
		&st.SliderBefore, &st.SliderAfter, &st.Completed,
		&st.CreatedAt, &st.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(answers, &st.Values); err != nil {
		return nil, err
	}
	return &st, nil
}

// GetDayState возвращает ответы дня или nil, если записи ещё нет.
func (s *Storage) GetDayState(ctx context.Context, userUID, programSlug string, day int) (*models.DayState, error) {
	const op = "storage.GetDayState"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + dayStateColumns + `
			  FROM day_states
			  WHERE user_uid = $1 AND program_slug = $2 AND day = $3`
	state, err := scanDayState(s.Db.QueryRowContext(ctx, query, userUID, programSlug, day))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return state, nil
}

// ListDayStates возвращает все сохранённые дни пользователя по программе
// в порядке номеров дней. Используется для агрегации прогресса и экспорта.
func (s *Storage) ListDayStates(ctx context.Context, userUID, programSlug string) ([]*models.DayState, error) {
	const op = "storage.ListDayStates"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + dayStateColumns + `
			  FROM day_states
			  WHERE user_uid = $1 AND program_slug = $2
			  ORDER BY day`
	rows, err := s.Db.QueryContext(ctx, query, userUID, programSlug)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []*models.DayState
	for rows.Next() {
		state, err := scanDayState(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, state)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
