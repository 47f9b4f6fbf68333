package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/magabrotheeeer/course-platform/internal/models"
)

// CreateSubscriber вставляет нового подписчика рассылки.
func (s *Storage) CreateSubscriber(ctx context.Context, sub models.Subscriber) error {
	const op = "storage.CreateSubscriber"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tags, err := json.Marshal(sub.Tags)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	query := `INSERT INTO subscribers (id, email, status, tags, confirm_token)
			  VALUES ($1, $2, $3, $4, $5)`
	_, err = s.Db.ExecContext(ctx, query, sub.ID, sub.Email, sub.Status, tags, sub.ConfirmToken)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

const subscriberColumns = `id, email, status, tags, confirm_token,
			subscribed_at, confirmed_at, unsubscribed_at, reminded_at`

func scanSubscriber(row interface{ Scan(...any) error }) (*models.Subscriber, error) {
	var sub models.Subscriber
	var tags []byte
	if err := row.Scan(&sub.ID, &sub.Email, &sub.Status, &tags, &sub.ConfirmToken,
		&sub.SubscribedAt, &sub.ConfirmedAt, &sub.UnsubscribedAt, &sub.RemindedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(tags, &sub.Tags); err != nil {
		return nil, err
	}
	return &sub, nil
}

// GetSubscriberByEmail возвращает подписчика по адресу или nil, если его нет.
func (s *Storage) GetSubscriberByEmail(ctx context.Context, email string) (*models.Subscriber, error) {
	const op = "storage.GetSubscriberByEmail"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + subscriberColumns + ` FROM subscribers WHERE email = $1`
	sub, err := scanSubscriber(s.Db.QueryRowContext(ctx, query, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sub, nil
}

// GetSubscriberByToken возвращает подписчика по токену подтверждения.
func (s *Storage) GetSubscriberByToken(ctx context.Context, token string) (*models.Subscriber, error) {
	const op = "storage.GetSubscriberByToken"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + subscriberColumns + ` FROM subscribers WHERE confirm_token = $1`
	sub, err := scanSubscriber(s.Db.QueryRowContext(ctx, query, token))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sub, nil
}

// GetSubscriberByID возвращает подписчика по идентификатору,
// nil без ошибки, если такого нет.
func (s *Storage) GetSubscriberByID(ctx context.Context, id string) (*models.Subscriber, error) {
	const op = "storage.GetSubscriberByID"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + subscriberColumns + ` FROM subscribers WHERE id = $1`
	sub, err := scanSubscriber(s.Db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sub, nil
}

// UpdateSubscriber перезаписывает изменяемые поля подписчика по ID.
func (s *Storage) UpdateSubscriber(ctx context.Context, sub models.Subscriber) (int, error) {
	const op = "storage.UpdateSubscriber"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tags, err := json.Marshal(sub.Tags)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	query := `UPDATE subscribers
			  SET status = $2, tags = $3, confirm_token = $4, subscribed_at = $5,
			      confirmed_at = $6, unsubscribed_at = $7, reminded_at = $8
			  WHERE id = $1`
	result, err := s.Db.ExecContext(ctx, query, sub.ID,
		sub.Status, tags, sub.ConfirmToken, sub.SubscribedAt,
		sub.ConfirmedAt, sub.UnsubscribedAt, sub.RemindedAt)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// ListSubscribers возвращает подписчиков с пагинацией, новые первыми.
func (s *Storage) ListSubscribers(ctx context.Context, limit, offset int) ([]*models.Subscriber, error) {
	const op = "storage.ListSubscribers"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + subscriberColumns + `
			  FROM subscribers
			  ORDER BY subscribed_at DESC
			  LIMIT $1 OFFSET $2`
	rows, err := s.Db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []*models.Subscriber
	for rows.Next() {
		sub, err := scanSubscriber(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// FindPendingWithoutReminder возвращает подписчиков, ожидающих подтверждения
// дольше olderThan и ещё не получавших напоминания.
func (s *Storage) FindPendingWithoutReminder(ctx context.Context, olderThan time.Time) ([]*models.Subscriber, error) {
	const op = "storage.FindPendingWithoutReminder"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + subscriberColumns + `
			  FROM subscribers
			  WHERE status = 'pending' AND reminded_at IS NULL AND subscribed_at < $1
			  ORDER BY subscribed_at`
	rows, err := s.Db.QueryContext(ctx, query, olderThan)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []*models.Subscriber
	for rows.Next() {
		sub, err := scanSubscriber(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// MarkReminded фиксирует отправку напоминания подписчику.
func (s *Storage) MarkReminded(ctx context.Context, id string) error {
	const op = "storage.MarkReminded"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE subscribers SET reminded_at = now() WHERE id = $1`
	if _, err := s.Db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
