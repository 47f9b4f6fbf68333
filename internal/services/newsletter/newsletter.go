// Package services содержит бизнес-логику рассылки: двухэтапная подписка,
// подтверждение и отписка по токену, админские операции и выгрузки.
package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/course-platform/internal/lib/sl"
	"github.com/magabrotheeeer/course-platform/internal/models"
)

// Ошибки уровня сервиса рассылки.
var (
	ErrTokenNotFound = errors.New("confirmation token not found")
	ErrNotFound      = errors.New("subscriber not found")
	ErrBadExport     = errors.New("unsupported export format")
)

// SubscriberRepository определяет методы для работы с подписчиками в хранилище.
type SubscriberRepository interface {
	CreateSubscriber(ctx context.Context, sub models.Subscriber) error
	GetSubscriberByEmail(ctx context.Context, email string) (*models.Subscriber, error)
	GetSubscriberByToken(ctx context.Context, token string) (*models.Subscriber, error)
	GetSubscriberByID(ctx context.Context, id string) (*models.Subscriber, error)
	UpdateSubscriber(ctx context.Context, sub models.Subscriber) (int, error)
	ListSubscribers(ctx context.Context, limit, offset int) ([]*models.Subscriber, error)
}

// Publisher отправляет сообщение в очередь писем подтверждения.
type Publisher interface {
	PublishConfirm(msg models.ConfirmEmail) error
}

// NewsletterService реализует бизнес-логику подписки на рассылку.
type NewsletterService struct {
	repo      SubscriberRepository
	publisher Publisher
	log       *slog.Logger
}

// NewNewsletterService создает новый экземпляр NewsletterService.
func NewNewsletterService(repo SubscriberRepository, publisher Publisher, log *slog.Logger) *NewsletterService {
	return &NewsletterService{
		repo:      repo,
		publisher: publisher,
		log:       log,
	}
}

// Subscribe обрабатывает заявку на подписку. Новый адрес попадает в
// pending и получает письмо подтверждения. Отписавшийся возвращается
// в pending с новым токеном. Для pending письмо отправляется повторно.
// Подтверждённый адрес — идемпотентный успех без письма.
func (s *NewsletterService) Subscribe(ctx context.Context, req models.DummySubscribe) error {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	existing, err := s.repo.GetSubscriberByEmail(ctx, email)
	if err != nil {
		return err
	}

	switch {
	case existing == nil:
		sub := models.Subscriber{
			ID:           uuid.NewString(),
			Email:        email,
			Status:       models.SubscriberPending,
			Tags:         req.Tags,
			ConfirmToken: uuid.NewString(),
			SubscribedAt: time.Now().UTC(),
		}
		if err := s.repo.CreateSubscriber(ctx, sub); err != nil {
			return err
		}
		s.publishConfirm(sub)
		s.log.Info("new subscriber pending confirmation", slog.String("email", email))
		return nil

	case existing.Status == models.SubscriberUnsubscribed:
		existing.Status = models.SubscriberPending
		existing.ConfirmToken = uuid.NewString()
		existing.SubscribedAt = time.Now().UTC()
		existing.UnsubscribedAt = nil
		existing.ConfirmedAt = nil
		existing.RemindedAt = nil
		if _, err := s.repo.UpdateSubscriber(ctx, *existing); err != nil {
			return err
		}
		s.publishConfirm(*existing)
		s.log.Info("returning subscriber pending confirmation", slog.String("email", email))
		return nil

	case existing.Status == models.SubscriberPending:
		s.publishConfirm(*existing)
		return nil

	default:
		// confirmed, bounced, complained — ничего не делаем
		return nil
	}
}

// publishConfirm ставит письмо подтверждения в очередь. Ошибка очереди
// не валит подписку: напоминание догонит позже.
func (s *NewsletterService) publishConfirm(sub models.Subscriber) {
	msg := models.ConfirmEmail{Email: sub.Email, Token: sub.ConfirmToken}
	if err := s.publisher.PublishConfirm(msg); err != nil {
		s.log.Error("failed to publish confirmation email", slog.String("email", sub.Email), sl.Err(err))
	}
}

// Confirm подтверждает подписку по токену из письма.
func (s *NewsletterService) Confirm(ctx context.Context, token string) error {
	sub, err := s.repo.GetSubscriberByToken(ctx, token)
	if err != nil {
		return err
	}
	if sub == nil {
		return ErrTokenNotFound
	}
	if sub.Status == models.SubscriberConfirmed {
		return nil
	}

	now := time.Now().UTC()
	sub.Status = models.SubscriberConfirmed
	sub.ConfirmedAt = &now
	if _, err := s.repo.UpdateSubscriber(ctx, *sub); err != nil {
		return err
	}
	s.log.Info("subscriber confirmed", slog.String("email", sub.Email))
	return nil
}

// Unsubscribe отписывает по токену. Повторная отписка — успех.
func (s *NewsletterService) Unsubscribe(ctx context.Context, token string) error {
	sub, err := s.repo.GetSubscriberByToken(ctx, token)
	if err != nil {
		return err
	}
	if sub == nil {
		return ErrTokenNotFound
	}
	if sub.Status == models.SubscriberUnsubscribed {
		return nil
	}

	now := time.Now().UTC()
	sub.Status = models.SubscriberUnsubscribed
	sub.UnsubscribedAt = &now
	if _, err := s.repo.UpdateSubscriber(ctx, *sub); err != nil {
		return err
	}
	s.log.Info("subscriber unsubscribed", slog.String("email", sub.Email))
	return nil
}

// AdminUpdate меняет статус и теги подписчика из админки.
func (s *NewsletterService) AdminUpdate(ctx context.Context, id string, req models.DummySubscriberUpdate) error {
	sub, err := s.repo.GetSubscriberByID(ctx, id)
	if err != nil {
		return err
	}
	if sub == nil {
		return ErrNotFound
	}

	sub.Status = req.Status
	if req.Tags != nil {
		sub.Tags = req.Tags
	}
	count, err := s.repo.UpdateSubscriber(ctx, *sub)
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	return nil
}

// List возвращает подписчиков, прошедших фильтры.
func (s *NewsletterService) List(ctx context.Context, filter models.SubscriberFilter, limit, offset int) ([]*models.Subscriber, error) {
	subs, err := s.repo.ListSubscribers(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	return FilterSubscribers(subs, filter), nil
}

// Export выгружает подписчиков в json или csv, с теми же фильтрами,
// что и список.
func (s *NewsletterService) Export(ctx context.Context, filter models.SubscriberFilter, format string) ([]byte, string, error) {
	subs, err := s.List(ctx, filter, 1000000, 0)
	if err != nil {
		return nil, "", err
	}

	switch format {
	case "json", "":
		data, err := json.MarshalIndent(subs, "", "  ")
		if err != nil {
			return nil, "", err
		}
		return data, "application/json", nil
	case "csv":
		var buf bytes.Buffer
		w := csv.NewWriter(&buf)
		if err := w.Write([]string{"email", "status", "tags", "subscribed_at"}); err != nil {
			return nil, "", err
		}
		for _, sub := range subs {
			err := w.Write([]string{
				sub.Email, sub.Status, strings.Join(sub.Tags, "|"),
				sub.SubscribedAt.Format(time.RFC3339),
			})
			if err != nil {
				return nil, "", err
			}
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return nil, "", err
		}
		return buf.Bytes(), "text/csv", nil
	default:
		return nil, "", ErrBadExport
	}
}

// FilterSubscribers возвращает подписчиков, проходящих все заданные
// фильтры: статус, тег и поиск по адресу без учёта регистра.
func FilterSubscribers(subs []*models.Subscriber, f models.SubscriberFilter) []*models.Subscriber {
	query := strings.ToLower(strings.TrimSpace(f.Query))
	out := make([]*models.Subscriber, 0, len(subs))
	for _, sub := range subs {
		if f.Status != "" && sub.Status != f.Status {
			continue
		}
		if f.Tag != "" && !containsTag(sub.Tags, f.Tag) {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(sub.Email), query) {
			continue
		}
		out = append(out, sub)
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
