// Package services содержит периодический обход подписчиков, не
// подтвердивших адрес: им ставится в очередь письмо-напоминание.
package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/course-platform/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/course-platform/internal/lib/sl"
	"github.com/magabrotheeeer/course-platform/internal/models"
)

// Неподтверждённая заявка старше pendingAge получает одно напоминание.
const (
	scanInterval = 12 * time.Hour
	pendingAge   = 24 * time.Hour
)

// SubscriberRepository определяет методы выборки подписчиков для напоминаний.
type SubscriberRepository interface {
	FindPendingWithoutReminder(ctx context.Context, olderThan time.Time) ([]*models.Subscriber, error)
	MarkReminded(ctx context.Context, id string) error
}

// SchedulerService периодически ищет зависшие в pending подписки.
type SchedulerService struct {
	repo SubscriberRepository
	log  *slog.Logger
}

// NewSchedulerService создает новый экземпляр SchedulerService.
func NewSchedulerService(repo SubscriberRepository, log *slog.Logger) *SchedulerService {
	return &SchedulerService{
		repo: repo,
		log:  log,
	}
}

// RemindPendingSubscribers раз в scanInterval публикует напоминания для
// заявок старше pendingAge, которым напоминание ещё не отправлялось.
// Блокируется до отмены контекста.
func (s *SchedulerService) RemindPendingSubscribers(ctx context.Context, channel *amqp.Channel) {
	ticker := time.NewTicker(scanInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(ctx, channel)
		}
	}
}

func (s *SchedulerService) runOnce(ctx context.Context, channel *amqp.Channel) {
	s.log.Info("starting scan for unconfirmed subscribers")
	subs, err := s.repo.FindPendingWithoutReminder(ctx, time.Now().UTC().Add(-pendingAge))
	if err != nil {
		s.log.Error("failed to find pending subscribers", sl.Err(err))
		return
	}

	for _, sub := range subs {
		msg := models.ConfirmEmail{Email: sub.Email, Token: sub.ConfirmToken}
		err = rabbitmq.PublishMessage(channel, rabbitmq.Exchange, rabbitmq.ReminderRoutingKey, msg)
		if err != nil {
			s.log.Error("failed to publish reminder", slog.String("email", sub.Email), sl.Err(err))
			continue
		}
		if err := s.repo.MarkReminded(ctx, sub.ID); err != nil {
			s.log.Error("failed to mark subscriber reminded", slog.String("id", sub.ID), sl.Err(err))
		}
	}
	s.log.Info("reminder scan finished", slog.Int("count", len(subs)))
}
