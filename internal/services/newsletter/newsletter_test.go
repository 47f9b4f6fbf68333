package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/magabrotheeeer/course-platform/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) CreateSubscriber(ctx context.Context, sub models.Subscriber) error {
	return m.Called(ctx, sub).Error(0)
}

func (m *RepoMock) GetSubscriberByEmail(ctx context.Context, email string) (*models.Subscriber, error) {
	args := m.Called(ctx, email)
	sub, _ := args.Get(0).(*models.Subscriber)
	return sub, args.Error(1)
}

func (m *RepoMock) GetSubscriberByToken(ctx context.Context, token string) (*models.Subscriber, error) {
	args := m.Called(ctx, token)
	sub, _ := args.Get(0).(*models.Subscriber)
	return sub, args.Error(1)
}

func (m *RepoMock) GetSubscriberByID(ctx context.Context, id string) (*models.Subscriber, error) {
	args := m.Called(ctx, id)
	sub, _ := args.Get(0).(*models.Subscriber)
	return sub, args.Error(1)
}

func (m *RepoMock) UpdateSubscriber(ctx context.Context, sub models.Subscriber) (int, error) {
	args := m.Called(ctx, sub)
	return args.Int(0), args.Error(1)
}

func (m *RepoMock) ListSubscribers(ctx context.Context, limit, offset int) ([]*models.Subscriber, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]*models.Subscriber), args.Error(1)
}

type PublisherMock struct{ mock.Mock }

func (m *PublisherMock) PublishConfirm(msg models.ConfirmEmail) error {
	return m.Called(msg).Error(0)
}

func NewNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestNewsletter_Subscribe_NewEmail(t *testing.T) {
	repo := new(RepoMock)
	pub := new(PublisherMock)
	svc := NewNewsletterService(repo, pub, NewNoopLogger())

	repo.On("GetSubscriberByEmail", mock.Anything, "alice@example.com").
		Return((*models.Subscriber)(nil), nil).Once()
	repo.On("CreateSubscriber", mock.Anything, mock.MatchedBy(func(sub models.Subscriber) bool {
		return sub.Email == "alice@example.com" &&
			sub.Status == models.SubscriberPending &&
			sub.ConfirmToken != "" && sub.ID != ""
	})).Return(nil).Once()
	pub.On("PublishConfirm", mock.MatchedBy(func(msg models.ConfirmEmail) bool {
		return msg.Email == "alice@example.com" && msg.Token != ""
	})).Return(nil).Once()

	// адрес нормализуется к нижнему регистру
	err := svc.Subscribe(context.Background(), models.DummySubscribe{Email: "  Alice@Example.com "})
	require.NoError(t, err)

	repo.AssertExpectations(t)
	pub.AssertExpectations(t)
}

func TestNewsletter_Subscribe_ConfirmedIsIdempotent(t *testing.T) {
	repo := new(RepoMock)
	pub := new(PublisherMock)
	svc := NewNewsletterService(repo, pub, NewNoopLogger())

	confirmed := &models.Subscriber{Email: "bob@example.com", Status: models.SubscriberConfirmed}
	repo.On("GetSubscriberByEmail", mock.Anything, "bob@example.com").Return(confirmed, nil).Once()

	err := svc.Subscribe(context.Background(), models.DummySubscribe{Email: "bob@example.com"})
	require.NoError(t, err)

	pub.AssertNotCalled(t, "PublishConfirm", mock.Anything)
	repo.AssertNotCalled(t, "UpdateSubscriber", mock.Anything, mock.Anything)
}

func TestNewsletter_Subscribe_PendingResendsEmail(t *testing.T) {
	repo := new(RepoMock)
	pub := new(PublisherMock)
	svc := NewNewsletterService(repo, pub, NewNoopLogger())

	pending := &models.Subscriber{Email: "carol@example.com", Status: models.SubscriberPending, ConfirmToken: "tok-1"}
	repo.On("GetSubscriberByEmail", mock.Anything, "carol@example.com").Return(pending, nil).Once()
	pub.On("PublishConfirm", models.ConfirmEmail{Email: "carol@example.com", Token: "tok-1"}).Return(nil).Once()

	err := svc.Subscribe(context.Background(), models.DummySubscribe{Email: "carol@example.com"})
	require.NoError(t, err)
	pub.AssertExpectations(t)
}

func TestNewsletter_Subscribe_UnsubscribedReturnsToPending(t *testing.T) {
	repo := new(RepoMock)
	pub := new(PublisherMock)
	svc := NewNewsletterService(repo, pub, NewNoopLogger())

	gone := time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC)
	old := &models.Subscriber{
		ID: "sub-1", Email: "dan@example.com",
		Status: models.SubscriberUnsubscribed, ConfirmToken: "tok-old", UnsubscribedAt: &gone,
	}
	repo.On("GetSubscriberByEmail", mock.Anything, "dan@example.com").Return(old, nil).Once()
	repo.On("UpdateSubscriber", mock.Anything, mock.MatchedBy(func(sub models.Subscriber) bool {
		return sub.Status == models.SubscriberPending &&
			sub.ConfirmToken != "tok-old" && sub.UnsubscribedAt == nil
	})).Return(1, nil).Once()
	pub.On("PublishConfirm", mock.Anything).Return(nil).Once()

	err := svc.Subscribe(context.Background(), models.DummySubscribe{Email: "dan@example.com"})
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestNewsletter_Subscribe_PublishFailureDoesNotFail(t *testing.T) {
	repo := new(RepoMock)
	pub := new(PublisherMock)
	svc := NewNewsletterService(repo, pub, NewNoopLogger())

	repo.On("GetSubscriberByEmail", mock.Anything, "eve@example.com").
		Return((*models.Subscriber)(nil), nil).Once()
	repo.On("CreateSubscriber", mock.Anything, mock.Anything).Return(nil).Once()
	pub.On("PublishConfirm", mock.Anything).Return(errors.New("broker down")).Once()

	err := svc.Subscribe(context.Background(), models.DummySubscribe{Email: "eve@example.com"})
	assert.NoError(t, err)
}

func TestNewsletter_Confirm(t *testing.T) {
	tests := []struct {
		name       string
		setupMocks func(repo *RepoMock)
		token      string
		wantErr    error
	}{
		{
			name: "pending becomes confirmed",
			setupMocks: func(repo *RepoMock) {
				sub := &models.Subscriber{ID: "s1", Email: "a@b.c", Status: models.SubscriberPending}
				repo.On("GetSubscriberByToken", mock.Anything, "tok").Return(sub, nil).Once()
				repo.On("UpdateSubscriber", mock.Anything, mock.MatchedBy(func(s models.Subscriber) bool {
					return s.Status == models.SubscriberConfirmed && s.ConfirmedAt != nil
				})).Return(1, nil).Once()
			},
			token: "tok",
		},
		{
			name: "already confirmed is idempotent",
			setupMocks: func(repo *RepoMock) {
				sub := &models.Subscriber{Status: models.SubscriberConfirmed}
				repo.On("GetSubscriberByToken", mock.Anything, "tok").Return(sub, nil).Once()
			},
			token: "tok",
		},
		{
			name: "unknown token",
			setupMocks: func(repo *RepoMock) {
				repo.On("GetSubscriberByToken", mock.Anything, "nope").
					Return((*models.Subscriber)(nil), nil).Once()
			},
			token:   "nope",
			wantErr: ErrTokenNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			svc := NewNewsletterService(repo, new(PublisherMock), NewNoopLogger())
			tt.setupMocks(repo)

			err := svc.Confirm(context.Background(), tt.token)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestNewsletter_Unsubscribe(t *testing.T) {
	repo := new(RepoMock)
	svc := NewNewsletterService(repo, new(PublisherMock), NewNoopLogger())

	sub := &models.Subscriber{ID: "s1", Email: "a@b.c", Status: models.SubscriberConfirmed}
	repo.On("GetSubscriberByToken", mock.Anything, "tok").Return(sub, nil).Once()
	repo.On("UpdateSubscriber", mock.Anything, mock.MatchedBy(func(s models.Subscriber) bool {
		return s.Status == models.SubscriberUnsubscribed && s.UnsubscribedAt != nil
	})).Return(1, nil).Once()

	require.NoError(t, svc.Unsubscribe(context.Background(), "tok"))
	repo.AssertExpectations(t)
}

func TestFilterSubscribers(t *testing.T) {
	subs := []*models.Subscriber{
		{ID: "1", Email: "alice@example.com", Status: models.SubscriberConfirmed, Tags: []string{"vip"}},
		{ID: "2", Email: "bob@test.org", Status: models.SubscriberPending},
		{ID: "3", Email: "carol@example.com", Status: models.SubscriberConfirmed},
	}

	tests := []struct {
		name    string
		filter  models.SubscriberFilter
		wantIDs []string
	}{
		{"no filter", models.SubscriberFilter{}, []string{"1", "2", "3"}},
		{"by status", models.SubscriberFilter{Status: models.SubscriberConfirmed}, []string{"1", "3"}},
		{"by tag", models.SubscriberFilter{Tag: "vip"}, []string{"1"}},
		{"query case-insensitive", models.SubscriberFilter{Query: "EXAMPLE"}, []string{"1", "3"}},
		{"status and query compose", models.SubscriberFilter{Status: models.SubscriberConfirmed, Query: "carol"}, []string{"3"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterSubscribers(subs, tt.filter)
			ids := make([]string, 0, len(got))
			for _, s := range got {
				ids = append(ids, s.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}
