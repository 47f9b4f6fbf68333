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

func (m *RepoMock) CreateCategory(ctx context.Context, c models.Category) (int, error) {
	args := m.Called(ctx, c)
	return args.Int(0), args.Error(1)
}

func (m *RepoMock) ListCategories(ctx context.Context) ([]*models.Category, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*models.Category), args.Error(1)
}

func (m *RepoMock) CountPostsByCategory(ctx context.Context, categoryID int) (int, error) {
	args := m.Called(ctx, categoryID)
	return args.Int(0), args.Error(1)
}

func (m *RepoMock) RemoveCategory(ctx context.Context, id int) (int, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Error(1)
}

func (m *RepoMock) CreatePost(ctx context.Context, p models.Post) (int, error) {
	args := m.Called(ctx, p)
	return args.Int(0), args.Error(1)
}

func (m *RepoMock) GetPostBySlug(ctx context.Context, slug string) (*models.Post, error) {
	args := m.Called(ctx, slug)
	post, _ := args.Get(0).(*models.Post)
	return post, args.Error(1)
}

func (m *RepoMock) ListPosts(ctx context.Context, onlyPublished bool) ([]*models.Post, error) {
	args := m.Called(ctx, onlyPublished)
	return args.Get(0).([]*models.Post), args.Error(1)
}

func (m *RepoMock) UpdatePost(ctx context.Context, id int, p models.Post) (int, error) {
	args := m.Called(ctx, id, p)
	return args.Int(0), args.Error(1)
}

func (m *RepoMock) SoftRemovePost(ctx context.Context, id int) (int, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Error(1)
}

func NewNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func intPtr(v int) *int { return &v }

func TestBlog_CreateCategory(t *testing.T) {
	tests := []struct {
		name       string
		setupMocks func(repo *RepoMock)
		req        models.DummyCategory
		wantID     int
		wantErr    error
	}{
		{
			name: "slug generated from name",
			setupMocks: func(repo *RepoMock) {
				repo.On("CreateCategory", mock.Anything,
					models.Category{Name: "Méditation guidée", Slug: "meditation-guidee"}).
					Return(3, nil).Once()
			},
			req:    models.DummyCategory{Name: "Méditation guidée"},
			wantID: 3,
		},
		{
			name:       "invalid explicit slug",
			setupMocks: func(repo *RepoMock) {},
			req:        models.DummyCategory{Name: "Sommeil", Slug: "Pas Un Slug"},
			wantErr:    ErrInvalidSlug,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			svc := NewBlogService(repo, NewNoopLogger())
			tt.setupMocks(repo)

			got, err := svc.CreateCategory(context.Background(), tt.req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantID, got)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestBlog_RemoveCategoryPreview(t *testing.T) {
	repo := new(RepoMock)
	svc := NewBlogService(repo, NewNoopLogger())

	repo.On("CountPostsByCategory", mock.Anything, 5).Return(12, nil).Once()

	count, err := svc.RemoveCategoryPreview(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, 12, count)

	// сухой прогон ничего не удаляет
	repo.AssertNotCalled(t, "RemoveCategory", mock.Anything, mock.Anything)
}

func TestBlog_RemoveCategory(t *testing.T) {
	repo := new(RepoMock)
	svc := NewBlogService(repo, NewNoopLogger())

	repo.On("RemoveCategory", mock.Anything, 5).Return(1, nil).Once()
	repo.On("RemoveCategory", mock.Anything, 99).Return(0, nil).Once()

	assert.NoError(t, svc.RemoveCategory(context.Background(), 5))
	assert.ErrorIs(t, svc.RemoveCategory(context.Background(), 99), ErrNotFound)
	repo.AssertExpectations(t)
}

func TestBlog_GetPost_PublicHidesDrafts(t *testing.T) {
	repo := new(RepoMock)
	svc := NewBlogService(repo, NewNoopLogger())

	draft := &models.Post{Slug: "brouillon", Status: models.PostDraft}
	repo.On("GetPostBySlug", mock.Anything, "brouillon").Return(draft, nil)

	_, err := svc.GetPost(context.Background(), "brouillon", true)
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := svc.GetPost(context.Background(), "brouillon", false)
	require.NoError(t, err)
	assert.Equal(t, draft, got)
}

func TestBlog_ListPosts_RepoError(t *testing.T) {
	repo := new(RepoMock)
	svc := NewBlogService(repo, NewNoopLogger())

	repo.On("ListPosts", mock.Anything, false).
		Return(([]*models.Post)(nil), errors.New("db down")).Once()

	_, err := svc.ListPosts(context.Background(), false, models.PostFilter{})
	assert.Error(t, err)
}

func TestFilterPosts_Composition(t *testing.T) {
	posts := []*models.Post{
		{ID: 1, Title: "Respirer le matin", Slug: "respirer-matin", Status: models.PostPublished,
			CategoryID: intPtr(1), CategoryName: "Méditation", Tags: []string{"souffle"}},
		{ID: 2, Title: "Respirer le soir", Slug: "respirer-soir", Status: models.PostDraft,
			CategoryID: intPtr(1), CategoryName: "Méditation"},
		{ID: 3, Title: "Mieux dormir", Slug: "mieux-dormir", Status: models.PostPublished,
			CategoryID: intPtr(2), CategoryName: "Sommeil"},
		{ID: 4, Title: "Sans rubrique", Slug: "sans-rubrique", Status: models.PostPublished},
	}

	tests := []struct {
		name    string
		filter  models.PostFilter
		wantIDs []int
	}{
		{"no filter keeps all", models.PostFilter{}, []int{1, 2, 3, 4}},
		{"status only", models.PostFilter{Status: models.PostPublished}, []int{1, 3, 4}},
		{"category only", models.PostFilter{CategoryID: intPtr(1)}, []int{1, 2}},
		{"status and category intersect", models.PostFilter{Status: models.PostPublished, CategoryID: intPtr(1)}, []int{1}},
		{"query matches title case-insensitively", models.PostFilter{Query: "RESPIRER"}, []int{1, 2}},
		{"query matches category name", models.PostFilter{Query: "sommeil"}, []int{3}},
		{"query matches slug", models.PostFilter{Query: "sans-rubrique"}, []int{4}},
		{"all three compose", models.PostFilter{Status: models.PostPublished, CategoryID: intPtr(1), Query: "respirer"}, []int{1}},
		{"tag filter", models.PostFilter{Tag: "souffle"}, []int{1}},
		{"no match", models.PostFilter{Status: models.PostDraft, CategoryID: intPtr(2)}, []int{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterPosts(posts, tt.filter)
			ids := make([]int, 0, len(got))
			for _, p := range got {
				ids = append(ids, p.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestSortRecent_StableByUpdatedThenCreated(t *testing.T) {
	day := func(d int) time.Time {
		return time.Date(2025, time.March, d, 0, 0, 0, 0, time.UTC)
	}

	posts := []*models.Post{
		{ID: 1, CreatedAt: day(1)},                      // без updated_at — берётся created_at
		{ID: 2, CreatedAt: day(1), UpdatedAt: day(10)},  // самая свежая
		{ID: 3, CreatedAt: day(5)},                      // та же дата, что у 4 — порядок сохраняется
		{ID: 4, CreatedAt: day(2), UpdatedAt: day(5)},   // равна 3 по свежести, идёт после
		{ID: 5, CreatedAt: day(1), UpdatedAt: day(7)},
	}
	SortRecent(posts)

	ids := make([]int, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []int{2, 5, 3, 4, 1}, ids)
}
