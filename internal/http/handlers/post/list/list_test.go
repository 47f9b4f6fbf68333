package list

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/course-platform/internal/http/middlewarectx"
	"github.com/magabrotheeeer/course-platform/internal/models"
)

// MockService реализует интерфейс list.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) ListPosts(ctx context.Context, onlyPublished bool, filter models.PostFilter) ([]*models.Post, error) {
	args := m.Called(ctx, onlyPublished, filter)
	if res := args.Get(0); res != nil {
		return res.([]*models.Post), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestListHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	posts := []*models.Post{
		{ID: 1, Slug: "respiration", Title: "Respiration", Status: models.PostPublished},
	}

	tests := []struct {
		name           string
		url            string
		role           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "гость видит только опубликованные",
			url:  "/posts?status=draft",
			role: "",
			setupMock: func(m *MockService) {
				m.On("ListPosts", mock.Anything, true, models.PostFilter{
					Status: models.PostPublished,
				}).Return(posts, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"count":1`,
		},
		{
			name: "администратор фильтрует по статусу",
			url:  "/posts?status=draft&tag=sommeil",
			role: models.RoleAdmin,
			setupMock: func(m *MockService) {
				m.On("ListPosts", mock.Anything, false, models.PostFilter{
					Status: "draft",
					Tag:    "sommeil",
				}).Return([]*models.Post{}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"count":0`,
		},
		{
			name:           "некорректный category_id",
			url:            "/posts?category_id=abc",
			role:           "",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"invalid category_id"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			if tt.role != "" {
				req = req.WithContext(context.WithValue(req.Context(), middlewarectx.Role, tt.role))
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())

			mockService.AssertExpectations(t)
		})
	}
}
