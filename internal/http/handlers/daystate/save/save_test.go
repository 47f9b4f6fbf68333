package save

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/course-platform/internal/http/middlewarectx"
	"github.com/magabrotheeeer/course-platform/internal/models"
	services "github.com/magabrotheeeer/course-platform/internal/services/daystate"
)

// MockService реализует интерфейс save.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Save(ctx context.Context, userUID, programSlug string, day int, req models.DummyDayState) (*models.DayState, error) {
	args := m.Called(ctx, userUID, programSlug, day, req)
	if res := args.Get(0); res != nil {
		return res.(*models.DayState), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestSaveHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tests := []struct {
		name           string
		day            string
		userUID        string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:    "успешное сохранение дня",
			day:     "3",
			userUID: "uid-1",
			body:    `{"values":{"ex.breathing.duration":12},"completed":true}`,
			setupMock: func(m *MockService) {
				state := &models.DayState{
					UserUID:     "uid-1",
					ProgramSlug: "calm-start",
					Day:         3,
					Values:      map[string]any{"ex.breathing.duration": float64(12)},
					Completed:   true,
				}
				m.On("Save", mock.Anything, "uid-1", "calm-start", 3, mock.Anything).Return(state, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"status":"OK"`,
		},
		{
			name:           "пользователь не авторизован",
			day:            "3",
			userUID:        "",
			body:           `{"values":{}}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `{"status":"Error","error":"unauthorized"}`,
		},
		{
			name:           "некорректный номер дня",
			day:            "abc",
			userUID:        "uid-1",
			body:           `{"values":{}}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"invalid day"}`,
		},
		{
			name:    "день вне расписания программы",
			day:     "99",
			userUID: "uid-1",
			body:    `{"values":{}}`,
			setupMock: func(m *MockService) {
				m.On("Save", mock.Anything, "uid-1", "calm-start", 99, mock.Anything).
					Return(nil, services.ErrDayNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"status":"Error","error":"program day not found"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPut, "/programs/calm-start/days/"+tt.day+"/state", strings.NewReader(tt.body))
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("slug", "calm-start")
			rctx.URLParams.Add("day", tt.day)
			ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
			if tt.userUID != "" {
				ctx = context.WithValue(ctx, middlewarectx.UserUID, tt.userUID)
			}
			req = req.WithContext(ctx)

			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())

			mockService.AssertExpectations(t)
		})
	}
}
