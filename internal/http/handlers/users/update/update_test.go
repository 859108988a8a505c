package update

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/zenshift/zenshift-backend/internal/http/middlewarectx"
	"github.com/zenshift/zenshift-backend/internal/models"
	"github.com/zenshift/zenshift-backend/internal/services/auth"
)

// MockService реализует интерфейс update.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) UpdateProfile(ctx context.Context, userUID, name, email, password string) (*models.User, error) {
	args := m.Called(ctx, userUID, name, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func TestUpdateHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name           string
		userUID        string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:    "успешное обновление имени",
			userUID: "u-1",
			body:    `{"name":"Alice B."}`,
			setupMock: func(m *MockService) {
				m.On("UpdateProfile", mock.Anything, "u-1", "Alice B.", "", "").
					Return(&models.User{UID: "u-1", Name: "Alice B.", Email: "alice@example.com"}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"name":"Alice B."`,
		},
		{
			name:           "без JWT запрос отклоняется",
			userUID:        "",
			body:           `{"name":"Alice B."}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   "user identification missing",
		},
		{
			name:           "невалидная почта",
			userUID:        "u-1",
			body:           `{"email":"not-an-email"}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   "field Email must be a valid email address",
		},
		{
			name:           "короткий пароль",
			userUID:        "u-1",
			body:           `{"password":"123"}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   "field Password must be at least 6 characters long",
		},
		{
			name:    "занятая почта дает 409",
			userUID: "u-1",
			body:    `{"email":"bob@example.com"}`,
			setupMock: func(m *MockService) {
				m.On("UpdateProfile", mock.Anything, "u-1", "", "bob@example.com", "").
					Return(nil, auth.ErrEmailTaken)
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   "email already registered",
		},
		{
			name:    "пользователь не найден",
			userUID: "u-404",
			body:    `{"name":"Ghost"}`,
			setupMock: func(m *MockService) {
				m.On("UpdateProfile", mock.Anything, "u-404", "Ghost", "", "").
					Return(nil, auth.ErrUserNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   "user not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPut, "/users/me", strings.NewReader(tt.body))
			if tt.userUID != "" {
				ctx := context.WithValue(req.Context(), middlewarectx.UserUID, tt.userUID)
				req = req.WithContext(ctx)
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
