package checkout

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/zenshift/zenshift-backend/internal/http/middlewarectx"
	"github.com/zenshift/zenshift-backend/internal/services/subscription"
)

// MockService реализует интерфейс checkout.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) CreateCheckoutSession(ctx context.Context, userUID, plan string) (string, error) {
	args := m.Called(ctx, userUID, plan)
	return args.String(0), args.Error(1)
}

func TestCheckoutHandler(t *testing.T) {
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
			name:    "успешное создание сессии",
			userUID: "u-1",
			body:    `{"plan":"premium"}`,
			setupMock: func(m *MockService) {
				m.On("CreateCheckoutSession", mock.Anything, "u-1", "premium").
					Return("https://checkout.stripe.com/pay/cs_123", nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"url":"https://checkout.stripe.com/pay/cs_123"`,
		},
		{
			name:           "нет идентификатора пользователя",
			userUID:        "",
			body:           `{"plan":"premium"}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "user identification missing",
		},
		{
			name:    "user_id из тела без JWT",
			userUID: "",
			body:    `{"plan":"basic","user_id":"u-2"}`,
			setupMock: func(m *MockService) {
				m.On("CreateCheckoutSession", mock.Anything, "u-2", "basic").
					Return("https://checkout.stripe.com/pay/cs_456", nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"url":"https://checkout.stripe.com/pay/cs_456"`,
		},
		{
			name:    "неизвестный план дает 400",
			userUID: "u-1",
			body:    `{"plan":"gold"}`,
			setupMock: func(m *MockService) {
				m.On("CreateCheckoutSession", mock.Anything, "u-1", "gold").
					Return("", subscription.ErrInvalidPlan)
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "unknown subscription plan",
		},
		{
			name:           "пустой план отсекается валидацией",
			userUID:        "u-1",
			body:           `{}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   "field Plan is a required field",
		},
		{
			name:    "пользователь не найден",
			userUID: "u-404",
			body:    `{"plan":"basic"}`,
			setupMock: func(m *MockService) {
				m.On("CreateCheckoutSession", mock.Anything, "u-404", "basic").
					Return("", subscription.ErrUserNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   "user not found",
		},
		{
			name:    "ошибка шлюза отдается как есть",
			userUID: "u-1",
			body:    `{"plan":"premium"}`,
			setupMock: func(m *MockService) {
				m.On("CreateCheckoutSession", mock.Anything, "u-1", "premium").
					Return("", errors.New("billing: no such price"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   "billing: no such price",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost, "/subscription/checkout", strings.NewReader(tt.body))
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
