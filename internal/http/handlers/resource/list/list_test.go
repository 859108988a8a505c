package list

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

	"github.com/zenshift/zenshift-backend/internal/models"
)

// MockService реализует интерфейс list.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) List(ctx context.Context, filter models.ListFilter) ([]*models.Product, int, error) {
	args := m.Called(ctx, filter)
	if res := args.Get(0); res != nil {
		return res.([]*models.Product), args.Int(1), args.Error(2)
	}
	return nil, args.Int(1), args.Error(2)
}

func TestListHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name           string
		url            string
		expectedFilter models.ListFilter
		items          []*models.Product
		total          int
		expectedStatus int
		expectedBody   []string
	}{
		{
			name: "страница с фильтром и сортировкой",
			url:  "/products?page=2&limit=10&sort_by=price&category=jewelry",
			expectedFilter: models.ListFilter{
				Page:    2,
				Limit:   10,
				SortBy:  "price",
				Filters: map[string]string{"category": "jewelry"},
			},
			items:          []*models.Product{{ID: "p-1", Title: "Ring"}},
			total:          25,
			expectedStatus: http.StatusOK,
			expectedBody:   []string{`"title":"Ring"`, `"total":25`, `"page":2`, `"totalPages":3`},
		},
		{
			name: "параметры по умолчанию",
			url:  "/products",
			expectedFilter: models.ListFilter{
				Filters: map[string]string{},
			},
			items:          []*models.Product{},
			total:          0,
			expectedStatus: http.StatusOK,
			expectedBody:   []string{`"total":0`, `"page":1`, `"totalPages":0`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			mockService.On("List", mock.Anything, tt.expectedFilter).
				Return(tt.items, tt.total, nil)

			handler := New[models.Product](logger, mockService)

			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			for _, fragment := range tt.expectedBody {
				assert.True(t, strings.Contains(w.Body.String(), fragment),
					"response body should contain %s, got %s", fragment, w.Body.String())
			}

			mockService.AssertExpectations(t)
		})
	}
}
