package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestGetPaginationParams(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name  string
		query string
		want  PaginationParams
	}{
		{"defaults", "", PaginationParams{Page: 1, Limit: 20, Offset: 0}},
		{"explicit", "page=3&limit=10", PaginationParams{Page: 3, Limit: 10, Offset: 20}},
		{"page below minimum", "page=0&limit=5", PaginationParams{Page: 1, Limit: 5, Offset: 0}},
		{"limit above maximum", "page=2&limit=500", PaginationParams{Page: 2, Limit: 20, Offset: 20}},
		{"page above maximum", "page=9223372036854775807&limit=10", PaginationParams{Page: 100000, Limit: 10, Offset: 999990}},
		{"garbage", "page=abc&limit=xyz", PaginationParams{Page: 1, Limit: 20, Offset: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest("GET", "/api/tasks?"+tt.query, nil)

			assert.Equal(t, tt.want, GetPaginationParams(c))
		})
	}
}

func TestSortAscending(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/api/tasks?sort=ASC", nil)
	assert.True(t, SortAscending(c))

	c.Request = httptest.NewRequest("GET", "/api/tasks?sort=desc", nil)
	assert.False(t, SortAscending(c))

	c.Request = httptest.NewRequest("GET", "/api/tasks", nil)
	assert.False(t, SortAscending(c))
}
