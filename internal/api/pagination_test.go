package api

import (
	"net/http/httptest"
	"math"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func paginationContext(query string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/x?"+query, nil)
	return c
}

func TestParsePagination(t *testing.T) {
	cfg := PaginationConfig{DefaultLimit: 10, MaxLimit: 50}

	tests := []struct {
		query string
		want  PaginationParams
	}{
		{"", PaginationParams{Page: 1, Limit: 10, Offset: 0}},
		{"page=3&limit=20", PaginationParams{Page: 3, Limit: 20, Offset: 40}},
		{"page=0", PaginationParams{Page: 1, Limit: 10, Offset: 0}},
		{"page=-2&limit=-1", PaginationParams{Page: 1, Limit: 10, Offset: 0}},
		{"limit=51", PaginationParams{Page: 1, Limit: 10, Offset: 0}},
		{"page=abc&limit=x", PaginationParams{Page: 1, Limit: 10, Offset: 0}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParsePagination(paginationContext(tt.query), cfg), tt.query)
	}
}

func TestNewPaginationResponse(t *testing.T) {
	p := PaginationParams{Page: 2, Limit: 10, Offset: 10}

	assert.Equal(t, PaginationResponse{Page: 2, Limit: 10, Total: 25, TotalPages: 3}, NewPaginationResponse(p, 25))
	assert.Equal(t, 0, NewPaginationResponse(p, 0).TotalPages)
	assert.Equal(t, 0, NewPaginationResponse(PaginationParams{}, 5).TotalPages)
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	assert.Equal(t, []int{1, 2}, paginate(items, PaginationParams{Limit: 2, Offset: 0}))
	assert.Equal(t, []int{5}, paginate(items, PaginationParams{Limit: 2, Offset: 4}))
	assert.Equal(t, []int{}, paginate(items, PaginationParams{Limit: 2, Offset: 6}))
	assert.Equal(t, []int{}, paginate([]int(nil), PaginationParams{Limit: 2}))
	assert.Equal(t, []int{}, paginate(items, PaginationParams{Limit: 2, Offset: -4}))
}

func TestParsePagination_HugePage(t *testing.T) {
	cfg := PaginationConfig{DefaultLimit: 10, MaxLimit: 100}
	query := "page=" + strconv.Itoa(math.MaxInt) + "&limit=100"

	p := ParsePagination(paginationContext(query), cfg)

	assert.Equal(t, math.MaxInt/100, p.Page)
	assert.GreaterOrEqual(t, p.Offset, 0)
	assert.Equal(t, []int{}, paginate([]int{1, 2, 3}, p))
}
