package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePage(t *testing.T) {
	cases := []struct {
		url      string
		page     int
		pageSize int
	}{
		{"/api/leads", 1, 20},
		{"/api/leads?page=3&pageSize=50", 3, 50},
		{"/api/leads?page=0&pageSize=0", 1, 20},
		{"/api/leads?page=-2", 1, 20},
		{"/api/leads?pageSize=5000", 1, 100},
		{"/api/leads?page=abc&pageSize=abc", 1, 20},
	}

	for _, c := range cases {
		r := httptest.NewRequest("GET", c.url, nil)
		p := ParsePage(r)
		assert.Equal(t, c.page, p.Page, "url %s", c.url)
		assert.Equal(t, c.pageSize, p.PageSize, "url %s", c.url)
	}
}

func TestPageOffset(t *testing.T) {
	assert.Equal(t, 0, Page{Page: 1, PageSize: 20}.Offset())
	assert.Equal(t, 40, Page{Page: 3, PageSize: 20}.Offset())
}

func TestNewPaginated(t *testing.T) {
	t.Run("Rounds Pages Up", func(t *testing.T) {
		env := NewPaginated([]string{}, 41, Page{Page: 1, PageSize: 20})
		assert.Equal(t, 3, env.TotalPages)
		assert.Equal(t, 41, env.Total)
	})

	t.Run("Empty Result Still Has One Page", func(t *testing.T) {
		env := NewPaginated([]string{}, 0, Page{Page: 1, PageSize: 20})
		assert.Equal(t, 1, env.TotalPages)
	})
}
