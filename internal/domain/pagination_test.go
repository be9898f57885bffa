package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageRequestNormalize(t *testing.T) {
	p := PageRequest{}.Normalize()
	assert.Equal(t, PageRequest{Page: 1, Limit: DefaultPageSize}, p)

	p = PageRequest{Page: 3, Limit: 25}.Normalize()
	assert.Equal(t, PageRequest{Page: 3, Limit: 25}, p)

	// Negative values pass through Normalize and fail Validate.
	p = PageRequest{Page: -1, Limit: -5}.Normalize()
	assert.Equal(t, PageRequest{Page: -1, Limit: -5}, p)
}

func TestPageRequestValidate(t *testing.T) {
	require.NoError(t, PageRequest{Page: 1, Limit: 1}.Validate())
	require.NoError(t, PageRequest{Page: 1, Limit: MaxPageSize}.Validate())

	assert.Error(t, PageRequest{Page: 0, Limit: 10}.Validate())
	assert.Error(t, PageRequest{Page: -2, Limit: 10}.Validate())
	assert.Error(t, PageRequest{Page: 1, Limit: 0}.Validate())
	assert.Error(t, PageRequest{Page: 1, Limit: MaxPageSize + 1}.Validate())
}

func TestPageRequestOffset(t *testing.T) {
	assert.Equal(t, 0, PageRequest{Page: 1, Limit: 10}.Offset())
	assert.Equal(t, 10, PageRequest{Page: 2, Limit: 10}.Offset())
	assert.Equal(t, 50, PageRequest{Page: 3, Limit: 25}.Offset())
}

func TestNewPagination(t *testing.T) {
	p := NewPagination(PageRequest{Page: 1, Limit: 10}, 25)
	assert.Equal(t, 1, p.CurrentPage)
	assert.Equal(t, 3, p.TotalPages)
	assert.Equal(t, int64(25), p.TotalItems)
	assert.Equal(t, 10, p.ItemsPerPage)
	assert.True(t, p.HasNextPage)
	assert.False(t, p.HasPreviousPage)

	p = NewPagination(PageRequest{Page: 3, Limit: 10}, 25)
	assert.False(t, p.HasNextPage)
	assert.True(t, p.HasPreviousPage)

	// Boundary: page exactly filled, no next page.
	p = NewPagination(PageRequest{Page: 2, Limit: 10}, 20)
	assert.Equal(t, 2, p.TotalPages)
	assert.False(t, p.HasNextPage)

	// Empty set.
	p = NewPagination(PageRequest{Page: 1, Limit: 10}, 0)
	assert.Equal(t, 0, p.TotalPages)
	assert.False(t, p.HasNextPage)
	assert.False(t, p.HasPreviousPage)
}
