package helpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCalculateOffsetLimit(t *testing.T) {
	offset, limit := CalculateOffsetLimit(3, 10)
	assert.Equal(t, 20, offset)
	assert.Equal(t, 10, limit)

	offset, limit = CalculateOffsetLimit(0, 500)
	assert.Equal(t, 0, offset)
	assert.Equal(t, DefaultPageSize, limit)
}

func TestNewPaginationInfo(t *testing.T) {
	info := NewPaginationInfo(45, 2, 20)
	assert.Equal(t, 2, info.CurrentPage)
	assert.Equal(t, 3, info.TotalPages)
	assert.Equal(t, 20, info.PageSize)
	assert.Equal(t, int64(45), info.TotalItems)

	empty := NewPaginationInfo(0, 1, 20)
	assert.Equal(t, 1, empty.TotalPages)

	clamped := NewPaginationInfo(5, 9, 20)
	assert.Equal(t, 1, clamped.CurrentPage)
}

func TestParseDuration(t *testing.T) {
	assert.Equal(t, 90*time.Second, ParseDuration("90s", time.Minute))
	assert.Equal(t, time.Minute, ParseDuration("soon", time.Minute))
	assert.Equal(t, time.Minute, ParseDuration("", time.Minute))
}
