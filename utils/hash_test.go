package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashIP(t *testing.T) {
	first := HashIP("203.0.113.10")
	second := HashIP("203.0.113.10")
	other := HashIP("203.0.113.11")

	assert.Equal(t, first, second)
	assert.NotEqual(t, first, other)
	assert.Len(t, first, 64)
	assert.NotContains(t, first, "203.0.113.10")
}
