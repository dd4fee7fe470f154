package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestClock_Monotonic tests that Next always increments by one.
func TestClock_Monotonic(t *testing.T) {
	c := NewClock()
	for want := int64(1); want <= 10; want++ {
		assert.Equal(t, want, c.Next())
	}
	assert.Equal(t, int64(10), c.Current())
}

// TestClock_Reset tests reuse after reset.
func TestClock_Reset(t *testing.T) {
	c := NewClock()
	c.Next()
	c.Next()
	c.Reset()
	assert.Equal(t, int64(0), c.Current())
	assert.Equal(t, int64(1), c.Next())
}
