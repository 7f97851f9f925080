package httpapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetLimiterPerIP(t *testing.T) {
	l := NewIPRateLimiter(1, 1)
	a := l.getLimiter("192.0.2.1")
	assert.Same(t, a, l.getLimiter("192.0.2.1"))
	assert.NotSame(t, a, l.getLimiter("192.0.2.2"))
	assert.True(t, a.Allow())
	assert.False(t, a.Allow())
}
